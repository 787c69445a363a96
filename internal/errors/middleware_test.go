package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avrcli/internal/shared/testutil"
)

func findRequestRecord(records []testutil.LogRecord) *testutil.LogRecord {
	for i := range records {
		if strings.Contains(records[i].Message, "http request") {
			return &records[i]
		}
	}
	return nil
}

func TestNewErrorMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)

	mw := NewErrorMiddleware(errorHandler, logger)

	assert.NotNil(t, mw)
	assert.Equal(t, errorHandler, mw.handler)
	assert.NotNil(t, mw.logger)
}

func TestErrorMiddleware_Handler(t *testing.T) {
	tests := []struct {
		name          string
		handler       http.HandlerFunc
		requestBody   string
		requestPath   string
		requestMethod string
		wantStatus    int
		shouldPanic   bool
		wantLogLevel  slog.Level
		checkDuration bool
	}{
		{
			name: "successful request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("success"))
			},
			requestPath:   "/api/reports",
			requestMethod: "GET",
			wantStatus:    http.StatusOK,
			wantLogLevel:  slog.LevelInfo,
			checkDuration: true,
		},
		{
			name: "client error request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("bad request"))
			},
			requestPath:   "/api/aggregate",
			requestMethod: "POST",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
		{
			name: "server error request",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("internal error"))
			},
			requestPath:   "/api/reports",
			requestMethod: "DELETE",
			wantStatus:    http.StatusInternalServerError,
			wantLogLevel:  slog.LevelError,
		},
		{
			name: "request with body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("validation error"))
			},
			requestBody:   `{"capacity_total": -1}`,
			requestPath:   "/api/capacities",
			requestMethod: "POST",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
		{
			name: "request that panics",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something went wrong")
			},
			requestPath:   "/api/reports",
			requestMethod: "GET",
			wantStatus:    http.StatusInternalServerError,
			shouldPanic:   true,
			wantLogLevel:  slog.LevelError,
		},
		{
			name: "request with query parameters",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("bad query"))
			},
			requestPath:   "/api/reports/abc/records?limit=10&offset=0",
			requestMethod: "GET",
			wantStatus:    http.StatusBadRequest,
			wantLogLevel:  slog.LevelWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			errorHandler := NewErrorHandler(logger, true)
			errorMiddleware := NewErrorMiddleware(errorHandler, logger)

			mw := errorMiddleware.Handler(tt.handler)

			var body io.Reader
			if tt.requestBody != "" {
				body = strings.NewReader(tt.requestBody)
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest(tt.requestMethod, tt.requestPath, body)
			if tt.requestBody != "" {
				r.Header.Set("Content-Type", "application/json")
			}

			r = withRequestID(r, "test-request-id")
			r.Header.Set("User-Agent", "test-client/1.0")

			mw.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			// Check that request was logged
			assert.True(t, logHandler.ContainsMessage("http request"))

			// Check log level based on status
			records := logHandler.GetRecordsByLevel(tt.wantLogLevel)
			assert.Greater(t, len(records), 0, "Expected log record at level %s", tt.wantLogLevel)

			httpLogRecord := findRequestRecord(logHandler.GetRecords())
			require.NotNil(t, httpLogRecord, "Should have HTTP request log record")

			// Check log attributes
			assert.Equal(t, tt.requestMethod, httpLogRecord.Attrs["method"])

			if strings.Contains(tt.requestPath, "?") {
				pathParts := strings.Split(tt.requestPath, "?")
				assert.Equal(t, pathParts[0], httpLogRecord.Attrs["path"])
				assert.Equal(t, pathParts[1], httpLogRecord.Attrs["query"])
			} else {
				assert.Equal(t, tt.requestPath, httpLogRecord.Attrs["path"])
			}

			assert.EqualValues(t, tt.wantStatus, httpLogRecord.Attrs["status"])
			assert.Equal(t, "test-request-id", httpLogRecord.Attrs["request_id"])
			assert.Equal(t, "test-client/1.0", httpLogRecord.Attrs["user_agent"])

			if tt.checkDuration {
				assert.Contains(t, httpLogRecord.Attrs, "duration")
			}

			// For error responses with body, check that request body was logged
			if tt.wantStatus >= 400 && tt.requestBody != "" {
				assert.Contains(t, httpLogRecord.Attrs, "request_body")
			}

			if tt.shouldPanic {
				assert.True(t, logHandler.ContainsMessage("panic recovered"))
			}
		})
	}
}

func TestErrorMiddleware_RequestBodyCapture(t *testing.T) {
	tests := []struct {
		name             string
		requestBody      string
		contentType      string
		wantCaptured     bool
		expectTruncation bool
	}{
		{
			name:         "small JSON body",
			requestBody:  `{"capacity_total": 4060, "capacity_075": 2030}`,
			contentType:  "application/json",
			wantCaptured: true,
		},
		{
			name:         "empty body",
			requestBody:  "",
			wantCaptured: false,
		},
		{
			name:         "large body exceeds limit",
			requestBody:  strings.Repeat("a", 1024*1024+1),
			wantCaptured: false,
		},
		{
			name:             "body requiring truncation",
			requestBody:      strings.Repeat("a", 600),
			wantCaptured:     true,
			expectTruncation: true,
		},
		{
			name:         "multipart upload never captured",
			requestBody:  strings.Repeat("x", 256),
			contentType:  `multipart/form-data; boundary="b"`,
			wantCaptured: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			errorHandler := NewErrorHandler(logger, false)
			errorMiddleware := NewErrorMiddleware(errorHandler, logger)

			handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				// Return error status to trigger request body logging
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("error"))
			}))

			var body io.Reader
			if tt.requestBody != "" {
				body = strings.NewReader(tt.requestBody)
			}

			w := httptest.NewRecorder()
			r := httptest.NewRequest("POST", "/api/aggregate", body)
			if tt.requestBody != "" {
				r.ContentLength = int64(len(tt.requestBody))
			}
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}

			r = withRequestID(r, "test-request-id")

			handler.ServeHTTP(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			httpLogRecord := findRequestRecord(logHandler.GetRecords())

			if tt.wantCaptured {
				require.NotNil(t, httpLogRecord)
				assert.Contains(t, httpLogRecord.Attrs, "request_body")

				loggedBody := httpLogRecord.Attrs["request_body"].(string)
				if tt.expectTruncation {
					assert.True(t, strings.HasSuffix(loggedBody, "..."))
					assert.Equal(t, 503, len(loggedBody)) // 500 chars + "..."
				} else {
					assert.Equal(t, tt.requestBody, loggedBody)
				}
			} else if httpLogRecord != nil {
				assert.NotContains(t, httpLogRecord.Attrs, "request_body")
			}
		})
	}
}

func TestErrorMiddleware_BodyStillReadable(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	requestBody := `{"capacity_total": 4060}`

	handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, requestBody, string(body))
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/api/capacities", strings.NewReader(requestBody))
	r.ContentLength = int64(len(requestBody))

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSanitizeRequestBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "sanitize password field",
			input:    `{"username": "ana", "password": "secret123"}`,
			expected: `{"password":"[REDACTED]","username":"ana"}`,
		},
		{
			name:     "sanitize multiple sensitive fields",
			input:    `{"email": "ops@example.com", "password": "secret", "api_key": "abc123", "name": "Ana"}`,
			expected: `{"api_key":"[REDACTED]","email":"ops@example.com","name":"Ana","password":"[REDACTED]"}`,
		},
		{
			name:     "sanitize token field",
			input:    `{"token": "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9", "data": "value"}`,
			expected: `{"data":"value","token":"[REDACTED]"}`,
		},
		{
			name:     "no sensitive fields",
			input:    `{"capacity_total": 4060, "capacity_075": 2030, "capacity_150": 2030}`,
			expected: `{"capacity_075":2030,"capacity_150":2030,"capacity_total":4060}`,
		},
		{
			name:     "invalid JSON",
			input:    `not a json string`,
			expected: `not a json string`,
		},
		{
			name:     "empty string",
			input:    ``,
			expected: ``,
		},
		{
			name:     "sanitize secret field",
			input:    `{"secret": "top-secret-value", "public": "public-value"}`,
			expected: `{"public":"public-value","secret":"[REDACTED]"}`,
		},
		{
			name:     "sanitize apiKey camelCase field",
			input:    `{"apiKey": "secret-api-key", "userId": 123}`,
			expected: `{"apiKey":"[REDACTED]","userId":123}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sanitizeRequestBody(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		shouldPanic bool
		wantStatus  int
	}{
		{
			name: "normal request without panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("success"))
			},
			shouldPanic: false,
			wantStatus:  http.StatusOK,
		},
		{
			name: "request that panics with string",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something went wrong")
			},
			shouldPanic: true,
			wantStatus:  http.StatusInternalServerError,
		},
		{
			name: "request that panics with error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(assert.AnError)
			},
			shouldPanic: true,
			wantStatus:  http.StatusInternalServerError,
		},
		{
			name: "request that panics with integer",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(42)
			},
			shouldPanic: true,
			wantStatus:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			errorHandler := NewErrorHandler(logger, true)

			mw := RecoveryMiddleware(errorHandler)(tt.handler)

			w := httptest.NewRecorder()
			r := withRequestID(httptest.NewRequest("GET", "/test", nil), "test-request-id")

			mw.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)

			if tt.shouldPanic {
				// Should have logged the panic
				assert.True(t, logHandler.ContainsMessage("panic recovered"))

				// Response should be JSON problem details
				assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

				var problem map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&problem)
				require.NoError(t, err)

				assert.Equal(t, TypeInternal, problem["type"])
				assert.Equal(t, "Internal Server Error", problem["title"])
				assert.Equal(t, float64(http.StatusInternalServerError), problem["status"])
				assert.Equal(t, "An unexpected error occurred", problem["detail"])
				assert.Equal(t, "test-request-id", problem["trace_id"])
			}
		})
	}
}

func TestErrorMiddleware_NilRequestBody(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("error"))
	}))

	w := httptest.NewRecorder()
	r := withRequestID(httptest.NewRequest("GET", "/test", nil), "test-request-id")

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	httpLogRecord := findRequestRecord(logHandler.GetRecords())
	if httpLogRecord != nil {
		assert.NotContains(t, httpLogRecord.Attrs, "request_body")
	}
}

func TestErrorMiddleware_LoggingAttributes(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Hello, World!"))
	}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/api/reports/abc/records?limit=10&offset=20", nil)
	r.RemoteAddr = "192.168.1.1:12345"
	r.Header.Set("User-Agent", "TestClient/1.0")
	r = withRequestID(r, "test-req-123")

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	httpLogRecord := findRequestRecord(logHandler.GetRecords())
	require.NotNil(t, httpLogRecord)

	assert.Equal(t, "GET", httpLogRecord.Attrs["method"])
	assert.Equal(t, "/api/reports/abc/records", httpLogRecord.Attrs["path"])
	assert.Equal(t, "limit=10&offset=20", httpLogRecord.Attrs["query"])
	assert.EqualValues(t, http.StatusOK, httpLogRecord.Attrs["status"])
	assert.Equal(t, "192.168.1.1:12345", httpLogRecord.Attrs["remote_addr"])
	assert.Equal(t, "TestClient/1.0", httpLogRecord.Attrs["user_agent"])
	assert.Equal(t, "test-req-123", httpLogRecord.Attrs["request_id"])
	assert.Contains(t, httpLogRecord.Attrs, "duration")
	assert.EqualValues(t, len("Hello, World!"), httpLogRecord.Attrs["bytes"])
}

func TestErrorMiddleware_ConcurrentRequests(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	handler := errorMiddleware.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}))

	const numRequests = 10
	results := make(chan int, numRequests)

	for i := 0; i < numRequests; i++ {
		go func(i int) {
			w := httptest.NewRecorder()
			r := withRequestID(httptest.NewRequest("GET", "/test", nil), fmt.Sprintf("req-%d", i))

			handler.ServeHTTP(w, r)
			results <- w.Code
		}(i)
	}

	for i := 0; i < numRequests; i++ {
		select {
		case statusCode := <-results:
			assert.Equal(t, http.StatusOK, statusCode)
		case <-time.After(5 * time.Second):
			t.Fatal("Timeout waiting for concurrent requests")
		}
	}
}

func TestErrorMiddleware_Integration(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	errorHandler := NewErrorHandler(logger, false)
	errorMiddleware := NewErrorMiddleware(errorHandler, logger)

	// Stack middleware like in the real application
	handler := middleware.RequestID(
		errorMiddleware.Handler(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
				w.Write([]byte("I'm a teapot"))
			}),
		),
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/test", nil)

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "I'm a teapot", w.Body.String())

	// Verify request was logged with the ID minted by chi
	assert.True(t, logHandler.ContainsMessage("http request"))

	httpLogRecord := findRequestRecord(logHandler.GetRecords())
	require.NotNil(t, httpLogRecord)
	requestID, ok := httpLogRecord.Attrs["request_id"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, requestID)
}
