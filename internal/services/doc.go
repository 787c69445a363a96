// Package services implements the business logic layer of the AVR Pulse
// application. It provides a clean separation between HTTP handlers and the
// loading, counting and storage packages, ensuring that business rules are
// centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Service Layer Responsibilities
//
// The service layer is responsible for:
//
//	- Business logic and validation
//	- Cross-cutting concerns (logging, metrics)
//	- Error handling and transformation
//	- Caching strategies
//
// # Common Service Pattern
//
// Services typically follow this structure:
//
//	type ServiceName struct {
//	    store  *reports.Store
//	    logger *slog.Logger
//	}
//
//	func NewServiceName(store *reports.Store, logger *slog.Logger) *ServiceName {
//	    return &ServiceName{
//	        store:  store,
//	        logger: logger,
//	    }
//	}
//
//	func (s *ServiceName) BusinessOperation(ctx context.Context, input Input) (*Output, error) {
//	    // Validate input
//	    if err := input.Validate(); err != nil {
//	        return nil, fmt.Errorf("validation failed: %w", err)
//	    }
//
//	    // Execute business logic
//	    result, err := s.store.Operation(ctx, input)
//	    if err != nil {
//	        s.logger.ErrorContext(ctx, "operation failed",
//	            "error", err,
//	            "input", input,
//	        )
//	        return nil, fmt.Errorf("operation failed: %w", err)
//	    }
//
//	    return result, nil
//	}
//
// # Available Services
//
// The package provides these core services:
//
//	- ReportService: Runs uploads through the load → aggregate pipeline and
//	  serves the stored results
//	- HealthService: Provides system health checks
//
// # Error Handling
//
// Services return domain-specific errors that handlers can transform:
//
//	- Validation errors for invalid input
//	- Not found errors for missing resources
//	- Internal errors for unexpected failures
//
// # Testing
//
// Services are tested against real in-memory dependencies (the parse cache
// and report store carry no external state), with workbooks built in memory:
//
//	store := reports.NewStore(8)
//	service := NewReportServiceWithLogger(cache, store, caps, nil, logger)
//
//	report, err := service.Aggregate(ctx, input)
package services
