// Package app provides application initialization and lifecycle management for
// the AVR Pulse server. It wires configuration, logging, observability, the
// parsing pipeline and the HTTP transport together, and owns startup and
// graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and OpenTelemetry
//	3. Create the loader, parse cache and report store
//	4. Initialize the report and health services
//	5. Set up HTTP handlers and middleware
//	6. Configure and start the HTTP server
//	7. Set up graceful shutdown handlers
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM signals to ensure:
//
//	- Active requests are completed
//	- OpenTelemetry providers are flushed and shut down
//
// All initialization errors are returned to the caller for proper handling.
// The app does not call os.Exit() directly, allowing the main function to
// control the exit process.
package app
