// Package app wires the dashboard server together: configuration, logging,
// telemetry, the loaded dataset, the services built on it, the HTTP router,
// the live-session hub, and the optional snapshot scheduler.
//
// # Initialization Flow
//
//  1. Load configuration from environment and files
//  2. Initialize logging and OpenTelemetry
//  3. Resolve paths and load the dataset
//  4. Initialize services with their dependencies
//  5. Set up HTTP handlers and middleware
//  6. Configure the HTTP server
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then stops the server, the scheduler,
// and the hub, and flushes telemetry. Initialization errors are returned to
// the caller; the package never calls os.Exit.
package app
