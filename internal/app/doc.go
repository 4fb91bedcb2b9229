// Package app wires the dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, the YAML file and DASH_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Build the pipeline: fetcher, source cache, classifier, mapper
//	4. Initialize services with their dependencies
//	5. Set up HTTP handlers and middleware
//	6. Start the HTTP server and the optional refresh schedule
//	7. Shut down gracefully on SIGINT or SIGTERM
//
// Nothing in the pipeline is a package level singleton. Every component is
// constructed here and injected.
package app
