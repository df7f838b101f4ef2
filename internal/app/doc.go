// Package app wires the marketing dashboard together: configuration,
// structured logging, Prometheus metrics, the dataset service and the
// chi router. main() constructs an Application and calls Run, which
// serves until interrupted and then shuts down gracefully.
package app
