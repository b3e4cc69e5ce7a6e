// Package infrastructure provides the process-wide logging and telemetry
// setup shared by the lobstat commands.
//
// Logging is structured JSON through log/slog. A run id stored in the
// context with WithRunID is added to every record logged with that context.
//
// Telemetry wires OpenTelemetry tracing to the stdout span exporter and
// metrics to a Prometheus registry that is written to a text file at the end
// of a batch run, for pickup by a node exporter textfile collector.
package infrastructure
