// Package log provides structured trace logging for the middleware.
//
// This package defines the Logger interface and Event types for capturing
// middleware events (entity lifecycle, endpoint matching, message delivery,
// QoS status changes, errors). It is separate from operational logging
// (slog) - trace capture provides a complete machine-readable event record
// for debugging and analysis.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/rmw/session.rlog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/rmw/session.rlog"),
//	)
//
// # Event Types
//
// Each event carries exactly one payload:
//   - Lifecycle: entity creation, shutdown and teardown (LifecycleEvent)
//   - Match: endpoint matching decisions with the QoS verdict (MatchEvent)
//   - Delivery: one message handed to one subscription (DeliveryEvent)
//   - QoS: deadline, liveliness and incompatibility statuses (QoSEvent)
//   - Error: failures at any layer (ErrorEvent)
//
// # File Format
//
// Log files use CBOR encoding with .rlog extension. Reader streams events
// back, optionally filtered by context, node, topic, kind or time window.
package log
