package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see middleware events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("context_id", event.ContextID),
		slog.String("kind", event.Kind.String()),
		slog.String("entity", event.Entity.String()),
	}

	// Add optional identifiers
	if event.Node != "" {
		attrs = append(attrs, slog.String("node", event.Node))
	}
	if event.Topic != "" {
		attrs = append(attrs, slog.String("topic", event.Topic))
	}
	if event.GID != "" {
		attrs = append(attrs, slog.String("gid", event.GID))
	}

	// Add type-specific attributes
	switch {
	case event.Lifecycle != nil:
		attrs = append(attrs, slog.String("action", event.Lifecycle.Action))
		if event.Lifecycle.Detail != "" {
			attrs = append(attrs, slog.String("detail", event.Lifecycle.Detail))
		}
	case event.Match != nil:
		attrs = append(attrs,
			slog.String("peer_gid", event.Match.PeerGID),
			slog.String("compatibility", event.Match.Compatibility),
		)
		if event.Match.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Match.Reason))
		}
	case event.Delivery != nil:
		attrs = append(attrs,
			slog.Uint64("sequence", event.Delivery.Sequence),
			slog.Int("size", event.Delivery.Size),
		)
		if event.Delivery.Replayed {
			attrs = append(attrs, slog.Bool("replayed", true))
		}
	case event.QoS != nil:
		attrs = append(attrs,
			slog.String("event", event.QoS.Event),
			slog.Int("total", event.QoS.Total),
		)
		if event.QoS.Policy != "" {
			attrs = append(attrs, slog.String("policy", event.QoS.Policy))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_op", event.Error.Op),
			slog.String("error_msg", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "middleware", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
