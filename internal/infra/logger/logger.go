package logger

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	Production  bool
	OTelEnabled bool
	ServiceName string
}

func Setup(opts Options) {
	var handler slog.Handler

	hopts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if !opts.Production {
		hopts.Level = slog.LevelDebug
	}

	switch {
	case opts.Production && opts.OTelEnabled:
		handler = NewTraceHandler(otelslog.NewHandler(
			opts.ServiceName,
			otelslog.WithLoggerProvider(global.GetLoggerProvider()),
		))
	case opts.Production:
		handler = NewTraceHandler(slog.NewJSONHandler(os.Stdout, hopts))
	default:
		handler = NewTraceHandler(slog.NewTextHandler(os.Stdout, hopts))
	}

	slog.SetDefault(slog.New(handler))
}

type TraceHandler struct {
	slog.Handler
}

func NewTraceHandler(h slog.Handler) *TraceHandler {
	return &TraceHandler{Handler: h}
}

func (h *TraceHandler) Handle(ctx context.Context, r slog.Record) error {
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		sc := span.SpanContext()
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	fields := GetLogFields(ctx)
	if fields.RequestID != nil {
		r.AddAttrs(slog.String("request_id", *fields.RequestID))
	}
	if fields.UserID != nil {
		r.AddAttrs(slog.Int64("user_id", *fields.UserID))
	}
	if fields.OrgID != nil {
		r.AddAttrs(slog.Int64("org_id", *fields.OrgID))
	}
	if fields.ClientIP != nil {
		r.AddAttrs(slog.String("client_ip", *fields.ClientIP))
	}
	if fields.Component != "" {
		r.AddAttrs(slog.String("component", fields.Component))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}

// ErrAttr is the conventional attribute for errors.
func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}
