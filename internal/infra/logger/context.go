package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every record logged with a context carrying them.
type LogFields struct {
	RequestID *string
	UserID    *int64
	OrgID     *int64
	ClientIP  *string
	Component string
}

// WithLogFields merges fields into ctx, newer non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RequestID != nil {
		result.RequestID = next.RequestID
	}
	if next.UserID != nil {
		result.UserID = next.UserID
	}
	if next.OrgID != nil {
		result.OrgID = next.OrgID
	}
	if next.ClientIP != nil {
		result.ClientIP = next.ClientIP
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

func Ptr[T any](v T) *T {
	return &v
}
