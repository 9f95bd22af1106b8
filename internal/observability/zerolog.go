package observability

import (
	"io"

	"github.com/rs/zerolog"
)

// ZerologAdapter bridges the Logger interface onto a zerolog.Logger.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologAdapter wraps an existing zerolog logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// NewZerologWriter builds an adapter that emits structured JSON to w.
func NewZerologWriter(w io.Writer) *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// Debug emits a debug-level event with the supplied fields.
func (a *ZerologAdapter) Debug(msg string, fields ...Field) {
	a.emit(a.logger.Debug(), msg, fields)
}

// Info emits an info-level event with the supplied fields.
func (a *ZerologAdapter) Info(msg string, fields ...Field) {
	a.emit(a.logger.Info(), msg, fields)
}

// Error emits an error-level event with the supplied fields.
func (a *ZerologAdapter) Error(msg string, fields ...Field) {
	a.emit(a.logger.Error(), msg, fields)
}

func (a *ZerologAdapter) emit(event *zerolog.Event, msg string, fields []Field) {
	for _, field := range fields {
		switch value := field.Value.(type) {
		case string:
			event = event.Str(field.Key, value)
		case int:
			event = event.Int(field.Key, value)
		case int64:
			event = event.Int64(field.Key, value)
		case float64:
			event = event.Float64(field.Key, value)
		case bool:
			event = event.Bool(field.Key, value)
		case error:
			event = event.AnErr(field.Key, value)
		default:
			event = event.Interface(field.Key, value)
		}
	}
	event.Msg(msg)
}
