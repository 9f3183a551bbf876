package annotations

import (
	"strings"

	"github.com/rs/zerolog"
)

// ZerologHandler forwards events to a structured logger. Optimizer and
// executor events log at debug level, error events at error level.
func ZerologHandler(logger zerolog.Logger) Handler {
	return func(event Event) {
		level := zerolog.DebugLevel
		if strings.HasPrefix(event.Name, "error/") {
			level = zerolog.ErrorLevel
		}
		e := logger.WithLevel(level).Str("event", event.Name)
		if event.Latency > 0 {
			e = e.Dur("latency", event.Latency)
		}
		e.Fields(event.Data).Msg(event.Name)
	}
}
