package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// LoggerOptions describes the process a logger belongs to
type LoggerOptions struct {
	Service     string
	Version     string
	Environment string
	// Level is debug, info, warn or error. Anything else means info.
	Level  string
	Output io.Writer
}

type loggerKey struct{}

// NewLogger builds a logger stamped with service, env and version. Development
// output is human readable; everything else is one JSON object per line.
func NewLogger(opts LoggerOptions) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var lc zerolog.Context
	if opts.Environment == "development" {
		lc = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).With().Timestamp()
	} else {
		lc = zerolog.New(out).With().Timestamp().Caller()
	}

	lc = lc.Str("service", opts.Service).Str("env", opts.Environment)
	if opts.Version != "" {
		lc = lc.Str("version", opts.Version)
	}
	return lc.Logger().Level(ParseLevel(opts.Level))
}

// InitLogger installs NewLogger(opts) as the global logger
func InitLogger(opts LoggerOptions) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
	log.Logger = NewLogger(opts)
}

// ParseLevel maps a LOG_LEVEL value to a zerolog level, defaulting to info
func ParseLevel(value string) zerolog.Level {
	level, err := zerolog.ParseLevel(value)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// ContextWithLogField returns a context whose LoggerFromContext carries key=value,
// e.g. the authenticated user of a request.
func ContextWithLogField(ctx context.Context, key, value string) context.Context {
	logger := baseLogger(ctx).With().Str(key, value).Logger()
	return context.WithValue(ctx, loggerKey{}, &logger)
}

// LoggerFromContext returns the request logger with trace context
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := baseLogger(ctx).With().Logger()

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logger = logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return &logger
}

// GetLogger returns the global logger
func GetLogger() *zerolog.Logger {
	return &log.Logger
}

func baseLogger(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok {
		return logger
	}
	return &log.Logger
}
