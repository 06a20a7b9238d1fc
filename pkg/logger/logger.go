package logger

import (
	"context"
	"io"
	"maps"
	"os"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Format selects how entries are rendered.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Options configures the structured logger. Zero values give JSON at info
// level on stdout.
type Options struct {
	ServiceName string
	Env         string
	Level       zerolog.Level
	Format      Format
	WarnStack   bool
	Output      io.Writer
}

// Logger writes structured entries enriched with the fields carried by the
// request context. A nil *Logger discards everything.
type Logger struct {
	base      *zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if ParseFormat(string(opts.Format)) == FormatConsole {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	fields := zerolog.New(output).With().Timestamp().Str("service", opts.ServiceName)
	if opts.Env != "" {
		fields = fields.Str("env", opts.Env)
	}
	base := fields.Logger().Level(opts.Level)
	return &Logger{base: &base, warnStack: opts.WarnStack}
}

// ParseLevel maps a config string to a level, defaulting to info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// ParseFormat accepts "console" case-insensitively; anything else is JSON.
func ParseFormat(value string) Format {
	if strings.EqualFold(strings.TrimSpace(value), string(FormatConsole)) {
		return FormatConsole
	}
	return FormatJSON
}

func (l *Logger) entry(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			return entry
		}
	}
	if l == nil || l.base == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return l.base
}

func store(ctx context.Context, entry zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, &entry)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return store(ctx, l.entry(ctx).With().Interface(key, value).Logger())
}

// WithFields attaches fields in key order so entries render deterministically.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.entry(ctx).With()
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		builder = builder.Interface(k, fields[k])
	}
	return store(ctx, builder.Logger())
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return store(ctx, l.entry(ctx).With().Str("request_id", requestID).Logger())
}

func (l *Logger) WithProductID(ctx context.Context, productID string) context.Context {
	return store(ctx, l.entry(ctx).With().Str("product_id", productID).Logger())
}

func (l *Logger) WithAddOnSetID(ctx context.Context, setID string) context.Context {
	return store(ctx, l.entry(ctx).With().Str("addon_set_id", setID).Logger())
}

// WithProductID tags the request-scoped logger carried by ctx. Contexts
// without one are returned unchanged.
func WithProductID(ctx context.Context, productID string) context.Context {
	return extend(ctx, "product_id", productID)
}

// WithAddOnSetID is WithProductID for add-on sets.
func WithAddOnSetID(ctx context.Context, setID string) context.Context {
	return extend(ctx, "addon_set_id", setID)
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return extend(ctx, "idempotency_key", key)
}

func extend(ctx context.Context, key, value string) context.Context {
	entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger)
	if !ok {
		return ctx
	}
	return store(ctx, entry.With().Str(key, value).Logger())
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.entry(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.entry(ctx).Info().Msg(msg)
}

// Warn adds a stack trace only when the logger was built with WarnStack.
func (l *Logger) Warn(ctx context.Context, msg string) {
	event := l.entry(ctx).Warn()
	if l != nil && l.warnStack && event.Enabled() {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

// Error always carries a stack trace.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.entry(ctx).Error()
	if !event.Enabled() {
		return
	}
	if err != nil {
		event = event.Err(err)
	}
	event.Str("stack", stackTrace()).Msg(msg)
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}
