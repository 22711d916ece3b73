package log

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	Field  = zap.Field
	Level  = zapcore.Level
	Option = zap.Option
	Logger struct {
		l     *zap.Logger
		level Level
	}
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

var (
	String     = zap.String
	Int        = zap.Int
	Int32      = zap.Int32
	Uint32     = zap.Uint32
	Float64    = zap.Float64
	Bool       = zap.Bool
	Time       = zap.Time
	Duration   = zap.Duration
	Any        = zap.Any
	ErrorField = zap.Error

	WithCaller    = zap.WithCaller
	AddCallerSkip = zap.AddCallerSkip
)

func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

// New creates a Logger with a JSON encoder writing to w.
func New(w io.Writer, level Level, opts ...Option) *Logger {
	return newLogger(w, level, prodEncoder(), opts...)
}

// DevLogger creates a Logger with a console encoder writing to w.
func DevLogger(w io.Writer, level Level, opts ...Option) *Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return newLogger(w, level, zapcore.NewConsoleEncoder(cfg), opts...)
}

// NewWithFilters creates a JSON Logger whose output is restricted by
// zapfilter rules, for example "debug:repository.* info:*".
func NewWithFilters(w io.Writer, level Level, rules string, opts ...Option) (
	*Logger, error,
) {
	filter, err := zapfilter.ParseRules(rules)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	core := zapcore.NewCore(prodEncoder(), zapcore.AddSync(w), level)
	return &Logger{
		l:     zap.New(zapfilter.NewFilteringCore(core, filter), opts...),
		level: level,
	}, nil
}

func prodEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func newLogger(w io.Writer, level Level, enc zapcore.Encoder, opts ...Option) *Logger {
	if w == nil {
		w = os.Stderr
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return &Logger{l: zap.New(core, opts...), level: level}
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) WithOptions(opts ...Option) *Logger {
	return &Logger{l: l.l.WithOptions(opts...), level: l.level}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }

func (l *Logger) Fatalf(template string, args ...any) {
	l.l.Sugar().Fatalf(template, args...)
}

func (l *Logger) Sugar() *zap.SugaredLogger { return l.l.Sugar() }

func (l *Logger) Sync() error { return l.l.Sync() }

//nolint:gochecknoglobals // package level default logger
var (
	std = New(os.Stderr, InfoLevel)
	mu  sync.Mutex

	Debug  = std.Debug
	Info   = std.Info
	Warn   = std.Warn
	Error  = std.Error
	Fatal  = std.Fatal
	Fatalf = std.Fatalf
)

func Default() *Logger { return std }

// ResetDefault replaces the default logger and the package level
// convenience functions.
func ResetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	std = l
	Debug = std.Debug
	Info = std.Info
	Warn = std.Warn
	Error = std.Error
	Fatal = std.Fatal
	Fatalf = std.Fatalf
}
