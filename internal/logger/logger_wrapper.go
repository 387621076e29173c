package logger

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/hselasky/jack-umidi/sdk/contracts"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements contracts.Logger on top of Uber's zap.
type ZapLogger struct {
	logger  atomic.Pointer[zap.Logger]
	level   zap.AtomicLevel
	encoder zapcore.EncoderConfig
}

// NewZapLogger creates a console logger writing to stderr at info level.
func NewZapLogger() contracts.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	enc := encoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), level)
	return newZapLogger(core, level, enc)
}

// NewWithCore wraps an existing zap core. The returned logger starts at
// debug level so the core's own level decides what is kept.
func NewWithCore(core zapcore.Core) contracts.Logger {
	return newZapLogger(core, zap.NewAtomicLevelAt(zapcore.DebugLevel), encoderConfig())
}

// NewNop returns a logger that discards everything.
func NewNop() contracts.Logger {
	return newZapLogger(zapcore.NewNopCore(), zap.NewAtomicLevelAt(zapcore.FatalLevel), encoderConfig())
}

func newZapLogger(core zapcore.Core, level zap.AtomicLevel, enc zapcore.EncoderConfig) *ZapLogger {
	z := &ZapLogger{level: level, encoder: enc}
	z.logger.Store(build(core))
	return z
}

// build adds caller info pointing past Info/Warn/... and log.
func build(core zapcore.Core) *zap.Logger {
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

func encoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	return enc
}

// Info logs a message at the INFO level
func (z *ZapLogger) Info(msg string, fields ...contracts.Field) {
	z.log(zapcore.InfoLevel, msg, fields...)
}

// Error logs a message at the ERROR level
func (z *ZapLogger) Error(msg string, fields ...contracts.Field) {
	z.log(zapcore.ErrorLevel, msg, fields...)
}

// Debug logs a message at the DEBUG level
func (z *ZapLogger) Debug(msg string, fields ...contracts.Field) {
	z.log(zapcore.DebugLevel, msg, fields...)
}

// Warn logs a message at the WARN level
func (z *ZapLogger) Warn(msg string, fields ...contracts.Field) {
	z.log(zapcore.WarnLevel, msg, fields...)
}

// Fatal logs a message at the FATAL level and terminates the application
func (z *ZapLogger) Fatal(msg string, fields ...contracts.Field) {
	z.log(zapcore.FatalLevel, msg, fields...)
	os.Exit(1)
}

// Field returns a new instance of Field
func (z *ZapLogger) Field() contracts.Field {
	return zapField{}
}

// Enabled reports whether messages at level would be written.
func (z *ZapLogger) Enabled(level contracts.LogLevel) bool {
	return z.level.Enabled(toZapLevel(level))
}

// SetLevel sets the logging level
func (z *ZapLogger) SetLevel(level contracts.LogLevel) {
	z.level.SetLevel(toZapLevel(level))
}

// SetDestination switches the output between stderr and a log file.
func (z *ZapLogger) SetDestination(dest contracts.LogDestination, filePath ...string) error {
	var ws zapcore.WriteSyncer
	switch dest {
	case contracts.ConsoleLog:
		ws = zapcore.Lock(os.Stderr)
	case contracts.FileLog:
		if len(filePath) == 0 || filePath[0] == "" {
			return fmt.Errorf("file log destination needs a path")
		}
		out, _, err := zap.Open(filePath[0])
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		ws = out
	default:
		return fmt.Errorf("unknown log destination %q", dest)
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(z.encoder), ws, z.level)
	old := z.logger.Swap(build(core))
	_ = old.Sync()
	return nil
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	return z.logger.Load().Sync()
}

func (z *ZapLogger) log(level zapcore.Level, msg string, fields ...contracts.Field) {
	if !z.level.Enabled(level) {
		return
	}
	ce := z.logger.Load().Check(level, msg)
	if ce == nil {
		return
	}
	ce.Write(toZapFields(fields)...)
}

func toZapLevel(level contracts.LogLevel) zapcore.Level {
	switch level {
	case contracts.DebugLevel:
		return zapcore.DebugLevel
	case contracts.InfoLevel:
		return zapcore.InfoLevel
	case contracts.WarnLevel:
		return zapcore.WarnLevel
	case contracts.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

func toZapFields(fields []contracts.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		if f, ok := field.(zapField); ok && f.f.Key != "" {
			out = append(out, f.f)
		}
	}
	return out
}

// zapField implements contracts.Field
type zapField struct {
	f zap.Field
}

func newField(f zap.Field) contracts.Field {
	return zapField{f: f}
}

func (zapField) Bool(key string, val bool) contracts.Field {
	return newField(zap.Bool(key, val))
}

func (zapField) Int(key string, val int) contracts.Field {
	return newField(zap.Int(key, val))
}

func (zapField) Float64(key string, val float64) contracts.Field {
	return newField(zap.Float64(key, val))
}

func (zapField) String(key string, val string) contracts.Field {
	return newField(zap.String(key, val))
}

func (zapField) Time(key string, val time.Time) contracts.Field {
	return newField(zap.Time(key, val))
}

func (zapField) Int64(key string, val int64) contracts.Field {
	return newField(zap.Int64(key, val))
}

func (zapField) Error(key string, val error) contracts.Field {
	return newField(zap.NamedError(key, val))
}

func (zapField) Uint64(key string, val uint64) contracts.Field {
	return newField(zap.Uint64(key, val))
}

func (zapField) Uint8(key string, val uint8) contracts.Field {
	return newField(zap.Uint8(key, val))
}

// Bytes logs raw MIDI bytes in hex.
func (zapField) Bytes(key string, val []byte) contracts.Field {
	return newField(zap.String(key, fmt.Sprintf("% X", val)))
}
