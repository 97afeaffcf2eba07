package zap

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const timeFmt = "2006/01/02 15:04:05.000"

// Mode 开发模式只输出控制台；生产模式额外写滚动文件，文件为 JSON 行
type Mode int32

const (
	Dev Mode = iota
	Prod
)

func (m Mode) String() string {
	if m == Prod {
		return "prod"
	}
	return "dev"
}

// Config 日志配置，字段与 conf.Log 对应
type Config struct {
	Mode  Mode
	Level string
	App   string
	Dir   string
	File  bool
}

// Logger 实现 kratos log.Logger
type Logger struct {
	log    *zap.Logger
	level  zap.AtomicLevel
	msgKey string
}

var _ log.Logger = (*Logger)(nil)

// Option is logger option.
type Option func(*Logger)

// WithMessageKey with message key.
func WithMessageKey(key string) Option {
	return func(l *Logger) {
		l.msgKey = key
	}
}

// Log implements log.Logger
func (l *Logger) Log(level log.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "!MISSING-VALUE")
	}

	var msg string
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		if key == l.msgKey {
			msg = fmt.Sprint(keyvals[i+1])
			continue
		}
		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	if ce := l.log.Check(zapLevel(level), msg); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func zapLevel(level log.Level) zapcore.Level {
	switch level {
	case log.LevelDebug:
		return zapcore.DebugLevel
	case log.LevelWarn:
		return zapcore.WarnLevel
	case log.LevelError:
		return zapcore.ErrorLevel
	case log.LevelFatal:
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

// SetLevel 运行时调整级别，非法值返回错误
func (l *Logger) SetLevel(level string) error {
	return l.level.UnmarshalText([]byte(level))
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.log.Sync()
}

// ZapLogger returns the underlying zap logger.
func (l *Logger) ZapLogger() *zap.Logger {
	return l.log
}

// NewLogger 包装已有 zap.Logger，级别固定为 zap.Logger 自身的级别
func NewLogger(zapLogger *zap.Logger, opts ...Option) *Logger {
	l := &Logger{
		log:    zapLogger,
		level:  zap.NewAtomicLevelAt(zapLogger.Level()),
		msgKey: log.DefaultMessageKey,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewLoggerWithConfig creates a new logger from config with options.
func NewLoggerWithConfig(cfg *Config, opts ...Option) *Logger {
	if cfg == nil {
		_, _ = fmt.Fprintln(os.Stderr, "logger: using default development logger with nil config")
		cfg = &Config{Mode: Dev, Level: "debug"}
	}
	lv := zap.NewAtomicLevel()
	if err := lv.UnmarshalText([]byte(cfg.Level)); err != nil {
		lv.SetLevel(zapcore.DebugLevel)
		_, _ = fmt.Fprintf(os.Stderr, "logger: invalid log level %q, defaulting to DEBUG\n", cfg.Level)
	}
	l := NewLogger(newZapLogger(cfg, lv), opts...)
	l.level = lv
	return l
}

func newZapLogger(cfg *Config, lv zap.AtomicLevel) *zap.Logger {
	app := cfg.App
	if app == "" {
		app = "app"
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg(true)), zapcore.Lock(os.Stdout), lv),
	}
	if cfg.File || cfg.Mode == Prod {
		name := filepath.Join(cfg.Dir, app)
		cores = append(cores,
			fileCore(name+".log", cfg.Mode, lv),
			fileCore(name+"_error.log", cfg.Mode, zap.ErrorLevel),
		)
	}
	// Helper -> Logger.Log -> Check/Write
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(2)).
		With(zap.String("app", app))
}

func fileCore(file string, mode Mode, lv zapcore.LevelEnabler) zapcore.Core {
	w := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    100,
		MaxBackups: 7,
		MaxAge:     10,
		Compress:   true,
	}
	enc := zapcore.NewConsoleEncoder(encCfg(false))
	if mode == Prod {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zapcore.NewCore(enc, zapcore.AddSync(w), lv)
}

func encCfg(color bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString("[" + t.Format(timeFmt) + "]")
	}
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.ConsoleSeparator = " "
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return cfg
}
