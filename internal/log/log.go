// Package log holds the process-wide zap logger.
package log

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	sugar *zap.SugaredLogger
	base  *zap.Logger
)

// Options configures the package logger.
type Options struct {
	Debug bool
	// File, when set, receives JSON entries in addition to stderr and is
	// rotated by size.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// BindFlags registers -debug and the -log-* flags on fs. The returned Options
// are filled in when fs is parsed.
func BindFlags(fs *flag.FlagSet) *Options {
	opts := &Options{MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 30}
	fs.BoolVar(&opts.Debug, "debug", false, "Turn on debugging output")
	fs.StringVar(&opts.File, "log-file", "", "Also write JSON logs to this file, rotated by size")
	fs.IntVar(&opts.MaxSizeMB, "log-max-size", opts.MaxSizeMB, "Rotate the log file after this many megabytes")
	fs.IntVar(&opts.MaxBackups, "log-max-backups", opts.MaxBackups, "Number of rotated log files to keep")
	fs.IntVar(&opts.MaxAgeDays, "log-max-age", opts.MaxAgeDays, "Days to keep rotated log files")
	return opts
}

// Init builds the package logger. Debug mode uses zap's development encoder
// and enables debug-level output.
func Init(debug bool) error {
	return InitWithOptions(Options{Debug: debug})
}

// InitWithOptions is Init with an optional rotating log file.
func InitWithOptions(opts Options) error {
	var cfg zap.Config
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	if opts.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), cfg.Level)

		l = l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, fileCore)
		}))
	}

	set(l)
	return nil
}

// Use replaces the package logger, typically with an observer core in tests.
func Use(l *zap.Logger) {
	set(l)
}

func set(l *zap.Logger) {
	base = l
	sugar = l.Sugar()
}

func ensure() {
	if sugar == nil {
		l, _ := zap.NewProduction(zap.AddCallerSkip(1))
		set(l)
	}
}

// GetZapLogger returns the structured logger, for libraries such as GORM
// that want a *zap.Logger.
func GetZapLogger() *zap.Logger {
	ensure()
	return base
}

// GetSugaredLogger returns the sugared logger handed to components.
func GetSugaredLogger() *zap.SugaredLogger {
	ensure()
	return sugar
}

// Sync flushes buffered entries.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}

func Debug(args ...interface{}) {
	GetSugaredLogger().Debug(args...)
}

func Debugf(template string, args ...interface{}) {
	GetSugaredLogger().Debugf(template, args...)
}

func Info(args ...interface{}) {
	GetSugaredLogger().Info(args...)
}

func Infof(template string, args ...interface{}) {
	GetSugaredLogger().Infof(template, args...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	GetSugaredLogger().Infow(msg, keysAndValues...)
}

func Warn(args ...interface{}) {
	GetSugaredLogger().Warn(args...)
}

func Warnf(template string, args ...interface{}) {
	GetSugaredLogger().Warnf(template, args...)
}

func Error(args ...interface{}) {
	GetSugaredLogger().Error(args...)
}

func Errorf(template string, args ...interface{}) {
	GetSugaredLogger().Errorf(template, args...)
}

func Fatalf(template string, args ...interface{}) {
	GetSugaredLogger().Fatalf(template, args...)
	os.Exit(1)
}
