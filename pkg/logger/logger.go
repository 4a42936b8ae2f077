package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	LogFilePermissions = 0600
	InfoLogLevel       = "info"
)

var (
	globalLogger *Logger
	loggerMutex  sync.RWMutex
	once         sync.Once

	// Global settings, overridable via viper (logging.*) before first use.
	GlobalEnableConsoleLogger bool
	GlobalEnableFileLogger    bool
	GlobalLogPath             string = "/tmp/seadb.log"
	GlobalLogLevel            string = InfoLogLevel
	GlobalLoggedBuffer        strings.Builder
	GlobalEnableBufferLogger  bool
	GlobalLogFile             *os.File
)

// Logger wraps a zap.Logger with printf-style helpers.
type Logger struct {
	*zap.Logger
}

// InitLoggerOutputs reads logger settings from viper if set.
func InitLoggerOutputs() {
	if viper.IsSet("logging.path") {
		GlobalLogPath = viper.GetString("logging.path")
	}
	if viper.IsSet("logging.level") {
		GlobalLogLevel = viper.GetString("logging.level")
	}
	if viper.IsSet("logging.enable_console") {
		GlobalEnableConsoleLogger = viper.GetBool("logging.enable_console")
	}
	if viper.IsSet("logging.enable_file") {
		GlobalEnableFileLogger = viper.GetBool("logging.enable_file")
	}
	if viper.IsSet("logging.enable_buffer") {
		GlobalEnableBufferLogger = viper.GetBool("logging.enable_buffer")
	}
}

// InitProduction builds the global logger from the current settings. Safe
// to call more than once; only the first call takes effect.
func InitProduction() {
	once.Do(func() {
		if GlobalLogLevel == "" {
			GlobalLogLevel = InfoLogLevel
		}
		level := getZapLevel(GlobalLogLevel)

		var cores []zapcore.Core
		if GlobalEnableConsoleLogger {
			cores = append(cores, createConsoleCore(level))
		}
		if GlobalEnableFileLogger {
			if fileCore, err := createFileCore(level); err == nil {
				cores = append(cores, fileCore)
			}
		}
		if GlobalEnableBufferLogger {
			cores = append(cores, createBufferCore(level))
		}
		if len(cores) == 0 {
			cores = append(cores, zapcore.NewNopCore())
		}

		core := zapcore.NewTee(cores...)
		SetGlobalLogger(&Logger{Logger: zap.New(core, zap.AddCaller()).Named("seadb")})
	})
}

// Get returns the global logger, initializing it on first use.
func Get() *Logger {
	loggerMutex.RLock()
	l := globalLogger
	loggerMutex.RUnlock()
	if l != nil {
		return l
	}
	InitProduction()
	loggerMutex.RLock()
	defer loggerMutex.RUnlock()
	return globalLogger
}

func SetGlobalLogger(l *Logger) {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()
	globalLogger = l
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

func getZapLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05"))
}

func createConsoleCore(level zapcore.Level) zapcore.Core {
	cfg := encoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("15:04:05"))
	}
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(os.Stdout),
		level,
	)
}

func createFileCore(level zapcore.Level) (zapcore.Core, error) {
	logFile, err := os.OpenFile(
		GlobalLogPath,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		LogFilePermissions,
	)
	if err != nil {
		return nil, err
	}
	GlobalLogFile = logFile

	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(logFile),
		level,
	), nil
}

func createBufferCore(level zapcore.Level) zapcore.Core {
	return zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(&GlobalLoggedBuffer),
		level,
	)
}
