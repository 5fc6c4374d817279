package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel maps a case-insensitive level name to a LogLevel.
// Unknown or empty input falls back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

type Logger struct {
	level  LogLevel
	logger *log.Logger
}

func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stdout)
}

func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(w, "", 0),
	}
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(callerDepth, LevelDebug, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(callerDepth, LevelInfo, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(callerDepth, LevelWarn, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(callerDepth, LevelError, format, args...)
}

// Fatal logs and exits the process with status 1.
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(callerDepth, LevelFatal, format, args...)
	os.Exit(1)
}

// callerDepth skips log() and the exported method or package helper that
// called it. Helpers must call log() directly, not through a method.
const callerDepth = 2

func (l *Logger) log(depth int, level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	_, file, line, ok := runtime.Caller(depth)
	fileName := "unknown"
	if ok {
		fileName = filepath.Base(file)
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)

	l.logger.Println(fmt.Sprintf("[%s] [%s] [%s:%d] %s",
		timestamp,
		level,
		fileName,
		line,
		message))
}

// FileLogger writes to a size-rotated log file and, optionally, stdout.
type FileLogger struct {
	*Logger
	rotator *lumberjack.Logger
}

type FileOptions struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Tee        bool
}

func DefaultFileOptions() FileOptions {
	return FileOptions{
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
		Tee:        true,
	}
}

func NewFileLogger(logFile string, level LogLevel, opts FileOptions) (*FileLogger, error) {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	}

	var w io.Writer = rotator
	if opts.Tee {
		w = io.MultiWriter(os.Stdout, rotator)
	}

	return &FileLogger{
		Logger:  NewLoggerWithWriter(level, w),
		rotator: rotator,
	}, nil
}

func (l *FileLogger) Close() error {
	if l.rotator != nil {
		return l.rotator.Close()
	}
	return nil
}

var globalLogger *Logger

func InitLogger(level LogLevel) {
	globalLogger = NewLogger(level)
}

// SetLogger replaces the global logger, e.g. with a FileLogger's embedded Logger.
func SetLogger(l *Logger) {
	globalLogger = l
}

func GetLogger() *Logger {
	if globalLogger == nil {
		globalLogger = NewLogger(LevelInfo)
	}
	return globalLogger
}

func Debug(format string, args ...interface{}) {
	GetLogger().log(callerDepth, LevelDebug, format, args...)
}

func Info(format string, args ...interface{}) {
	GetLogger().log(callerDepth, LevelInfo, format, args...)
}

func Warn(format string, args ...interface{}) {
	GetLogger().log(callerDepth, LevelWarn, format, args...)
}

func Error(format string, args ...interface{}) {
	GetLogger().log(callerDepth, LevelError, format, args...)
}

func Fatal(format string, args ...interface{}) {
	GetLogger().log(callerDepth, LevelFatal, format, args...)
	os.Exit(1)
}
