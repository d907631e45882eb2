package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger 封装logrus，统一结构化日志出口
type Logger struct {
	entry *logrus.Logger
	file  io.Closer
}

// Config is the subset of application configuration the logger needs. Kept
// local to avoid an import cycle with pkg/config.
type Config struct {
	Level    string
	Format   string
	Output   string
	Filename string
}

var (
	globalMu     sync.RWMutex
	globalLogger = newDefault()
)

func newDefault() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: l}
}

// NewLogger 根据配置构造日志器
func NewLogger(cfg Config) *Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := &Logger{entry: l}
	switch strings.ToLower(cfg.Output) {
	case "file":
		if cfg.Filename != "" {
			if f, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				l.SetOutput(f)
				out.file = f
				break
			}
		}
		l.SetOutput(os.Stdout)
	case "stderr":
		l.SetOutput(os.Stderr)
	default:
		l.SetOutput(os.Stdout)
	}

	return out
}

// SetGlobalLogger 设置全局日志器
func SetGlobalLogger(l *Logger) {
	if l == nil {
		return
	}
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Close flushes and releases the log sink when writing to a file.
func (l *Logger) Close() {
	if l.file != nil {
		_ = l.file.Close()
	}
}

func global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// Debug 结构化调试日志
func Debug(msg string, fields map[string]interface{}) {
	global().entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

// Info 结构化信息日志
func Info(msg string, fields map[string]interface{}) {
	global().entry.WithFields(logrus.Fields(fields)).Info(msg)
}

// Warn 结构化警告日志
func Warn(msg string, fields map[string]interface{}) {
	global().entry.WithFields(logrus.Fields(fields)).Warn(msg)
}

// Error 结构化错误日志
func Error(msg string, fields map[string]interface{}) {
	global().entry.WithFields(logrus.Fields(fields)).Error(msg)
}

func Debugf(format string, args ...interface{}) { global().entry.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { global().entry.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { global().entry.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { global().entry.Errorf(format, args...) }

// Fatal 记录后退出进程
func Fatal(msg string) {
	global().entry.Fatal(msg)
}
