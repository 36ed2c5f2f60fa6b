package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel is a logging category that can be switched on independently.
type LogLevel int

const (
	LogLevelQuery LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelQuery:
		return "query"
	case LogLevelInfo:
		return "info"
	case LogLevelWarn:
		return "warn"
	case LogLevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Logger routes connector logs to logrus. Stdout belongs to the protocol
// stream, so the default writer is stderr.
type Logger struct {
	levels map[LogLevel]bool
	entry  *logrus.Entry
}

var defaultLogger *Logger

func init() {
	defaultLogger = NewLogger([]string{"info", "warn", "error"}, os.Stderr)
}

func newLogrus(writer io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(writer)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return l
}

// NewLogger creates a logger that emits only the named levels
// ("query", "info", "warn"/"warning", "error").
func NewLogger(levels []string, writer io.Writer) *Logger {
	logger := &Logger{
		levels: make(map[LogLevel]bool),
		entry:  logrus.NewEntry(newLogrus(writer)),
	}

	for _, level := range levels {
		switch strings.ToLower(strings.TrimSpace(level)) {
		case "query":
			logger.levels[LogLevelQuery] = true
		case "info":
			logger.levels[LogLevelInfo] = true
		case "warn", "warning":
			logger.levels[LogLevelWarn] = true
		case "error":
			logger.levels[LogLevelError] = true
		}
	}

	return logger
}

// WithField returns a logger that attaches key=value to every entry.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{levels: l.levels, entry: l.entry.WithField(key, value)}
}

// Enabled reports whether a level is switched on.
func (l *Logger) Enabled(level LogLevel) bool {
	return l.levels[level]
}

// Query logs a SQL statement with its arguments inlined and redacted.
func (l *Logger) Query(query string, args []interface{}, duration time.Duration) {
	if !l.levels[LogLevelQuery] {
		return
	}
	l.entry.WithField("took", duration).Debug(formatQuery(query, args))
}

func (l *Logger) Info(format string, args ...interface{}) {
	if !l.levels[LogLevelInfo] {
		return
	}
	l.entry.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if !l.levels[LogLevelWarn] {
		return
	}
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	if !l.levels[LogLevelError] {
		return
	}
	l.entry.Errorf(format, args...)
}

// formatQuery substitutes $n or ? placeholders with their formatted arguments.
func formatQuery(query string, args []interface{}) string {
	if len(args) == 0 {
		return query
	}

	formatted := query
	argIndex := 0

	if strings.Contains(query, "$") {
		for i := 1; argIndex < len(args) && i <= len(args); i++ {
			placeholder := fmt.Sprintf("$%d", i)
			if strings.Contains(formatted, placeholder) {
				formatted = strings.Replace(formatted, placeholder, formatArg(args[argIndex]), 1)
				argIndex++
			}
		}
		return formatted
	}

	for argIndex < len(args) && strings.Contains(formatted, "?") {
		formatted = strings.Replace(formatted, "?", formatArg(args[argIndex]), 1)
		argIndex++
	}
	return formatted
}

// formatArg renders one argument, redacting anything that looks like a secret.
func formatArg(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		if isSensitiveData(v) {
			return "'***REDACTED***'"
		}
		if len(v) > 100 {
			return fmt.Sprintf("'%s...' (truncated)", v[:100])
		}
		return fmt.Sprintf("'%s'", v)
	case []byte:
		if len(v) > 0 {
			return "'***REDACTED***'"
		}
		return "''"
	case nil:
		return "NULL"
	default:
		str := fmt.Sprintf("%v", v)
		if isSensitiveData(str) {
			return "***REDACTED***"
		}
		return str
	}
}

func isSensitiveData(s string) bool {
	s = strings.ToLower(s)
	sensitiveKeywords := []string{
		"password", "passwd", "pwd",
		"secret", "token", "api_key", "apikey",
		"access_token", "refresh_token", "authorization",
		"credential", "private_key",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}

	// JWT, GitHub and Slack tokens
	if len(s) > 20 && (strings.HasPrefix(s, "eyj") ||
		strings.HasPrefix(s, "ghp_") ||
		strings.HasPrefix(s, "xoxb-") ||
		strings.HasPrefix(s, "xoxp-")) {
		return true
	}

	return false
}

func Query(query string, args []interface{}, duration time.Duration) {
	defaultLogger.Query(query, args, duration)
}

func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// SetDefaultLogger replaces the package-level logger.
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetDefaultLogger returns the package-level logger.
func GetDefaultLogger() *Logger {
	return defaultLogger
}

// SetLogLevels reconfigures the default logger, keeping it on stderr.
func SetLogLevels(levels []string) {
	defaultLogger = NewLogger(levels, os.Stderr)
}

// SetLogWriter redirects the default logger, keeping its levels.
func SetLogWriter(writer io.Writer) {
	levels := defaultLogger.levels
	defaultLogger = &Logger{levels: levels, entry: logrus.NewEntry(newLogrus(writer))}
}

// LevelsFromEnv turns LOG_LEVEL (a logrus level name) into logger levels.
// Unknown or empty values fall back to info.
func LevelsFromEnv() []string {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	switch {
	case level >= logrus.DebugLevel:
		return []string{"query", "info", "warn", "error"}
	case level >= logrus.InfoLevel:
		return []string{"info", "warn", "error"}
	case level >= logrus.WarnLevel:
		return []string{"warn", "error"}
	default:
		return []string{"error"}
	}
}
