// logger/logger.go
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a level name ("debug", "info", "warn"/"warning", "error") to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
}

// sink pairs the console (colored) and file (plain) loggers of one level.
type sink struct {
	console *log.Logger
	file    *log.Logger
}

type Logger struct {
	sinks         [ERROR + 1]sink
	file          *os.File
	consoleOutput io.Writer
	fileOutput    io.Writer
	minLevel      LogLevel
}

var (
	defaultLogger *Logger
	once          sync.Once
	// mu serialises configuration changes and every write, so lines coming
	// from concurrent workers never interleave.
	mu sync.Mutex
)

// ensureInitialized creates a default logger if one doesn't exist
func ensureInitialized() {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		if defaultLogger == nil {
			defaultLogger = &Logger{
				consoleOutput: os.Stdout,
				minLevel:      INFO,
			}
			defaultLogger.setupLoggers()
		}
	})
}

// Init initializes the logger with optional file and console output
// If filename is empty, logs only to console
// If console is false, logs only to file
func Init(filename string, console bool) error {
	once.Do(func() {}) // an explicit Init wins over the lazy default
	mu.Lock()
	defer mu.Unlock()

	level := INFO
	if defaultLogger != nil {
		level = defaultLogger.minLevel
		if defaultLogger.file != nil {
			defaultLogger.file.Close()
		}
	}

	l := &Logger{minLevel: level}

	if filename != "" {
		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		l.fileOutput = file
	}

	if console {
		l.consoleOutput = os.Stdout
	}

	if l.fileOutput == nil && l.consoleOutput == nil {
		return fmt.Errorf("no output destination specified")
	}

	l.setupLoggers()
	defaultLogger = l
	return nil
}

// SetOutput routes all levels to w without colors. Mainly for tests.
func SetOutput(w io.Writer) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger.file != nil {
		defaultLogger.file.Close()
		defaultLogger.file = nil
	}
	defaultLogger.consoleOutput = nil
	defaultLogger.fileOutput = w
	defaultLogger.setupLoggers()
}

// SetLevel sets the minimum log level (DEBUG, INFO, WARN, ERROR)
// Messages below this level will not be logged
func SetLevel(level LogLevel) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.minLevel = level
}

// Level returns the current minimum level.
func Level() LogLevel {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger.minLevel
}

func (l *Logger) setupLoggers() {
	flags := log.Ldate | log.Ltime | log.Lshortfile

	prefixes := [...]struct{ color, tag string }{
		DEBUG: {colorGray, "[DEBUG] "},
		INFO:  {colorReset, "[INFO]  "},
		WARN:  {colorYellow, "[WARN]  "},
		ERROR: {colorRed, "[ERROR] "},
	}

	for lvl, p := range prefixes {
		var s sink
		if l.consoleOutput != nil {
			s.console = log.New(l.consoleOutput, p.color+p.tag+colorReset, flags)
		}
		if l.fileOutput != nil {
			s.file = log.New(l.fileOutput, p.tag, flags)
		}
		l.sinks[lvl] = s
	}
}

// Close closes the log file if one is open
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil && defaultLogger.file != nil {
		defaultLogger.file.Close()
		defaultLogger.file = nil
		defaultLogger.fileOutput = nil
		defaultLogger.setupLoggers()
	}
}

func (l *Logger) output(level LogLevel, msg string) {
	if level < l.minLevel {
		return
	}
	s := l.sinks[level]
	if s.console != nil {
		s.console.Output(4, msg)
	}
	if s.file != nil {
		s.file.Output(4, msg)
	}
}

func write(level LogLevel, msg string) {
	ensureInitialized()
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.output(level, msg)
}

// Debug logs a debug message
func Debug(v ...interface{}) { write(DEBUG, fmt.Sprint(v...)) }

// Debugf logs a formatted debug message
func Debugf(format string, v ...interface{}) { write(DEBUG, fmt.Sprintf(format, v...)) }

// Info logs an info message
func Info(v ...interface{}) { write(INFO, fmt.Sprint(v...)) }

// Infof logs a formatted info message
func Infof(format string, v ...interface{}) { write(INFO, fmt.Sprintf(format, v...)) }

// Warn logs a warning message
func Warn(v ...interface{}) { write(WARN, fmt.Sprint(v...)) }

// Warnf logs a formatted warning message
func Warnf(format string, v ...interface{}) { write(WARN, fmt.Sprintf(format, v...)) }

// Error logs an error message
func Error(v ...interface{}) { write(ERROR, fmt.Sprint(v...)) }

// Errorf logs a formatted error message
func Errorf(format string, v ...interface{}) { write(ERROR, fmt.Sprintf(format, v...)) }
