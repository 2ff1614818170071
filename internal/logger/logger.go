package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger writes engine activity to a per-day log file. Console output is
// reserved for startup/shutdown and trade events; everything else goes to
// the file so the terminal stays readable during long sessions.
type Logger struct {
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
	logDir  string
	logPath string
	debug   bool
}

// Level represents different types of log entries
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARN"
	LevelError   Level = "ERROR"
	LevelTrade   Level = "TRADE"
	LevelCycle   Level = "CYCLE"
	LevelDebug   Level = "DEBUG"
)

// New creates a logger writing to logs/engine_<date>.log.
func New(debug bool) (*Logger, error) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("engine_%s.log", time.Now().Format("2006-01-02"))
	logPath := filepath.Join(logDir, filename)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := &Logger{
		logFile: file,
		logger:  log.New(file, "", 0),
		logDir:  logDir,
		logPath: logPath,
		debug:   debug,
	}
	l.writeSessionHeader()
	return l, nil
}

func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
🚀 TRADING ENGINE SESSION STARTED
================================================================================
Started: %s
================================================================================
`, time.Now().Format("2006-01-02 15:04:05"))

	l.logger.Print(header)
}

// Log writes a formatted entry with the given level.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	l.logger.Printf("[%s] [%s] %s", timestamp, level, message)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, format, args...)
}

// Trade logs a trading action
func (l *Logger) Trade(format string, args ...interface{}) {
	l.Log(LevelTrade, format, args...)
}

// Cycle logs scheduler cycle activity
func (l *Logger) Cycle(format string, args ...interface{}) {
	l.Log(LevelCycle, format, args...)
}

// Debug logs only when debug mode is enabled
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.Log(LevelDebug, format, args...)
}

// LogOpen logs a position open with full trade parameters.
func (l *Logger) LogOpen(symbol, kind, direction string, entry, size, stop, takeProfit float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf(`
[%s] [TRADE] ==================== POSITION OPENED ====================
✅ %s %s %s
💰 Entry: $%.4f | Size: %.6f
🛑 Stop Loss: $%.4f | 🎯 Take Profit: $%.4f
===========================================================`,
		timestamp, symbol, kind, direction, entry, size, stop, takeProfit)
}

// LogClose logs a position close with realized P&L.
func (l *Logger) LogClose(symbol string, entry, exit, pnl float64, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf(`
[%s] [TRADE] ==================== POSITION CLOSED ====================
🚪 %s (%s)
📈 Entry: $%.4f -> Exit: $%.4f
💹 Realized P&L: $%.2f
===========================================================`,
		timestamp, symbol, reason, entry, exit, pnl)
}

// LogError logs an error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	return l.logPath
}

// Close writes the session footer and closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile == nil {
		return nil
	}
	l.logger.Printf(`
================================================================================
🛑 TRADING ENGINE SESSION ENDED
================================================================================
Ended: %s
================================================================================

`, time.Now().Format("2006-01-02 15:04:05"))
	return l.logFile.Close()
}
