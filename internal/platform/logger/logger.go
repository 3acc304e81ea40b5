// Package logger provides structured logging for the game server.
// Every tick, answer, and teardown should be traceable through this.
package logger

import (
	"log"
	"os"
)

// Logger provides leveled logging with a shared prefix convention.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a new logger instance.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[GAME-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[GAME-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[GAME-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(format string, v ...any) {
	l.infoLogger.Printf(format, v...)
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, v ...any) {
	l.warnLogger.Printf(format, v...)
}

// Error logs error messages.
func (l *Logger) Error(format string, v ...any) {
	l.errorLogger.Printf(format, v...)
}

// Event logs a game event tagged with its session for later inspection.
func (l *Logger) Event(eventType string, sessionID string, details string) {
	l.infoLogger.Printf("[EVENT:%s] Session:%s | %s", eventType, sessionID, details)
}
