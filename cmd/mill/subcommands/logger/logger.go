// Package logger hands out loggers for subcommand tasks.
package logger

import (
	"io"
	"log"
)

// Null is a logger which swallows everything. Tests pass it to tasks
// whose logging is not under inspection.
func Null() *log.Logger {
	return log.New(io.Discard, "", log.LstdFlags)
}

// Default is the process-wide standard logger.
func Default() *log.Logger {
	return log.Default()
}
