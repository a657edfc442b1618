package logger

import (
	"go.uber.org/zap"
)

// Log is the process-wide logger. It starts as a no-op so library code can
// log unconditionally; binaries call Init to turn it on.
var Log = zap.NewNop()

// Init replaces the no-op logger with a real one. debug selects the
// development config (console encoder, Debug level).
func Init(debug bool) error {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Sync flushes buffered log entries. Call before process exit.
func Sync() {
	_ = Log.Sync()
}
