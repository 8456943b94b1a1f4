package tsencap

import "github.com/asticode/go-astikit"

// Package-level logger for non-fatal diagnostics. The library itself writes
// nothing to it; its only use is Errorf below. The error-reporting contract
// of Encapsulator never depends on this logger being set; callers that don't
// care can ignore it entirely.
var logger = astikit.AdaptStdLogger(nil)

// SetLogger replaces the package logger. Passing nil discards log output.
func SetLogger(l astikit.StdLogger) { logger = astikit.AdaptStdLogger(l) }

// Errorf logs a diagnostic through the package logger at error severity.
// Callers driving an Encapsulator typically call this with LastError after
// ProcessPacket returns false, the same way they'd surface it themselves.
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
