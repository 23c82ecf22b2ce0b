package executor

import "sync"

var (
	logMu      sync.RWMutex
	logInfoFn  func(string)
	logWarnFn  func(string)
	logErrorFn func(string)
)

// SetLogFuncs wires structured logging into the package. All three funcs
// must be safe for concurrent use.
func SetLogFuncs(info, warn, errFn func(string)) {
	logMu.Lock()
	defer logMu.Unlock()
	logInfoFn = info
	logWarnFn = warn
	logErrorFn = errFn
}

func logInfo(msg string) {
	logMu.RLock()
	fn := logInfoFn
	logMu.RUnlock()
	if fn != nil {
		fn(msg)
	}
}

func logWarn(msg string) {
	logMu.RLock()
	fn := logWarnFn
	logMu.RUnlock()
	if fn != nil {
		fn(msg)
	}
}

func logError(msg string) {
	logMu.RLock()
	fn := logErrorFn
	logMu.RUnlock()
	if fn != nil {
		fn(msg)
	}
}
