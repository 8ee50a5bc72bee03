package persistpager

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	_loggerMu sync.RWMutex
	_logger   logrus.FieldLogger = logrus.StandardLogger()
)

// SetLogger replaces the package logger used by providers built without WithLogger.
// A nil logger is ignored.
func SetLogger(logger logrus.FieldLogger) {
	if logger == nil {
		return
	}

	_loggerMu.Lock()
	defer _loggerMu.Unlock()
	_logger = logger
}

// Logger returns the package logger.
func Logger() logrus.FieldLogger {
	_loggerMu.RLock()
	defer _loggerMu.RUnlock()

	return _logger
}
