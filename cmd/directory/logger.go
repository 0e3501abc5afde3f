package main

import (
	"github.com/0xsj/overwatch-pkg/log"
)

// kvLogger adapts log.Logger to the key/value Logger interfaces used by
// the bus middleware and adapters.
type kvLogger struct {
	logger log.Logger
}

func newKVLogger(logger log.Logger) *kvLogger {
	return &kvLogger{logger: logger}
}

func (l *kvLogger) Info(msg string, fields ...interface{}) {
	l.logger.Info(msg, toLogFields(fields)...)
}

func (l *kvLogger) Error(msg string, fields ...interface{}) {
	l.logger.Error(msg, toLogFields(fields)...)
}

func toLogFields(fields []interface{}) []log.Field {
	if len(fields) == 0 {
		return nil
	}

	result := make([]log.Field, 0, len(fields)/2)
	for i := 0; i < len(fields)-1; i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		result = append(result, log.Any(key, fields[i+1]))
	}
	return result
}
