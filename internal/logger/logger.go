package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	Log  *zap.SugaredLogger
	once sync.Once
)

// Init configures the package-level sugared logger. Safe to call more than once.
func Init(development bool) error {
	var err error
	once.Do(func() {
		var l *zap.Logger
		if development {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			return
		}
		Log = l.Sugar()
	})
	return err
}

func init() {
	// Tests and early callers get a usable logger before main runs Init.
	Log = zap.NewNop().Sugar()
}
