package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	instance *zap.SugaredLogger
	once     sync.Once
)

type Config struct {
	Development bool
	Level       string // debug, info, warn, error; empty keeps the preset
	Encoding    string // json or console; empty keeps the preset
}

// New builds the process-wide logger. The first call wins; later calls return
// the same instance regardless of config.
func New(cfg Config) (*zap.SugaredLogger, error) {
	var err error
	once.Do(func() {
		zcfg := zap.NewProductionConfig()
		if cfg.Development {
			zcfg = zap.NewDevelopmentConfig()
		}
		if cfg.Encoding != "" {
			zcfg.Encoding = cfg.Encoding
		}
		if cfg.Level != "" {
			var lvl zapcore.Level
			if err = lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
				return
			}
			zcfg.Level = zap.NewAtomicLevelAt(lvl)
		}
		var l *zap.Logger
		l, err = zcfg.Build()
		if err != nil {
			return
		}
		instance = l.Sugar()
	})
	return instance, err
}
