package store

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	DataDir      string        `envconfig:"DATA_DIR" default:"."`
	StrategyName string        `envconfig:"STRATEGY_NAME" default:"MyStrategy"`
	LockTimeout  time.Duration `envconfig:"STORE_LOCK_TIMEOUT" default:"10s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
