package monitor

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	UpdateInterval    time.Duration `envconfig:"PRICE_UPDATE_INTERVAL" default:"10s"`
	AutoExitOnTrigger bool          `envconfig:"AUTO_EXIT_ON_TRIGGER" default:"true"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
