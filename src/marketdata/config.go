package marketdata

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TargetMarket   string `envconfig:"TARGET_MARKET" default:"stock"`
	QuoteCurrency  string `envconfig:"QUOTE_CURRENCY" default:"USDT"`
	LookbackDays   int    `envconfig:"LOOKBACK_DAYS" default:"1"`
	SampleInterval string `envconfig:"SAMPLE_INTERVAL" default:"1m"`
	CandleLimit    int    `envconfig:"CANDLE_LIMIT" default:"500"`
	YahooBaseURL   string `envconfig:"YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
