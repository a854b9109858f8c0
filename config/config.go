package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DatadirKey is the local data directory where the transaction record store lives
	DatadirKey = "DATA_DIR_PATH"
	// DefaultFiatKey is the fiat currency used to display exchange values when the user has not selected one
	DefaultFiatKey = "DEFAULT_FIAT"
	// QuoteRefreshIntervalKey is the interval in seconds between two refreshes of a transfer quote
	QuoteRefreshIntervalKey = "QUOTE_REFRESH_INTERVAL"
	// QuoteRequestsPerSecondKey caps the number of quote requests per second towards the quote service
	QuoteRequestsPerSecondKey = "QUOTE_REQUESTS_PER_SECOND"
	// RateCacheTTLKey is the time to live in seconds of a cached exchange rate
	RateCacheTTLKey = "RATE_CACHE_TTL"
	// IdentityBreakerTimeoutKey is the open-state duration in seconds of the identity service circuit breaker
	IdentityBreakerTimeoutKey = "IDENTITY_BREAKER_TIMEOUT"
	// IdentityBreakerMaxFailuresKey is the number of consecutive identity service failures that trip the breaker
	IdentityBreakerMaxFailuresKey = "IDENTITY_BREAKER_MAX_FAILURES"
	// LargeTxFiatThresholdKey is the fiat amount, in major units, above which a large-transaction warning is shown
	LargeTxFiatThresholdKey = "LARGE_TX_FIAT_THRESHOLD"

	DbLocation = "db"
)

var vip *viper.Viper

func init() {
	vip = viper.New()
	vip.SetEnvPrefix("COINCORE")
	vip.AutomaticEnv()

	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DatadirKey, "coincore-data")
	vip.SetDefault(DefaultFiatKey, "USD")
	vip.SetDefault(QuoteRefreshIntervalKey, 30)
	vip.SetDefault(QuoteRequestsPerSecondKey, 2)
	vip.SetDefault(RateCacheTTLKey, 60)
	vip.SetDefault(IdentityBreakerTimeoutKey, 30)
	vip.SetDefault(IdentityBreakerMaxFailuresKey, 5)
	vip.SetDefault(LargeTxFiatThresholdKey, 10000)

	if err := validate(); err != nil {
		log.WithError(err).Panic("error while validating config")
	}
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// GetString returns the value of the key as string
func GetString(key string) string {
	return vip.GetString(key)
}

// GetInt returns the value of the key as int
func GetInt(key string) int {
	return vip.GetInt(key)
}

// GetFloat returns the value of the key as float64
func GetFloat(key string) float64 {
	return vip.GetFloat64(key)
}

// GetDuration returns the value of the key, read as seconds, as a Duration
func GetDuration(key string) time.Duration {
	return time.Duration(vip.GetInt(key)) * time.Second
}

func validate() error {
	if vip.GetInt(QuoteRefreshIntervalKey) <= 0 {
		return fmt.Errorf("%s must be a positive number of seconds", QuoteRefreshIntervalKey)
	}
	if vip.GetInt(QuoteRequestsPerSecondKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", QuoteRequestsPerSecondKey)
	}
	if vip.GetInt(RateCacheTTLKey) <= 0 {
		return fmt.Errorf("%s must be a positive number of seconds", RateCacheTTLKey)
	}
	if len(vip.GetString(DefaultFiatKey)) != 3 {
		return fmt.Errorf("%s must be a 3-letter currency code", DefaultFiatKey)
	}
	return nil
}
