package config

import (
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	// How long responses are remembered for requests with an Idempotency-Key header
	IdempotencyTTL time.Duration

	// Max requests per second handled by the REST API, 0 is no limit
	RateLimit int

	// Max allowed size of a request body
	MaxBodySize int64

	// Max difference between the X-Timestamp of a signed request and the server clock
	SignatureMaxAge time.Duration
}

func setServerDefaults() {
	viper.SetDefault("Server.IdempotencyTTL", "24h")
	viper.SetDefault("Server.RateLimit", "200")
	viper.SetDefault("Server.MaxBodySize", "65536")
	viper.SetDefault("Server.SignatureMaxAge", "5m")
}
