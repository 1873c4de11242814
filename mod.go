// Package opcore is the root of the operation execution core. It holds the
// global logger and the list of Prometheus collectors the components register
// so that an application can expose them.
package opcore

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var logout = zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: time.RFC3339,
}

// Logger is a globally available logger instance.
var Logger = zerolog.New(logout).
	With().Timestamp().Logger().
	With().Caller().Logger().
	Level(zerolog.InfoLevel)

// PromCollectors exposes the Prometheus collectors created by the packages of
// the module. An application is free to register them.
var PromCollectors []prometheus.Collector
