package config

import "time"

type Servers struct {
	HTTPAddress     string        `env:"HTTP_ADDRESS" envDefault:":8080" validate:"required"`
	MetricsAddress  string        `env:"METRICS_ADDRESS" envDefault:":9090"`
	ProbeAddress    string        `env:"PROBE_ADDRESS" envDefault:":8081"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}
