package config

import "time"

// Redis backs the run lock and the task queue. Without an address runs are
// started in process and only guarded by the local runner.
type Redis struct {
	Address  string        `env:"REDIS_ADDRESS"`
	Username string        `env:"REDIS_USERNAME"`
	Password string        `env:"REDIS_PASSWORD" json:"-"`
	DB       int           `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	LockKey  string        `env:"REDIS_LOCK_KEY" envDefault:"automarket:run-lock" validate:"required"`
	LockTTL  time.Duration `env:"REDIS_LOCK_TTL" envDefault:"30m" validate:"gt=0"`
}

func (r Redis) Enabled() bool {
	return r.Address != ""
}
