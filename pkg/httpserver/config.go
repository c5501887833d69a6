package httpserver

import (
	"strconv"
	"time"
)

// Config holds HTTP server settings. PORT mirrors the conventional PaaS
// variable; when set it overrides the address.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8090"`
	Port            int           `env:"PORT" envDefault:"0"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// ListenAddr resolves the effective listen address.
func (c Config) ListenAddr() string {
	if c.Port > 0 {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Addr
}
