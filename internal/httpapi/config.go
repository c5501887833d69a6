package httpapi

// Config holds transport settings.
type Config struct {
	// Env gates stack traces in error responses: anything but
	// "production" includes them.
	Env string `env:"APP_ENV" envDefault:"development"`

	// CORSOrigins lists browser origins allowed to call the API with
	// credentials.
	CORSOrigins []string `env:"FRONTEND_URL" envSeparator:","`
}

// IsProduction reports whether the API runs with production hardening.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}
