package mongo

import "time"

// Config holds MongoDB connection settings.
type Config struct {
	ConnectionURL   string        `env:"MONGO_URL,required"`                         // Connection string, mongodb:// or mongodb+srv://.
	Database        string        `env:"MONGO_DATABASE" envDefault:"contentforge"`   // Database name.
	ConnectTimeout  time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`     // Timeout for the initial connection.
	MaxPoolSize     uint64        `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`       // Maximum connections in the pool.
	MaxConnIdleTime time.Duration `env:"MONGO_MAX_CONN_IDLE_TIME" envDefault:"300s"` // Maximum idle time for a pooled connection.
	RetryAttempts   int           `env:"MONGO_RETRY_ATTEMPTS" envDefault:"3"`        // Connection attempts before giving up.
	RetryInterval   time.Duration `env:"MONGO_RETRY_INTERVAL" envDefault:"5s"`       // Wait between connection attempts.
}
