// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
//
// Each subsystem declares its own Config struct using `env` tags:
//
//	type Config struct {
//		Addr    string        `env:"HTTP_ADDR" envDefault:":8090"`
//		Timeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
//		Secret  string        `env:"JWT_SECRET,required"`
//	}
//
//	cfg := config.MustLoad[Config]()
//
// The .env file is loaded at most once per process; a missing file is not
// an error.
package config
