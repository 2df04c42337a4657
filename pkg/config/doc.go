// Package config loads environment variables into typed configuration
// structs. Every component of the gateway declares its own Config struct
// with `env` tags next to the code that consumes it; this package only owns
// the parsing and the optional .env file.
//
// # Usage
//
//	type Config struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    // missing required variables, malformed values
//	}
//
// MustLoad panics instead of returning an error and is meant for main().
package config
