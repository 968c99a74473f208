// Package config loads typed configuration from environment variables.
//
// Structs declare their variables with github.com/caarlos0/env tags and Load
// fills them, optionally after reading dotenv files with github.com/joho/godotenv.
// Each package that needs settings owns its own Config struct and main
// composes them:
//
//	type appConfig struct {
//		HTTP httpserver.Config
//		PG   pg.Config
//	}
//
//	cfg := config.MustLoad[appConfig]()
package config
