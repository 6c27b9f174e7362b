package config

import (
	"log"
	"os"
)

type Config struct {
	DatabaseURL   string
	JWTSecret     string
	Port          string
	CORSOrigin    string
	MigrationsDir string
	// BootstrapInvite, when set, guarantees an open invite with this
	// code exists at startup so the first account can register.
	BootstrapInvite string
}

func Load() Config {
	cfg := Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		Port:            os.Getenv("PORT"),
		CORSOrigin:      os.Getenv("CORS_ORIGIN"),
		MigrationsDir:   os.Getenv("MIGRATIONS_DIR"),
		BootstrapInvite: os.Getenv("BOOTSTRAP_INVITE_CODE"),
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	return cfg
}
