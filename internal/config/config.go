package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	DBDSN      string
	LogFile    string
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using environment")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "asinity.db" // sqlite file in project root
	}
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		logFile = "./asinity.log"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-only-secret-change-me"
		log.Println("[config] JWT_SECRET not set, using insecure dev default")
	}

	cfg := Config{
		Port:       port,
		DBDSN:      dsn,
		LogFile:    logFile,
		JWTSecret:  secret,
		AccessTTL:  minutes("ACCESS_TTL_MIN", 60),
		RefreshTTL: minutes("REFRESH_TTL_MIN", 7*24*60),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s", cfg.Port, cfg.DBDSN, cfg.LogFile)
	return cfg
}

func minutes(name string, def int) time.Duration {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Duration(def) * time.Minute
}
