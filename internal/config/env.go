package config

import (
	"os"
	"strings"
)

// Service holds process settings for the API server and CLI, read from the
// environment (a .env file is loaded by the commands beforehand).
type Service struct {
	Port            string
	Env             string
	StaticDir       string
	StoreDir        string
	StorePassphrase string
	CORSOrigins     []string
}

// IsProduction reports whether the service runs with production defaults.
func (s Service) IsProduction() bool { return s.Env == "production" }

// LoadService reads API_PORT, API_ENV (or SPV_ENV), STATIC_DIR, SPV_STORE_DIR,
// SPV_STORE_PASSPHRASE and CORS_ALLOWED_ORIGINS.
func LoadService() Service {
	s := Service{
		Port:            getenv("API_PORT", "8080"),
		Env:             getenv("API_ENV", getenv("SPV_ENV", "development")),
		StaticDir:       getenv("STATIC_DIR", "./web/dist"),
		StoreDir:        getenv("SPV_STORE_DIR", "scenarios"),
		StorePassphrase: os.Getenv("SPV_STORE_PASSPHRASE"),
	}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			s.CORSOrigins = append(s.CORSOrigins, o)
		}
	}
	if len(s.CORSOrigins) == 0 {
		s.CORSOrigins = []string{"*"}
	}
	return s
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
