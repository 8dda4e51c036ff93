package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DevelopmentAPIURL = "http://localhost:5001"
	ProductionAPIURL  = "https://cv-analyser-f1yn.onrender.com"
)

// WebConfig configures the page server and the terminal client.
type WebConfig struct {
	Port          string
	Env           string
	APIURL        string
	APITimeout    time.Duration
	MaxUploadSize int
}

func LoadWeb() *WebConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}
	return webFromEnv()
}

// LoadWebQuiet is LoadWeb without the missing .env notice, for the CLI.
func LoadWebQuiet() *WebConfig {
	_ = godotenv.Load()
	return webFromEnv()
}

func webFromEnv() *WebConfig {
	env := getEnv("APP_ENV", "development")

	return &WebConfig{
		Port:          getEnv("PORT", "3000"),
		Env:           env,
		APIURL:        ResolveAPIURL(env, getEnv("API_URL", "")),
		APITimeout:    getEnvAsDuration("API_TIMEOUT", "60s"),
		MaxUploadSize: getEnvAsInt("MAX_UPLOAD_SIZE", 16*1024*1024),
	}
}

// ResolveAPIURL picks the backend base URL. A non-empty API_URL always wins;
// otherwise development talks to the local backend and every other
// environment to the deployed default.
func ResolveAPIURL(env, apiURL string) string {
	if apiURL = strings.TrimSpace(apiURL); apiURL != "" {
		return strings.TrimRight(apiURL, "/")
	}
	if strings.EqualFold(env, "development") {
		return DevelopmentAPIURL
	}
	return ProductionAPIURL
}
