package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file if one exists next to the binary.

func LoadEnv() {
	err := godotenv.Load()

	if err != nil {
		Logger.Debug("No .env file found, using environment variables:", err)
	}
}

// APIURL returns the base URL of the tutor service.
func APIURL() string {
	if url := os.Getenv("SCORE_API_URL"); url != "" {
		return url
	}
	return "http://localhost:8000"
}
