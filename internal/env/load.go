package env

import (
	"github.com/joho/godotenv"
	"log"
	"os"
	"strings"
)

// LoadEnv loads .env from the working directory. A missing file is not an
// error; the environment is used as is.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Could not load .env file: %v", err)
	}
}

func MustGetEnv(key string) string {
	val, ok := os.LookupEnv(key)
	if !ok {
		log.Fatalf("Environment variable %s not set", key)
	}
	return val
}

// GetEnv returns the value of key, or fallback when it is unset or blank.
func GetEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && strings.TrimSpace(val) != "" {
		return val
	}
	return fallback
}

// Enabled reports whether key is set to a non-blank value.
func Enabled(key string) bool {
	return GetEnv(key, "") != ""
}
