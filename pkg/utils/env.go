package utils

import (
	"os"
	"strconv"
	"time"
)

// Getenv retrieves the value of the environment variable named by the key.
// If the variable is not present or its value is empty, Getenv returns the fallback string.
func Getenv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// GetenvInt reads an integer environment variable, returning fallback when the
// variable is unset or not a valid integer.
func GetenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// GetenvFloat reads a float environment variable, returning fallback when the
// variable is unset or not a valid number.
func GetenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

// GetenvDuration reads a duration environment variable ("15m", "24h"),
// returning fallback when the variable is unset or malformed.
func GetenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
