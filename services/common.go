package services

import (
	"encoding/base64"
	"fmt"
	"os"
)

func GetEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

// DecodeBase64EnvPrivateKey reads a PEM key stored base64 encoded in envKey.
func DecodeBase64EnvPrivateKey(envKey string) (string, error) {
	base64Key := os.Getenv(envKey)
	if base64Key == "" {
		return "", fmt.Errorf("%s environment variable is not set", envKey)
	}

	decodedBytes, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return "", fmt.Errorf("failed to decode base64 private key: %v", err)
	}
	return string(decodedBytes), nil
}
