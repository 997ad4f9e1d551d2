package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// APIKeyEnv is the variable holding the provider API key, in the environment or the project .env file.
const APIKeyEnv = "AITESTS_API_KEY"

const envFileName = ".env"

// EnvFilePath returns the .env file of the project rooted at rootDir.
func EnvFilePath(rootDir string) string {
	return filepath.Join(rootDir, envFileName)
}

func readEnvFile(rootDir string) (map[string]string, error) {
	values, err := godotenv.Read(EnvFilePath(rootDir))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", EnvFilePath(rootDir), err)
	}
	return values, nil
}

// GetAPIKey returns the key from the process environment, then from the project .env file.
func GetAPIKey(rootDir string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, nil
	}

	values, err := readEnvFile(rootDir)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(values[APIKeyEnv]), nil
}

// SetAPIKey stores key in the project .env file, keeping every other entry.
func SetAPIKey(rootDir string, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("API key must not be empty")
	}

	values, err := readEnvFile(rootDir)
	if err != nil {
		return err
	}
	values[APIKeyEnv] = key

	if err := godotenv.Write(values, EnvFilePath(rootDir)); err != nil {
		return fmt.Errorf("failed to write %s: %w", EnvFilePath(rootDir), err)
	}
	return nil
}

// DeleteAPIKey removes the key from the project .env file and reports whether one was stored.
func DeleteAPIKey(rootDir string) (bool, error) {
	values, err := readEnvFile(rootDir)
	if err != nil {
		return false, err
	}
	if _, ok := values[APIKeyEnv]; !ok {
		return false, nil
	}
	delete(values, APIKeyEnv)

	if err := godotenv.Write(values, EnvFilePath(rootDir)); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", EnvFilePath(rootDir), err)
	}
	return true, nil
}

// MaskAPIKey keeps the first and last four characters of key.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
