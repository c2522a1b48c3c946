package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/drewfead/daybook/internal/planner"
)

const (
	configDirName      = "daybook"
	credentialsFile    = "credentials.json"
	credentialsPattern = "credentials-%s.json"
	tokenPattern       = "token-%s.json"
	cacheDBFile        = "events.db"
	dirPermMode        = 0o700
)

// GetConfigDir returns the configuration directory path (~/.config/daybook)
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", configDirName), nil
}

// GetCredentialsPath returns the path to the OAuth credentials file for the
// account. A per-account file (credentials-personal.json) wins when present;
// otherwise both accounts share credentials.json.
func GetCredentialsPath(account planner.AccountKind) (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	perAccount := filepath.Join(configDir, fmt.Sprintf(credentialsPattern, account))
	if _, err := os.Stat(perAccount); err == nil {
		return perAccount, nil
	}
	return filepath.Join(configDir, credentialsFile), nil
}

// GetTokenPath returns the path to the account's OAuth token file.
func GetTokenPath(account planner.AccountKind) (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, fmt.Sprintf(tokenPattern, account)), nil
}

// GetCacheDBPath returns the path of the persistent event cache database
// (~/.cache/daybook/events.db, or the platform equivalent).
func GetCacheDBPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(cacheDir, configDirName, cacheDBFile), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return ensureDir(configDir)
}

// EnsureCacheDir creates the cache database directory if it doesn't exist
func EnsureCacheDir() error {
	dbPath, err := GetCacheDBPath()
	if err != nil {
		return err
	}
	return ensureDir(filepath.Dir(dbPath))
}

func ensureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// Create directory with restricted permissions
		if err := os.MkdirAll(dir, dirPermMode); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
