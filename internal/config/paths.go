package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".termchat"

// DataDir returns the base data directory for termchat.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// TokenPath returns the path to the signed-in user's token file.
func TokenPath() (string, error) {
	return dataFile("token")
}

// ConfigPath returns the path to the TOML configuration file.
func ConfigPath() (string, error) {
	return dataFile("config.toml")
}

// DBPath returns the path to the development server database.
func DBPath() (string, error) {
	return dataFile("chats.db")
}

// ServerTokenPath returns the path to the token the development server accepts.
func ServerTokenPath() (string, error) {
	return dataFile("server_token")
}

// UILogPath returns the log file the terminal UI writes to.
func UILogPath() (string, error) {
	return dataFile("ui.log")
}

func dataFile(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}
