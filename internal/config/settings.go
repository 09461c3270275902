package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultServerAddress = "127.0.0.1:7788"
	defaultAPITimeout    = 15 * time.Second
	defaultChatName      = "New Chat"
	defaultServerBackend = "bbolt"
	envPrefix            = "termchat"
)

var defaultPlaceholders = []string{
	"How does the `awk` command work?",
	"What are the flags of the `wc` command?",
	"How do I switch between users?",
}

type Config struct {
	API     APIConfig     `toml:"api"`
	Auth    AuthConfig    `toml:"auth"`
	Chats   ChatsConfig   `toml:"chats"`
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
}

type APIConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

type AuthConfig struct {
	TokenPath string `toml:"token_path"`
}

type ChatsConfig struct {
	DefaultName string `toml:"default_name"`
}

type ServerConfig struct {
	Address string   `toml:"address"`
	Backend string   `toml:"backend"`
	DBPath  string   `toml:"db_path"`
	Tokens  []string `toml:"tokens"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type UIConfig struct {
	SidebarOpen  *bool    `toml:"sidebar_open"`
	Placeholders []string `toml:"placeholders"`
}

// envOverrides holds the TERMCHAT_* variables that win over config.toml.
type envOverrides struct {
	APIURL     string `envconfig:"API_URL"`
	APITimeout string `envconfig:"API_TIMEOUT"`
	TokenPath  string `envconfig:"TOKEN_PATH"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	ServerAddr string `envconfig:"SERVER_ADDR"`
	DBPath     string `envconfig:"DB_PATH"`
}

func Default() Config {
	open := true
	return Config{
		API: APIConfig{
			BaseURL: "http://" + defaultServerAddress,
			Timeout: defaultAPITimeout.String(),
		},
		Chats: ChatsConfig{
			DefaultName: defaultChatName,
		},
		Server: ServerConfig{
			Address: defaultServerAddress,
			Backend: defaultServerBackend,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		UI: UIConfig{
			SidebarOpen:  &open,
			Placeholders: append([]string{}, defaultPlaceholders...),
		},
	}
}

// Load reads config.toml from the data dir and applies environment overrides.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	cfg, err := loadFromPath(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotenv loads a .env file from the working directory when present.
func LoadDotenv() {
	_ = godotenv.Load()
}

func (c Config) APIBaseURL() string {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return "http://" + c.ServerAddress()
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return strings.TrimRight(base, "/")
}

func (c Config) APITimeout() time.Duration {
	raw := strings.TrimSpace(c.API.Timeout)
	if raw == "" {
		return defaultAPITimeout
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultAPITimeout
	}
	return d
}

func (c Config) ResolveTokenPath() (string, error) {
	if path := strings.TrimSpace(c.Auth.TokenPath); path != "" {
		return resolveConfigPath(path)
	}
	return TokenPath()
}

func (c Config) DefaultChatName() string {
	name := strings.TrimSpace(c.Chats.DefaultName)
	if name == "" {
		return defaultChatName
	}
	return name
}

func (c Config) ServerAddress() string {
	addr := strings.TrimSpace(c.Server.Address)
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultServerAddress
	}
	return addr
}

func (c Config) ResolveDBPath() (string, error) {
	if path := strings.TrimSpace(c.Server.DBPath); path != "" {
		return resolveConfigPath(path)
	}
	return DBPath()
}

// StoreBackend is "bbolt" or "file"; anything else is rejected when the
// server opens its store.
func (c Config) StoreBackend() string {
	backend := strings.ToLower(strings.TrimSpace(c.Server.Backend))
	if backend == "" {
		return defaultServerBackend
	}
	return backend
}

func (c Config) ServerTokens() []string {
	return normalizedList(c.Server.Tokens)
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) SidebarOpen() bool {
	if c.UI.SidebarOpen == nil {
		return true
	}
	return *c.UI.SidebarOpen
}

func (c Config) Placeholders() []string {
	values := normalizedList(c.UI.Placeholders)
	if len(values) == 0 {
		return append([]string{}, defaultPlaceholders...)
	}
	return values
}

// Encode renders the config as TOML.
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	if v := strings.TrimSpace(env.APIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(env.APITimeout); v != "" {
		c.API.Timeout = v
	}
	if v := strings.TrimSpace(env.TokenPath); v != "" {
		c.Auth.TokenPath = v
	}
	if v := strings.TrimSpace(env.LogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(env.ServerAddr); v != "" {
		c.Server.Address = v
	}
	if v := strings.TrimSpace(env.DBPath); v != "" {
		c.Server.DBPath = v
	}
	return nil
}

func loadFromPath(path string) (Config, error) {
	cfg := Default()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func resolveConfigPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, path), nil
}

func normalizedList(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
