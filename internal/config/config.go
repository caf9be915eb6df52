package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/moloudamini/chatbot/internal/session"
)

// Config aggregates every runtime setting of the widget service.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Chat    ChatConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	backend, err := loadBackendConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Backend: backend, Chat: chat}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// BackendConfig points at the remote chat backend the session relays to.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

func loadBackendConfig() (BackendConfig, error) {
	timeoutSeconds := 30
	if override, err := parseOptionalIntEnv("CHAT_BACKEND_TIMEOUT"); err != nil {
		return BackendConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return BackendConfig{}, fmt.Errorf("CHAT_BACKEND_TIMEOUT must be positive, got %d", *override)
		}
		timeoutSeconds = *override
	}

	return BackendConfig{
		BaseURL: getEnvOrDefault("CHAT_BACKEND_URL", "http://localhost:8000"),
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}, nil
}

// ChatConfig tunes the conversation session itself.
type ChatConfig struct {
	Greeting          string
	ReplyDelayFloor   time.Duration
	ReplyDelayPerChar time.Duration
}

func loadChatConfig() (ChatConfig, error) {
	floor, err := parseMillisEnv("CHAT_REPLY_DELAY_FLOOR_MS", 1000)
	if err != nil {
		return ChatConfig{}, err
	}

	perChar, err := parseMillisEnv("CHAT_REPLY_DELAY_PER_CHAR_MS", 50)
	if err != nil {
		return ChatConfig{}, err
	}

	return ChatConfig{
		Greeting:          getEnvOrDefault("CHAT_GREETING", session.DefaultGreeting),
		ReplyDelayFloor:   floor,
		ReplyDelayPerChar: perChar,
	}, nil
}

func parseMillisEnv(key string, defaultMillis int) (time.Duration, error) {
	millis := defaultMillis
	if override, err := parseOptionalIntEnv(key); err != nil {
		return 0, err
	} else if override != nil {
		if *override < 0 {
			return 0, fmt.Errorf("%s must not be negative, got %d", key, *override)
		}
		millis = *override
	}
	return time.Duration(millis) * time.Millisecond, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
