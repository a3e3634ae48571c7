package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime parameter of the server.
type Config struct {
	ServerPort     int
	BotMoveDelay   time.Duration
	InterGamePause time.Duration
	BotLevel       string
	AutoReady      bool
}

// Load reads configuration from environment variables, optionally
// seeded from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	botDelayMs, err := intEnv("BOT_MOVE_DELAY_MS", 200)
	if err != nil {
		return nil, err
	}
	if botDelayMs < 0 {
		botDelayMs = 0
	}

	pauseMs, err := intEnv("INTER_GAME_PAUSE_MS", 1500)
	if err != nil {
		return nil, err
	}
	if pauseMs < 0 {
		pauseMs = 0
	}

	level := os.Getenv("BOT_LEVEL")
	if level == "" {
		level = "advanced"
	}
	if level != "basic" && level != "advanced" {
		return nil, fmt.Errorf("BOT_LEVEL must be basic or advanced, got %q", level)
	}

	autoReady := false
	if v := os.Getenv("AUTO_READY"); v != "" {
		autoReady, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_READY value %q: %w", v, err)
		}
	}

	return &Config{
		ServerPort:     port,
		BotMoveDelay:   time.Duration(botDelayMs) * time.Millisecond,
		InterGamePause: time.Duration(pauseMs) * time.Millisecond,
		BotLevel:       level,
		AutoReady:      autoReady,
	}, nil
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}
