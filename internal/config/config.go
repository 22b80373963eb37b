package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/xhit/go-str2duration/v2"
)

const (
	DefaultPort           = 10000
	DefaultRequestTimeout = 30 * time.Second
	DefaultLogLevel       = "info"
)

// Config читается один раз при старте и дальше передаётся по значению.
type Config struct {
	TelegramToken    string
	ChannelID        string
	CMCAPIKey        string
	Port             int
	Debug            bool
	LogLevel         string
	RequestTimeout   time.Duration
	TelegramEndpoint string
	CMCBaseURL       string
	EnvFileLoaded    bool
}

// New loads .env (if any) and then reads the process environment.
func New() (Config, error) {
	// Отсутствие .env не ошибка: на хостинге переменные задаются окружением
	envErr := godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.EnvFileLoaded = envErr == nil
	return cfg, nil
}

// FromEnv builds a Config from environment variables only.
// Missing credentials are not an error here: the stages that need them report it.
func FromEnv() (Config, error) {
	cfg := Config{
		TelegramToken:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChannelID:        os.Getenv("CHANNEL_ID"),
		CMCAPIKey:        os.Getenv("CMC_API_KEY"),
		Port:             DefaultPort,
		LogLevel:         getEnv("LOG_LEVEL", DefaultLogLevel),
		RequestTimeout:   DefaultRequestTimeout,
		TelegramEndpoint: os.Getenv("TELEGRAM_API_ENDPOINT"),
		CMCBaseURL:       os.Getenv("CMC_API_URL"),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		if port < 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %d: out of range", port)
		}
		cfg.Port = port
	}

	if debugStr := os.Getenv("BOT_DEBUG"); debugStr != "" {
		debug, err := strconv.ParseBool(debugStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid BOT_DEBUG %q: %w", debugStr, err)
		}
		cfg.Debug = debug
	}

	if timeoutStr := os.Getenv("REQUEST_TIMEOUT"); timeoutStr != "" {
		timeout, err := str2duration.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", timeoutStr, err)
		}
		if timeout < 0 {
			return Config{}, fmt.Errorf("invalid REQUEST_TIMEOUT %q: negative", timeoutStr)
		}
		cfg.RequestTimeout = timeout
	}

	return cfg, nil
}

// Addr is the listen address for the liveness server.
func (c Config) Addr() string {
	return net.JoinHostPort("0.0.0.0", strconv.Itoa(c.Port))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
