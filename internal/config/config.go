package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the matching server.
type Config struct {
	Port            int
	LogLevel        string
	FeedBuffer      int
	FeedHistory     int
	StatsWindow     time.Duration
	JournalPath     string // empty disables the on-disk trade journal
	KafkaBrokers    []string
	KafkaTopic      string
	KafkaTimeout    time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// KafkaEnabled reports whether trades should be published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaTopic != ""
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	port, err := getInt("PORT", 8081)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	feedBuffer, err := getInt("FEED_BUFFER", 1024)
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_BUFFER: %w", err)
	}
	if feedBuffer <= 0 {
		return nil, fmt.Errorf("invalid FEED_BUFFER: must be positive")
	}

	feedHistory, err := getInt("FEED_HISTORY", 100)
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_HISTORY: %w", err)
	}
	if feedHistory <= 0 {
		return nil, fmt.Errorf("invalid FEED_HISTORY: must be positive")
	}

	statsWindow, err := getDuration("STATS_WINDOW", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_WINDOW: %w", err)
	}

	kafkaTimeout, err := getDuration("KAFKA_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid KAFKA_TIMEOUT: %w", err)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Port:            port,
		LogLevel:        logLevel,
		FeedBuffer:      feedBuffer,
		FeedHistory:     feedHistory,
		StatsWindow:     statsWindow,
		JournalPath:     getStr("JOURNAL_PATH", ""),
		KafkaBrokers:    getList("KAFKA_BROKERS"),
		KafkaTopic:      getStr("KAFKA_TOPIC", ""),
		KafkaTimeout:    kafkaTimeout,
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		IdleTimeout:     idleTimeout,
		ShutdownTimeout: shutdownTimeout,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
