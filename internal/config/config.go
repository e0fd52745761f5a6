package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/points-pay/points_pay/internal/otp"
)

const (
	defaultAppName        = "PointsPay"
	defaultAppEnv         = "development"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultDataDir        = "data"
	defaultShutdownDelay  = 10 * time.Second
	defaultIdempotencyTTL = 24 * time.Hour
	otpTTLSecondsEnvVar   = "OTP_TTL_SECONDS"
	otpTTLDurEnvVar       = "OTP_TTL"
	idemTTLSecondsEnvVar  = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar      = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurEnvVar     = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DataDir        string
	RedisURL       string
	OTPTTL         time.Duration
	ShutdownPeriod time.Duration
	IdempotencyTTL time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DataDir:        getEnv("DATA_DIR", defaultDataDir),
		RedisURL:       os.Getenv("REDIS_URL"),
		OTPTTL:         otp.DefaultTTL,
		ShutdownPeriod: defaultShutdownDelay,
		IdempotencyTTL: defaultIdempotencyTTL,
	}

	var err error
	cfg.OTPTTL, err = durationFromEnv(otpTTLSecondsEnvVar, otpTTLDurEnvVar, cfg.OTPTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurEnvVar, cfg.ShutdownPeriod)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL, err = durationFromEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, cfg.IdempotencyTTL)
	if err != nil {
		return Config{}, err
	}

	if cfg.OTPTTL <= 0 {
		return Config{}, fmt.Errorf("otp ttl must be positive")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationFromEnv(secondsVar, durationVar string, fallback time.Duration) (time.Duration, error) {
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationVar, err)
		}
		return d, nil
	}
	return fallback, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
