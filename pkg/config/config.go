package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration
type Config struct {
	Environment string
	ServerPort  int
	LogLevel    string

	// Optional backing stores; in-memory fallbacks are used when empty.
	RedisURL    string
	PostgresURL string

	// Chain access
	RPCURL                  string
	ChainID                 int64
	BackendPrivateKey       string
	ContractRegistryAddress string
	LandlordVerifierAddress string
	TenantNFTAddress        string
	DepositVaultAddress     string

	SessionTTLHours             int
	JWTSecret                   string
	StrictSignatureVerification bool
	AggregateMaxFanout          int
	RateLimitPerMinute          int
	DepositWatchIntervalSeconds int
	CORSAllowedOrigins          []string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	chainID, err := strconv.ParseInt(getEnv("CHAIN_ID", "31337"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAIN_ID: %w", err)
	}

	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	maxFanout, err := strconv.Atoi(getEnv("AGGREGATE_MAX_FANOUT", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGGREGATE_MAX_FANOUT: %w", err)
	}

	rateLimit, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}

	watchInterval, err := strconv.Atoi(getEnv("DEPOSIT_WATCH_INTERVAL_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEPOSIT_WATCH_INTERVAL_SECONDS: %w", err)
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  port,
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		RedisURL:    os.Getenv("REDIS_URL"),
		PostgresURL: os.Getenv("POSTGRES_URL"),

		RPCURL:                  getEnv("RPC_URL", "http://localhost:8545"),
		ChainID:                 chainID,
		BackendPrivateKey:       os.Getenv("BACKEND_PRIVATE_KEY"),
		ContractRegistryAddress: os.Getenv("CONTRACT_REGISTRY_ADDRESS"),
		LandlordVerifierAddress: os.Getenv("LANDLORD_VERIFIER_ADDRESS"),
		TenantNFTAddress:        os.Getenv("TENANT_NFT_ADDRESS"),
		DepositVaultAddress:     os.Getenv("DEPOSIT_VAULT_ADDRESS"),

		SessionTTLHours:             sessionTTL,
		JWTSecret:                   os.Getenv("JWT_SECRET"),
		StrictSignatureVerification: parseBoolEnv("STRICT_SIGNATURE_VERIFICATION", true),
		AggregateMaxFanout:          maxFanout,
		RateLimitPerMinute:          rateLimit,
		DepositWatchIntervalSeconds: watchInterval,
		CORSAllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func parseCSVEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			trimmed := strings.TrimSpace(p)
			if trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
