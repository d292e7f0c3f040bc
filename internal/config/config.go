package config

import (
	"os"
	"strconv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	LogLevel   string
	LogDev     bool

	// AdminWallet may withdraw accumulated protocol fees.
	AdminWallet string
	// CreationFee and DelistingFee are charged in the smallest settlement
	// unit. The browser client shows them as 0.0003 ETH.
	CreationFee  int64
	DelistingFee int64
	// AllowSelfTrade lets a user buy a card owned by another of their own
	// linked wallets.
	AllowSelfTrade bool
	// DefaultContentRef is attached to cards created without an upload.
	DefaultContentRef string
}

func Load() *Config {
	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "cardmarket"),
		DBPassword: getEnv("DB_PASSWORD", "cardmarket_dev_password"),
		DBName:     getEnv("DB_NAME", "cardmarket"),
		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogDev:     getEnv("LOG_DEV", "") == "1",

		AdminWallet:       getEnv("ADMIN_WALLET", "0x0000000000000000000000000000000000000001"),
		CreationFee:       getEnvInt64("CREATION_FEE", 300000000000000),
		DelistingFee:      getEnvInt64("DELISTING_FEE", 300000000000000),
		AllowSelfTrade:    getEnv("ALLOW_SELF_TRADE", "") == "1",
		DefaultContentRef: getEnv("DEFAULT_CONTENT_REF", "QmWfCGa8fu1qYgkZDbVtr3Eye1wsPTmHSPkJChXB23khK6"),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}

	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
