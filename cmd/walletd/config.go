package main

import (
	"os"
	"strconv"
)

type Config struct {
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	WalletDBPath    string
	AuditDBPath     string
	PolicyPath      string
}

func LoadConfig() Config {
	return Config{
		Port:            getEnvInt("PORT", 8080),
		ReadTimeout:     getEnvInt("READ_TIMEOUT", 30),
		WriteTimeout:    getEnvInt("WRITE_TIMEOUT", 30),
		ShutdownTimeout: getEnvInt("SHUTDOWN_TIMEOUT", 10),
		WalletDBPath:    getEnv("WALLET_DB_PATH", "./db/wallet.db"),
		AuditDBPath:     getEnv("AUDIT_DB_PATH", "./db/audit.db"),
		PolicyPath:      getEnv("POLICY_PATH", "./policies/policies.yaml"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}
