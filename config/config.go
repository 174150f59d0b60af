package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Database   DatabaseConfig
	Auth       AuthConfig
	AI         AIConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// AuthConfig carries the token-signing material. The secret is injected
// here at process startup and passed into the token service; it is never
// a literal in code.
type AuthConfig struct {
	JWTSecret string
}

// AIConfig selects and configures the generative-text backend.
type AIConfig struct {
	// Backend is "workers" (Cloudflare Workers AI) or "openai"
	// (any OpenAI-compatible chat completions endpoint).
	Backend string

	Model    string
	APIToken string

	// AccountID is required by the workers backend.
	AccountID string

	// BaseURL overrides the backend's default endpoint.
	BaseURL string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "llmchat"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "llmchat_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	aiConfig := AIConfig{
		Backend:   getEnv("AI_BACKEND", "workers"),
		Model:     getEnv("AI_MODEL", "@cf/meta/llama-3.1-8b-instruct-fp8"),
		APIToken:  getEnv("AI_API_TOKEN", ""),
		AccountID: getEnv("AI_ACCOUNT_ID", ""),
		BaseURL:   getEnv("AI_BASE_URL", ""),
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 8080),
		Database:   dbConfig,
		Auth:       AuthConfig{JWTSecret: getEnv("JWT_SECRET", "")},
		AI:         aiConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		return valueStr == "true" || valueStr == "1"
	}
	return defaultValue
}
