package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Values that must not be committed. Populated by Load from the process
// environment, optionally seeded by a local .env file.
var (
	GoogleAPIKey  string
	OpenAIAPIKey  string
	LLMProvider   = ProviderGemini
	RedisAddress  = RedisAddr
	RedisPassword string
	QdrantAddress = QdrantHost
	QdrantPort    = QdrantGrpcPort
	QdrantAPIKey  string
)

// Load reads .env (if present) then the environment. A missing .env file is not an error.
func Load(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return err
	}

	GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if p := strings.ToLower(os.Getenv("LLM_PROVIDER")); p == ProviderOpenAI || p == ProviderGemini {
		LLMProvider = p
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		RedisAddress = addr
	}
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	if host := os.Getenv("QDRANT_HOST"); host != "" {
		QdrantAddress = host
	}
	if port, err := strconv.Atoi(os.Getenv("QDRANT_PORT")); err == nil {
		QdrantPort = port
	}
	QdrantAPIKey = os.Getenv("QDRANT_API_KEY")
	return nil
}

// ServerCredential returns the API key configured for the active provider,
// or "" when none is usable and the user has to supply one.
func ServerCredential() string {
	key := GoogleAPIKey
	if LLMProvider == ProviderOpenAI {
		key = OpenAIAPIKey
	}
	key = strings.TrimSpace(key)
	if key == PlaceholderAPIKey {
		return ""
	}
	return key
}
