package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Provider names
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

type Config struct {
	Port          string
	DBPath        string
	Provider      string // "gemini", "openai" or "none"
	ProviderKey   string
	ProviderURL   string // override for tests; empty means the provider default
	ProviderModel string
	DailyAILimit  int
	CacheTTLHours int
	Tokens        map[string]string // owner id -> bearer token
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:          getEnv("INSIGHT_PORT", "8080"),
		DBPath:        getEnv("INSIGHT_DB_PATH", ""),
		Provider:      getEnv("INSIGHT_PROVIDER", ProviderNone),
		ProviderKey:   getEnv("INSIGHT_PROVIDER_KEY", ""),
		ProviderURL:   getEnv("INSIGHT_PROVIDER_URL", ""),
		ProviderModel: getEnv("INSIGHT_PROVIDER_MODEL", ""),
		Tokens:        parseTokens(getEnv("INSIGHT_TOKENS", "")),
	}

	limit, err := strconv.Atoi(getEnv("INSIGHT_DAILY_AI_LIMIT", "10"))
	if err != nil {
		return nil, fmt.Errorf("INSIGHT_DAILY_AI_LIMIT must be an integer: %w", err)
	}
	cfg.DailyAILimit = limit

	ttl, err := strconv.Atoi(getEnv("INSIGHT_CACHE_TTL_HOURS", "24"))
	if err != nil {
		return nil, fmt.Errorf("INSIGHT_CACHE_TTL_HOURS must be an integer: %w", err)
	}
	cfg.CacheTTLHours = ttl

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("INSIGHT_DB_PATH is required")
	}
	if len(c.Tokens) == 0 {
		return fmt.Errorf("INSIGHT_TOKENS is required (format owner:token,owner:token)")
	}
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderNone:
	default:
		return fmt.Errorf("INSIGHT_PROVIDER must be one of gemini, openai, none (got %q)", c.Provider)
	}
	if c.DailyAILimit < 1 {
		return fmt.Errorf("INSIGHT_DAILY_AI_LIMIT must be positive")
	}
	if c.CacheTTLHours < 1 {
		return fmt.Errorf("INSIGHT_CACHE_TTL_HOURS must be positive")
	}
	return nil
}

// OwnerFromToken resolves a bearer token to an owner id.
func (c *Config) OwnerFromToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	for owner, t := range c.Tokens {
		if t == token {
			return owner, true
		}
	}
	return "", false
}

// parseTokens parses "alice:tok1,bob:tok2" into a map. Malformed pairs are skipped.
func parseTokens(s string) map[string]string {
	tokens := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		tokens[parts[0]] = parts[1]
	}
	return tokens
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
