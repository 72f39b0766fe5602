package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// Ranking key builders
func (kb *KeyBuilder) KeyRankingSnapshot(kind string, sizeBucket int) string {
	return kb.BuildKey(fmt.Sprintf(KeyRankingSnapshot, kind, sizeBucket))
}

func (kb *KeyBuilder) KeyRankingLastUpdate(kind string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRankingLastUpdate, kind))
}

// Suggestion key builders
func (kb *KeyBuilder) KeySuggestions(normalizedQuery string, limit int) string {
	return kb.BuildKey(fmt.Sprintf(KeySuggestions, normalizedQuery, limit))
}

// View tracking key builders
func (kb *KeyBuilder) KeyViewRateLimit(ipHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyViewRateLimit, ipHash))
}
