package cache

import "strings"

const (
	GlobalKeyPrefix = "examexpress"

	// AnswerKeyService is the cache namespace owned by the answer-key service.
	AnswerKeyService = "answerkey"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// CurrentAnswerKey is where the active answer key document is cached.
func CurrentAnswerKey() string {
	return GenerateCacheKey(AnswerKeyService, "current", "latest")
}
