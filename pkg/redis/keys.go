package redis

import "strings"

const (
	defaultNamespace  = "pos"
	idempotencyPrefix = "idempotency"
	cachePrefix       = "cache"
)

// Keyspace builds colon separated keys under a fixed namespace so several
// deployments can share one redis database.
type Keyspace string

func newKeyspace(namespace string) Keyspace {
	namespace = strings.Trim(strings.TrimSpace(namespace), ":")
	if namespace == "" {
		namespace = defaultNamespace
	}
	return Keyspace(namespace)
}

// Key joins parts under the namespace, skipping blank parts.
func (k Keyspace) Key(parts ...string) string {
	var b strings.Builder
	b.WriteString(string(k))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}
