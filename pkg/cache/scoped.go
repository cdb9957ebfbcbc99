package cache

// ScopedKeyer wraps a Keyer with a prefix so that several repositories or
// tenants can share one backend without colliding.
//
// Example usage:
//
//	// Per-tenant namespace on a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:"+team+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed key for graph caching.
func (k *ScopedKeyer) GraphKey(fingerprint string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(fingerprint, opts)
}
