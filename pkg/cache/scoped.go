package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several deployments
// or catalog backends can share one Redis without collisions.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns a keyer that prepends prefix. A nil inner uses the
// default scheme.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) CatalogKey(backend, query string) string {
	return k.prefix + k.inner.CatalogKey(backend, query)
}

func (k *ScopedKeyer) ArtifactKey(boardHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(boardHash, opts)
}
