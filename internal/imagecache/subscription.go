package imagecache

// Listener is notified when an image becomes available under a key.
type Listener interface {
	Loaded(key string)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(key string)

// Loaded calls f(key).
func (f ListenerFunc) Loaded(key string) { f(key) }

// Subscription is a pending one-shot registration for a key. It is consumed
// by the first Put of that key, or revoked by Cancel.
type Subscription struct {
	cache    *Cache
	key      string
	listener Listener
}

// Key returns the key the subscription waits for.
func (s *Subscription) Key() string {
	return s.key
}

// Cancel revokes the subscription. It reports whether the subscription was
// still pending; false means it already fired or was canceled before.
func (s *Subscription) Cancel() bool {
	if s == nil {
		return false
	}
	return s.cache.unsubscribe(s)
}
