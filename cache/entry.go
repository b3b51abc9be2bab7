package cache

// entry is one stored record. exp is an absolute deadline in UnixNano;
// zero means "never expires".
type entry[V any] struct {
	val V
	exp int64
}

func (e *entry[V]) expired(now int64) bool {
	return e.exp != 0 && e.exp <= now
}
