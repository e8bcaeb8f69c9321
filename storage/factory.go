package storage

import "fmt"

// NewStore returns an uninitialised store of the given kind. path is the sqlite file or
// the badger directory; it is ignored by the memory store.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	case "badger":
		return NewBadgerStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
