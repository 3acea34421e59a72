package storage

import "fmt"

// Backend kinds accepted by NewStore. KindMemory keeps the archive for the
// process lifetime only; KindSQLite persists it and is compiled in behind
// the sqlite build tag.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

// NewStore builds a run archive of the given kind. An empty kind falls back
// to the in-memory backend; sqlitePath is ignored unless kind is KindSQLite.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend %q (want %s or %s)", kind, KindMemory, KindSQLite)
	}
}

// CloseIfSupported closes backends that hold external resources; the memory
// backend has none and is a no-op.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
