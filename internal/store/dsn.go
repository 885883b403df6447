package store

import "fmt"

// ConnectionType selects the pragmas and connection string mode applied
// to a new connection (spec.md §4.B).
type ConnectionType int

const (
	ReadOnly ConnectionType = iota
	ReadWrite
)

// DatabaseFile selects the persistence target: an on-disk path, a
// shared in-memory database identified by name, or an isolated
// in-memory database private to one connection (spec.md §6).
type DatabaseFile struct {
	kind   databaseFileKind
	path   string
	shared string
}

type databaseFileKind int

const (
	dbFileOnDisk databaseFileKind = iota
	dbFileSharedMemory
	dbFileIsolatedMemory
)

// OnDisk targets a database file at path.
func OnDisk(path string) DatabaseFile {
	return DatabaseFile{kind: dbFileOnDisk, path: path}
}

// SharedMemory targets a named in-memory database visible to every
// connection in the process that names it, per spec.md §6's
// "file::kupo:?mode=memory&cache=shared" example. An empty name
// defaults to "kupo".
func SharedMemory(name string) DatabaseFile {
	if name == "" {
		name = "kupo"
	}
	return DatabaseFile{kind: dbFileSharedMemory, shared: name}
}

// IsolatedMemory targets a private ":memory:" database, used for tests.
func IsolatedMemory() DatabaseFile {
	return DatabaseFile{kind: dbFileIsolatedMemory}
}

// IsInMemory reports whether this target is any in-memory variant.
func (f DatabaseFile) IsInMemory() bool {
	return f.kind != dbFileOnDisk
}

// connectionString builds the modernc.org/sqlite DSN for f under mode,
// applying the required pragmas from spec.md §4.B:
//
//	page_size = 16184
//	cache_size = -50000 (~50 MiB)
//	ReadOnly: read_uncommitted = 1
//	ReadWrite (long-lived only, see database.go): journal_mode = WAL,
//	  synchronous = NORMAL, foreign_keys = ON
//
// The scheme is file:<path>?mode=ro|rwc per spec.md §6.
func connectionString(f DatabaseFile, mode ConnectionType, longLived bool) string {
	var base string
	switch f.kind {
	case dbFileSharedMemory:
		base = fmt.Sprintf("file:%s", f.shared)
	case dbFileIsolatedMemory:
		base = "file::memory:"
	default:
		base = fmt.Sprintf("file:%s", f.path)
	}

	pragmas := []string{
		"_pragma=page_size(16184)",
		"_pragma=cache_size(-50000)",
	}
	if mode == ReadOnly {
		pragmas = append(pragmas, "_pragma=read_uncommitted(1)")
	}
	if longLived && mode == ReadWrite {
		pragmas = append(pragmas,
			"_pragma=journal_mode(WAL)",
			"_pragma=synchronous(NORMAL)",
			"_pragma=foreign_keys(1)",
		)
	}

	dsn := base + "?"
	switch {
	case f.kind == dbFileSharedMemory:
		dsn += "mode=memory&cache=shared&"
	case f.kind == dbFileIsolatedMemory:
		dsn += "mode=memory&cache=private&"
	case mode == ReadOnly:
		dsn += "mode=ro&"
	default:
		dsn += "mode=rwc&"
	}
	for i, p := range pragmas {
		if i > 0 {
			dsn += "&"
		}
		dsn += p
	}
	return dsn
}
