package state

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store loads and saves StoryState records keyed by story ID.
//
// Exactly one backend is active: the YAML file backend rooted at dir, or
// Postgres when a DSN was provided.
type Store struct {
	dir string
	db  *sql.DB

	schemaOnce sync.Once
	schemaErr  error

	cache *lru.Cache[string, StoryState]
}

// New returns a file-backed store rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// NewPostgres returns a Postgres-backed store.
func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, StoryState](256)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, cache: cache}, nil
}

// NewFromEnv picks the Postgres backend when STORY_STORE_PG_DSN is set and
// reachable, and falls back to the file backend otherwise.
func NewFromEnv(dir string) *Store {
	dsn := strings.TrimSpace(os.Getenv("STORY_STORE_PG_DSN"))
	if dsn == "" {
		return New(dir)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(dir)
	}
	return s
}

// Load returns the persisted state for id. It never fails the caller: a
// missing or unreadable record yields the zero-value state so a fresh story
// can bootstrap.
func (s *Store) Load(id string) StoryState {
	id = strings.TrimSpace(id)
	if s == nil || id == "" {
		return StoryState{}
	}
	if s.db != nil {
		return s.loadDB(id)
	}
	return s.loadFile(id)
}

// Save persists st under id. When simulate is true nothing is written; the
// call is a documented no-op for dry runs.
func (s *Store) Save(id string, st StoryState, simulate bool) error {
	id = strings.TrimSpace(id)
	if s == nil || id == "" {
		return fmt.Errorf("state: story id is required")
	}
	if simulate {
		return nil
	}
	st = normalizeState(st)
	if s.db != nil {
		return s.saveDB(id, st)
	}
	return s.saveFile(id, st)
}

// Close releases the database handle, if any.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
