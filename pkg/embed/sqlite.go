package embed

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	_ "modernc.org/sqlite"
)

const vectorSchema = `
CREATE TABLE IF NOT EXISTS embeddings (
	model TEXT NOT NULL,
	text  TEXT NOT NULL,
	dim   INTEGER NOT NULL,
	vec   BLOB NOT NULL,
	PRIMARY KEY (model, text)
);`

// SQLiteStore persists vectors keyed by (model, text).
// Safe for concurrent use; database/sql pools the connections.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens or creates the vector cache at path.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	connStr := path
	if path == ":memory:" {
		connStr = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open vector cache: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping vector cache: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec(vectorSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create vector schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Get returns the stored vector. Rows of a different width than dim are
// treated as missing; dim <= 0 accepts any width.
func (s *SQLiteStore) Get(model, text string, dim int) ([]float32, bool, error) {
	var (
		width int
		blob  []byte
	)
	err := s.db.QueryRow(`SELECT dim, vec FROM embeddings WHERE model = ? AND text = ?`, model, text).Scan(&width, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query vector: %w", err)
	}
	if (dim > 0 && width != dim) || len(blob) != width*4 {
		return nil, false, nil
	}
	return decodeVector(blob), true, nil
}

// Put upserts one vector.
func (s *SQLiteStore) Put(model, text string, vec []float32) error {
	_, err := s.db.Exec(
		`INSERT INTO embeddings (model, text, dim, vec) VALUES (?, ?, ?, ?)
		 ON CONFLICT(model, text) DO UPDATE SET dim = excluded.dim, vec = excluded.vec`,
		model, text, len(vec), encodeVector(vec))
	if err != nil {
		return fmt.Errorf("store vector: %w", err)
	}
	return nil
}

// Count returns the number of rows for model.
func (s *SQLiteStore) Count(model string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM embeddings WHERE model = ?`, model).Scan(&n); err != nil {
		return 0, fmt.Errorf("count vectors: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
