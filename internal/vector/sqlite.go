package vector

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "github.com/asg017/sqlite-vec-go-bindings/ncruces"
	_ "github.com/ncruces/go-sqlite3/driver"
)

// SQLiteIndex persists vectors in a vec0 virtual table backed by the
// cgo-free ncruces SQLite driver with the sqlite-vec extension loaded.
type SQLiteIndex struct {
	db *sql.DB
}

// Open creates or attaches to <dataRoot>/vectors/vectors.db and ensures the
// vec0 virtual table exists. If the extension or driver can't be loaded —
// missing WASM runtime support, corrupt file, anything — the caller should
// fall back to NoopIndex rather than fail startup entirely.
func Open(dataRoot string) (*SQLiteIndex, error) {
	dir := filepath.Join(dataRoot, "vectors")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("vector: creating %s: %w", dir, err)
	}
	dsn := filepath.Join(dir, "vectors.db")

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("vector: opening %s: %w", dsn, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("vector: pinging %s: %w", dsn, err)
	}

	schema := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS memory_vectors USING vec0(memory_id TEXT PRIMARY KEY, embedding float[%d])`,
		EmbedDims,
	)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("vector: creating vec0 table: %w", err)
	}

	return &SQLiteIndex{db: db}, nil
}

func (idx *SQLiteIndex) Embed(text string) ([]float32, error) {
	return HashEmbed(text), nil
}

func (idx *SQLiteIndex) Upsert(id string, vec []float32) error {
	_, err := idx.db.Exec(
		`INSERT INTO memory_vectors(memory_id, embedding) VALUES (?, ?)
		 ON CONFLICT(memory_id) DO UPDATE SET embedding = excluded.embedding`,
		id, serializeFloat32(vec),
	)
	if err != nil {
		return fmt.Errorf("vector: upserting %s: %w", id, err)
	}
	return nil
}

func (idx *SQLiteIndex) Query(vec []float32, k int) ([]Match, error) {
	rows, err := idx.db.Query(
		`SELECT memory_id, distance FROM memory_vectors
		 WHERE embedding MATCH ? AND k = ?
		 ORDER BY distance`,
		serializeFloat32(vec), k,
	)
	if err != nil {
		return nil, fmt.Errorf("vector: querying: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var id string
		var distance float64
		if err := rows.Scan(&id, &distance); err != nil {
			return nil, fmt.Errorf("vector: scanning match: %w", err)
		}
		// vec0's distance is L2 over normalized vectors; convert to the
		// cosine-similarity scale the rest of the system expects.
		out = append(out, Match{ID: id, Score: 1 - (distance*distance)/2})
	}
	return out, rows.Err()
}

func (idx *SQLiteIndex) Close() error {
	return idx.db.Close()
}

// serializeFloat32 encodes a vector as the raw little-endian float32 blob
// vec0 expects for its float[N] columns.
func serializeFloat32(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}
