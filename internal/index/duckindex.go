// Package index stores document chunks in DuckDB and answers keyword queries
// against them.
package index

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/marcboeker/go-duckdb"
	"github.com/ragchat/widget/internal/models"
	"go.uber.org/zap"
)

// DuckIndex is a chunk index backed by a DuckDB file. An empty path opens an
// in-memory database.
type DuckIndex struct {
	db     *sql.DB
	path   string
	logger *zap.Logger

	// DuckDB allows a single appender per table at a time
	writeMu sync.Mutex
}

// Options tunes the DuckDB engine. Zero values fall back to defaults.
type Options struct {
	Threads     int
	MemoryLimit string
}

// Open opens (or creates) the index at path.
func Open(path string, opts Options, logger *zap.Logger) (*DuckIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Threads <= 0 {
		opts.Threads = 2
	}
	if opts.MemoryLimit == "" {
		opts.MemoryLimit = "512MB"
	}
	logger.Info("opening chunk index", zap.String("path", path), zap.Int("threads", opts.Threads))

	connector, err := duckdb.NewConnector(path, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", opts.Threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			id       VARCHAR NOT NULL,
			file_id  VARCHAR NOT NULL,
			filename VARCHAR NOT NULL,
			seq      INTEGER NOT NULL,
			text     VARCHAR NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &DuckIndex{db: db, path: path, logger: logger}, nil
}

// Add appends chunks using the native Appender API.
func (ix *DuckIndex) Add(ctx context.Context, chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	conn, err := ix.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "chunks")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, c := range chunks {
			if err := appender.AppendRow(c.ID, c.FileID, c.Filename, int32(c.Seq), c.Text); err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}

	ix.logger.Debug("chunks indexed", zap.Int("count", len(chunks)))
	return nil
}

// Search returns up to topK chunks ranked by how many distinct query terms
// they contain. Chunks matching no term are never returned.
func (ix *DuckIndex) Search(ctx context.Context, query string, topK int) ([]models.Chunk, error) {
	terms := Terms(query)
	if len(terms) == 0 || topK <= 0 {
		return nil, nil
	}

	parts := make([]string, len(terms))
	args := make([]interface{}, 0, len(terms)+1)
	for i, term := range terms {
		parts[i] = "CAST(contains(lower(text), ?) AS INTEGER)"
		args = append(args, term)
	}
	args = append(args, topK)

	q := fmt.Sprintf(`
		SELECT id, file_id, filename, seq, text, score FROM (
			SELECT id, file_id, filename, seq, text, (%s) AS score FROM chunks
		) WHERE score > 0
		ORDER BY score DESC, filename, seq
		LIMIT ?`, strings.Join(parts, " + "))

	rows, err := ix.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var c models.Chunk
		var seq int32
		var score int64
		if err := rows.Scan(&c.ID, &c.FileID, &c.Filename, &seq, &c.Text, &score); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		c.Seq = int(seq)
		c.Score = float64(score) / float64(len(terms))
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteFile removes every chunk of a file.
func (ix *DuckIndex) DeleteFile(ctx context.Context, fileID string) error {
	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()

	if _, err := ix.db.ExecContext(ctx, "DELETE FROM chunks WHERE file_id = ?", fileID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (ix *DuckIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Close closes the database. The file on disk is kept.
func (ix *DuckIndex) Close() error {
	if ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "was": {}, "what": {}, "who": {},
	"how": {}, "why": {}, "when": {}, "where": {}, "which": {}, "with": {}, "you": {},
	"your": {}, "this": {}, "that": {}, "does": {}, "did": {}, "can": {}, "about": {},
	"from": {}, "have": {}, "has": {}, "his": {}, "her": {}, "its": {}, "tell": {},
}

// Terms splits a query into lower-cased search terms, dropping short words,
// stopwords and duplicates.
func Terms(query string) []string {
	words := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(words))
	var terms []string
	for _, w := range words {
		if len([]rune(w)) < 3 {
			continue
		}
		if _, ok := stopwords[w]; ok {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}
