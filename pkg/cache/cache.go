// Package cache persists analysis results in SQLite, one entry per page key,
// with a 24-hour freshness window evaluated on every read.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dtnitsch/termscan/models"
)

const DefaultDBName = "termscan.db"

// TTL is the freshness window after which an entry is treated as absent,
// even before it is physically removed.
const TTL = 24 * time.Hour

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

-- One analysis per page key. The key is the raw page identifier (the URL),
-- so a page whose content changes under the same URL reuses the stored
-- analysis until the TTL expires. Known approximation, not corrected with a
-- content hash.
CREATE TABLE IF NOT EXISTS analyses (
    page_key   TEXT PRIMARY KEY,
    language   TEXT NOT NULL,
    content    TEXT NOT NULL,
    summary    TEXT NOT NULL,
    risk_level TEXT NOT NULL,
    key_points TEXT NOT NULL,  -- JSON array
    red_flags  TEXT NOT NULL,  -- JSON array
    created_at INTEGER NOT NULL -- unix seconds
);

CREATE INDEX IF NOT EXISTS idx_analyses_created ON analyses(created_at);
`

// Store is the persistent result cache. Single-key reads and writes rely on
// SQLite's own atomicity; no extra locking is layered on top.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens or creates the cache database at path. An empty path places the
// database next to the binary.
func Open(path string) (*Store, error) {
	if path == "" {
		execPath, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		path = filepath.Join(filepath.Dir(execPath), DefaultDBName)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.ensureSchemaExists(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return s, nil
}

func (s *Store) ensureSchemaExists() error {
	var name string
	err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='analyses'").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.Exec(schema)
		return err
	}
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached result for (pageKey, language). The second return
// is false when no entry exists, when the stored language differs from the
// requested one, or when the entry is older than the TTL.
func (s *Store) Get(pageKey, language string) (models.AnalysisResult, bool, error) {
	var (
		storedLang, summary, riskLevel string
		keyPointsJSON, redFlagsJSON    []byte
		createdAt                      int64
	)
	err := s.db.QueryRow(`
		SELECT language, summary, risk_level, key_points, red_flags, created_at
		FROM analyses WHERE page_key = ?
	`, pageKey).Scan(&storedLang, &summary, &riskLevel, &keyPointsJSON, &redFlagsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AnalysisResult{}, false, nil
	}
	if err != nil {
		return models.AnalysisResult{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if storedLang != language {
		return models.AnalysisResult{}, false, nil
	}
	stamped := time.Unix(createdAt, 0)
	if s.now().Sub(stamped) > TTL {
		return models.AnalysisResult{}, false, nil
	}

	result := models.AnalysisResult{
		Summary:   summary,
		RiskLevel: models.RiskLevel(riskLevel),
		Timestamp: stamped,
	}
	if err := json.Unmarshal(keyPointsJSON, &result.KeyPoints); err != nil {
		return models.AnalysisResult{}, false, fmt.Errorf("corrupt key_points for %s: %w", pageKey, err)
	}
	if err := json.Unmarshal(redFlagsJSON, &result.RedFlags); err != nil {
		return models.AnalysisResult{}, false, fmt.Errorf("corrupt red_flags for %s: %w", pageKey, err)
	}
	return result, true, nil
}

// Put stores an analysis for pageKey, overwriting any previous entry for the
// same key (last write wins).
func (s *Store) Put(pageKey, pageContent string, result models.AnalysisResult, language string) error {
	keyPointsJSON, err := json.Marshal(emptyIfNil(result.KeyPoints))
	if err != nil {
		return fmt.Errorf("failed to marshal key points: %w", err)
	}
	redFlagsJSON, err := json.Marshal(emptyIfNil(result.RedFlags))
	if err != nil {
		return fmt.Errorf("failed to marshal red flags: %w", err)
	}

	stamped := result.Timestamp
	if stamped.IsZero() {
		stamped = s.now()
	}

	_, err = s.db.Exec(`
		INSERT INTO analyses (page_key, language, content, summary, risk_level, key_points, red_flags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(page_key) DO UPDATE SET
			language = excluded.language,
			content = excluded.content,
			summary = excluded.summary,
			risk_level = excluded.risk_level,
			key_points = excluded.key_points,
			red_flags = excluded.red_flags,
			created_at = excluded.created_at
	`, pageKey, language, pageContent, result.Summary, string(result.RiskLevel),
		string(keyPointsJSON), string(redFlagsJSON), stamped.Unix())
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// EvictExpired physically deletes every entry older than the TTL. It is safe
// to call at any time and idempotent.
func (s *Store) EvictExpired() (int64, error) {
	cutoff := s.now().Add(-TTL).Unix()
	res, err := s.db.Exec("DELETE FROM analyses WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to evict expired entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count evicted entries: %w", err)
	}
	return n, nil
}

// Stats reports total and expired entry counts.
func (s *Store) Stats() (total, expired int64, err error) {
	if err = s.db.QueryRow("SELECT COUNT(*) FROM analyses").Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	cutoff := s.now().Add(-TTL).Unix()
	if err = s.db.QueryRow("SELECT COUNT(*) FROM analyses WHERE created_at < ?", cutoff).Scan(&expired); err != nil {
		return 0, 0, fmt.Errorf("failed to count expired entries: %w", err)
	}
	return total, expired, nil
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
