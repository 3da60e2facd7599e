// Package storage provides an optional, explicit serialization boundary
// for the Knowledge Base and Memory Manager, backed by SQLite (the
// spec's only persistence is in-memory tiers plus this defined snapshot
// boundary; there is no live query layer against the database).
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"cognitive-core/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS knowledge_entries (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	payload TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS memory_entries (
	id TEXT PRIMARY KEY,
	tier TEXT NOT NULL,
	payload TEXT NOT NULL
);
`

// Store wraps a SQLite-backed snapshot file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the snapshot database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.Open: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.Open: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveKnowledge replaces the stored Knowledge Base snapshot with the
// given entries.
func (s *Store) SaveKnowledge(ctx context.Context, entries []*types.KnowledgeEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM knowledge_entries"); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO knowledge_entries (id, kind, payload) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		payload, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, e.ID.String(), string(e.Kind), payload); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadKnowledge reads back every stored Knowledge Entry.
func (s *Store) LoadKnowledge(ctx context.Context) ([]*types.KnowledgeEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT payload FROM knowledge_entries")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*types.KnowledgeEntry
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e types.KnowledgeEntry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// SaveMemory replaces the stored Memory Manager snapshot with the given
// entries, tagged by tier.
func (s *Store) SaveMemory(ctx context.Context, entries map[types.Tier][]*types.MemoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM memory_entries"); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO memory_entries (id, tier, payload) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for tier, tierEntries := range entries {
		for _, e := range tierEntries {
			payload, err := json.Marshal(e)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, e.ID.String(), string(tier), payload); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// LoadMemory reads back every stored Memory Entry, grouped by tier.
func (s *Store) LoadMemory(ctx context.Context) (map[types.Tier][]*types.MemoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT tier, payload FROM memory_entries")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[types.Tier][]*types.MemoryEntry)
	for rows.Next() {
		var tier, payload string
		if err := rows.Scan(&tier, &payload); err != nil {
			return nil, err
		}
		var e types.MemoryEntry
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, err
		}
		out[types.Tier(tier)] = append(out[types.Tier(tier)], &e)
	}
	return out, rows.Err()
}
