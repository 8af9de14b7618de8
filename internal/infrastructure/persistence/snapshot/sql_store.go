package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/types"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
)

const (
	visitorSnapshotName = "visitors"
	chatSnapshotName    = "chats"
)

// SQLStore keeps each snapshot document as a JSON blob in a snapshots table.
// Works against local sqlite3 or a remote libsql database.
type SQLStore struct {
	db     *sql.DB
	logger *logging.ChanneledLogger
}

// NewSQLStore creates the snapshots table if it does not exist.
func NewSQLStore(db *sql.DB, logger *logging.ChanneledLogger) (*SQLStore, error) {
	const schema = `CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return &SQLStore{db: db, logger: logger}, nil
}

// LoadVisitorState reads the visitor snapshot row. A missing or corrupt row
// yields an empty state document.
func (s *SQLStore) LoadVisitorState() (*types.VisitorState, error) {
	state := types.NewVisitorState()
	s.loadDocument(visitorSnapshotName, state)
	return state, nil
}

// LoadChatState reads the chat snapshot row. A missing or corrupt row yields
// an empty state document.
func (s *SQLStore) LoadChatState() (*types.ChatState, error) {
	state := types.NewChatState()
	s.loadDocument(chatSnapshotName, state)
	return state, nil
}

// SaveVisitorState upserts the visitor snapshot row.
func (s *SQLStore) SaveVisitorState(state *types.VisitorState) error {
	return s.saveDocument(visitorSnapshotName, state)
}

// SaveChatState upserts the chat snapshot row.
func (s *SQLStore) SaveChatState(state *types.ChatState) error {
	return s.saveDocument(chatSnapshotName, state)
}

func (s *SQLStore) loadDocument(name string, target any) {
	var doc string
	err := s.db.QueryRow("SELECT doc FROM snapshots WHERE name = ?", name).Scan(&doc)
	if err == sql.ErrNoRows {
		return
	}
	if err != nil {
		s.logger.Persist().Warn("Snapshot row unreadable, starting empty", "name", name, "error", err.Error())
		return
	}
	if err := json.Unmarshal([]byte(doc), target); err != nil {
		s.logger.Persist().Warn("Snapshot row corrupt, starting empty", "name", name, "error", err.Error())
	}
}

func (s *SQLStore) saveDocument(name string, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", name, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO snapshots (name, doc, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		name, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot %s: %w", name, err)
	}
	return nil
}
