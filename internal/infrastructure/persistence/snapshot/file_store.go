package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/types"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
)

const (
	visitorSnapshotFile = "visitors.json"
	chatSnapshotFile    = "chats.json"
)

// FileStore keeps each snapshot document as a JSON file under the data
// directory. Writes go through a temp file and rename so a crash mid-write
// never corrupts the previous snapshot.
type FileStore struct {
	dataDir string
	logger  *logging.ChanneledLogger
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dataDir string, logger *logging.ChanneledLogger) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}
	return &FileStore{dataDir: dataDir, logger: logger}, nil
}

// LoadVisitorState reads the visitor snapshot. A missing or unreadable file
// yields an empty state document.
func (s *FileStore) LoadVisitorState() (*types.VisitorState, error) {
	state := types.NewVisitorState()
	s.loadDocument(visitorSnapshotFile, state)
	return state, nil
}

// LoadChatState reads the chat snapshot. A missing or unreadable file yields
// an empty state document.
func (s *FileStore) LoadChatState() (*types.ChatState, error) {
	state := types.NewChatState()
	s.loadDocument(chatSnapshotFile, state)
	return state, nil
}

// SaveVisitorState writes the visitor snapshot atomically.
func (s *FileStore) SaveVisitorState(state *types.VisitorState) error {
	return s.saveDocument(visitorSnapshotFile, state)
}

// SaveChatState writes the chat snapshot atomically.
func (s *FileStore) SaveChatState(state *types.ChatState) error {
	return s.saveDocument(chatSnapshotFile, state)
}

func (s *FileStore) loadDocument(name string, target any) {
	path := filepath.Join(s.dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Persist().Warn("Snapshot file unreadable, starting empty", "file", name, "error", err.Error())
		}
		return
	}
	if err := json.Unmarshal(data, target); err != nil {
		s.logger.Persist().Warn("Snapshot file corrupt, starting empty", "file", name, "error", err.Error())
	}
}

func (s *FileStore) saveDocument(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot %s: %w", name, err)
	}

	path := filepath.Join(s.dataDir, name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace snapshot %s: %w", name, err)
	}
	return nil
}
