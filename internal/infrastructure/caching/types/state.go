// Package types defines the serialized snapshot documents mirrored by the
// persistence gateway. The two documents load independently: losing one never
// blocks the other.
package types

import (
	"time"

	"github.com/AzurNet/azurnet-go/internal/domain/chat"
	"github.com/AzurNet/azurnet-go/internal/domain/visitor"
)

// SnapshotVersion is the current persistence format version. Older documents
// unmarshal into the same structs with zero-valued new fields.
const SnapshotVersion = 1

// VisitorState is the snapshot document for visitor, session, page-view and
// contact-click state.
type VisitorState struct {
	Version       int                        `json:"version"`
	Visitors      map[string]visitor.Visitor `json:"visitors"`
	Sessions      map[string]visitor.Session `json:"sessions"`
	PageViews     []visitor.PageView         `json:"pageViews"`
	ContactClicks []visitor.ContactClick     `json:"contactClicks"`
	SavedAt       time.Time                  `json:"savedAt"`
}

// ChatState is the snapshot document for conversation state.
type ChatState struct {
	Version  int                     `json:"version"`
	Sessions map[string]chat.Session `json:"sessions"`
	SavedAt  time.Time               `json:"savedAt"`
}

// NewVisitorState returns an empty, versioned visitor-state document.
func NewVisitorState() *VisitorState {
	return &VisitorState{
		Version:  SnapshotVersion,
		Visitors: make(map[string]visitor.Visitor),
		Sessions: make(map[string]visitor.Session),
	}
}

// NewChatState returns an empty, versioned chat-state document.
func NewChatState() *ChatState {
	return &ChatState{
		Version:  SnapshotVersion,
		Sessions: make(map[string]chat.Session),
	}
}
