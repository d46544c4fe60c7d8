// Package history persists conversations across interactive sessions.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quocvuong92/lake-cli/internal/llm"
)

const maxConversations = 50

// ConversationEntry is one saved conversation.
type ConversationEntry struct {
	ID        string        `json:"id"`
	Model     string        `json:"model"`
	Provider  string        `json:"provider"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Messages  []llm.Message `json:"messages"`
}

// Store keeps conversations in a JSON file under the user config dir.
type Store struct {
	mu      sync.Mutex
	path    string
	entries map[string]*ConversationEntry
}

// DefaultPath returns the history file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "lake-cli", "history.json"), nil
}

// NewStore creates a store backed by the given file. The file may not
// exist yet.
func NewStore(path string) *Store {
	return &Store{path: path, entries: make(map[string]*ConversationEntry)}
}

// Load reads the history file. A missing file is an empty history.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read history: %w", err)
	}

	var entries []*ConversationEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse history: %w", err)
	}
	s.entries = make(map[string]*ConversationEntry, len(entries))
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	return nil
}

// Save writes the history file, keeping only the most recent conversations.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.sortedLocked()
	if len(entries) > maxConversations {
		entries = entries[:maxConversations]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Begin starts a new conversation and returns its id.
func (s *Store) Begin(model, provider string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	now := time.Now()
	s.entries[id] = &ConversationEntry{
		ID:        id,
		Model:     model,
		Provider:  provider,
		StartedAt: now,
		UpdatedAt: now,
	}
	return id
}

// Update replaces the messages of a conversation. Returns false when the id
// is unknown.
func (s *Store) Update(id string, messages []llm.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return false
	}
	entry.Messages = append([]llm.Message(nil), messages...)
	entry.UpdatedAt = time.Now()
	return true
}

// Get returns a conversation by id, or nil.
func (s *Store) Get(id string) *ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id]
}

// Last returns the most recently updated conversation, or nil.
func (s *Store) Last() *ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.sortedLocked()
	if len(entries) == 0 {
		return nil
	}
	return entries[0]
}

// Recent returns up to n conversations, newest first.
func (s *Store) Recent(n int) []*ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.sortedLocked()
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// Clear drops every conversation.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*ConversationEntry)
}

// sortedLocked returns entries newest first. Caller holds the lock.
func (s *Store) sortedLocked() []*ConversationEntry {
	entries := make([]*ConversationEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries
}
