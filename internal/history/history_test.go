package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/quocvuong92/lake-cli/internal/llm"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.json"))
}

func TestLoadMissingFile(t *testing.T) {
	s := tempStore(t)
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v, a missing file is an empty history", err)
	}
	if s.Last() != nil {
		t.Error("Last() should be nil for an empty history")
	}
}

func TestBeginUpdateSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := NewStore(path)

	id := s.Begin("claude-sonnet-4-5", "anthropic")
	if id == "" {
		t.Fatal("Begin() returned an empty id")
	}
	messages := []llm.Message{
		{Role: "system", Content: "you are a data assistant"},
		{Role: "user", Content: "list catalogs"},
		{Role: "assistant", Content: "there are 2 catalogs"},
	}
	if !s.Update(id, messages) {
		t.Fatal("Update() = false, want true for a known id")
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	entry := reloaded.Get(id)
	if entry == nil {
		t.Fatal("Get() = nil after reload")
	}
	if entry.Model != "claude-sonnet-4-5" || entry.Provider != "anthropic" {
		t.Errorf("entry = %+v, want model and provider preserved", entry)
	}
	if len(entry.Messages) != 3 || entry.Messages[2].Content != "there are 2 catalogs" {
		t.Errorf("Messages = %+v, want the saved conversation", entry.Messages)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	s := tempStore(t)
	if s.Update("no-such-id", nil) {
		t.Error("Update() = true for an unknown id")
	}
}

func TestUpdateCopiesMessages(t *testing.T) {
	s := tempStore(t)
	id := s.Begin("m", "p")

	messages := []llm.Message{{Role: "user", Content: "original"}}
	s.Update(id, messages)
	messages[0].Content = "mutated"

	if got := s.Get(id).Messages[0].Content; got != "original" {
		t.Errorf("stored content = %q, mutating the caller's slice must not leak in", got)
	}
}

func TestLastAndRecentOrdering(t *testing.T) {
	s := tempStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, s.Begin("m", "p"))
	}
	// Force distinct update times, oldest first.
	for i, id := range ids {
		s.entries[id].UpdatedAt = time.Now().Add(time.Duration(i) * time.Second)
	}

	if got := s.Last(); got == nil || got.ID != ids[2] {
		t.Errorf("Last() = %v, want the most recently updated conversation", got)
	}

	recent := s.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(recent))
	}
	if recent[0].ID != ids[2] || recent[1].ID != ids[1] {
		t.Error("Recent() should be ordered newest first")
	}
}

func TestSaveCapsConversations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	s := NewStore(path)

	for i := 0; i < maxConversations+10; i++ {
		id := s.Begin("m", "p")
		s.entries[id].UpdatedAt = time.Now().Add(time.Duration(i) * time.Second)
		s.Update(id, []llm.Message{{Role: "user", Content: fmt.Sprintf("turn %d", i)}})
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	reloaded := NewStore(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := len(reloaded.Recent(maxConversations + 10)); got != maxConversations {
		t.Errorf("saved conversations = %d, want capped at %d", got, maxConversations)
	}
}

func TestClear(t *testing.T) {
	s := tempStore(t)
	s.Begin("m", "p")
	s.Clear()
	if s.Last() != nil {
		t.Error("Last() should be nil after Clear()")
	}
}
