package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests. Each Chat call pops the next
// response; when the script runs out it keeps returning the last one. If
// ChatFunc is set it takes precedence over the script.
type MockClient struct {
	Responses []*Message
	Err       error
	ChatFunc  func(ctx context.Context, messages []Message, tools []Tool) (*Message, error)

	mu        sync.Mutex
	idx       int
	Histories [][]Message
}

var _ Client = (*MockClient)(nil)

func (m *MockClient) Chat(ctx context.Context, messages []Message, tools []Tool) (*Message, error) {
	m.mu.Lock()
	snapshot := make([]Message, len(messages))
	copy(snapshot, messages)
	m.Histories = append(m.Histories, snapshot)
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages, tools)
	}
	if m.Err != nil {
		return nil, &ProviderError{Provider: "mock", Err: m.Err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Responses) == 0 {
		return &Message{Role: "assistant"}, nil
	}
	resp := m.Responses[m.idx]
	if m.idx < len(m.Responses)-1 {
		m.idx++
	}
	return resp, nil
}

// CallCount reports how many times Chat was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Histories)
}
