package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/quocvuong92/lake-cli/internal/command"
	"github.com/quocvuong92/lake-cli/internal/constants"
	"github.com/quocvuong92/lake-cli/internal/llm"
	"github.com/quocvuong92/lake-cli/internal/logging"
)

// Status is the terminal state of one processed turn.
type Status int

const (
	// StatusDone means the model produced a final text answer.
	StatusDone Status = iota
	// StatusCancelled means the user cancelled during result display.
	StatusCancelled
	// StatusFailed means the turn budget ran out or the provider failed.
	StatusFailed
)

// TurnResult is what one user utterance produced.
type TurnResult struct {
	Status Status
	Reply  string
	Rounds int
}

// Hooks let the shell observe a turn without the manager knowing how
// results are rendered.
type Hooks struct {
	// ToolResult shows one executed result to the user. Returning true
	// cancels the rest of the turn.
	ToolResult func(res *ToolResult) (cancelled bool)
	// LLMCallStart and LLMCallEnd bracket each provider call, for spinners.
	LLMCallStart func()
	LLMCallEnd   func()
}

// Manager drives the tool-calling loop for a conversation. A turn moves
// through rounds: ask the model, execute its tool calls in order, append
// the results, ask again, until the model answers in plain text or the
// round budget runs out. Not safe for concurrent turns; the shell is
// single-threaded by construction.
type Manager struct {
	client  llm.Client
	exec    *Executor
	cc      *command.Context
	hooks   Hooks
	history []llm.Message
	log     *logging.Logger
}

// NewManager creates a manager with an empty conversation.
func NewManager(client llm.Client, exec *Executor, cc *command.Context, hooks Hooks) *Manager {
	return &Manager{
		client: client,
		exec:   exec,
		cc:     cc,
		hooks:  hooks,
		log:    logging.DefaultLogger,
	}
}

// History returns the conversation so far, system message included.
func (m *Manager) History() []llm.Message { return m.history }

// LoadHistory replaces the conversation, used when resuming a saved one.
func (m *Manager) LoadHistory(messages []llm.Message) { m.history = messages }

// Reset drops the conversation.
func (m *Manager) Reset() { m.history = nil }

// systemPrompt describes the shell and the current selections. Rebuilt at
// every turn so selection changes made by earlier turns are visible.
func (m *Manager) systemPrompt() string {
	var sb strings.Builder
	sb.WriteString("You are a data platform assistant operating a ")
	sb.WriteString(m.cc.Config.DataProvider)
	sb.WriteString(" environment through tools. Use the tools to answer; never invent catalog contents. ")
	sb.WriteString("Commands that mutate state (create-warehouse, run-sql, tag-pii, bulk-tag-pii) must never be retried after a failure.")

	sel := m.cc.Session.Snapshot()
	switch m.cc.Config.DataProvider {
	case constants.ProviderDatabricks:
		fmt.Fprintf(&sb, "\nActive selections: catalog=%q schema=%q warehouse=%q.",
			sel.Catalog, sel.Schema, sel.Warehouse)
	case constants.ProviderRedshift:
		fmt.Fprintf(&sb, "\nActive selections: database=%q.", sel.Database)
	}
	return sb.String()
}

// chat performs one provider call under the configured timeout.
func (m *Manager) chat(ctx context.Context) (*llm.Message, error) {
	if m.hooks.LLMCallStart != nil {
		m.hooks.LLMCallStart()
	}
	defer func() {
		if m.hooks.LLMCallEnd != nil {
			m.hooks.LLMCallEnd()
		}
	}()

	cctx, cancel := context.WithTimeout(ctx, m.cc.Config.LLMTimeout)
	defer cancel()
	return m.client.Chat(cctx, m.history, m.exec.Tools())
}

// ProcessTurn runs one user utterance to a terminal state.
//
// On a provider failure the history is truncated back to where the turn
// started, so the conversation never holds a user message the model was
// never able to answer. Tool results from completed rounds before the
// failure are part of that truncation too.
func (m *Manager) ProcessTurn(ctx context.Context, input string) (*TurnResult, error) {
	if len(m.history) == 0 {
		m.history = append(m.history, llm.Message{Role: "system"})
	}
	m.history[0] = llm.Message{Role: "system", Content: m.systemPrompt()}

	turnStart := len(m.history)
	m.history = append(m.history, llm.Message{Role: "user", Content: input})

	for round := 1; round <= m.cc.Config.MaxAgentRounds; round++ {
		reply, err := m.chat(ctx)
		if err != nil {
			m.history = m.history[:turnStart]
			m.log.Error("provider call failed", err, logging.Fields{"round": round})
			return &TurnResult{Status: StatusFailed, Rounds: round}, err
		}
		m.history = append(m.history, *reply)

		if len(reply.ToolCalls) == 0 {
			return &TurnResult{Status: StatusDone, Reply: reply.Content, Rounds: round}, nil
		}

		if cancelled := m.runRound(ctx, reply.ToolCalls); cancelled {
			return &TurnResult{
				Status: StatusCancelled,
				Reply:  "Cancelled.",
				Rounds: round,
			}, nil
		}
	}

	m.log.Warn("turn budget exhausted", logging.Fields{"rounds": m.cc.Config.MaxAgentRounds})
	return &TurnResult{
		Status: StatusFailed,
		Reply: fmt.Sprintf("Stopped after %d tool rounds without a final answer. Try a narrower request.",
			m.cc.Config.MaxAgentRounds),
		Rounds: m.cc.Config.MaxAgentRounds,
	}, nil
}

// runRound executes one assistant message's tool calls sequentially, in the
// order the model issued them. Every call gets a history entry: executed
// calls get their real result, and once the user cancels, the remaining
// calls get synthetic aborted results without being executed or displayed.
func (m *Manager) runRound(ctx context.Context, calls []llm.ToolCall) (cancelled bool) {
	for i, call := range calls {
		if cancelled {
			m.appendResult(abortedResult(call))
			continue
		}

		res := m.exec.Execute(ctx, call)
		m.appendResult(res)

		if m.hooks.ToolResult != nil && m.hooks.ToolResult(res) {
			cancelled = true
			m.log.Info("turn cancelled during display", logging.Fields{
				"tool": call.Name, "remaining": len(calls) - i - 1,
			})
		}
	}
	return cancelled
}

func (m *Manager) appendResult(res *ToolResult) {
	m.history = append(m.history, llm.Message{
		Role:       "tool",
		Content:    res.Payload(),
		ToolCallID: res.CallID,
	})
}
