package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/quocvuong92/lake-cli/internal/command"
	"github.com/quocvuong92/lake-cli/internal/llm"
	"github.com/quocvuong92/lake-cli/internal/session"
)

// recordingDefinition appends every invocation to calls so ordering can be
// asserted.
func recordingDefinition(name string, mu *sync.Mutex, calls *[]string) *command.Definition {
	return &command.Definition{
		Name:           name,
		Description:    "records invocations",
		VisibleToUser:  true,
		VisibleToAgent: true,
		Handler: func(ctx context.Context, cc *command.Context, args map[string]any) (*command.Result, error) {
			mu.Lock()
			*calls = append(*calls, name)
			mu.Unlock()
			return command.OK(map[string]any{"tool": name}, name+" done"), nil
		},
	}
}

func newTestManager(t *testing.T, client *llm.MockClient, hooks Hooks, defs ...*command.Definition) *Manager {
	t.Helper()
	registry := command.NewRegistry()
	for _, def := range defs {
		registry.MustRegister(def)
	}
	cc := testContext(t)
	cc.LLM = client
	exec := NewExecutor(registry, cc)
	return NewManager(client, exec, cc, hooks)
}

func assistantToolCalls(calls ...llm.ToolCall) *llm.Message {
	return &llm.Message{Role: "assistant", ToolCalls: calls}
}

func TestProcessTurnPlainAnswer(t *testing.T) {
	client := &llm.MockClient{Responses: []*llm.Message{
		{Role: "assistant", Content: "the answer"},
	}}
	m := newTestManager(t, client, Hooks{})

	turn, err := m.ProcessTurn(context.Background(), "a question")
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if turn.Status != StatusDone {
		t.Errorf("Status = %v, want StatusDone", turn.Status)
	}
	if turn.Reply != "the answer" {
		t.Errorf("Reply = %q, want %q", turn.Reply, "the answer")
	}
	if turn.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", turn.Rounds)
	}

	// system, user, assistant
	if len(m.History()) != 3 {
		t.Errorf("history length = %d, want 3", len(m.History()))
	}
}

func TestProcessTurnSequentialToolCalls(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	client := &llm.MockClient{Responses: []*llm.Message{
		assistantToolCalls(
			llm.ToolCall{ID: "c1", Name: "first", Arguments: map[string]any{}},
			llm.ToolCall{ID: "c2", Name: "second", Arguments: map[string]any{}},
		),
		{Role: "assistant", Content: "both done"},
	}}

	var displayed []string
	hooks := Hooks{ToolResult: func(res *ToolResult) bool {
		displayed = append(displayed, res.Name)
		return false
	}}

	m := newTestManager(t, client, hooks,
		recordingDefinition("first", &mu, &calls),
		recordingDefinition("second", &mu, &calls))

	turn, err := m.ProcessTurn(context.Background(), "do two things")
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if turn.Status != StatusDone {
		t.Fatalf("Status = %v, want StatusDone", turn.Status)
	}

	if strings.Join(calls, ",") != "first,second" {
		t.Errorf("execution order = %v, want [first second]", calls)
	}
	if strings.Join(displayed, ",") != "first,second" {
		t.Errorf("display order = %v, want [first second]", displayed)
	}

	// The second provider call must carry both tool results, matched to
	// their call ids, before the final answer.
	second := client.Histories[1]
	var toolIDs []string
	for _, msg := range second {
		if msg.Role == "tool" {
			toolIDs = append(toolIDs, msg.ToolCallID)
		}
	}
	if strings.Join(toolIDs, ",") != "c1,c2" {
		t.Errorf("tool result ids = %v, want [c1 c2]", toolIDs)
	}
}

func TestProcessTurnLaterToolSeesEarlierSelection(t *testing.T) {
	selectDef := &command.Definition{
		Name:           "select-catalog",
		Description:    "sets the active catalog",
		VisibleToUser:  true,
		VisibleToAgent: true,
		Parameters:     map[string]any{"catalog": map[string]any{"type": "string"}},
		Required:       []string{"catalog"},
		Handler: func(ctx context.Context, cc *command.Context, args map[string]any) (*command.Result, error) {
			sel := cc.Session.Apply(func(sel *session.Selection) {
				sel.Catalog = args["catalog"].(string)
				sel.Schema = ""
			})
			return command.OK(map[string]any{"catalog": sel.Catalog}, "selected "+sel.Catalog), nil
		},
	}

	var observed string
	listDef := &command.Definition{
		Name:           "list-tables",
		Description:    "lists tables of the active catalog",
		VisibleToUser:  true,
		VisibleToAgent: true,
		Handler: func(ctx context.Context, cc *command.Context, args map[string]any) (*command.Result, error) {
			observed = cc.Session.Catalog()
			return command.OK(map[string]any{"catalog": observed}, "listed"), nil
		},
	}

	client := &llm.MockClient{Responses: []*llm.Message{
		assistantToolCalls(
			llm.ToolCall{ID: "c1", Name: "select-catalog", Arguments: map[string]any{"catalog": "bronze"}},
			llm.ToolCall{ID: "c2", Name: "list-tables", Arguments: map[string]any{}},
		),
		{Role: "assistant", Content: "done"},
	}}

	m := newTestManager(t, client, Hooks{}, selectDef, listDef)

	turn, err := m.ProcessTurn(context.Background(), "show the tables of bronze")
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if turn.Status != StatusDone {
		t.Fatalf("Status = %v, want StatusDone", turn.Status)
	}

	// The first call's commit must be visible to the second call of the
	// same round.
	if observed != "bronze" {
		t.Errorf("second tool saw catalog %q, want the bronze committed by the first", observed)
	}
	if m.cc.Session.Catalog() != "bronze" {
		t.Errorf("session catalog = %q, want bronze after the turn", m.cc.Session.Catalog())
	}
}

func TestProcessTurnBudgetExhausted(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	// The model never stops calling tools; the last scripted response
	// repeats forever.
	client := &llm.MockClient{Responses: []*llm.Message{
		assistantToolCalls(llm.ToolCall{ID: "c", Name: "first", Arguments: map[string]any{}}),
	}}

	m := newTestManager(t, client, Hooks{}, recordingDefinition("first", &mu, &calls))
	m.cc.Config.MaxAgentRounds = 3

	turn, err := m.ProcessTurn(context.Background(), "loop forever")
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if turn.Status != StatusFailed {
		t.Errorf("Status = %v, want StatusFailed", turn.Status)
	}
	if turn.Rounds != 3 {
		t.Errorf("Rounds = %d, want 3", turn.Rounds)
	}
	if client.CallCount() != 3 {
		t.Errorf("provider calls = %d, want 3", client.CallCount())
	}
	if !strings.Contains(turn.Reply, "3") {
		t.Errorf("Reply %q should mention the budget", turn.Reply)
	}
	if len(calls) != 3 {
		t.Errorf("tool executions = %d, want 3", len(calls))
	}
}

func TestProcessTurnProviderFailureTruncatesHistory(t *testing.T) {
	client := &llm.MockClient{Err: errors.New("rate limited")}
	m := newTestManager(t, client, Hooks{})

	// Seed an earlier successful exchange.
	m.LoadHistory([]llm.Message{
		{Role: "system", Content: "s"},
		{Role: "user", Content: "earlier"},
		{Role: "assistant", Content: "earlier answer"},
	})

	turn, err := m.ProcessTurn(context.Background(), "new question")
	if err == nil {
		t.Fatal("ProcessTurn() should surface the provider error")
	}
	if turn.Status != StatusFailed {
		t.Errorf("Status = %v, want StatusFailed", turn.Status)
	}

	// The failed turn's user message is gone; the earlier exchange stays.
	hist := m.History()
	if len(hist) != 3 {
		t.Fatalf("history length = %d, want 3", len(hist))
	}
	if hist[2].Content != "earlier answer" {
		t.Errorf("history tail = %q, want the earlier answer", hist[2].Content)
	}
}

func TestProcessTurnCancellationAbortsRemaining(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	client := &llm.MockClient{Responses: []*llm.Message{
		assistantToolCalls(
			llm.ToolCall{ID: "c1", Name: "first", Arguments: map[string]any{}},
			llm.ToolCall{ID: "c2", Name: "second", Arguments: map[string]any{}},
			llm.ToolCall{ID: "c3", Name: "third", Arguments: map[string]any{}},
		),
	}}

	displayCount := 0
	hooks := Hooks{ToolResult: func(res *ToolResult) bool {
		displayCount++
		return res.Name == "first" // cancel while showing the first result
	}}

	m := newTestManager(t, client, hooks,
		recordingDefinition("first", &mu, &calls),
		recordingDefinition("second", &mu, &calls),
		recordingDefinition("third", &mu, &calls))

	turn, err := m.ProcessTurn(context.Background(), "do three things")
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if turn.Status != StatusCancelled {
		t.Fatalf("Status = %v, want StatusCancelled", turn.Status)
	}

	if strings.Join(calls, ",") != "first" {
		t.Errorf("executed tools = %v, want only first", calls)
	}
	if displayCount != 1 {
		t.Errorf("displayed results = %d, want 1", displayCount)
	}
	if client.CallCount() != 1 {
		t.Errorf("provider calls = %d; the LLM must not be re-invoked after cancel", client.CallCount())
	}

	// Every tool call still has a matching result in the history, the
	// skipped ones marked aborted.
	var results []llm.Message
	for _, msg := range m.History() {
		if msg.Role == "tool" {
			results = append(results, msg)
		}
	}
	if len(results) != 3 {
		t.Fatalf("tool results in history = %d, want 3", len(results))
	}
	if results[0].ToolCallID != "c1" || results[1].ToolCallID != "c2" || results[2].ToolCallID != "c3" {
		t.Errorf("result ids = %v, want c1,c2,c3", []string{results[0].ToolCallID, results[1].ToolCallID, results[2].ToolCallID})
	}
	for _, aborted := range results[1:] {
		if !strings.Contains(aborted.Content, "aborted") {
			t.Errorf("skipped call result %q should be marked aborted", aborted.Content)
		}
	}
}

func TestProcessTurnFailedToolDoesNotEndTurn(t *testing.T) {
	client := &llm.MockClient{Responses: []*llm.Message{
		assistantToolCalls(llm.ToolCall{ID: "c1", Name: "does-not-exist", Arguments: map[string]any{}}),
		{Role: "assistant", Content: "recovered"},
	}}
	m := newTestManager(t, client, Hooks{})

	turn, err := m.ProcessTurn(context.Background(), "call a bad tool")
	if err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	if turn.Status != StatusDone || turn.Reply != "recovered" {
		t.Errorf("turn = %+v, want recovery after the unknown tool", turn)
	}

	second := client.Histories[1]
	last := second[len(second)-1]
	if last.Role != "tool" || last.ToolCallID != "c1" {
		t.Errorf("the model should see the unknown_tool result, got %+v", last)
	}
	if !strings.Contains(last.Content, "unknown_tool") {
		t.Errorf("result content = %q, want unknown_tool", last.Content)
	}
}

func TestSystemPromptRefreshedEachTurn(t *testing.T) {
	client := &llm.MockClient{Responses: []*llm.Message{
		{Role: "assistant", Content: "ok"},
	}}
	m := newTestManager(t, client, Hooks{})

	if _, err := m.ProcessTurn(context.Background(), "hello"); err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	first := client.Histories[0][0].Content
	if !strings.Contains(first, `catalog=""`) {
		t.Errorf("initial system prompt %q should show an empty catalog", first)
	}

	m.cc.Session.Apply(func(sel *session.Selection) { sel.Catalog = "bronze" })

	if _, err := m.ProcessTurn(context.Background(), "again"); err != nil {
		t.Fatalf("ProcessTurn() error = %v", err)
	}
	second := client.Histories[1][0].Content
	if !strings.Contains(second, `catalog="bronze"`) {
		t.Errorf("refreshed system prompt %q should show the new catalog", second)
	}
}
