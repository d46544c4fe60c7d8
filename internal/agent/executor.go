// Package agent runs the tool-calling conversation: the Executor turns one
// model tool call into one tool result, and the Manager drives the rounds
// of a turn around it.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/quocvuong92/lake-cli/internal/command"
	"github.com/quocvuong92/lake-cli/internal/llm"
	"github.com/quocvuong92/lake-cli/internal/logging"
)

// ErrorKind classifies a failed tool call for the model.
type ErrorKind string

const (
	ErrorNone             ErrorKind = ""
	ErrorUnknownTool      ErrorKind = "unknown_tool"
	ErrorInvalidArguments ErrorKind = "invalid_arguments"
	ErrorHandlerError     ErrorKind = "handler_error"
	// ErrorAborted marks calls the manager never executed because the
	// user cancelled mid-round.
	ErrorAborted ErrorKind = "aborted"
)

// ToolResult is the outcome of exactly one tool call. CallID always carries
// the model's correlation id, on success and on every failure kind alike;
// a result that lost its id could never be appended to the history.
type ToolResult struct {
	CallID  string
	Name    string
	Kind    ErrorKind
	Message string

	// Result is the handler payload; nil whenever Kind is set.
	Result *command.Result
	// Def is the resolved definition, kept for display routing. Nil for
	// unknown tools.
	Def *command.Definition
}

// Failed reports whether the call produced an error of any kind.
func (r *ToolResult) Failed() bool { return r.Kind != ErrorNone }

// Payload renders the content sent back to the model as the tool message.
func (r *ToolResult) Payload() string {
	if r.Failed() {
		data, _ := json.Marshal(map[string]any{
			"error":   string(r.Kind),
			"message": r.Message,
		})
		return string(data)
	}
	data, err := json.Marshal(map[string]any{
		"success": r.Result.Success,
		"message": r.Result.Message,
		"data":    r.Result.Data,
	})
	if err != nil {
		// Payloads are built from JSON-decoded values plus our own rows,
		// so this only trips on exotic handler data. Degrade to the
		// message rather than dropping the result.
		return fmt.Sprintf(`{"success":%t,"message":%q}`, r.Result.Success, r.Result.Message)
	}
	return string(data)
}

// abortedResult synthesizes the result for a call skipped after a
// cancellation.
func abortedResult(call llm.ToolCall) *ToolResult {
	return &ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Kind:    ErrorAborted,
		Message: "tool call aborted: user cancelled the turn",
	}
}

// Executor executes tool calls against the command registry.
type Executor struct {
	registry *command.Registry
	cc       *command.Context
	timeout  time.Duration
	log      *logging.Logger
}

// NewExecutor builds an executor. The handler timeout comes from config.
func NewExecutor(registry *command.Registry, cc *command.Context) *Executor {
	return &Executor{
		registry: registry,
		cc:       cc,
		timeout:  cc.Config.HandlerTimeout,
		log:      logging.DefaultLogger,
	}
}

// Tools returns the commands exposed to the model for the active data
// provider, in registration order.
func (e *Executor) Tools() []llm.Tool {
	defs := e.registry.AgentCommands(e.cc.Config.DataProvider)
	tools := make([]llm.Tool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, llm.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema(),
		})
	}
	return tools
}

// Execute runs one model-issued tool call to completion. It never returns
// an error: every failure becomes a ToolResult the model can read, so one
// bad call never ends the turn. Commands hidden from the agent, or scoped
// to another data provider, look like unknown tools to the model.
func (e *Executor) Execute(ctx context.Context, call llm.ToolCall) *ToolResult {
	def, err := e.registry.Resolve(call.Name)
	if err != nil || !def.VisibleToAgent || !def.ForProvider(e.cc.Config.DataProvider) {
		e.log.Warn("unknown tool requested", logging.Fields{"tool": call.Name})
		return &ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Kind:    ErrorUnknownTool,
			Message: fmt.Sprintf("unknown tool %q", call.Name),
		}
	}
	return e.run(ctx, def, call)
}

// ExecuteDirect runs a user-typed command. The agent-visibility gate does
// not apply: user-only commands like help stay invocable from the prompt.
// The caller has already resolved availability, so only resolution itself
// can fail here.
func (e *Executor) ExecuteDirect(ctx context.Context, call llm.ToolCall) *ToolResult {
	def, err := e.registry.Resolve(call.Name)
	if err != nil {
		return &ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Kind:    ErrorUnknownTool,
			Message: fmt.Sprintf("unknown tool %q", call.Name),
		}
	}
	return e.run(ctx, def, call)
}

// run validates the arguments and invokes the handler, shared by both the
// agent and the direct path.
func (e *Executor) run(ctx context.Context, def *command.Definition, call llm.ToolCall) *ToolResult {
	if msg := validateArguments(def, call.Arguments); msg != "" {
		return &ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Kind:    ErrorInvalidArguments,
			Message: msg,
			Def:     def,
		}
	}

	e.log.Debug("executing tool", logging.Fields{"tool": call.Name, "call_id": call.ID})
	res, err := e.invoke(ctx, def, call.Arguments)
	if err != nil {
		e.log.Error("tool handler failed", err, logging.Fields{"tool": call.Name})
		return &ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Kind:    ErrorHandlerError,
			Message: err.Error(),
			Def:     def,
		}
	}

	return &ToolResult{
		CallID: call.ID,
		Name:   call.Name,
		Result: res,
		Def:    def,
	}
}

// invoke runs the handler with the configured timeout and turns panics into
// errors so a buggy handler cannot take the session down.
func (e *Executor) invoke(ctx context.Context, def *command.Definition, args map[string]any) (res *command.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	hctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err = def.Handler(hctx, e.cc, args)
	if err == nil && res == nil {
		err = fmt.Errorf("handler returned no result")
	}
	return res, err
}

// validateArguments checks args against the definition's schema and returns
// a message naming every offending field, or "" when the args are valid.
func validateArguments(def *command.Definition, args map[string]any) string {
	if args == nil {
		args = map[string]any{}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(def.InputSchema()),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Sprintf("invalid arguments: %v", err)
	}
	if result.Valid() {
		return ""
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		field := verr.Field()
		if field == "(root)" {
			if prop, ok := verr.Details()["property"].(string); ok {
				field = prop
			}
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, verr.Description()))
	}
	sort.Strings(msgs)
	return "invalid arguments: " + strings.Join(msgs, "; ")
}
