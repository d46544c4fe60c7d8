package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/elk-language/go-prompt"
	istrings "github.com/elk-language/go-prompt/strings"

	"github.com/quocvuong92/lake-cli/internal/agent"
	"github.com/quocvuong92/lake-cli/internal/history"
)

// InteractiveSession holds the state of one REPL session: the agent
// manager, conversation persistence, and the completion cache.
type InteractiveSession struct {
	app            *App
	manager        *agent.Manager
	store          *history.Store
	conversationID string
	exitFlag       bool
	inputBuffer    []string

	suggestions suggestionCache
}

// suggestionCache holds names fetched in the background for context-aware
// completion. Best effort: empty caches just mean fewer suggestions.
type suggestionCache struct {
	mu         sync.Mutex
	catalogs   []string
	warehouses []string
}

func (c *suggestionCache) set(catalogs, warehouses []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.catalogs = catalogs
	c.warehouses = warehouses
}

func (c *suggestionCache) get() (catalogs, warehouses []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.catalogs, c.warehouses
}

// populate fetches catalog and warehouse names for completion. Runs in a
// goroutine at session start so the prompt never waits on the network.
func (s *InteractiveSession) populate() {
	if s.app.cc.Databricks == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var catalogs, warehouses []string
	if cats, err := s.app.cc.Databricks.ListCatalogs(ctx); err == nil {
		for _, c := range cats {
			catalogs = append(catalogs, c.Name)
		}
	}
	if whs, err := s.app.cc.Databricks.ListWarehouses(ctx); err == nil {
		for _, w := range whs {
			warehouses = append(warehouses, w.ID)
		}
	}
	s.suggestions.set(catalogs, warehouses)
}

func toSuggestions(names []string, current string) []prompt.Suggest {
	out := make([]prompt.Suggest, 0, len(names))
	for _, n := range names {
		desc := ""
		if n == current {
			desc = "(current)"
		}
		out = append(out, prompt.Suggest{Text: n, Description: desc})
	}
	return out
}

// completer suggests slash commands, and argument values where the session
// knows them: catalog names, warehouse ids and model names.
func (s *InteractiveSession) completer(d prompt.Document) ([]prompt.Suggest, istrings.RuneNumber, istrings.RuneNumber) {
	text := d.TextBeforeCursor()
	endIndex := d.CurrentRuneIndex()
	w := d.GetWordBeforeCursor()
	startIndex := endIndex - istrings.RuneCountInString(w)

	if !strings.HasPrefix(text, "/") {
		return []prompt.Suggest{}, startIndex, endIndex
	}

	catalogs, warehouses := s.suggestions.get()
	textLower := strings.ToLower(text)

	switch {
	case strings.HasPrefix(textLower, "/select-catalog "), strings.HasPrefix(textLower, "/catalog "):
		return prompt.FilterHasPrefix(toSuggestions(catalogs, s.app.cc.Session.Catalog()), w, true), startIndex, endIndex
	case strings.HasPrefix(textLower, "/select-warehouse "), strings.HasPrefix(textLower, "/warehouse "):
		return prompt.FilterHasPrefix(toSuggestions(warehouses, s.app.cc.Session.Warehouse()), w, true), startIndex, endIndex
	case strings.HasPrefix(textLower, "/select-model "):
		return prompt.FilterHasPrefix(toSuggestions(s.app.cfg.AvailableModels(), s.app.cfg.Model), w, true), startIndex, endIndex
	}

	var suggestions []prompt.Suggest
	for _, def := range s.app.registry.UserCommands(s.app.cfg.DataProvider) {
		suggestions = append(suggestions, prompt.Suggest{
			Text:        "/" + def.Name,
			Description: def.Description,
		})
	}
	suggestions = append(suggestions,
		prompt.Suggest{Text: "/clear", Description: "Clear the conversation"},
		prompt.Suggest{Text: "/resume", Description: "Resume the last saved conversation"},
		prompt.Suggest{Text: "/exit", Description: "Exit interactive mode"},
	)
	return prompt.FilterHasPrefix(suggestions, w, true), startIndex, endIndex
}

// runInteractive starts the REPL.
func (app *App) runInteractive() {
	fmt.Println("Lake - Interactive Mode")
	fmt.Printf("Data provider: %s\n", app.cfg.DataProvider)
	fmt.Printf("Model: %s via %s\n", app.cfg.Model, app.cfg.LLMProvider)
	fmt.Println("Type /help for commands, Ctrl+C or Ctrl+D to quit")
	fmt.Println("End a line with \\ for multiline input")
	fmt.Println()

	var store *history.Store
	if path, err := history.DefaultPath(); err == nil {
		store = history.NewStore(path)
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Note: could not load history: %v\n", err)
		}
	}

	session := &InteractiveSession{
		app:     app,
		manager: app.newManager(),
		store:   store,
	}
	if store != nil {
		session.conversationID = store.Begin(app.cfg.Model, app.cfg.LLMProvider)
	}
	go session.populate()

	p := prompt.New(
		session.execute,
		prompt.WithCompleter(session.completer),
		prompt.WithPrefix("> "),
		prompt.WithTitle("Lake"),
		prompt.WithPrefixTextColor(prompt.Green),
		prompt.WithSuggestionBGColor(prompt.DarkBlue),
		prompt.WithSuggestionTextColor(prompt.White),
		prompt.WithSelectedSuggestionBGColor(prompt.Cyan),
		prompt.WithSelectedSuggestionTextColor(prompt.Black),
		prompt.WithDescriptionBGColor(prompt.DarkBlue),
		prompt.WithDescriptionTextColor(prompt.LightGray),
		prompt.WithSelectedDescriptionBGColor(prompt.Cyan),
		prompt.WithSelectedDescriptionTextColor(prompt.Black),
		prompt.WithMaxSuggestion(15),
		prompt.WithCompletionOnDown(),
		prompt.WithExitChecker(func(in string, breakline bool) bool {
			return session.exitFlag
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(p *prompt.Prompt) bool {
				fmt.Println("\nGoodbye!")
				session.saveHistory()
				session.exitFlag = true
				return false
			},
		}),
		prompt.WithKeyBind(prompt.KeyBind{
			Key: prompt.ControlD,
			Fn: func(p *prompt.Prompt) bool {
				if p.Buffer().Text() == "" {
					fmt.Println("Goodbye!")
					session.saveHistory()
					session.exitFlag = true
				}
				return false
			},
		}),
	)

	p.Run()
}

// saveHistory persists the conversation if anything happened.
func (s *InteractiveSession) saveHistory() {
	if s.store == nil || len(s.manager.History()) <= 1 {
		return
	}
	s.store.Update(s.conversationID, s.manager.History())
	if err := s.store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save history: %v\n", err)
	}
}

// execute handles one REPL line: multiline continuation, session commands,
// slash commands, and agent turns.
func (s *InteractiveSession) execute(input string) {
	if s.exitFlag {
		return
	}

	if strings.HasSuffix(input, "\\") {
		s.inputBuffer = append(s.inputBuffer, strings.TrimSuffix(input, "\\"))
		fmt.Print("... ")
		return
	}
	if len(s.inputBuffer) > 0 {
		s.inputBuffer = append(s.inputBuffer, input)
		input = strings.Join(s.inputBuffer, "\n")
		s.inputBuffer = nil
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	if strings.HasPrefix(input, "/") {
		if s.handleSessionCommand(input) {
			return
		}
		s.app.dispatchSlash(context.Background(), input)
		return
	}

	fmt.Println()
	turn, err := s.app.managerTurn(s.manager, input)
	if err != nil {
		s.app.renderer.Error(err)
		return
	}
	s.app.printReply(turn)
	s.saveHistory()
	fmt.Println()
}

// handleSessionCommand covers the REPL-only commands that live outside the
// registry because they act on the session itself.
func (s *InteractiveSession) handleSessionCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "/exit", "/quit", "/q":
		fmt.Println("Goodbye!")
		s.saveHistory()
		s.exitFlag = true
		return true

	case "/clear", "/c":
		s.manager.Reset()
		if s.store != nil {
			s.conversationID = s.store.Begin(s.app.cfg.Model, s.app.cfg.LLMProvider)
		}
		fmt.Println("Conversation cleared.")
		return true

	case "/resume":
		if s.store == nil {
			fmt.Println("History not available.")
			return true
		}
		last := s.store.Last()
		if last == nil || len(last.Messages) == 0 {
			fmt.Println("No conversation to resume.")
			return true
		}
		s.manager.LoadHistory(last.Messages)
		s.conversationID = last.ID
		fmt.Printf("Resumed conversation from %s (%d messages)\n",
			last.UpdatedAt.Format("2006-01-02 15:04"), len(last.Messages)-1)
		return true
	}
	return false
}

// managerTurn runs one turn against the session's manager.
func (app *App) managerTurn(m *agent.Manager, input string) (*agent.TurnResult, error) {
	if app.cc.LLM == nil {
		return nil, fmt.Errorf("no LLM configured; set the %s provider's API key or use slash commands", app.cfg.LLMProvider)
	}
	return m.ProcessTurn(context.Background(), input)
}
