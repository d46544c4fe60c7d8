package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quocvuong92/lake-cli/internal/agent"
	"github.com/quocvuong92/lake-cli/internal/command"
	"github.com/quocvuong92/lake-cli/internal/config"
	"github.com/quocvuong92/lake-cli/internal/constants"
	"github.com/quocvuong92/lake-cli/internal/databricks"
	"github.com/quocvuong92/lake-cli/internal/display"
	"github.com/quocvuong92/lake-cli/internal/llm"
	"github.com/quocvuong92/lake-cli/internal/logging"
	"github.com/quocvuong92/lake-cli/internal/redshift"
	"github.com/quocvuong92/lake-cli/internal/session"
)

// App holds the wired application state.
type App struct {
	cfg      *config.Config
	registry *command.Registry
	cc       *command.Context
	renderer *display.Renderer
	router   *display.Router

	verbose    bool
	listModels bool
}

// NewApp creates an App with default configuration.
func NewApp() *App {
	return &App{cfg: config.NewConfig()}
}

// Execute runs the root command.
func Execute() {
	app := NewApp()

	rootCmd := &cobra.Command{
		Use:   "lake [request]",
		Short: "An interactive shell for cloud data platforms",
		Long: `Lake is an interactive shell for cloud data-platform work: browse
catalogs, run SQL, monitor jobs and tag PII, either with explicit slash
commands or by describing what you want and letting the model drive the
same commands as tools.

Examples:
  lake "how many tables are in the bronze catalog?"
  lake -i                      # Interactive mode
  lake /list-catalogs          # One-shot slash command
  lake --list-models`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			app.run(cmd, args)
		},
	}

	rootCmd.Flags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVarP(&app.cfg.Render, "render", "r", false, "Render answers as markdown")
	rootCmd.Flags().BoolVarP(&app.cfg.Interactive, "interactive", "i", false, "Interactive mode")
	rootCmd.Flags().StringVarP(&app.cfg.Model, "model", "m", "", "Model name (e.g., claude-sonnet-4-5)")
	rootCmd.Flags().StringVar(&app.cfg.LLMProvider, "llm-provider", "", "LLM provider: anthropic, openai, or bedrock")
	rootCmd.Flags().StringVar(&app.cfg.DataProvider, "data-provider", "", "Data provider: databricks or aws_redshift")
	rootCmd.Flags().BoolVar(&app.listModels, "list-models", false, "List available models")

	rootCmd.AddCommand(NewLoginCmd())
	rootCmd.AddCommand(NewLogoutCmd())
	rootCmd.AddCommand(NewAuthStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup validates config and wires clients, session, registry and display.
func (app *App) setup() error {
	if err := app.cfg.Validate(); err != nil {
		return err
	}

	sess := session.New(session.Selection{
		Catalog:   app.cfg.ActiveCatalog,
		Schema:    app.cfg.ActiveSchema,
		Warehouse: app.cfg.ActiveWarehouse,
		Database:  app.cfg.ActiveDatabase,
		Model:     app.cfg.Model,
	})
	sess.OnCommit(func(sel session.Selection) {
		err := config.SaveSelections(config.SelectionsConfig{
			Catalog:   sel.Catalog,
			Schema:    sel.Schema,
			Warehouse: sel.Warehouse,
			Database:  sel.Database,
		})
		if err != nil {
			logging.Warn("failed to persist selections", logging.Fields{"error": err.Error()})
		}
	})

	cc := &command.Context{Config: app.cfg, Session: sess}

	switch app.cfg.DataProvider {
	case constants.ProviderDatabricks:
		if app.cfg.WorkspaceURL != "" && app.cfg.Token != "" {
			cc.Databricks = databricks.NewClient(app.cfg.WorkspaceURL, app.cfg.Token)
		}
	case constants.ProviderRedshift:
		if app.cfg.RedshiftWorkgroup != "" {
			client, err := redshift.NewClient(context.Background(),
				app.cfg.RedshiftWorkgroup, app.cfg.RedshiftDatabase, app.cfg.RedshiftSecretARN)
			if err != nil {
				return fmt.Errorf("failed to connect to Redshift: %w", err)
			}
			cc.Redshift = client
		}
	}

	// An LLM is optional for pure slash-command use; commands that need
	// one fail with a clear message instead.
	if client, err := llm.NewClient(app.cfg); err == nil {
		cc.LLM = client
	} else {
		logging.Debug("no LLM client available", logging.Fields{"error": err.Error()})
	}

	registry := command.NewRegistry()
	command.RegisterBuiltins(registry)

	app.registry = registry
	app.cc = cc
	app.renderer = display.NewRenderer()
	app.router = display.NewRouter(app.renderer)
	return nil
}

func (app *App) run(cmd *cobra.Command, args []string) {
	if app.verbose {
		logging.SetLevel(logging.LevelDebug)
	} else {
		logging.SetLevel(logging.LevelWarn)
	}
	if path := os.Getenv("LAKE_LOG_FILE"); path != "" {
		if err := logging.EnableFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	if app.listModels {
		_ = app.cfg.Validate()
		fmt.Printf("Provider: %s\n", app.cfg.LLMProvider)
		for _, m := range app.cfg.AvailableModels() {
			marker := "  "
			if m == app.cfg.Model {
				marker = "* "
			}
			fmt.Println(marker + m)
		}
		return
	}

	if err := app.setup(); err != nil {
		display.NewRenderer().Error(err)
		os.Exit(1)
	}

	if app.cfg.Interactive {
		app.runInteractive()
		return
	}

	if len(args) == 0 {
		_ = cmd.Help()
		os.Exit(1)
	}

	app.runOnce(args[0])
}

// runOnce handles a single request: a slash command renders directly, and
// anything else goes through one agent turn.
func (app *App) runOnce(input string) {
	ctx := context.Background()

	if len(input) > 0 && input[0] == '/' {
		app.dispatchSlash(ctx, input)
		return
	}

	if app.cc.LLM == nil {
		app.renderer.Error(fmt.Errorf("no LLM configured; set the %s provider's API key or use slash commands", app.cfg.LLMProvider))
		os.Exit(1)
	}

	manager := app.newManager()
	turn, err := manager.ProcessTurn(ctx, input)
	if err != nil {
		app.renderer.Error(err)
		os.Exit(1)
	}
	app.printReply(turn)
}

// newManager wires an agent manager with display hooks.
func (app *App) newManager() *agent.Manager {
	exec := agent.NewExecutor(app.registry, app.cc)

	var sp *display.Spinner
	hooks := agent.Hooks{
		ToolResult: app.router.ToolResult,
		LLMCallStart: func() {
			sp = display.NewSpinner("Thinking...")
			sp.Start()
		},
		LLMCallEnd: func() {
			if sp != nil {
				sp.Stop()
			}
		},
	}
	return agent.NewManager(app.cc.LLM, exec, app.cc, hooks)
}

func (app *App) printReply(turn *agent.TurnResult) {
	if turn.Reply == "" {
		return
	}
	if app.cfg.Render && turn.Status == agent.StatusDone {
		fmt.Print(display.Markdown(turn.Reply))
		return
	}
	fmt.Println(turn.Reply)
}
