package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/quocvuong92/lake-cli/internal/agent"
	"github.com/quocvuong92/lake-cli/internal/command"
	"github.com/quocvuong92/lake-cli/internal/llm"
)

// parseSlashArgs binds the words after the command name to the definition's
// positional arguments. The last positional swallows the remaining words so
// "/run-sql select * from t" needs no quoting. Values are coerced to the
// schema's declared type.
func parseSlashArgs(def *command.Definition, rest string) (map[string]any, error) {
	args := map[string]any{}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return args, nil
	}

	positional := def.PositionalArgs()
	if len(positional) == 0 {
		return nil, fmt.Errorf("command %q takes no arguments", def.Name)
	}

	words := strings.Fields(rest)
	for i, name := range positional {
		if i >= len(words) {
			break
		}
		value := words[i]
		if i == len(positional)-1 {
			value = strings.Join(words[i:], " ")
		}
		coerced, err := coerceArg(def, name, value)
		if err != nil {
			return nil, err
		}
		args[name] = coerced
	}
	return args, nil
}

func coerceArg(def *command.Definition, name, value string) (any, error) {
	schema, _ := def.Parameters[name].(map[string]any)
	typ, _ := schema["type"].(string)
	switch typ {
	case "integer":
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("argument %q must be a number", name)
		}
		return n, nil
	case "boolean":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("argument %q must be true or false", name)
		}
		return b, nil
	default:
		return value, nil
	}
}

// dispatchSlash runs one slash command and renders its result in full.
// Direct invocations share the executor with the agent path, so argument
// validation and panic recovery behave identically; only the rendering
// differs.
func (app *App) dispatchSlash(ctx context.Context, input string) {
	name, rest, _ := strings.Cut(strings.TrimPrefix(input, "/"), " ")
	if name == "" {
		app.renderer.Error(errors.New("empty command. Type /help for the list"))
		return
	}

	def, err := app.registry.Resolve(name)
	if err != nil || !def.VisibleToUser {
		app.renderer.Error(fmt.Errorf("unknown command /%s. Type /help for the list", name))
		return
	}
	if !def.ForProvider(app.cfg.DataProvider) {
		app.renderer.Error(fmt.Errorf("/%s is not available with the %s provider", name, app.cfg.DataProvider))
		return
	}

	args, err := parseSlashArgs(def, rest)
	if err != nil {
		app.renderer.Error(err)
		if def.Usage != "" {
			app.renderer.Println("Usage: " + def.Usage)
		}
		return
	}

	exec := agent.NewExecutor(app.registry, app.cc)
	res := exec.ExecuteDirect(ctx, llm.ToolCall{
		ID:        uuid.NewString(),
		Name:      name,
		Arguments: args,
	})
	if res.Failed() {
		app.renderer.Error(errors.New(res.Message))
		if res.Kind == agent.ErrorInvalidArguments && def.Usage != "" {
			app.renderer.Println("Usage: " + def.Usage)
		}
		return
	}
	app.router.RenderDirect(res.Result)
}
