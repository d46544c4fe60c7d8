package display

import (
	"errors"
	"fmt"

	"github.com/quocvuong92/lake-cli/internal/agent"
	"github.com/quocvuong92/lake-cli/internal/command"
)

// Router decides between full and condensed rendering. Direct invocations
// always get the full view; agent tool calls follow the definition's
// display mode and the result's display vote.
type Router struct {
	r *Renderer
}

// NewRouter wraps a renderer.
func NewRouter(r *Renderer) *Router {
	return &Router{r: r}
}

// RenderDirect shows a slash-invoked result in full.
func (rt *Router) RenderDirect(res *command.Result) Outcome {
	if !res.Success {
		rt.r.Error(errors.New(res.Message))
		return Completed
	}
	if table, ok := TableFromData(res.Data); ok {
		outcome := rt.r.RenderTable(table)
		if res.Message != "" {
			rt.r.Println(dimStyle.Render(res.Message))
		}
		return outcome
	}
	if res.Message != "" {
		rt.r.Success(res.Message)
	}
	return Completed
}

// ToolResult renders one agent tool result and reports whether the user
// cancelled the turn while paging. Plugs straight into agent.Hooks.
func (rt *Router) ToolResult(res *agent.ToolResult) (cancelled bool) {
	if res.Failed() {
		rt.r.Println(errorStyle.Render(fmt.Sprintf("  %s", Condensed(res))))
		return false
	}

	full := false
	if res.Def != nil {
		switch res.Def.AgentDisplay {
		case command.DisplayFull:
			full = true
		case command.DisplayConditional:
			full = res.Result.ShouldDisplay(res.Def)
		}
	}

	if full {
		if table, ok := TableFromData(res.Result.Data); ok {
			return rt.r.RenderTable(table) == Cancelled
		}
		if res.Result.Message != "" {
			rt.r.Println("  " + res.Result.Message)
		}
		return false
	}

	rt.r.Println(dimStyle.Render("  " + Condensed(res)))
	return false
}
