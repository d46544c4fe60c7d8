package display

import (
	"fmt"
	"strings"

	"github.com/quocvuong92/lake-cli/internal/agent"
)

// Condensed builds the one-line summary shown while the agent works. It
// never pages and never fails; whatever the payload looks like, some line
// comes back.
func Condensed(res *agent.ToolResult) string {
	action := ""
	if res.Def != nil && res.Def.CondensedAction != "" {
		action = res.Def.CondensedAction
	} else {
		action = "Running " + res.Name
	}

	if res.Failed() {
		return fmt.Sprintf("%s failed: %s", action, res.Message)
	}

	if metric := condensedMetric(res.Result.Data); metric != "" {
		return fmt.Sprintf("%s (%s)", action, metric)
	}
	if msg := res.Result.Message; msg != "" {
		return fmt.Sprintf("%s: %s", action, msg)
	}
	return action
}

// condensedMetric pulls the most informative short fact out of a payload.
func condensedMetric(data map[string]any) string {
	if data == nil {
		return ""
	}
	if v, ok := data["count"]; ok {
		switch n := v.(type) {
		case int:
			return fmt.Sprintf("%d", n)
		case float64:
			return fmt.Sprintf("%d", int(n))
		}
	}
	for _, key := range []string{"catalog", "schema", "table", "warehouse_id", "database", "model"} {
		if s, ok := data[key].(string); ok && s != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
