package command

// Argument accessors. Schema validation runs before any handler, so these
// only normalize JSON decoding quirks (numbers arriving as float64) and
// fill defaults for optional arguments.

func stringArg(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return v
	}
	return ""
}

func stringArgDefault(args map[string]any, name, def string) string {
	if v := stringArg(args, name); v != "" {
		return v
	}
	return def
}

func intArg(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	return def
}

func boolArg(args map[string]any, name string) bool {
	v, _ := args[name].(bool)
	return v
}
