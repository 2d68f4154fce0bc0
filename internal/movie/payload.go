package movie

// Helpers for picking typed values out of loose upstream payloads.
// Missing or malformed fields read as absent, never as errors.

func getString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func getMap(m map[string]any, key string) map[string]any {
	obj, _ := m[key].(map[string]any)
	return obj
}

func getList(m map[string]any, key string) []any {
	items, _ := m[key].([]any)
	return items
}

func getInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func getFloat(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func floatPtr(m map[string]any, key string) *float64 {
	if v, ok := getFloat(m, key); ok {
		return &v
	}
	return nil
}

func intPtr(m map[string]any, key string) *int {
	if v, ok := getFloat(m, key); ok {
		i := int(v)
		return &i
	}
	return nil
}
