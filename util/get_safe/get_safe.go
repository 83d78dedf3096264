package getsafe

func String(payload map[string]any, key string) (string, bool) {
	if v, ok := payload[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
