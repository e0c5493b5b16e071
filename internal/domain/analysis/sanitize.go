package analysis

import "strings"

// Sanitize repairs a loosely typed candidate (decoded LLM JSON or heuristic
// output) into a shape likely to pass Validate. It returns nil when raw is
// not an object and never panics. Sanitize is idempotent.
func Sanitize(raw any) map[string]any {
	obj, ok := asObject(raw)
	if !ok {
		return nil
	}

	out := map[string]any{
		"summary":     "",
		"keyPoints":   []any{},
		"actionItems": []any{},
	}
	if s, ok := obj["summary"].(string); ok {
		out["summary"] = strings.TrimSpace(s)
	}

	if kps, ok := asSlice(obj["keyPoints"]); ok {
		clean := make([]any, 0, len(kps))
		for _, kp := range kps {
			s, ok := kp.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				clean = append(clean, s)
			}
		}
		out["keyPoints"] = clean
	}

	if items, ok := asSlice(obj["actionItems"]); ok {
		clean := make([]any, 0, len(items))
		for _, it := range items {
			m, ok := asObject(it)
			if !ok {
				continue
			}
			task, ok := m["task"].(string)
			if !ok || strings.TrimSpace(task) == "" {
				continue
			}
			clean = append(clean, map[string]any{
				"task":     strings.TrimSpace(task),
				"owner":    trimmedOr(m["owner"], DefaultOwner),
				"deadline": trimmedOr(m["deadline"], DefaultDeadline),
				"priority": string(coercePriority(m["priority"])),
				"status":   string(coerceStatus(m["status"])),
			})
		}
		out["actionItems"] = clean
	}

	return out
}

func trimmedOr(v any, def string) string {
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return def
}

func coercePriority(v any) Priority {
	if s, ok := v.(string); ok && Priority(s).Valid() {
		return Priority(s)
	}
	return PriorityMedium
}

func coerceStatus(v any) Status {
	if s, ok := v.(string); ok && Status(s).Valid() {
		return Status(s)
	}
	return StatusPending
}

// asObject accepts decoded JSON objects and the typed shapes of this package.
func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		if t == nil {
			return nil, false
		}
		return t, true
	case Result:
		return t.Candidate(), true
	case *Result:
		if t == nil {
			return nil, false
		}
		return t.Candidate(), true
	case ActionItem:
		return t.candidate(), true
	case map[string]string:
		if t == nil {
			return nil, false
		}
		m := make(map[string]any, len(t))
		for k, s := range t {
			m[k] = s
		}
		return m, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out, true
	case []ActionItem:
		out := make([]any, len(t))
		for i, a := range t {
			out[i] = a.candidate()
		}
		return out, true
	}
	return nil, false
}
