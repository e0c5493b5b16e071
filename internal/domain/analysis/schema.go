package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Violation is a single field-level schema failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

// Validation is the outcome of Validate. Exactly one of Value or Errors is set.
type Validation struct {
	Valid  bool        `json:"valid"`
	Value  *Result     `json:"value,omitempty"`
	Errors []Violation `json:"errors,omitempty"`
}

// Message joins the violations into one line.
func (v Validation) Message() string {
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

// Validate enforces the canonical shape on an untrusted candidate. Unknown
// keys are dropped; absent, null or blank owner/deadline/priority/status are
// defaulted. Values present but outside an enumeration are rejected, never
// coerced. Validate never panics.
func Validate(candidate any) Validation {
	obj, ok := asObject(candidate)
	if !ok {
		return invalid(Violation{Message: "analysis must be an object"})
	}

	var errs []Violation
	add := func(field, format string, args ...any) {
		errs = append(errs, Violation{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	out := Result{KeyPoints: []string{}, ActionItems: []ActionItem{}}

	switch s, present := obj["summary"]; {
	case !present || s == nil:
		add("summary", "is required")
	default:
		str, ok := s.(string)
		switch {
		case !ok:
			add("summary", "must be a string")
		case str == "":
			add("summary", "must not be empty")
		case utf8.RuneCountInString(str) > MaxSummaryLen:
			add("summary", "must be at most %d characters", MaxSummaryLen)
		default:
			out.Summary = str
		}
	}

	kpRaw, present := obj["keyPoints"]
	kps, isSlice := asSlice(kpRaw)
	switch {
	case !present || kpRaw == nil:
		add("keyPoints", "is required")
	case !isSlice:
		add("keyPoints", "must be an array")
	case len(kps) == 0:
		add("keyPoints", "must contain at least 1 item")
	default:
		for i, kp := range kps {
			field := fmt.Sprintf("keyPoints[%d]", i)
			str, ok := kp.(string)
			switch {
			case !ok:
				add(field, "must be a string")
			case str == "":
				add(field, "must not be empty")
			case utf8.RuneCountInString(str) > MaxKeyPointLen:
				add(field, "must be at most %d characters", MaxKeyPointLen)
			default:
				out.KeyPoints = append(out.KeyPoints, str)
			}
		}
	}

	if raw, present := obj["actionItems"]; present && raw != nil {
		items, ok := asSlice(raw)
		if !ok {
			add("actionItems", "must be an array")
		}
		for i, it := range items {
			item, itemErrs := validateItem(fmt.Sprintf("actionItems[%d]", i), it)
			if len(itemErrs) > 0 {
				errs = append(errs, itemErrs...)
				continue
			}
			out.ActionItems = append(out.ActionItems, item)
		}
	}

	if len(errs) > 0 {
		return Validation{Valid: false, Errors: errs}
	}
	return Validation{Valid: true, Value: &out}
}

func validateItem(prefix string, raw any) (ActionItem, []Violation) {
	m, ok := asObject(raw)
	if !ok {
		return ActionItem{}, []Violation{{Field: prefix, Message: "must be an object"}}
	}

	var errs []Violation
	add := func(field, format string, args ...any) {
		errs = append(errs, Violation{Field: prefix + "." + field, Message: fmt.Sprintf(format, args...)})
	}

	item := ActionItem{
		Owner:    DefaultOwner,
		Deadline: DefaultDeadline,
		Priority: PriorityMedium,
		Status:   StatusPending,
	}

	switch t, present := m["task"]; {
	case !present || t == nil:
		add("task", "is required")
	default:
		str, ok := t.(string)
		switch {
		case !ok:
			add("task", "must be a string")
		case str == "":
			add("task", "must not be empty")
		case utf8.RuneCountInString(str) > MaxTaskLen:
			add("task", "must be at most %d characters", MaxTaskLen)
		default:
			item.Task = str
		}
	}

	if s, ok, isStr := optionalString(m, "owner"); ok {
		switch {
		case !isStr:
			add("owner", "must be a string")
		case utf8.RuneCountInString(s) > MaxOwnerLen:
			add("owner", "must be at most %d characters", MaxOwnerLen)
		default:
			item.Owner = s
		}
	}

	if s, ok, isStr := optionalString(m, "deadline"); ok {
		switch {
		case !isStr:
			add("deadline", "must be a string")
		case utf8.RuneCountInString(s) > MaxDeadlineLen:
			add("deadline", "must be at most %d characters", MaxDeadlineLen)
		default:
			item.Deadline = s
		}
	}

	if s, ok, isStr := optionalString(m, "priority"); ok {
		if !isStr || !Priority(s).Valid() {
			add("priority", "must be one of [High, Medium, Low]")
		} else {
			item.Priority = Priority(s)
		}
	}

	if s, ok, isStr := optionalString(m, "status"); ok {
		if !isStr || !Status(s).Valid() {
			add("status", "must be one of [Pending, Completed]")
		} else {
			item.Status = Status(s)
		}
	}

	return item, errs
}

// optionalString reports the key's value when it is present, non-null and
// not blank. isStr is false when the value has a non-string type.
func optionalString(m map[string]any, key string) (s string, present bool, isStr bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false, false
	}
	str, isStr := v.(string)
	if !isStr {
		return "", true, false
	}
	if strings.TrimSpace(str) == "" {
		return "", false, true
	}
	return str, true, true
}

func invalid(v ...Violation) Validation {
	return Validation{Valid: false, Errors: v}
}
