package subscriptions

import (
	"fmt"
	"strconv"
	"strings"

	"mikanto/internal/services"
)

// DefaultMarker is the value an extracted edit uses for "not specified".
const DefaultMarker = "default"

// EditResult describes what ApplyEdit changed.
type EditResult struct {
	Title   string
	Created bool
	// Changed lists the keys whose value an update actually changed.
	Changed []string
}

// ApplyEdit merges an extracted edit record into list.
//
// A record carrying an "error" key, or whose title is missing or "default",
// is rejected with a validation error. When a subscription with the same
// title exists, each key the entry already has is overwritten unless the
// edit's value is "default"; keys the entry lacks are never added. Otherwise a new subscription is appended with url "",
// enable true, savedir equal to the title, and rule "" standing in for
// "default" values.
func ApplyEdit(list *List, edit map[string]any) (EditResult, error) {
	if list == nil {
		return EditResult{}, services.Wrap(services.ErrValidation, "subscriptions", "edit", "no subscription list", nil)
	}
	if reason, ok := edit["error"]; ok {
		return EditResult{}, services.Wrap(services.ErrValidation, "subscriptions", "edit", fmt.Sprintf("edit rejected: %v", reason), nil)
	}
	title, _ := edit["title"].(string)
	title = strings.TrimSpace(title)
	if title == "" || title == DefaultMarker {
		return EditResult{}, services.Wrap(services.ErrValidation, "subscriptions", "edit", "edit has no usable title", nil)
	}

	if idx := list.Find(title); idx >= 0 {
		sub := &list.Mikan[idx]
		var changed []string
		for _, key := range []string{"url", "title", "enable", "savedir", "rule"} {
			value, ok := edit[key]
			if !ok || isDefault(value) || !sub.HasKey(key) {
				continue
			}
			before := *sub
			if err := assign(sub, key, value); err != nil {
				return EditResult{}, err
			}
			if !sameValue(before, *sub, key) {
				changed = append(changed, key)
			}
		}
		return EditResult{Title: title, Changed: changed}, nil
	}

	enabled := true
	sub := Subscription{Title: title, SaveDir: title, Enable: &enabled}
	for _, key := range []string{"url", "enable", "savedir", "rule"} {
		value, ok := edit[key]
		if !ok || isDefault(value) {
			continue
		}
		if err := assign(&sub, key, value); err != nil {
			return EditResult{}, err
		}
	}
	list.Mikan = append(list.Mikan, sub)
	return EditResult{Title: title, Created: true}, nil
}

func sameValue(a, b Subscription, key string) bool {
	switch key {
	case "url":
		return a.URL == b.URL
	case "title":
		return a.Title == b.Title
	case "savedir":
		return a.SaveDir == b.SaveDir
	case "rule":
		return a.Rule == b.Rule
	case "enable":
		return (a.Enable == nil) == (b.Enable == nil) && (a.Enable == nil || *a.Enable == *b.Enable)
	}
	return true
}

func isDefault(value any) bool {
	s, ok := value.(string)
	return ok && s == DefaultMarker
}

func assign(sub *Subscription, key string, value any) error {
	if key == "enable" {
		enabled, err := toBool(value)
		if err != nil {
			return services.Wrap(services.ErrValidation, "subscriptions", "edit", "enable", err)
		}
		sub.Enable = &enabled
		return nil
	}
	text := toString(value)
	switch key {
	case "url":
		sub.URL = text
	case "title":
		sub.Title = text
	case "savedir":
		sub.SaveDir = text
	case "rule":
		sub.Rule = text
	}
	return nil
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	case float64:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot interpret %v as a boolean", value)
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
