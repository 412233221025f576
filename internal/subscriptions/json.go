package subscriptions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// UnmarshalJSON implements json.Unmarshaler, keeping unknown keys and the
// key order.
func (s *Subscription) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	keys, err := objectKeys(data)
	if err != nil {
		return err
	}
	s.keys = keys
	targets := map[string]*string{"url": &s.URL, "title": &s.Title, "savedir": &s.SaveDir, "rule": &s.Rule}
	for key, dst := range targets {
		value, ok := raw[key]
		if !ok {
			continue
		}
		if err := decodeOptionalString(value, dst); err != nil {
			return fmt.Errorf("subscription %s: %w", key, err)
		}
		delete(raw, key)
	}
	if value, ok := raw["enable"]; ok {
		var loose any
		if err := json.Unmarshal(value, &loose); err != nil {
			return fmt.Errorf("subscription enable: %w", err)
		}
		if loose != nil {
			enabled, err := toBool(loose)
			if err != nil {
				return fmt.Errorf("subscription enable: %w", err)
			}
			s.Enable = &enabled
		}
		delete(raw, "enable")
	}
	if len(raw) > 0 {
		s.extra = raw
	}
	return nil
}

// MarshalJSON implements json.Marshaler. A decoded entry is written back
// with exactly its original keys in their original order. An entry built in
// code gets url, title, enable, savedir and rule followed by unknown keys.
func (s Subscription) MarshalJSON() ([]byte, error) {
	if s.keys == nil {
		fields := []field{{"url", s.URL}, {"title", s.Title}}
		if s.Enable != nil {
			fields = append(fields, field{"enable", *s.Enable})
		}
		fields = append(fields, field{"savedir", s.SaveDir}, field{"rule", s.Rule})
		return writeObject(fields, s.extra)
	}

	fields := make([]field, 0, len(s.keys))
	for _, key := range s.keys {
		switch key {
		case "url":
			fields = append(fields, field{key, s.URL})
		case "title":
			fields = append(fields, field{key, s.Title})
		case "savedir":
			fields = append(fields, field{key, s.SaveDir})
		case "rule":
			fields = append(fields, field{key, s.Rule})
		case "enable":
			if s.Enable == nil {
				fields = append(fields, field{key, nil})
			} else {
				fields = append(fields, field{key, *s.Enable})
			}
		default:
			if value, ok := s.extra[key]; ok {
				fields = append(fields, field{key, value})
			}
		}
	}
	return writeObject(fields, nil)
}

// objectKeys lists the keys of a JSON object in document order, without
// duplicates.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	keys := []string{}
	seen := map[string]bool{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping unknown keys.
func (l *List) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if value, ok := raw["mikan"]; ok {
		if err := json.Unmarshal(value, &l.Mikan); err != nil {
			return fmt.Errorf("mikan: %w", err)
		}
		delete(raw, "mikan")
	}
	if value, ok := raw["proxy"]; ok {
		if err := json.Unmarshal(value, &l.Proxy); err != nil {
			return fmt.Errorf("proxy: %w", err)
		}
		delete(raw, "proxy")
	}
	if value, ok := raw["aria2"]; ok {
		if err := json.Unmarshal(value, &l.Aria2); err != nil {
			return fmt.Errorf("aria2: %w", err)
		}
		delete(raw, "aria2")
	}
	if len(raw) > 0 {
		l.extra = raw
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) {
	mikan := l.Mikan
	if mikan == nil {
		mikan = []Subscription{}
	}
	fields := []field{{"mikan", mikan}}
	if l.Proxy != nil {
		fields = append(fields, field{"proxy", l.Proxy})
	}
	if l.Aria2 != nil {
		fields = append(fields, field{"aria2", l.Aria2})
	}
	return writeObject(fields, l.extra)
}

type field struct {
	key   string
	value any
}

// writeObject encodes fields in order, then extra keys sorted by name.
func writeObject(fields []field, extra map[string]json.RawMessage) ([]byte, error) {
	keys := make([]string, 0, len(extra))
	for key := range extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fields = append(fields, field{key, extra[key]})
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalVerbatim(f.key)
		if err != nil {
			return nil, err
		}
		value, err := marshalVerbatim(f.value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalVerbatim is json.Marshal without HTML escaping.
func marshalVerbatim(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeOptionalString(value json.RawMessage, dst *string) error {
	var s *string
	if err := json.Unmarshal(value, &s); err != nil {
		return err
	}
	if s != nil {
		*dst = *s
	}
	return nil
}
