package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// StringList is an order-irrelevant list of classification labels. Older data
// stores some of these fields as a bare string; decoding turns such a value
// into a singleton list so the rest of the code only sees lists.
type StringList []string

// UnmarshalJSON accepts a JSON array of strings, a bare string or null.
// An empty bare string decodes to an empty list and null array elements are dropped.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = StringList{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*l = StringList{}
			return nil
		}
		*l = StringList{s}
		return nil
	case '[':
		var raw []*string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("list field: %w", err)
		}
		out := make(StringList, 0, len(raw))
		for _, v := range raw {
			if v != nil {
				out = append(out, *v)
			}
		}
		*l = out
		return nil
	}
	return fmt.Errorf("list field: unexpected JSON value %s", string(data))
}

// MarshalJSON always writes an array, never null.
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Contains reports whether v is present (exact match).
func (l StringList) Contains(v string) bool {
	for _, s := range l {
		if s == v {
			return true
		}
	}
	return false
}

// Clone returns an independent copy; nil stays an empty list.
func (l StringList) Clone() StringList {
	out := make(StringList, len(l))
	copy(out, l)
	return out
}

// Toggle removes v when present and appends it otherwise.
func (l StringList) Toggle(v string) StringList {
	if l.Contains(v) {
		return l.Without(v)
	}
	return append(l.Clone(), v)
}

// Without returns the list minus every occurrence of v.
func (l StringList) Without(v string) StringList {
	out := make(StringList, 0, len(l))
	for _, s := range l {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

// Union appends the values not already present, keeping first-seen order.
func (l StringList) Union(values ...string) StringList {
	out := l.Clone()
	for _, v := range values {
		if v == "" || out.Contains(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
