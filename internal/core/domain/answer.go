package domain

import (
	"bytes"
	"encoding/json"
)

// Answer is a yes/no questionnaire answer. Only the JSON string "yes" decodes
// to true; any other value, of any type, decodes to false without error.
type Answer bool

func (a *Answer) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*a = false
		return nil
	}
	*a = s == "yes"
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a {
		return []byte(`"yes"`), nil
	}
	return []byte(`"no"`), nil
}

// LooseString accepts a JSON string or any other scalar, keeping the raw
// literal for non-strings. null decodes to the empty string.
type LooseString string

func (l *LooseString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = LooseString(s)
		return nil
	}
	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		*l = ""
		return nil
	}
	*l = LooseString(raw)
	return nil
}

func (l LooseString) String() string {
	return string(l)
}
