package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pauljones0/rental-board/internal/util"
)

// Text is a feed string field that tolerates numbers and booleans.
// null, objects and arrays decode to the empty string.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	case '{', '[':
		*t = ""
	default:
		*t = Text(data)
	}
	return nil
}

func (t Text) String() string {
	return string(t)
}

// Trimmed returns the text without surrounding whitespace.
func (t Text) Trimmed() string {
	return strings.TrimSpace(string(t))
}

// Number is a numeric feed field. Raw keeps the text as it appeared in the feed
// so search and display never lose the original value; Valid reports whether
// Raw parsed as a finite number.
type Number struct {
	Value float64
	Valid bool
	Raw   string
}

// ParseNumber builds a Number from free text.
func ParseNumber(s string) Number {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Number{}
	}
	v, ok := util.ParseFloat(raw)
	if !ok {
		return Number{Raw: raw}
	}
	return Number{Value: v, Valid: true, Raw: raw}
}

// NumberOf returns a valid Number for v.
func NumberOf(v float64) Number {
	return Number{Value: v, Valid: true, Raw: util.FormatFloat(v)}
}

func (n *Number) UnmarshalJSON(data []byte) error {
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	*n = ParseNumber(string(t))
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	switch {
	case n.Valid:
		return json.Marshal(n.Value)
	case n.Raw != "":
		return json.Marshal(n.Raw)
	default:
		return []byte("null"), nil
	}
}

func (n Number) String() string {
	return n.Raw
}

// OrZero returns the value, or 0 when the field is missing or not numeric.
func (n Number) OrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// TextList is an ordered list of text values. A single JSON string decodes
// to a one-element list.
type TextList []Text

func (l *TextList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []Text
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var t Text
	if err := t.UnmarshalJSON(data); err != nil {
		return err
	}
	if t.Trimmed() == "" {
		*l = nil
		return nil
	}
	*l = TextList{t}
	return nil
}

// Strings returns the non-blank entries in order.
func (l TextList) Strings() []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		if s := t.Trimmed(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
