package diary

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Reflection is the structured journal payload.
type Reflection struct {
	GoodMoments  string `json:"goodMoments"`
	Achievements string `json:"achievements"`
	Gratitude    string `json:"gratitude"`
	Learnings    string `json:"learnings"`
	FutureNote   string `json:"futureNote"`
}

// Trimmed returns a copy with every field trimmed.
func (r Reflection) Trimmed() Reflection {
	return Reflection{
		GoodMoments:  strings.TrimSpace(r.GoodMoments),
		Achievements: strings.TrimSpace(r.Achievements),
		Gratitude:    strings.TrimSpace(r.Gratitude),
		Learnings:    strings.TrimSpace(r.Learnings),
		FutureNote:   strings.TrimSpace(r.FutureNote),
	}
}

// Empty reports whether every field is blank.
func (r Reflection) Empty() bool {
	return r.Trimmed() == Reflection{}
}

// Content is what an entry's stored string decodes to: either a structured
// Reflection or legacy free text written before the structured format.
// Exactly one of the two is meaningful; check Legacy before Reflection.
type Content struct {
	Reflection Reflection
	Legacy     bool
	Text       string
}

// Structured wraps a reflection.
func Structured(r Reflection) Content {
	return Content{Reflection: r}
}

// LegacyText wraps free text.
func LegacyText(s string) Content {
	return Content{Legacy: true, Text: s}
}

// ParseContent decodes a stored string. Only a JSON object is structured;
// plain text, JSON scalars and malformed JSON are all legacy text shown
// verbatim.
func ParseContent(raw string) Content {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Content{}
	}
	if trimmed[0] != '{' {
		return LegacyText(raw)
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	var r Reflection
	if err := dec.Decode(&r); err != nil || dec.More() {
		return LegacyText(raw)
	}
	return Structured(r)
}

// Empty reports whether there is nothing to show.
func (c Content) Empty() bool {
	if c.Legacy {
		return strings.TrimSpace(c.Text) == ""
	}
	return c.Reflection.Empty()
}

// Encode produces the string to store. Empty content encodes to "", which
// the store treats as a delete.
func (c Content) Encode() string {
	if c.Empty() {
		return ""
	}
	if c.Legacy {
		return strings.TrimSpace(c.Text)
	}
	b, _ := json.Marshal(c.Reflection.Trimmed())
	return string(b)
}

// Fields is the display form: legacy text lands in the good moments field
// and the rest stay blank.
func (c Content) Fields() Reflection {
	if c.Legacy {
		return Reflection{GoodMoments: c.Text}
	}
	return c.Reflection
}

// FutureNote is the message left for next year, if any.
func (c Content) FutureNote() string {
	if c.Legacy {
		return ""
	}
	return strings.TrimSpace(c.Reflection.FutureNote)
}
