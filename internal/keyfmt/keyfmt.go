// Package keyfmt turns raw field names into display labels and applies the
// pinned-key ordering policy used at the top of record rendering.
package keyfmt

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mode selects how labels are capitalised.
type Mode string

const (
	// ModeSimple upper-cases only the first character of the label.
	ModeSimple Mode = "simple"
	// ModeTitle upper-cases the first character of every word.
	ModeTitle Mode = "title"
)

// ValidModes lists the accepted mode names.
var ValidModes = []Mode{ModeSimple, ModeTitle}

// ParseMode validates a mode name. Empty selects ModeTitle.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return ModeTitle, nil
	case ModeSimple:
		return ModeSimple, nil
	case ModeTitle, "titlecase", "title-case":
		return ModeTitle, nil
	}
	return "", fmt.Errorf("invalid key format %q: valid values are simple, title", s)
}

// Formatter renders labels in a single mode. A renderer owns exactly one
// Formatter so every label in a tree is capitalised the same way.
type Formatter struct {
	mode Mode
}

// New returns a Formatter for mode; unknown modes fall back to ModeTitle.
func New(mode Mode) Formatter {
	if mode != ModeSimple {
		mode = ModeTitle
	}
	return Formatter{mode: mode}
}

// Mode reports the formatter's mode.
func (f Formatter) Mode() Mode { return f.mode }

// Format replaces underscores with spaces and capitalises according to the
// formatter's mode.
func (f Formatter) Format(raw string) string {
	s := strings.ReplaceAll(raw, "_", " ")
	if f.mode == ModeSimple {
		return upperFirst(s)
	}
	words := strings.Split(s, " ")
	for i, w := range words {
		words[i] = upperFirst(w)
	}
	return strings.Join(words, " ")
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Order returns keys with every key matching an entry of priority
// (case-insensitively) moved to the front, in priority order. All other keys
// keep their relative order. keys is not modified.
func Order(keys []string, priority []string) []string {
	if len(priority) == 0 || len(keys) == 0 {
		return append([]string(nil), keys...)
	}

	out := make([]string, 0, len(keys))
	taken := make([]bool, len(keys))
	for _, p := range priority {
		for i, k := range keys {
			if !taken[i] && strings.EqualFold(k, p) {
				out = append(out, k)
				taken[i] = true
				break
			}
		}
	}
	for i, k := range keys {
		if !taken[i] {
			out = append(out, k)
		}
	}
	return out
}
