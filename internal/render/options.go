package render

import (
	"fmt"

	"github.com/oakwood-commons/kvtree/internal/keyfmt"
	"github.com/oakwood-commons/kvtree/internal/shape"
)

// DefaultLargeContentChars is the serialized length above which a leaf
// record is gated behind a toggle, and the summary length of long text.
const DefaultLargeContentChars = 80

// Ellipsis is appended to every truncated summary.
const Ellipsis = "..."

// Options configures a Renderer.
type Options struct {
	// LongTextChars is the length a string must exceed to be long text.
	LongTextChars int `json:"long_text_chars" yaml:"long_text_chars" toml:"long_text_chars"`
	// LargeContentChars is the serialized length a leaf record must exceed
	// to be collapsible, and the number of characters kept in summaries.
	LargeContentChars int `json:"large_content_chars" yaml:"large_content_chars" toml:"large_content_chars"`
	// LongTextLines is the line count a string must exceed to be cut by
	// lines instead of characters.
	LongTextLines int `json:"long_text_lines" yaml:"long_text_lines" toml:"long_text_lines"`
	// KeyFormat selects label capitalisation for the whole tree.
	KeyFormat keyfmt.Mode `json:"key_format" yaml:"key_format" toml:"key_format"`
	// PriorityKeys are pinned first, in order, among the top-level fields.
	PriorityKeys []string `json:"priority_keys" yaml:"priority_keys" toml:"priority_keys"`
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		LongTextChars:     shape.DefaultLongTextChars,
		LargeContentChars: DefaultLargeContentChars,
		LongTextLines:     shape.DefaultLongTextLines,
		KeyFormat:         keyfmt.ModeTitle,
	}
}

// Validate rejects negative thresholds and unknown key formats.
func (o Options) Validate() error {
	if o.LongTextChars < 0 {
		return fmt.Errorf("long text chars must be non-negative, got %d", o.LongTextChars)
	}
	if o.LargeContentChars < 0 {
		return fmt.Errorf("large content chars must be non-negative, got %d", o.LargeContentChars)
	}
	if o.LongTextLines < 0 {
		return fmt.Errorf("long text lines must be non-negative, got %d", o.LongTextLines)
	}
	if _, err := keyfmt.ParseMode(string(o.KeyFormat)); err != nil {
		return err
	}
	return nil
}

// withDefaults fills zero thresholds.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LongTextChars == 0 {
		o.LongTextChars = d.LongTextChars
	}
	if o.LargeContentChars == 0 {
		o.LargeContentChars = d.LargeContentChars
	}
	if o.LongTextLines == 0 {
		o.LongTextLines = d.LongTextLines
	}
	if mode, err := keyfmt.ParseMode(string(o.KeyFormat)); err == nil {
		o.KeyFormat = mode
	} else {
		o.KeyFormat = d.KeyFormat
	}
	return o
}
