// Package limiter trims the top-level collection of a document before it is
// rendered.
package limiter

import (
	"fmt"

	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int `json:"limit" yaml:"limit" toml:"limit"`    // Show only this many records (0 = unlimited)
	Offset int `json:"offset" yaml:"offset" toml:"offset"` // Skip the first N records (0 = no skip)
	Tail   int `json:"tail" yaml:"tail" toml:"tail"`       // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations and returns an error if invalid.
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All numeric values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Apply returns the limited subset of an array's items or an object's
// fields. Objects keep their field order. Scalars are returned unchanged.
func (c Config) Apply(v jsonvalue.Value) jsonvalue.Value {
	if !c.IsActive() {
		return v
	}
	switch v.Kind() {
	case jsonvalue.KindArray:
		start, end := c.window(v.Len())
		return jsonvalue.Array(v.Items()[start:end]...)
	case jsonvalue.KindObject:
		start, end := c.window(v.Len())
		return jsonvalue.Object(v.Fields()[start:end]...)
	default:
		return v
	}
}

// window returns the [start, end) range selected from length records.
func (c Config) window(length int) (start, end int) {
	if c.Tail > 0 {
		return max(length-c.Tail, 0), length
	}

	start = min(c.Offset, length)
	end = length
	if c.Limit > 0 {
		end = min(start+c.Limit, length)
	}
	return start, end
}
