// Package shape classifies values by the way they should be presented:
// scalars, long text, flat or nested records and the different array forms.
package shape

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

// Kind describes how a value should be presented.
type Kind string

const (
	Scalar       Kind = "scalar"
	LongText     Kind = "long_text"
	LeafRecord   Kind = "leaf_record"
	NestedRecord Kind = "nested_record"
	RecordArray  Kind = "record_array"
	ScalarArray  Kind = "scalar_array"
	MixedArray   Kind = "mixed_array"
	EmptyArray   Kind = "empty_array"
	EmptyRecord  Kind = "empty_record"
)

// Kinds lists every Kind.
var Kinds = []Kind{Scalar, LongText, LeafRecord, NestedRecord, RecordArray, ScalarArray, MixedArray, EmptyArray, EmptyRecord}

const (
	DefaultLongTextChars = 60
	DefaultLongTextLines = 5
)

// Classifier assigns a Kind to values. The zero Classifier uses the default
// thresholds.
type Classifier struct {
	// LongTextChars is the length (in characters) a string must exceed to be
	// long text.
	LongTextChars int
	// LongTextLines is the line count a string must exceed to be long text.
	LongTextLines int
}

func (c Classifier) charLimit() int {
	if c.LongTextChars <= 0 {
		return DefaultLongTextChars
	}
	return c.LongTextChars
}

func (c Classifier) lineLimit() int {
	if c.LongTextLines <= 0 {
		return DefaultLongTextLines
	}
	return c.LongTextLines
}

// Classify returns the Kind of v. It depends only on the structure of v.
func (c Classifier) Classify(v jsonvalue.Value) Kind {
	switch v.Kind() {
	case jsonvalue.KindArray:
		return classifyArray(v.Items())
	case jsonvalue.KindObject:
		return c.classifyObject(v.Fields())
	case jsonvalue.KindString:
		if c.IsLongText(v.Str()) {
			return LongText
		}
		return Scalar
	default:
		return Scalar
	}
}

// IsLongText reports whether s exceeds the character or line threshold.
func (c Classifier) IsLongText(s string) bool {
	return CharCount(s) > c.charLimit() || LineCount(s) > c.lineLimit()
}

func classifyArray(items []jsonvalue.Value) Kind {
	if len(items) == 0 {
		return EmptyArray
	}
	records, scalars := 0, 0
	for _, item := range items {
		switch {
		case item.IsObject():
			records++
		case item.IsScalar():
			scalars++
		}
	}
	switch len(items) {
	case records:
		return RecordArray
	case scalars:
		return ScalarArray
	default:
		return MixedArray
	}
}

func (c Classifier) classifyObject(fields []jsonvalue.Field) Kind {
	if len(fields) == 0 {
		return EmptyRecord
	}
	for _, f := range fields {
		switch c.Classify(f.Value) {
		case Scalar, LongText, ScalarArray, EmptyArray:
		default:
			return NestedRecord
		}
	}
	return LeafRecord
}

// IsRecord reports whether k is one of the object kinds.
func (k Kind) IsRecord() bool {
	return k == LeafRecord || k == NestedRecord || k == EmptyRecord
}

// IsArray reports whether k is one of the array kinds.
func (k Kind) IsArray() bool {
	return k == RecordArray || k == ScalarArray || k == MixedArray || k == EmptyArray
}

// Columns returns the union of keys across the objects of a record array,
// in first-seen order. Non-object elements are skipped.
func Columns(v jsonvalue.Value) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, item := range v.Items() {
		for _, f := range item.Fields() {
			if !seen[f.Key] {
				seen[f.Key] = true
				cols = append(cols, f.Key)
			}
		}
	}
	return cols
}

// CharCount returns the number of user-perceived characters in s.
func CharCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// NormalizeNewlines converts CRLF and bare CR line endings to LF.
func NormalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// LineCount returns the number of newline-delimited lines in s.
func LineCount(s string) int {
	return strings.Count(NormalizeNewlines(s), "\n") + 1
}
