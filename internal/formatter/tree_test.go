package formatter

import (
	"strings"
	"testing"
)

func TestFormatAsTree_LeafRecord(t *testing.T) {
	result := FormatAsTree(renderDoc(t, `{"name":"Alice","age":30,"active":true}`, nil), Options{})

	if !strings.HasPrefix(result, ".") {
		t.Error("expected tree to start with root marker '.'")
	}
	for _, want := range []string{"Name: Alice", "Age: 30", "Active: true"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
	if strings.Index(result, "Name") > strings.Index(result, "Age") {
		t.Errorf("expected field order to be kept, got:\n%s", result)
	}
}

func TestFormatAsTree_NestedRecord(t *testing.T) {
	result := FormatAsTree(renderDoc(t, `{"profile":{"city":"Paris","zip":"75001"},"tags":["a","b"]}`, nil), Options{})

	for _, want := range []string{"Profile", "City: Paris", "Zip: 75001", "Tags: a, b"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
}

func TestFormatAsTree_RecordArray(t *testing.T) {
	doc := `{"users":[{"name":"a","age":1},{"name":"b"}],"other":{"x":{"y":1}}}`
	result := FormatAsTree(renderDoc(t, doc, nil), Options{ArrayStyle: "index"})

	for _, want := range []string{"Users", "[0]", "[1]", "Name: a", "Age: 1", "Name: b"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
	if strings.Count(result, "Age:") != 1 {
		t.Errorf("expected absent cells to be skipped, got:\n%s", result)
	}
}

func TestFormatAsTree_ArrayStyles(t *testing.T) {
	doc := `{"users":[{"name":"a"},{"name":"b"}],"meta":{"k":{"v":1}}}`
	tests := []struct {
		style string
		want  string
	}{
		{"numbered", "── 2"},
		{"bullet", "── •"},
		{"none", "(item)"},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			result := FormatAsTree(renderDoc(t, doc, nil), Options{ArrayStyle: tt.style})
			if !strings.Contains(result, tt.want) {
				t.Errorf("expected %q in output, got:\n%s", tt.want, result)
			}
		})
	}
}

func TestFormatAsTree_CollapsedAndExpandedText(t *testing.T) {
	doc := `{"name":"Alice","bio":"` + longBio + `"}`

	collapsed := FormatAsTree(renderDoc(t, doc, nil), Options{ShowKeys: true})
	if !strings.Contains(collapsed, "Bio: [+] lorem ipsum") || !strings.Contains(collapsed, "... (bio)") {
		t.Errorf("expected collapsed summary with key, got:\n%s", collapsed)
	}

	expandedOut := FormatAsTree(renderDoc(t, doc, expanded{"bio": true}), Options{})
	if !strings.Contains(expandedOut, "Bio: [-]") {
		t.Errorf("expected expanded marker, got:\n%s", expandedOut)
	}
	if !strings.Contains(expandedOut, strings.TrimSpace(longBio)) {
		t.Errorf("expected full text, got:\n%s", expandedOut)
	}
	if strings.Contains(expandedOut, "(bio)") {
		t.Errorf("expected keys hidden without ShowKeys, got:\n%s", expandedOut)
	}
}

func TestFormatAsTree_MultiLineTextSplitsLines(t *testing.T) {
	doc := `{"notes":"one\ntwo\nthree\nfour\nfive\nsix"}`
	result := FormatAsTree(renderDoc(t, doc, expanded{"notes": true}), Options{})
	for _, want := range []string{"── one", "── six"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
}

func TestFormatAsTree_Markers(t *testing.T) {
	result := FormatAsTree(renderDoc(t, `{"a":null,"b":[],"c":{}}`, nil), Options{})
	for _, want := range []string{"A: null", "B: []", "C: {}"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
}

func TestFormatAsTree_MaxDepth(t *testing.T) {
	result := FormatAsTree(renderDoc(t, `{"profile":{"city":"Paris"},"x":{"y":{"z":1}}}`, nil), Options{MaxDepth: 1})
	if !strings.Contains(result, "Profile: ...") {
		t.Errorf("expected depth cut, got:\n%s", result)
	}
	if strings.Contains(result, "Paris") {
		t.Errorf("expected nested values hidden, got:\n%s", result)
	}
}

func TestFormatAsTree_ScalarRoot(t *testing.T) {
	result := FormatAsTree(renderDoc(t, `"hello"`, nil), Options{})
	if !strings.Contains(result, "hello") {
		t.Errorf("expected scalar, got:\n%s", result)
	}
}

func TestFormatAsTree_BoxDrawingChars(t *testing.T) {
	result := FormatAsTree(renderDoc(t, `{"a":1,"b":2}`, nil), Options{})
	if !strings.Contains(result, "├──") || !strings.Contains(result, "└──") {
		t.Errorf("expected box drawing characters, got:\n%s", result)
	}
}

func TestValidateArrayStyle(t *testing.T) {
	for _, s := range append([]string{""}, ValidArrayStyles...) {
		if err := ValidateArrayStyle(s); err != nil {
			t.Errorf("ValidateArrayStyle(%q) = %v", s, err)
		}
	}
	if err := ValidateArrayStyle("roman"); err == nil {
		t.Error("expected error for unknown style")
	}
}
