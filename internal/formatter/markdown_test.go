package formatter

import (
	"strings"
	"testing"
)

func TestFormatAsMarkdown_LeafRecord(t *testing.T) {
	result := FormatAsMarkdown(renderDoc(t, `{"name":"Alice","note":"a|b"}`, nil), Options{})

	for _, want := range []string{"| Key | Value |", "| --- | --- |", "| Name | Alice |", `| Note | a\|b |`} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
}

func TestFormatAsMarkdown_Headings(t *testing.T) {
	doc := `{"profile":{"city":"Paris"},"items":[{"id":1,"meta":{"a":1}}]}`
	result := FormatAsMarkdown(renderDoc(t, doc, nil), Options{})

	for _, want := range []string{"## Profile\n", "## Items\n", "### [0] Meta\n", "| # | Id | Meta |", "| 1 | 1 | → [0] Meta |"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
}

func TestFormatAsMarkdown_CellNewlines(t *testing.T) {
	doc := `{"rows":[{"text":"x\ny"}],"other":{"k":{"v":1}}}`
	result := FormatAsMarkdown(renderDoc(t, doc, nil), Options{})
	if !strings.Contains(result, "| x<br>y |") {
		t.Errorf("expected <br> line break, got:\n%s", result)
	}
}

func TestFormatAsMarkdown_ExpandedText(t *testing.T) {
	doc := `{"name":"Alice","bio":"` + longBio + `"}`
	result := FormatAsMarkdown(renderDoc(t, doc, expanded{"bio": true}), Options{})

	if !strings.Contains(result, "| Bio | [-] |") {
		t.Errorf("expected expanded marker in table, got:\n%s", result)
	}
	if !strings.Contains(result, "## Bio\n\n"+longBio) {
		t.Errorf("expected full text under its own heading, got:\n%s", result)
	}
}

func TestFormatAsMarkdown_HeadingLevelCap(t *testing.T) {
	doc := `{"a":{"b":{"c":{"d":{"e":{"f":{"g":1}}}}}}}`
	result := FormatAsMarkdown(renderDoc(t, doc, nil), Options{})
	if strings.Contains(result, "#######") {
		t.Errorf("expected heading level capped at 6, got:\n%s", result)
	}
	if !strings.Contains(result, "###### F\n") {
		t.Errorf("expected deepest heading, got:\n%s", result)
	}
}

func TestFormatAsHTML(t *testing.T) {
	doc := `{"profile":{"city":"Paris","tag":"<b>"},"count":{"n":{"m":1}}}`
	result := FormatAsHTML(renderDoc(t, doc, nil), Options{})

	for _, want := range []string{"<h2", "Profile</h2>", "<table>", "<td>Paris</td>", "&lt;b&gt;"} {
		if !strings.Contains(result, want) {
			t.Errorf("expected %q in output, got:\n%s", want, result)
		}
	}
	if strings.Contains(result, "<b>") {
		t.Errorf("expected raw HTML in values to be escaped, got:\n%s", result)
	}
}
