package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/render"
	jv "github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

type expanded map[pathkey.Key]bool

func (e expanded) IsExpanded(k pathkey.Key) bool { return e[k] }

func renderDoc(t *testing.T, doc string, exp render.Expansion) render.Node {
	t.Helper()
	v, err := jv.ParseJSON([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return render.New(render.DefaultOptions()).Render(v, "", exp)
}

var longBio = strings.Repeat("lorem ipsum ", 20)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTree, false},
		{"tree", FormatTree, false},
		{"TABLE", FormatTable, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"html", FormatHTML, false},
		{"json", FormatJSON, false},
		{"yml", FormatYAML, false},
		{"mermaid", FormatMermaid, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(&render.ScalarCell{Text: "x"}, Format("xml"), Options{})
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestWriteAddsTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, &render.ScalarCell{Text: "x"}, FormatJSON, Options{}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "}\n") {
		t.Errorf("expected trailing newline, got %q", buf.String())
	}
}

func TestFormatAsJSONHasTypeTags(t *testing.T) {
	out, err := FormatAsJSON(renderDoc(t, `{"name":"Alice"}`, nil))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type": "table"`, `"type": "scalar_cell"`, `"label": "Name"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got:\n%s", want, out)
		}
	}
}

func TestFormatAsYAML(t *testing.T) {
	text := "one\ntwo\nthree\nfour\nfive\nsix\nseven"
	n := renderDoc(t, `{"notes":"one\ntwo\nthree\nfour\nfive\nsix\nseven","count":3}`, expanded{"notes": true})

	out, err := FormatAsYAML(n)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "type: table") {
		t.Errorf("expected type tag, got:\n%s", out)
	}
	if !strings.Contains(out, "text: |") {
		t.Errorf("expected literal block for multi-line text, got:\n%s", out)
	}
	if strings.Contains(out, `"`+text) {
		t.Errorf("expected unquoted multi-line text, got:\n%s", out)
	}
	if !strings.Contains(out, `text: "3"`) && !strings.Contains(out, `text: '3'`) {
		t.Errorf("expected numeric-looking text to stay a quoted string, got:\n%s", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 2, "he"},
		{"hello", 0, "hello"},
		{"日本語テキスト", 7, "日本..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not cut, got %q", got)
	}
	if got := padRight("日本", 6); got != "日本  " {
		t.Errorf("padRight wide = %q", got)
	}
}

func TestEscapeScalarString(t *testing.T) {
	if got := escapeScalarString("a\r\nb\rc\nd"); got != `a\nb\nc\nd` {
		t.Errorf("escapeScalarString = %q", got)
	}
}

func TestTerminalWidthDefault(t *testing.T) {
	if w := terminalWidth(); w <= 0 {
		t.Errorf("expected positive width, got %d", w)
	}
}
