// Package loader turns serialized documents and in-memory Go values into
// jsonvalue trees. Every failure matches jsonvalue.ErrMalformedInput, so a
// caller can reject bad input before anything is rendered.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

// Format names a detected input format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatJWT    Format = "jwt"
)

var (
	crlf = strings.NewReplacer("\r\n", "\n", "\r", "\n")

	// TOML section headers: [server], [[items]], ["table name"], [database.credentials].
	// JSON arrays like [1, 2, 3] do not match.
	tomlSection = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	// TOML key = value lines (YAML uses key: value).
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// Detect guesses the format of input. The checks run from the most to the
// least restrictive: JWT, multi-document YAML, NDJSON, TOML, JSON, and YAML
// as the fallback.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	switch {
	case IsJWT(input):
		return FormatJWT
	case strings.Contains(input, "\n---") || strings.HasPrefix(input, "---"):
		return FormatYAML
	case isJSONDocument(input):
		return FormatJSON
	case isLikelyNDJSON(strings.Split(input, "\n")):
		return FormatNDJSON
	case isLikelyTOML(input):
		return FormatTOML
	case strings.HasPrefix(input, "{") || strings.HasPrefix(input, "["):
		return FormatJSON
	default:
		return FormatYAML
	}
}

// LoadDocuments parses input into one value per document. Single-document
// formats return a slice of one.
func LoadDocuments(input string) ([]jsonvalue.Value, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, invalid("empty input", nil)
	}

	switch Detect(input) {
	case FormatJWT:
		v, err := DecodeJWT(input)
		if err != nil {
			return nil, err
		}
		return []jsonvalue.Value{v}, nil
	case FormatNDJSON:
		return loadNDJSON(input)
	case FormatTOML:
		return loadTOML(input)
	case FormatJSON:
		return loadJSON(input)
	default:
		return loadYAML(input)
	}
}

// LoadRoot parses input into a single value. Multi-document inputs become an
// array with one element per document.
func LoadRoot(input string) (jsonvalue.Value, error) {
	docs, err := LoadDocuments(input)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return jsonvalue.Array(docs...), nil
}

// LoadRootBytes parses data into a single value.
func LoadRootBytes(data []byte) (jsonvalue.Value, error) {
	return LoadRoot(string(data))
}

// LoadReader reads r to the end and parses the result.
func LoadReader(r io.Reader) (jsonvalue.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("read input: %w", err)
	}
	return LoadRootBytes(data)
}

// LoadFile reads a file and parses it into a single value.
func LoadFile(path string) (jsonvalue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, err := LoadRootBytes(data)
	if err != nil {
		return jsonvalue.Value{}, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// LoadObject accepts an already parsed value. Strings and byte slices are
// parsed with format detection; everything else goes through
// jsonvalue.FromAny, which rejects cycles and non-serializable values.
func LoadObject(value any) (jsonvalue.Value, error) {
	switch v := value.(type) {
	case nil:
		return jsonvalue.Value{}, invalid("object input is nil", nil)
	case jsonvalue.Value:
		return v, nil
	case string:
		return LoadRoot(v)
	case []byte:
		return LoadRootBytes(v)
	default:
		return jsonvalue.FromAny(value)
	}
}

func loadJSON(input string) ([]jsonvalue.Value, error) {
	v, err := jsonvalue.ParseJSON([]byte(input))
	if err != nil {
		// Flow-style YAML such as {invalid} also starts with a brace.
		if docs, yerr := loadYAML(input); yerr == nil {
			return docs, nil
		}
		return nil, err
	}
	return []jsonvalue.Value{v}, nil
}

// loadNDJSON parses one JSON document per line. Lines that are not valid
// JSON are kept as plain strings. A bare \r also ends a line, as written by
// CLI progress indicators mixed into log output.
func loadNDJSON(input string) ([]jsonvalue.Value, error) {
	lines := strings.Split(crlf.Replace(input), "\n")
	results := make([]jsonvalue.Value, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		v, err := jsonvalue.ParseJSON([]byte(line))
		if err != nil {
			results = append(results, jsonvalue.String(line))
			continue
		}
		results = append(results, v)
	}
	if len(results) == 0 {
		return nil, invalid("no data found in input", nil)
	}
	return results, nil
}

// loadYAML decodes every document of input. Null documents are skipped
// unless nothing else is present.
func loadYAML(input string) ([]jsonvalue.Value, error) {
	dec := yaml.NewDecoder(strings.NewReader(input))
	var results []jsonvalue.Value
	sawNull := false
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, invalid("invalid YAML", err)
		}
		v, err := FromYAMLNode(&node)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			sawNull = true
			continue
		}
		results = append(results, v)
	}
	if len(results) == 0 {
		if sawNull {
			return []jsonvalue.Value{jsonvalue.Null()}, nil
		}
		return nil, invalid("no documents found in YAML", nil)
	}
	return results, nil
}

// loadTOML decodes a TOML document. TOML tables decode into Go maps, so
// their keys come out sorted.
func loadTOML(input string) ([]jsonvalue.Value, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, invalid("invalid TOML", err)
	}
	v, err := jsonvalue.FromAny(data)
	if err != nil {
		return nil, err
	}
	return []jsonvalue.Value{v}, nil
}

// isJSONDocument reports whether input is one complete JSON object or array,
// so a pretty-printed array of objects is not mistaken for NDJSON.
func isJSONDocument(input string) bool {
	return (strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[")) && json.Valid([]byte(input))
}

// isLikelyNDJSON reports whether a majority of several non-empty lines
// start with '{' or '['. YAML lists of bare "- name" items stay YAML.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

// isLikelyTOML reports whether input has a TOML section header or mostly
// key = value lines.
func isLikelyTOML(input string) bool {
	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++
		if tomlSection.MatchString(line) {
			sectionCount++
		}
		if tomlKeyValue.MatchString(line) {
			keyValueCount++
		}
	}
	if sectionCount > 0 {
		return true
	}
	return nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2
}

func invalid(reason string, err error) error {
	return &jsonvalue.MalformedInputError{Path: "$", Reason: reason, Err: err}
}
