// Package pathkey builds the stable addresses used to remember which nodes
// of a rendered tree are expanded.
//
// Keys are only ever built through Field, Index and LeafField. Every
// character that acts as a separator is escaped inside field names, so two
// different positions in a value can never map to the same key.
package pathkey

import (
	"strconv"
	"strings"
)

// Key addresses one node of a render traversal. The zero Key is the root.
type Key string

// Root is the key of the top-level value.
const Root Key = ""

// LeafMarker separates a leaf record's own key from the keys of its fields.
const LeafMarker = "~_leaf"

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`[`, `\[`,
	`]`, `\]`,
	`~`, `\~`,
)

// Field returns the key of an object member reached directly from parent.
func Field(parent Key, name string) Key {
	return join(parent, name, false)
}

// LeafField returns the key of a member of the leaf record addressed by
// parent. It differs from Field(parent, name) so that a leaf's own toggle and
// its descendants never share a prefix-derived key.
func LeafField(parent Key, name string) Key {
	return join(parent, name, true)
}

// Index returns the key of an array element.
func Index(parent Key, i int) Key {
	return parent + Key("["+strconv.Itoa(i)+"]")
}

func join(parent Key, name string, leaf bool) Key {
	var b strings.Builder
	b.WriteString(string(parent))
	if leaf {
		b.WriteString(LeafMarker)
		b.WriteByte('.')
	} else if parent != Root || name == "" {
		// An empty name at the root is written as a bare separator so it
		// never equals Root itself.
		b.WriteByte('.')
	}
	b.WriteString(escaper.Replace(name))
	return Key(b.String())
}

// String returns the key text.
func (k Key) String() string { return string(k) }
