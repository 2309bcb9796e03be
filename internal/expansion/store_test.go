package expansion

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/render"
	jv "github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

func fixture() jv.Value {
	long := jv.String(strings.Repeat("x", 120))
	return jv.Object(
		jv.F("bio", long),
		jv.F("profile", jv.Object(
			jv.F("about", long),
			jv.F("address", jv.Object(jv.F("city", jv.String("Oslo")))),
		)),
	)
}

func newStore() *Store {
	return NewStore(render.New(render.DefaultOptions()))
}

func TestStoreDefaultsToCollapsed(t *testing.T) {
	s := newStore()
	assert.False(t, s.IsExpanded("anything"))
	assert.Equal(t, 0, s.Len())
}

func TestStoreToggle(t *testing.T) {
	s := newStore()
	assert.True(t, s.Toggle("bio"))
	assert.True(t, s.IsExpanded("bio"))
	assert.False(t, s.Toggle("bio"))
	assert.False(t, s.IsExpanded("bio"))
}

func TestStoreSet(t *testing.T) {
	s := newStore()
	s.Set("a", true)
	s.Set("b", false)
	assert.True(t, s.IsExpanded("a"))
	assert.False(t, s.IsExpanded("b"))
	assert.Equal(t, []pathkey.Key{"a"}, s.ExpandedKeys())
}

func TestStoreCollectAllKeys(t *testing.T) {
	s := newStore()
	keys := s.CollectAllKeys(fixture(), pathkey.Root)
	assert.Equal(t, []pathkey.Key{"bio", "profile.about"}, keys)
}

func TestStoreExpandAllThenCollapseAll(t *testing.T) {
	s := newStore()
	v := fixture()
	s.Set("elsewhere", true)

	n := s.ExpandAll(v, pathkey.Root)
	require.Equal(t, 2, n)
	for _, k := range s.CollectAllKeys(v, pathkey.Root) {
		assert.True(t, s.IsExpanded(k), k)
	}

	s.CollapseAll(v, pathkey.Root)
	for _, k := range s.CollectAllKeys(v, pathkey.Root) {
		assert.False(t, s.IsExpanded(k), k)
	}
	assert.True(t, s.IsExpanded("elsewhere"), "keys outside the value are untouched")
}

func TestStoreExpandAllWithPrefix(t *testing.T) {
	s := newStore()
	s.ExpandAll(fixture(), "doc")
	assert.Equal(t, []pathkey.Key{"doc.bio", "doc.profile.about"}, s.ExpandedKeys())
}

func TestStoreExpandAllMatchesRender(t *testing.T) {
	s := newStore()
	r := render.New(render.DefaultOptions())
	v := fixture()
	s.ExpandAll(v, pathkey.Root)

	node := r.Render(v, pathkey.Root, s)
	render.Walk(node, func(n render.Node) bool {
		if cell, ok := n.(*render.ExpandableCell); ok {
			assert.True(t, cell.Expanded, cell.Key)
		}
		return true
	})
}

func TestStoreExpandAllIsIdempotent(t *testing.T) {
	tests := []struct {
		name string
		v    jv.Value
	}{
		{"fixture", fixture()},
		{"odd root names", oddNames()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			s.Set("elsewhere", true)

			s.ExpandAll(tt.v, pathkey.Root)
			once := s.Snapshot()
			s.ExpandAll(tt.v, pathkey.Root)
			assert.Equal(t, once, s.Snapshot())

			s.CollapseAll(tt.v, pathkey.Root)
			collapsedOnce := s.Snapshot()
			s.CollapseAll(tt.v, pathkey.Root)
			assert.Equal(t, collapsedOnce, s.Snapshot())
		})
	}
}

// oddNames has fields whose names are empty or made of key separators.
func oddNames() jv.Value {
	long := jv.String(strings.Repeat("y", 90))
	deep := jv.Object(jv.F("d", jv.Object(jv.F("e", jv.Int(1)))))
	return jv.Object(
		jv.F("", jv.Object(jv.F("a", long), jv.F("", long), jv.F("b", deep))),
		jv.F("a", long),
		jv.F(".", long),
		jv.F("[0]", long),
		jv.F("~_leaf", long),
	)
}

func TestStoreOddRootNamesExpandIndependently(t *testing.T) {
	r := render.New(render.DefaultOptions())
	v := oddNames()
	require.NoError(t, r.VerifyKeys(v, pathkey.Root))

	s := NewStore(r)
	keys := s.CollectAllKeys(v, pathkey.Root)
	require.Len(t, keys, 6)

	s.Set(pathkey.Field(pathkey.Root, "a"), true)
	var expanded []pathkey.Key
	render.Walk(r.Render(v, pathkey.Root, s), func(n render.Node) bool {
		if cell, ok := n.(*render.ExpandableCell); ok && cell.Expanded {
			expanded = append(expanded, cell.Key)
		}
		return true
	})
	assert.Equal(t, []pathkey.Key{"a"}, expanded)

	assert.Equal(t, 6, s.ExpandAll(v, pathkey.Root))
	assert.Len(t, s.ExpandedKeys(), 6)
}

func TestStoreSnapshotRestore(t *testing.T) {
	s := newStore()
	s.Set("a", true)
	s.Set("b", false)

	snap := s.Snapshot()
	assert.Equal(t, map[pathkey.Key]bool{"a": true, "b": false}, snap)

	snap["a"] = false
	assert.True(t, s.IsExpanded("a"), "snapshot is a copy")

	other := newStore()
	other.Restore(map[pathkey.Key]bool{"c": true})
	assert.Equal(t, []pathkey.Key{"c"}, other.ExpandedKeys())
	s.Restore(other.Snapshot())
	assert.False(t, s.IsExpanded("a"))
	assert.True(t, s.IsExpanded("c"))
}

func TestStoreConcurrentToggles(t *testing.T) {
	s := newStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle("k")
		}()
	}
	wg.Wait()
	assert.False(t, s.IsExpanded("k"), "an even number of toggles leaves the key collapsed")
}
