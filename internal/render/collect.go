package render

import (
	"errors"
	"fmt"

	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
)

// ErrKeyCollision reports two nodes of one traversal sharing a key.
var ErrKeyCollision = errors.New("path key collision")

// probe is an Expansion that opens everything and records each key the
// renderer branches on.
type probe struct {
	keys []pathkey.Key
	seen map[pathkey.Key]bool
	dups []pathkey.Key
}

func (p *probe) IsExpanded(key pathkey.Key) bool {
	if p.seen[key] {
		p.dups = append(p.dups, key)
		return true
	}
	p.seen[key] = true
	p.keys = append(p.keys, key)
	return true
}

func (r *Renderer) probe(v jsonvalue.Value, prefix pathkey.Key) *probe {
	p := &probe{seen: make(map[pathkey.Key]bool)}
	r.Render(v, prefix, p)
	return p
}

// CollectKeys returns every key a render of v could branch on, in traversal
// order. It runs the renderer itself with every node expanded, so the set
// matches the renderer's decisions exactly.
func (r *Renderer) CollectKeys(v jsonvalue.Value, prefix pathkey.Key) []pathkey.Key {
	return r.probe(v, prefix).keys
}

// VerifyKeys returns an error wrapping ErrKeyCollision if any key would be
// shared by two nodes of v.
func (r *Renderer) VerifyKeys(v jsonvalue.Value, prefix pathkey.Key) error {
	if p := r.probe(v, prefix); len(p.dups) > 0 {
		return fmt.Errorf("%w: %q", ErrKeyCollision, p.dups[0])
	}
	return nil
}
