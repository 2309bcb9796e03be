package core

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/oakwood-commons/kvtree/internal/expansion"
	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/internal/render"
	"github.com/oakwood-commons/kvtree/pkg/jsonvalue"
	"github.com/oakwood-commons/kvtree/pkg/logger"
)

// Session is one document being viewed: the value, its expansion state and
// the renderer that reads it. Every method is safe for concurrent use;
// toggles and renders are serialised so a render never sees a half-applied
// expand-all.
type Session struct {
	id       string
	prefix   pathkey.Key
	value    jsonvalue.Value
	renderer *render.Renderer
	log      logr.Logger

	mu    sync.Mutex
	store *expansion.Store
}

// NewSession starts a session over v with everything collapsed.
func (e *Engine) NewSession(v jsonvalue.Value) *Session {
	return e.NewSessionWithPrefix(v, "")
}

// NewSessionWithPrefix starts a session whose keys are all rooted at prefix,
// for hosts that show several documents side by side.
func (e *Engine) NewSessionWithPrefix(v jsonvalue.Value, prefix pathkey.Key) *Session {
	id := uuid.NewString()
	s := &Session{
		id:       id,
		prefix:   prefix,
		value:    v,
		renderer: e.renderer,
		log:      e.log.WithValues(logger.SessionKey, id),
		store:    expansion.NewStore(e.renderer),
	}
	s.log.V(1).Info("session started", logger.ShapeKey, string(e.renderer.Classify(v)))
	return s
}

// ID returns the session's unique id.
func (s *Session) ID() string { return s.id }

// Value returns the document being viewed.
func (s *Session) Value() jsonvalue.Value { return s.value }

// Prefix returns the key prefix every key of the session starts with.
func (s *Session) Prefix() pathkey.Key { return s.prefix }

// Render builds the presentation tree for the current expansion state.
func (s *Session) Render() render.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Render(s.value, s.prefix, s.store)
}

// IsExpanded reports whether key is expanded.
func (s *Session) IsExpanded(key pathkey.Key) bool {
	return s.store.IsExpanded(key)
}

// Toggle flips key and returns its new state.
func (s *Session) Toggle(key pathkey.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expanded := s.store.Toggle(key)
	s.log.V(1).Info("toggled", "key", key.String(), "expanded", expanded)
	return expanded
}

// Set records an explicit state for key.
func (s *Session) Set(key pathkey.Key, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Set(key, expanded)
}

// ExpandAll expands every expandable node and returns how many keys were set.
func (s *Session) ExpandAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.store.ExpandAll(s.value, s.prefix)
	s.log.V(1).Info("expanded all", logger.KeysKey, n)
	return n
}

// CollapseAll collapses every expandable node and returns how many keys
// were set.
func (s *Session) CollapseAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.store.CollapseAll(s.value, s.prefix)
	s.log.V(1).Info("collapsed all", logger.KeysKey, n)
	return n
}

// Keys lists every expandable key of the document in traversal order.
func (s *Session) Keys() []pathkey.Key {
	return s.store.CollectAllKeys(s.value, s.prefix)
}

// ExpandedKeys lists the currently expanded keys, sorted.
func (s *Session) ExpandedKeys() []pathkey.Key {
	return s.store.ExpandedKeys()
}
