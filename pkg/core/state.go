package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/kvtree/internal/pathkey"
	"github.com/oakwood-commons/kvtree/pkg/logger"
)

// StateVersion is the current state file layout.
const StateVersion = 1

// State is the persisted expansion state of a session.
type State struct {
	Version  int      `json:"version" yaml:"version"`
	Session  string   `json:"session,omitempty" yaml:"session,omitempty"`
	Expanded []string `json:"expanded" yaml:"expanded"`
}

// State captures the session's expanded keys.
func (s *Session) State() State {
	keys := s.store.ExpandedKeys()
	st := State{Version: StateVersion, Session: s.id, Expanded: make([]string, len(keys))}
	for i, k := range keys {
		st.Expanded[i] = k.String()
	}
	return st
}

// ApplyState replaces the session's expansion state with st. Keys the
// document does not contain are kept; they are harmless and survive a
// reload of a document that gains them back.
func (s *Session) ApplyState(st State) error {
	if st.Version > StateVersion {
		return fmt.Errorf("state version %d is newer than supported version %d", st.Version, StateVersion)
	}
	restored := make(map[pathkey.Key]bool, len(st.Expanded))
	for _, k := range st.Expanded {
		restored[pathkey.Key(k)] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Restore(restored)
	s.log.V(1).Info("state restored", logger.KeysKey, len(restored))
	return nil
}

// ReadStateFile reads a state file. Files ending in .yaml or .yml are YAML,
// everything else JSON. A missing file yields an empty state.
func ReadStateFile(path string) (State, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return State{Version: StateVersion}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read state %s: %w", path, err)
	}
	var st State
	if isYAMLPath(path) {
		err = yaml.Unmarshal(data, &st)
	} else if len(bytes.TrimSpace(data)) > 0 {
		err = json.Unmarshal(data, &st)
	}
	if err != nil {
		return State{}, fmt.Errorf("decode state %s: %w", path, err)
	}
	if st.Version == 0 {
		st.Version = StateVersion
	}
	return st, nil
}

// WriteStateFile writes st in the format chosen by the path extension.
func WriteStateFile(path string, st State) error {
	var (
		data []byte
		err  error
	)
	if isYAMLPath(path) {
		data, err = yaml.Marshal(st)
	} else {
		data, err = json.MarshalIndent(st, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write state %s: %w", path, err)
	}
	return nil
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
