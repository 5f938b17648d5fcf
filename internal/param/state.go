package param

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
)

// StateKey is the top-level key grouping the per-parameter entries.
const StateKey = "ParameterStates"

// State is the persisted presentation triple of one parameter.
type State struct {
	Visible  bool
	ReadOnly bool
	Mode     Presentation
}

// record is the wire form of a State. Pointers distinguish a missing field
// from a zero value.
type record struct {
	Visible  *bool `json:"gui_visibility"`
	ReadOnly *bool `json:"gui_read-only"`
	Mode     *int  `json:"gui_presentation_mode"`
}

type document struct {
	States map[string]json.RawMessage `json:"ParameterStates"`
}

// State returns the current presentation triple.
func (n *Node) State() State {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	return State{Visible: n.pres.visible, ReadOnly: n.pres.readOnly, Mode: n.pres.mode}
}

// ApplyState sets all three presentation fields, or none of them if the mode
// is not compatible with the node.
func (n *Node) ApplyState(s State) error {
	n.presMu.Lock()
	defer n.presMu.Unlock()
	if !n.pres.accepts(s.Mode) {
		return fmt.Errorf("%w: %s is not in %s", ErrIncompatiblePresentation, s.Mode, n.pres.compatible)
	}
	n.pres.visible = s.Visible
	n.pres.readOnly = s.ReadOnly
	n.pres.mode = s.Mode
	return nil
}

func decodeRecord(raw json.RawMessage) (State, error) {
	var rec record
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&rec); err != nil {
		return State{}, fmt.Errorf("%w: %s", ErrMalformedState, err)
	}
	var missing []string
	if rec.Visible == nil {
		missing = append(missing, "gui_visibility")
	}
	if rec.ReadOnly == nil {
		missing = append(missing, "gui_read-only")
	}
	if rec.Mode == nil {
		missing = append(missing, "gui_presentation_mode")
	}
	if len(missing) > 0 {
		return State{}, fmt.Errorf("%w: missing %v", ErrMalformedState, missing)
	}
	if *rec.Mode <= 0 {
		return State{}, fmt.Errorf("%w: presentation mode %d", ErrMalformedState, *rec.Mode)
	}
	return State{Visible: *rec.Visible, ReadOnly: *rec.ReadOnly, Mode: Presentation(*rec.Mode)}, nil
}

func decodeDocument(data []byte) (map[string]json.RawMessage, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedState, err)
	}
	if doc.States == nil {
		return nil, ErrMissingParameterStateRoot
	}
	return doc.States, nil
}

// StateToJSON adds this node's entry to doc, creating the top-level object
// if needed.
func (n *Node) StateToJSON(doc map[string]any) {
	states, ok := doc[StateKey].(map[string]any)
	if !ok {
		states = make(map[string]any)
		doc[StateKey] = states
	}
	s := n.State()
	states[n.FullName()] = map[string]any{
		"gui_visibility":        s.Visible,
		"gui_read-only":         s.ReadOnly,
		"gui_presentation_mode": int(s.Mode),
	}
}

// StateFromJSON looks up this node's entry in a persisted document and
// applies it. A missing or malformed entry leaves the node untouched.
func (n *Node) StateFromJSON(ctx context.Context, data []byte) error {
	states, err := decodeDocument(data)
	if err != nil {
		ctxlog.FromContext(ctx).Error("Unable to read presentation state.", "param", n.FullName(), "error", err)
		return err
	}
	raw, ok := states[n.FullName()]
	if !ok {
		return &EntryError{Name: n.FullName(), Err: ErrStateNotFound}
	}
	if err := n.applyRaw(raw); err != nil {
		ctxlog.FromContext(ctx).Warn("Rejected presentation state entry.", "param", n.FullName(), "error", err)
		return &EntryError{Name: n.FullName(), Err: err}
	}
	return nil
}

func (n *Node) applyRaw(raw json.RawMessage) error {
	s, err := decodeRecord(raw)
	if err != nil {
		return err
	}
	return n.ApplyState(s)
}

// WriteStates writes the presentation state of every node as one document.
func WriteStates(w io.Writer, nodes []*Node) error {
	doc := make(map[string]any)
	doc[StateKey] = make(map[string]any)
	for _, n := range nodes {
		n.StateToJSON(doc)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to write presentation state: %w", err)
	}
	return nil
}

// ReadStates applies a persisted document to the nodes returned by lookup.
// Entries for unknown parameters are skipped. Every rejected entry is
// reported in the returned error, but the remaining entries are still
// applied. It returns the number of entries applied.
func ReadStates(ctx context.Context, r io.Reader, lookup func(fullName string) (*Node, bool)) (int, error) {
	logger := ctxlog.FromContext(ctx)

	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("failed to read presentation state: %w", err)
	}
	states, err := decodeDocument(data)
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)

	var result *multierror.Error
	applied := 0
	for _, name := range names {
		n, ok := lookup(name)
		if !ok {
			logger.Debug("Skipping presentation state for unknown parameter.", "param", name)
			continue
		}
		if err := n.applyRaw(states[name]); err != nil {
			logger.Warn("Rejected presentation state entry.", "param", name, "error", err)
			result = multierror.Append(result, &EntryError{Name: name, Err: err})
			continue
		}
		applied++
	}
	logger.Debug("Presentation state loaded.", "applied", applied, "entries", len(states))
	return applied, result.ErrorOrNil()
}

// IsEntryError reports whether err only contains rejected entries, as
// opposed to a document that could not be read at all.
func IsEntryError(err error) bool {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			var entry *EntryError
			if !errors.As(e, &entry) {
				return false
			}
		}
		return len(merr.Errors) > 0
	}
	var entry *EntryError
	return errors.As(err, &entry)
}
