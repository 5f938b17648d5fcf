package param

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_RoundTripForEveryCompatibleCombination(t *testing.T) {
	ctx, _ := testContext()

	for typ, newNode := range allTypes() {
		compatible, _ := PresentationFor(typ)
		for _, mode := range compatible.Modes() {
			for _, visible := range []bool{true, false} {
				for _, readOnly := range []bool{true, false} {
					src := newNode()
					src.SetOwner("mod")
					require.NoError(t, src.InitPresentation(ctx))
					src.SetVisible(visible)
					src.SetReadOnly(readOnly)
					require.NoError(t, src.SetPresentation(ctx, mode))

					var buf bytes.Buffer
					require.NoError(t, WriteStates(&buf, []*Node{src}))

					dst := newNode()
					dst.SetOwner("mod")
					require.NoError(t, dst.InitPresentation(ctx))
					require.NoError(t, dst.StateFromJSON(ctx, buf.Bytes()), "type %s mode %s", typ, mode)

					if diff := cmp.Diff(src.State(), dst.State()); diff != "" {
						t.Fatalf("type %s: state mismatch (-want +got):\n%s", typ, diff)
					}
				}
			}
		}
	}
}

func TestWriteStates_EmitsAllThreeFields(t *testing.T) {
	ctx, _ := testContext()
	n := NewFloat("radius", 1, 0, 10)
	n.SetOwner("source")
	require.NoError(t, n.InitPresentation(ctx))
	require.NoError(t, n.SetPresentation(ctx, ModeKnob))
	n.SetReadOnly(true)

	var buf bytes.Buffer
	require.NoError(t, WriteStates(&buf, []*Node{n}))

	var doc map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	entry := doc[StateKey]["source/radius"]
	assert.Equal(t, true, entry["gui_visibility"])
	assert.Equal(t, true, entry["gui_read-only"])
	assert.Equal(t, float64(ModeKnob), entry["gui_presentation_mode"])
}

func TestStateFromJSON_MalformedRecordIsRejected(t *testing.T) {
	ctx, _ := testContext()
	n := NewFloat("bar", 0, 0, 1)
	n.SetOwner("foo")
	require.NoError(t, n.InitPresentation(ctx))
	n.SetVisible(false)
	require.NoError(t, n.SetPresentation(ctx, ModeKnob))
	before := n.State()

	doc := `{"ParameterStates": {"foo/bar": {"gui_visibility": true, "gui_presentation_mode": 2}}}`
	err := n.StateFromJSON(ctx, []byte(doc))
	require.ErrorIs(t, err, ErrMalformedState)
	assert.Contains(t, err.Error(), "gui_read-only")
	assert.Equal(t, before, n.State())
}

func TestStateFromJSON_Errors(t *testing.T) {
	ctx, _ := testContext()

	testCases := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "not json", doc: `{`, wantErr: ErrMalformedState},
		{name: "no root", doc: `{"Other": {}}`, wantErr: ErrMissingParameterStateRoot},
		{name: "not found", doc: `{"ParameterStates": {}}`, wantErr: ErrStateNotFound},
		{name: "ill typed", doc: `{"ParameterStates": {"foo/bar": {"gui_visibility": "yes", "gui_read-only": false, "gui_presentation_mode": 2}}}`, wantErr: ErrMalformedState},
		{name: "entry not an object", doc: `{"ParameterStates": {"foo/bar": 3}}`, wantErr: ErrMalformedState},
		{name: "zero mode", doc: `{"ParameterStates": {"foo/bar": {"gui_visibility": true, "gui_read-only": false, "gui_presentation_mode": 0}}}`, wantErr: ErrMalformedState},
		{name: "incompatible mode", doc: `{"ParameterStates": {"foo/bar": {"gui_visibility": false, "gui_read-only": true, "gui_presentation_mode": 16}}}`, wantErr: ErrIncompatiblePresentation},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewInt("bar", 0, 0, 1)
			n.SetOwner("foo")
			require.NoError(t, n.InitPresentation(ctx))
			before := n.State()

			err := n.StateFromJSON(ctx, []byte(tc.doc))
			require.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, before, n.State())
		})
	}
}

func TestReadStates_AppliesGoodEntriesAndReportsBadOnes(t *testing.T) {
	ctx, _ := testContext()
	nodes := map[string]*Node{}
	for _, name := range []string{"a", "b", "c"} {
		n := NewFloat(name, 0, 0, 1)
		n.SetOwner("mod")
		require.NoError(t, n.InitPresentation(ctx))
		nodes[n.FullName()] = n
	}

	doc := `{"ParameterStates": {
		"mod/a": {"gui_visibility": false, "gui_read-only": true, "gui_presentation_mode": 64},
		"mod/b": {"gui_visibility": false},
		"mod/c": {"gui_visibility": true, "gui_read-only": true, "gui_presentation_mode": 4096},
		"other/x": {"gui_visibility": true, "gui_read-only": true, "gui_presentation_mode": 2}
	}}`

	applied, err := ReadStates(ctx, strings.NewReader(doc), func(name string) (*Node, bool) {
		n, ok := nodes[name]
		return n, ok
	})
	require.Error(t, err)
	assert.Equal(t, 1, applied)
	assert.True(t, IsEntryError(err))

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)

	assert.Equal(t, State{Visible: false, ReadOnly: true, Mode: ModeKnob}, nodes["mod/a"].State())
	assert.Equal(t, State{Visible: true, ReadOnly: false, Mode: ModeBasic}, nodes["mod/b"].State())
	assert.Equal(t, State{Visible: true, ReadOnly: false, Mode: ModeBasic}, nodes["mod/c"].State())
}

func TestReadStates_UnreadableDocument(t *testing.T) {
	ctx, _ := testContext()
	_, err := ReadStates(ctx, strings.NewReader("[]"), func(string) (*Node, bool) { return nil, false })
	require.ErrorIs(t, err, ErrMalformedState)
	assert.False(t, IsEntryError(err))
}
