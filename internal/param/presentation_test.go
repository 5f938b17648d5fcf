package param

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTypes() map[Type]func() *Node {
	return map[Type]func() *Node{
		TypeBool:             func() *Node { return NewBool("p", false) },
		TypeButton:           func() *Node { return NewButton("p") },
		TypeColor:            func() *Node { return NewColor("p", 1, 1, 1, 1) },
		TypeEnum:             func() *Node { return NewEnum("p", 0, map[int]string{0: "a"}) },
		TypeFilePath:         func() *Node { return NewFilePath("p", "") },
		TypeFlexEnum:         func() *Node { return NewFlexEnum("p", "a", "a", "b") },
		TypeFloat:            func() *Node { return NewFloat("p", 0, -1, 1) },
		TypeInt:              func() *Node { return NewInt("p", 0, -1, 1) },
		TypeString:           func() *Node { return NewString("p", "") },
		TypeTernary:          func() *Node { return NewTernary("p", TernaryFalse) },
		TypeTransferFunction: func() *Node { return NewTransferFunction("p", "") },
		TypeVector2f:         func() *Node { return NewVector2f("p", 0, 0) },
		TypeVector3f:         func() *Node { return NewVector3f("p", 0, 0, 0) },
		TypeVector4f:         func() *Node { return NewVector4f("p", 0, 0, 0, 0) },
		TypeGroupAnimation:   func() *Node { return NewGroupAnimation("p") },
	}
}

func testContext() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), &buf
}

func TestInitPresentation_DefaultsPerType(t *testing.T) {
	expected := map[Type]struct {
		compatible Presentation
		def        Presentation
	}{
		TypeBool:             {ModeBasic | ModeString, ModeBasic},
		TypeButton:           {ModeBasic | ModeString, ModeBasic},
		TypeColor:            {ModeBasic | ModeString | ModeColor, ModeColor},
		TypeEnum:             {ModeBasic | ModeString, ModeBasic},
		TypeFilePath:         {ModeBasic | ModeString | ModeFilePath, ModeFilePath},
		TypeFlexEnum:         {ModeBasic | ModeString, ModeBasic},
		TypeFloat:            {ModeBasic | ModeString | ModeKnob | ModePinValueToMouse, ModeBasic},
		TypeInt:              {ModeBasic | ModeString | ModePinValueToMouse, ModeBasic},
		TypeString:           {ModeBasic | ModeString, ModeBasic},
		TypeTernary:          {ModeBasic | ModeString, ModeBasic},
		TypeTransferFunction: {ModeBasic | ModeString | ModeTransferFunction, ModeTransferFunction},
		TypeVector2f:         {ModeBasic | ModeString | ModePinValueToMouse, ModeBasic},
		TypeVector3f:         {ModeBasic | ModeString | ModePinValueToMouse | ModeRotation3DDirection, ModeBasic},
		TypeVector4f:         {ModeBasic | ModeString | ModePinValueToMouse | ModeColor | ModeRotation3DAxes, ModeBasic},
		TypeGroupAnimation:   {ModeBasic | ModeGroupAnimation, ModeBasic},
	}

	ctx, _ := testContext()
	for typ, newNode := range allTypes() {
		t.Run(typ.String(), func(t *testing.T) {
			n := newNode()
			require.Equal(t, typ, n.Type())
			require.NoError(t, n.InitPresentation(ctx))
			assert.Equal(t, expected[typ].compatible, n.CompatibleModes())
			assert.Equal(t, expected[typ].def, n.Presentation())
			assert.True(t, n.Visible())
			assert.False(t, n.ReadOnly())
		})
	}
}

func TestInitPresentation_SecondCallIsReportedAndIgnored(t *testing.T) {
	ctx, logs := testContext()
	n := NewColor("tint", 1, 0, 0, 1)
	require.NoError(t, n.InitPresentation(ctx))
	require.NoError(t, n.SetPresentation(ctx, ModeBasic))

	err := n.InitPresentation(ctx)
	require.ErrorIs(t, err, ErrAlreadyInitialized)
	assert.Equal(t, ModeBasic, n.Presentation(), "re-initialization must not reset the mode")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestSetPresentation_RejectsIncompatible(t *testing.T) {
	ctx, logs := testContext()
	n := NewBool("flag", false)
	require.NoError(t, n.InitPresentation(ctx))

	require.ErrorIs(t, n.SetPresentation(ctx, ModeKnob), ErrIncompatiblePresentation)
	require.ErrorIs(t, n.SetPresentation(ctx, ModeBasic|ModeString), ErrIncompatiblePresentation)
	assert.Equal(t, ModeBasic, n.Presentation())
	assert.Contains(t, logs.String(), "Incompatible parameter presentation.")

	require.NoError(t, n.SetPresentation(ctx, ModeString))
	assert.Equal(t, ModeString, n.Presentation())
}

func TestPresentation_String(t *testing.T) {
	assert.Equal(t, "Basic|String", (ModeBasic | ModeString).String())
	assert.Equal(t, "3D Rotation - Axes", ModeRotation3DAxes.String())
	assert.Equal(t, "None", Presentation(0).String())
	assert.Equal(t, []Presentation{ModeBasic, ModeKnob}, (ModeKnob | ModeBasic).Modes())
}
