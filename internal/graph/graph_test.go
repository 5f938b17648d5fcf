package graph

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/inmemorystore"
	"github.com/specialistvlad/pullgridgo/internal/inmemorytopology"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/specialistvlad/pullgridgo/internal/pull"
	"github.com/specialistvlad/pullgridgo/internal/topologystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type numberPayload struct{ N int }

func (p *numberPayload) CallClass() string { return "NumberCall" }

var numberCall = call.NewClass("NumberCall", "1.0.0", "test call",
	func() call.Payload { return &numberPayload{} }, "Get")

type source struct {
	module.Base
	releaseLog *[]string
	failCreate bool
}

func newSource(name string, log *[]string) *source {
	s := &source{releaseLog: log}
	s.Init("Source", name, "number source")
	return s
}

func (s *source) OnCreate(ctx context.Context) error {
	if s.failCreate {
		return fmt.Errorf("no device")
	}
	value := s.AddParam(param.NewInt("value", 3, 0, 10))
	s.AddParam(param.NewButton("next"))
	s.AddInbound("data", "numbers").SetCallback(numberCall, "Get", func(ctx context.Context, p call.Payload) error {
		np, err := call.As[*numberPayload](p)
		if err != nil {
			return err
		}
		np.N = value.Int()
		return nil
	})
	return nil
}

func (s *source) OnRelease(ctx context.Context) {
	if s.releaseLog != nil {
		*s.releaseLog = append(*s.releaseLog, s.Name())
	}
}

type sink struct {
	module.Base
	releaseLog *[]string
	frames     int
	recorder   pull.Recorder
}

func newSink(name string, log *[]string) *sink {
	s := &sink{releaseLog: log}
	s.Init("Sink", name, "number sink")
	return s
}

func (s *sink) OnCreate(ctx context.Context) error {
	s.recorder = pull.RecorderFrom(ctx)
	s.AddOutbound("input", "numbers").SetCompatibleCall("NumberCall", "^1")
	return nil
}

func (s *sink) OnRelease(ctx context.Context) {
	if s.releaseLog != nil {
		*s.releaseLog = append(*s.releaseLog, s.Name())
	}
}

func (s *sink) Frame(ctx context.Context, frame int) error {
	s.frames++
	return nil
}

type relay struct {
	module.Base
}

func newRelay(name string) *relay {
	r := &relay{}
	r.Init("Relay", name, "forwards numbers")
	return r
}

func (r *relay) OnCreate(ctx context.Context) error {
	in := r.AddOutbound("input", "numbers").SetCompatibleCall("NumberCall", "^1")
	r.AddInbound("data", "numbers").SetCallback(numberCall, "Get", func(ctx context.Context, p call.Payload) error {
		return in.Invoke(ctx, 0, p)
	})
	return nil
}

func (r *relay) OnRelease(ctx context.Context) {}

type fakeRecorder struct {
	mu       sync.Mutex
	bound    []string
	failures []string
}

func (r *fakeRecorder) Hit(string)                              {}
func (r *fakeRecorder) Recomputed(string, uint64, time.Duration) {}
func (r *fakeRecorder) Failed(string, pull.Kind)                {}
func (r *fakeRecorder) Bound(class string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bound = append(r.bound, class)
}
func (r *fakeRecorder) BindFailed(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, reason)
}

func createTestGraph(opts ...Option) *Manager {
	return New(inmemorytopology.New(), inmemorystore.New(), opts...)
}

func addModules(t *testing.T, g *Manager, mods ...module.Module) {
	t.Helper()
	for _, m := range mods {
		_, err := g.AddModule(context.Background(), m)
		require.NoError(t, err)
	}
}

func TestAddModule_RegistersModuleAndParams(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	src := newSource("src", nil)

	id, err := g.AddModule(ctx, src)
	require.NoError(t, err)

	byID, ok := g.ModuleByID(ctx, id)
	require.True(t, ok)
	assert.Same(t, src, byID)
	assert.Equal(t, module.Created, src.State())

	p, ok := g.Param("src/value")
	require.True(t, ok)
	assert.Equal(t, 3, p.Int())
	assert.Len(t, g.Params(ctx), 2)

	looked, ok := src.Lookup("src/value")
	require.True(t, ok, "modules resolve parameters through the graph")
	assert.Same(t, p, looked)
}

func TestAddModule_Errors(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	addModules(t, g, newSource("src", nil))

	_, err := g.AddModule(ctx, newSource("src", nil))
	assert.ErrorIs(t, err, topologystore.ErrDuplicateModule)

	_, err = g.AddModule(ctx, newSource("bad name", nil))
	assert.Error(t, err)

	broken := newSource("broken", nil)
	broken.failCreate = true
	_, err = g.AddModule(ctx, broken)
	require.Error(t, err)
	_, ok := g.Module(ctx, "broken")
	assert.False(t, ok)
	assert.Equal(t, module.Uninitialized, broken.State())
}

func TestAddModule_PassesRecorderToCreate(t *testing.T) {
	rec := &fakeRecorder{}
	g := createTestGraph(WithRecorder(rec))
	snk := newSink("snk", nil)
	addModules(t, g, snk)

	assert.Same(t, rec, snk.recorder)
}

func TestBind_DispatchesThroughGraph(t *testing.T) {
	rec := &fakeRecorder{}
	g := createTestGraph(WithRecorder(rec))
	ctx := context.Background()
	src, snk := newSource("src", nil), newSink("snk", nil)
	addModules(t, g, src, snk)

	c, err := g.Bind(ctx, "snk/input", "src/data")
	require.NoError(t, err)
	assert.Equal(t, "NumberCall", c.Class().Name)

	out, _ := snk.Outbound("input")
	p, err := out.NewPayload()
	require.NoError(t, err)
	require.NoError(t, out.Invoke(ctx, 0, p))
	assert.Equal(t, 3, p.(*numberPayload).N)

	conns := g.Connections(ctx)
	require.Len(t, conns, 1)
	assert.Equal(t, "snk/input -> src/data", conns[0].String())
	assert.Equal(t, []string{"NumberCall"}, rec.bound)
}

func TestBind_Failures(t *testing.T) {
	testCases := []struct {
		name     string
		from, to string
		reason   string
	}{
		{name: "wrong direction", from: "src/data", to: "snk/input", reason: "wrong_direction"},
		{name: "unknown module", from: "ghost/input", to: "src/data", reason: "not_found"},
		{name: "unknown slot", from: "snk/nothing", to: "src/data", reason: "not_found"},
		{name: "malformed address", from: "snk", to: "src/data", reason: "invalid"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &fakeRecorder{}
			g := createTestGraph(WithRecorder(rec))
			addModules(t, g, newSource("src", nil), newSink("snk", nil))

			_, err := g.Bind(context.Background(), tc.from, tc.to)
			require.Error(t, err)
			assert.Equal(t, []string{tc.reason}, rec.failures)
			assert.Empty(t, g.Connections(context.Background()))
		})
	}
}

func TestBind_IncompatibleLeavesSlotsUnbound(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	src := newSource("src", nil)
	picky := &pickySink{}
	picky.Init("Picky", "picky", "requires a newer call")
	addModules(t, g, src, picky)

	_, err := g.Bind(ctx, "picky/input", "src/data")
	require.ErrorIs(t, err, call.ErrIncompatible)

	in, _ := src.Inbound("data")
	assert.False(t, in.Connected())
	out, _ := picky.Outbound("input")
	assert.False(t, out.Connected())
}

type pickySink struct{ module.Base }

func (p *pickySink) OnCreate(ctx context.Context) error {
	p.AddOutbound("input", "").SetCompatibleCall("NumberCall", "^2")
	return nil
}
func (p *pickySink) OnRelease(ctx context.Context) {}

func TestBind_ConcurrentClaimsOnOneInbound(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	addModules(t, g, newSource("src", nil))
	const sinks = 8
	for i := 0; i < sinks; i++ {
		addModules(t, g, newSink(fmt.Sprintf("snk%d", i), nil))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < sinks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := g.Bind(ctx, fmt.Sprintf("snk%d/input", i), "src/data"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, call.ErrAlreadyBound)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Len(t, g.Connections(ctx), 1)
}

func TestBind_RejectsCycles(t *testing.T) {
	rec := &fakeRecorder{}
	g := createTestGraph(WithRecorder(rec))
	ctx := context.Background()
	addModules(t, g, newRelay("a"), newRelay("b"), newRelay("c"))

	_, err := g.Bind(ctx, "a/input", "b/data")
	require.NoError(t, err)
	_, err = g.Bind(ctx, "b/input", "c/data")
	require.NoError(t, err)

	_, err = g.Bind(ctx, "c/input", "a/data")
	assert.ErrorIs(t, err, call.ErrCyclicBinding)
	var bindErr *call.BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, "c/input", bindErr.From)
	assert.Equal(t, []string{"cycle"}, rec.failures)

	a, _ := g.Module(ctx, "a")
	in, _ := a.Core().Inbound("data")
	assert.False(t, in.Connected(), "a rejected cycle binds nothing")

	// Breaking the chain makes the binding legal.
	require.NoError(t, g.Unbind(ctx, "b/input"))
	_, err = g.Bind(ctx, "c/input", "a/data")
	require.NoError(t, err)

	// Removing a module drops its dependencies as well.
	require.NoError(t, g.RemoveModule(ctx, "a"))
	_, err = g.Bind(ctx, "b/input", "c/data")
	require.NoError(t, err)
}

func TestUnbind(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	addModules(t, g, newSource("src", nil), newSink("snk", nil))
	_, err := g.Bind(ctx, "snk/input", "src/data")
	require.NoError(t, err)

	require.NoError(t, g.Unbind(ctx, "snk/input"))
	assert.Empty(t, g.Connections(ctx))
	assert.ErrorIs(t, g.Unbind(ctx, "snk/input"), call.ErrNotConnected)

	_, err = g.Bind(ctx, "snk/input", "src/data")
	assert.NoError(t, err, "slots can be rebound after unbinding")
}

func TestRemoveModule_UnbindsPeersAndInvalidatesID(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	src, snk := newSource("src", nil), newSink("snk", nil)
	addModules(t, g, snk)
	srcID, err := g.AddModule(ctx, src)
	require.NoError(t, err)
	_, err = g.Bind(ctx, "snk/input", "src/data")
	require.NoError(t, err)

	require.NoError(t, g.RemoveModule(ctx, "src"))

	out, _ := snk.Outbound("input")
	assert.False(t, out.Connected())
	assert.ErrorIs(t, out.Invoke(ctx, 0, &numberPayload{}), call.ErrNotConnected)
	assert.Empty(t, g.Connections(ctx))
	assert.Equal(t, module.Released, src.State())
	_, ok := g.Param("src/value")
	assert.False(t, ok)
	_, ok = g.ModuleByID(ctx, srcID)
	assert.False(t, ok)

	newID, err := g.AddModule(ctx, newSource("src", nil))
	require.NoError(t, err)
	assert.NotEqual(t, srcID, newID)

	assert.ErrorIs(t, g.RemoveModule(ctx, "ghost"), topologystore.ErrModuleNotFound)
}

func TestSetParamAndPress(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	addModules(t, g, newSource("src", nil))

	require.NoError(t, g.SetParam(ctx, "src/value", "7"))
	p, _ := g.Param("src/value")
	assert.Equal(t, 7, p.Int())
	assert.True(t, p.IsDirty())

	err := g.SetParam(ctx, "src/value", "99")
	assert.ErrorIs(t, err, param.ErrInvalidValue)
	assert.Equal(t, 7, p.Int())

	assert.ErrorIs(t, g.SetParam(ctx, "src/missing", "1"), ErrParamNotFound)

	require.NoError(t, g.PressParam(ctx, "src/next"))
	btn, _ := g.Param("src/next")
	assert.True(t, btn.IsDirty())
	assert.ErrorIs(t, g.PressParam(ctx, "src/value"), param.ErrInvalidValue)
}

func TestSetParamValue(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	addModules(t, g, newSource("src", nil))

	require.NoError(t, g.SetParamValue(ctx, "src/value", cty.NumberIntVal(4)))
	p, _ := g.Param("src/value")
	assert.Equal(t, 4, p.Int())

	require.NoError(t, g.SetParamValue(ctx, "src/value", cty.StringVal("2 + 3")))
	assert.Equal(t, 5, p.Int())

	assert.ErrorIs(t, g.SetParamValue(ctx, "src/value", cty.True), param.ErrInvalidValue)
	assert.ErrorIs(t, g.SetParamValue(ctx, "src/none", cty.NumberIntVal(1)), ErrParamNotFound)
}

func TestSaveAndLoadState(t *testing.T) {
	g := createTestGraph()
	ctx := context.Background()
	addModules(t, g, newSource("src", nil))
	p, _ := g.Param("src/value")
	p.SetVisible(false)
	p.SetReadOnly(true)

	var buf bytes.Buffer
	require.NoError(t, g.SaveState(ctx, &buf))
	assert.Contains(t, buf.String(), `"src/value"`)

	restored := createTestGraph()
	addModules(t, restored, newSource("src", nil))
	applied, err := restored.LoadState(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	rp, _ := restored.Param("src/value")
	assert.False(t, rp.Visible())
	assert.True(t, rp.ReadOnly())
}

func TestDriversAndClose(t *testing.T) {
	var released []string
	g := createTestGraph()
	ctx := context.Background()
	addModules(t, g, newSource("src", &released), newSink("snk", &released))
	_, err := g.Bind(ctx, "snk/input", "src/data")
	require.NoError(t, err)

	drivers := g.Drivers(ctx)
	require.Len(t, drivers, 1)
	assert.Equal(t, "snk", drivers[0].Core().Name())

	g.Close(ctx)
	assert.Equal(t, []string{"snk", "src"}, released)
	assert.Empty(t, g.Modules(ctx))
	assert.Empty(t, g.Connections(ctx))
	assert.Empty(t, g.Params(ctx))
}
