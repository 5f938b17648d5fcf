package registry

import (
	"context"
	"testing"

	"github.com/specialistvlad/pullgridgo/internal/call"
	"github.com/specialistvlad/pullgridgo/internal/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct{}

func (payload) CallClass() string { return "TestCall" }

var testCall = call.NewClass("TestCall", "1.0.0", "", func() call.Payload { return payload{} }, "Get")

type stub struct{ module.Base }

func (s *stub) OnCreate(ctx context.Context) error { return nil }
func (s *stub) OnRelease(ctx context.Context)      {}

func stubClass(class string, calls ...string) *ModuleClass {
	return &ModuleClass{
		Name:  class,
		Calls: calls,
		New: func(name string) module.Module {
			s := &stub{}
			s.Init(class, name, "")
			return s
		},
	}
}

type testModule struct{}

func (testModule) Register(r *Registry) {
	r.RegisterCall(testCall)
	r.RegisterModule(stubClass("Stub", "TestCall"))
}

func TestRegister_AndBuild(t *testing.T) {
	r := New()
	testModule{}.Register(r)

	m, err := r.NewModule("Stub", "one")
	require.NoError(t, err)
	assert.Equal(t, "one", m.Core().Name())
	assert.Equal(t, "Stub", m.Core().Class())

	c, ok := r.Call("TestCall")
	require.True(t, ok)
	assert.Same(t, testCall, c)

	_, err = r.NewModule("Missing", "x")
	assert.ErrorIs(t, err, ErrUnknownClass)

	require.NoError(t, r.Validate(context.Background()))
}

func TestRegister_Duplicates(t *testing.T) {
	r := New()
	testModule{}.Register(r)

	assert.NotPanics(t, func() { r.RegisterCall(testCall) }, "same call class may be registered by several packages")
	assert.Panics(t, func() { r.RegisterModule(stubClass("Stub")) })

	other := call.NewClass("TestCall", "2.0.0", "", func() call.Payload { return payload{} }, "Get")
	assert.Panics(t, func() { r.RegisterCall(other) })
	assert.Panics(t, func() { r.RegisterModule(&ModuleClass{Name: "NoFactory"}) })
}

func TestValidate(t *testing.T) {
	r := New()
	r.RegisterModule(stubClass("Stub", "MissingCall"))
	r.RegisterModule(&ModuleClass{
		Name: "Liar",
		New: func(name string) module.Module {
			s := &stub{}
			s.Init("SomethingElse", name, "")
			return s
		},
	})

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call class 'MissingCall' is not registered")
	assert.Contains(t, err.Error(), "factory builds modules of class 'SomethingElse'")
}

func TestModuleClasses_Sorted(t *testing.T) {
	r := New()
	r.RegisterModule(stubClass("B"))
	r.RegisterModule(stubClass("A"))

	classes := r.ModuleClasses()
	require.Len(t, classes, 2)
	assert.Equal(t, "A", classes[0].Name)
}
