package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/pullgridgo/internal/config"
	"github.com/specialistvlad/pullgridgo/internal/ctxlog"
	"github.com/specialistvlad/pullgridgo/internal/param"
	"github.com/zclconf/go-cty/cty"
)

// Event names.
const (
	EventSet    = "param:set"
	EventPress  = "param:press"
	EventResult = "param:result"
)

// ErrMalformedRequest is reported for events without a usable payload.
var ErrMalformedRequest = errors.New("malformed request")

// Target is the part of the graph the handler mutates.
type Target interface {
	Param(fullName string) (*param.Node, bool)
	SetParam(ctx context.Context, fullName, value string) error
	SetParamValue(ctx context.Context, fullName string, value cty.Value) error
	PressParam(ctx context.Context, fullName string) error
}

// Request is a decoded event payload.
type Request struct {
	Name  string
	Value any
}

// Result is sent back on EventResult.
type Result struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Value string `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// Handler applies requests to a target.
type Handler struct {
	target    Target
	converter config.Converter
}

// NewHandler creates a handler converting non-string values with conv.
func NewHandler(target Target, conv config.Converter) *Handler {
	return &Handler{target: target, converter: conv}
}

// Set handles EventSet.
func (h *Handler) Set(ctx context.Context, args ...any) Result {
	req, err := decodeRequest(args, true)
	if err != nil {
		return h.fail(ctx, EventSet, req.Name, err)
	}
	if s, ok := req.Value.(string); ok {
		err = h.target.SetParam(ctx, req.Name, s)
	} else {
		var v cty.Value
		v, err = h.converter.ToCtyValue(req.Value)
		if err == nil {
			err = h.target.SetParamValue(ctx, req.Name, v)
		}
	}
	if err != nil {
		return h.fail(ctx, EventSet, req.Name, err)
	}
	return h.ok(ctx, EventSet, req.Name)
}

// Press handles EventPress.
func (h *Handler) Press(ctx context.Context, args ...any) Result {
	req, err := decodeRequest(args, false)
	if err == nil {
		err = h.target.PressParam(ctx, req.Name)
	}
	if err != nil {
		return h.fail(ctx, EventPress, req.Name, err)
	}
	return h.ok(ctx, EventPress, req.Name)
}

func (h *Handler) ok(ctx context.Context, event, name string) Result {
	res := Result{Name: name, OK: true}
	if n, found := h.target.Param(name); found {
		res.Value = n.ValueString()
	}
	ctxlog.FromContext(ctx).Info("Remote parameter change applied.", "event", event, "param", name, "value", res.Value)
	return res
}

func (h *Handler) fail(ctx context.Context, event, name string, err error) Result {
	ctxlog.FromContext(ctx).Warn("Remote parameter change rejected.", "event", event, "param", name, "error", err)
	return Result{Name: name, Error: err.Error()}
}

func decodeRequest(args []any, needValue bool) (Request, error) {
	if len(args) == 0 {
		return Request{}, fmt.Errorf("%w: no payload", ErrMalformedRequest)
	}
	obj, ok := args[0].(map[string]any)
	if !ok {
		return Request{}, fmt.Errorf("%w: payload is %T, not an object", ErrMalformedRequest, args[0])
	}
	name, _ := obj["name"].(string)
	if name == "" {
		return Request{}, fmt.Errorf("%w: missing name", ErrMalformedRequest)
	}
	value, has := obj["value"]
	if needValue && (!has || value == nil) {
		return Request{Name: name}, fmt.Errorf("%w: missing value", ErrMalformedRequest)
	}
	return Request{Name: name, Value: value}, nil
}
