// Package scriptengine defines the script-runtime capability the Js,
// ModifyPost, and ModifyFeed filters depend on. No JavaScript engine library exists
// anywhere in this module's grounding corpus, so this package exposes
// only the interface and a null implementation; wiring a real engine
// (e.g. goja) is left to a future build.
package scriptengine

import (
	"context"
	"errors"
	"fmt"
)

// ErrScript is the ScriptError-category sentinel.
var ErrScript = errors.New("scriptengine: evaluation failed")

// Value is the opaque result of a script evaluation; filters that need
// a concrete shape (e.g. a serialized feed) type-assert or unmarshal
// from it.
type Value interface{}

// Engine evaluates script source with a set of bound globals, and
// optionally exposes DOM and fetch capabilities to scripts that need
// them (Js, ModifyPost, ModifyFeed).
type Engine interface {
	// Eval runs code with globals bound by name, returning the script's
	// result value or a wrapped ErrScript.
	Eval(ctx context.Context, code string, globals map[string]Value) (Value, error)

	// AttachDOMAPI exposes HTML DOM traversal/mutation globals to
	// subsequent Eval calls on this engine instance.
	AttachDOMAPI()

	// AttachFetchAPI exposes a `fetch`-like global to subsequent Eval
	// calls, routed through the caller-supplied fetch function so the
	// engine never makes network calls the gateway didn't authorize.
	AttachFetchAPI(fetch func(ctx context.Context, url string) ([]byte, error))
}

// NullEngine is a no-op Engine: every Eval fails with ErrScript. It
// lets the Js/ModifyPost/ModifyFeed filters be built, configured, and
// exercised by the pipeline's dispatch and cache-granularity logic
// without requiring a real script runtime to be embedded.
type NullEngine struct{}

func (NullEngine) Eval(ctx context.Context, code string, globals map[string]Value) (Value, error) {
	return nil, fmt.Errorf("%w: no script engine is configured (NullEngine)", ErrScript)
}

func (NullEngine) AttachDOMAPI() {}

func (NullEngine) AttachFetchAPI(fetch func(ctx context.Context, url string) ([]byte, error)) {}
