// Package hooks provides default Hooks implementations.
package hooks

import (
	"context"

	"github.com/arloliu/seatplan/types"
)

// NopHooks implements Hooks with no-op callbacks.
//
// This is the default used when no custom hooks are provided, so callers never
// need nil checks.
type NopHooks struct{}

// Compile-time assertions that NopHooks implements hook callbacks.
var (
	_ func(context.Context, types.ChangeKind) error      = (*NopHooks)(nil).OnStateChanged
	_ func(context.Context, types.SolveJob, error) error = (*NopHooks)(nil).OnSolveFinished
	_ func(context.Context, error) error                 = (*NopHooks)(nil).OnError
)

// NewNop creates a new no-op hooks implementation.
func NewNop() types.Hooks {
	h := &NopHooks{}
	return types.Hooks{
		OnStateChanged:  h.OnStateChanged,
		OnSolveFinished: h.OnSolveFinished,
		OnError:         h.OnError,
	}
}

// Merge fills every nil callback of h with its no-op counterpart.
func Merge(h *types.Hooks) types.Hooks {
	out := NewNop()
	if h == nil {
		return out
	}
	if h.OnStateChanged != nil {
		out.OnStateChanged = h.OnStateChanged
	}
	if h.OnSolveFinished != nil {
		out.OnSolveFinished = h.OnSolveFinished
	}
	if h.OnError != nil {
		out.OnError = h.OnError
	}

	return out
}

// OnStateChanged is a no-op implementation.
func (h *NopHooks) OnStateChanged(context.Context, types.ChangeKind) error {
	return nil
}

// OnSolveFinished is a no-op implementation.
func (h *NopHooks) OnSolveFinished(context.Context, types.SolveJob, error) error {
	return nil
}

// OnError is a no-op implementation.
func (h *NopHooks) OnError(context.Context, error) error {
	return nil
}
