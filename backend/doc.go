// Package backend is the terminal handler of the gateway pipeline: given a
// matched config.Endpoint, it dispatches to the one backend kind the
// endpoint's tagged union selects (https, echo, mock, redirect, file,
// command, scheduler status) or, for upstream.virtual endpoints, re-enters
// the gateway against sibling endpoints until one answers 200.
//
// Dispatch is an exhaustive switch over config.Backends' tagged-union
// fields: exactly one variant is non-nil per backend value, and an
// endpoint with none set answers 500.
package backend
