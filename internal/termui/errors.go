package termui

import "fmt"

// ComponentRenderError reports that a single node's paint step failed.
// The renderer recovers by skipping the node for the frame; the frame
// itself still succeeds.
type ComponentRenderError struct {
	Component string
	Cause     error
}

func (e *ComponentRenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Component, e.Cause)
}

func (e *ComponentRenderError) Unwrap() error { return e.Cause }

// InitializationError reports that a screen's init hook failed. It
// propagates out of PushScreen to the caller.
type InitializationError struct {
	Screen string
	Cause  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Screen, e.Cause)
}

func (e *InitializationError) Unwrap() error { return e.Cause }

// DispatchError reports a failed store action. It never escapes Dispatch;
// it is only ever carried inside a DispatchResult.
type DispatchError struct {
	Action string
	Cause  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s: %v", e.Action, e.Cause)
}

func (e *DispatchError) Unwrap() error { return e.Cause }
