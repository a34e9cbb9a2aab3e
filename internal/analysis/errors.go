// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"errors"
	"fmt"
)

// Stage names a fetch stage.
type Stage string

const (
	StageDepletions    Stage = "depletions"
	StageOptimizations Stage = "optimizations"
)

// FetchError reports a failed stage fetch.
type FetchError struct {
	Stage Stage
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Stage, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrClosed is returned by Analyze after Close.
var ErrClosed = errors.New("orchestrator closed")
