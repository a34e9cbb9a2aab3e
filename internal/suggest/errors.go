// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package suggest

import "fmt"

// LookupError reports a failed catalog lookup under PolicyPropagate.
type LookupError struct {
	Catalog string
	Query   string
	Err     error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("catalog %s lookup %q: %v", e.Catalog, e.Query, e.Err)
}

func (e *LookupError) Unwrap() error { return e.Err }
