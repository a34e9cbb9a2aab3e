// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package suggest

import (
	"github.com/google/uuid"

	"github.com/WDD-CODER/ex-witget-v1/internal/names"
	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

var manualNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("widget/manual"))

// CreateManualEntry returns a candidate for free text the catalog does not
// know. The ID is derived from the folded name, so entering the same text
// twice yields the same candidate.
func CreateManualEntry(query string) types.Candidate {
	name := names.Clean(query)
	id := uuid.NewSHA1(manualNamespace, []byte(names.Fold(name))).String()
	return types.NewCandidate(id, name, types.KindManual)
}
