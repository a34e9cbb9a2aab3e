// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package suggest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WDD-CODER/ex-witget-v1/pkg/types"
)

func TestCreateManualEntry(t *testing.T) {
	c := CreateManualEntry("  Grandma's tonic \n")

	assert.Equal(t, "Grandma's tonic", c.Name)
	assert.Equal(t, types.KindManual, c.Kind)
	assert.Equal(t, "💊", c.Icon)

	id, err := uuid.Parse(c.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())
}

func TestCreateManualEntryIsDeterministic(t *testing.T) {
	a := CreateManualEntry("Elderberry syrup")
	b := CreateManualEntry("  ELDERBERRY SYRUP ")
	c := CreateManualEntry("Elderflower syrup")

	assert.Equal(t, a.ID, b.ID, "same folded name, same ID")
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, "ELDERBERRY SYRUP", b.Name, "display text keeps its case")
}

func TestCreateManualEntryDoesNotValidate(t *testing.T) {
	c := CreateManualEntry("x")
	assert.Equal(t, "x", c.Name)

	empty := CreateManualEntry("   ")
	assert.Equal(t, "", empty.Name)
	assert.NotEmpty(t, empty.ID)
}
