package traits

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paratest/condition"
	"paratest/event"
	"paratest/trait"
)

func TestConditionTrait_PrepareReturnsNilWhenConditionHolds(t *testing.T) {
	c := NewConditionTrait(condition.Static(true, "", event.SourceLocation{}))
	err := c.Prepare(context.Background(), &trait.TestDescriptor{ID: "t"})
	assert.NoError(t, err)
}

func TestConditionTrait_PrepareReturnsSkipWhenConditionFails(t *testing.T) {
	c := NewConditionTrait(condition.Static(false, "disabled on this platform", event.SourceLocation{}))
	err := c.Prepare(context.Background(), &trait.TestDescriptor{ID: "t"})
	require.Error(t, err)

	var skip condition.Skip
	require.ErrorAs(t, err, &skip)
	assert.Equal(t, "disabled on this platform", skip.Comment)
}

func TestConditionTrait_RecursiveMarksSuiteTrait(t *testing.T) {
	plain := NewConditionTrait(condition.Static(true, "", event.SourceLocation{}))
	recursive := plain.Recursive()

	assert.False(t, plain.IsRecursive())
	assert.True(t, recursive.IsRecursive())
}

func TestConditionTrait_ErasesWithPrepareAndSuite(t *testing.T) {
	erased := trait.Erase("condition", NewConditionTrait(condition.Static(true, "", event.SourceLocation{})).Recursive())
	assert.True(t, erased.HasPrepare())
	assert.True(t, erased.IsSuiteTrait())
	assert.True(t, erased.IsRecursive())
}
