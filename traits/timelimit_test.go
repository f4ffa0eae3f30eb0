package traits

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paratest/timelimit"
	"paratest/trait"
)

func TestTimeLimitTrait_ErasesAsTimeLimiter(t *testing.T) {
	erased := trait.Erase("limit", NewTimeLimitTrait(5))
	assert.True(t, erased.HasTimeLimit())
	assert.Equal(t, timelimit.Minutes(5), erased.TimeLimitMinutes())
}

func TestTimeLimitTrait_ZeroMeansUnset(t *testing.T) {
	erased := trait.Erase("limit", NewTimeLimitTrait(0))
	assert.Equal(t, timelimit.Minutes(0), erased.TimeLimitMinutes())
}
