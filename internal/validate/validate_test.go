package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type level int

func (l level) IsValid() bool { return l >= 0 && l <= 2 }

func TestStruct_CheckerTags(t *testing.T) {
	type opts struct {
		Side  level   `validate:"position"`
		Align level   `validate:"anchor"`
		Order []level `validate:"dive,position"`
	}

	assert.NoError(t, Struct(opts{Side: 1, Align: 2, Order: []level{0, 1}}))
	assert.Error(t, Struct(opts{Side: 3}))
	assert.Error(t, Struct(opts{Align: -1}))
	assert.Error(t, Struct(opts{Order: []level{1, 7}}))
}

func TestVar(t *testing.T) {
	assert.NoError(t, Var(level(1), "position"))
	assert.Error(t, Var(level(9), "anchor"))
	assert.Error(t, Var("not a checker", "position"))
	assert.NoError(t, Var(5, "gte=0"))
}
