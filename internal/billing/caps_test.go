package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyCapsStudentThenFamily(t *testing.T) {
	totals := map[string]float64{"a": 100, "b": 90}

	result := ApplyCaps(totals, 190, &Caps{StudentMax: 80, FamilyMax: 150})

	assert.Equal(t, 80.0, result.StudentTotals["a"])
	assert.Equal(t, 80.0, result.StudentTotals["b"])
	// Student clipping recombines to 160, then the family cap takes it to 150.
	assert.Equal(t, 150.0, result.FamilyTotal)
	assert.Equal(t, 40.0, result.Reduction)
}

func TestApplyCapsFamilyOnly(t *testing.T) {
	result := ApplyCaps(map[string]float64{"a": 100, "b": 90}, 190, &Caps{FamilyMax: 120})

	assert.Equal(t, 100.0, result.StudentTotals["a"])
	assert.Equal(t, 120.0, result.FamilyTotal)
	assert.Equal(t, 70.0, result.Reduction)
}

func TestApplyCapsNotBinding(t *testing.T) {
	result := ApplyCaps(map[string]float64{"a": 50}, 50, &Caps{StudentMax: 100, FamilyMax: 200})

	assert.Equal(t, 50.0, result.FamilyTotal)
	assert.Equal(t, 0.0, result.Reduction)
}

func TestApplyCapsAbsent(t *testing.T) {
	result := ApplyCaps(map[string]float64{"a": 50}, 50, nil)
	assert.Equal(t, 50.0, result.FamilyTotal)
	assert.Equal(t, 0.0, result.Reduction)

	zeroed := ApplyCaps(map[string]float64{"a": 50}, 50, &Caps{})
	assert.Equal(t, 0.0, zeroed.Reduction)
}

func TestApplyCapsDoesNotMutateInput(t *testing.T) {
	totals := map[string]float64{"a": 100}
	ApplyCaps(totals, 100, &Caps{StudentMax: 80})
	assert.Equal(t, 100.0, totals["a"])
}
