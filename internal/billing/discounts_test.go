package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentDiscountsStackAdditively(t *testing.T) {
	student := Student{ID: "stu-1", Name: "Ada"}
	classes := []ClassInfo{{ID: "c1", Name: "Ballet", Tuition: 100}}
	discounts := []Discount{
		{Name: "Class Special", Active: true, Association: AssociationClass, AssociationItemID: "c1", Type: DiscountFixed, Amount: 10},
		{Name: "Scholarship", Active: true, Association: AssociationStudent, AssociationItemID: "stu-1", Type: DiscountFixed, Amount: 20},
	}

	result := StudentDiscounts(student, classes, discounts, nil)

	require.Len(t, result.Discounts, 2)
	assert.Equal(t, 30.0, result.Total)
}

func TestStudentDiscountsClassPercentageBasisIsSingleClass(t *testing.T) {
	student := Student{ID: "stu-1"}
	classes := []ClassInfo{
		{ID: "c1", Name: "Ballet", Tuition: 100},
		{ID: "c2", Name: "Tap", Tuition: 50},
	}
	discounts := []Discount{
		{Name: "Ballet 10%", Active: true, Association: AssociationClass, AssociationItemID: "c1", Type: DiscountPercentage, Amount: 10},
	}

	result := StudentDiscounts(student, classes, discounts, nil)

	require.Len(t, result.Discounts, 1)
	assert.Equal(t, 10.0, result.Total)
	assert.Equal(t, "Ballet", result.Discounts[0].ClassName)
}

func TestStudentDiscountsStudentPercentageBasisIsTuitionSum(t *testing.T) {
	student := Student{ID: "stu-1"}
	classes := []ClassInfo{
		{ID: "c1", Tuition: 100},
		{ID: "c2", Tuition: 50},
	}
	discounts := []Discount{
		{Name: "Student 10%", Active: true, Association: AssociationStudent, AssociationItemID: "stu-1", Type: DiscountPercentage, Amount: 10},
	}

	result := StudentDiscounts(student, classes, discounts, nil)
	assert.Equal(t, 15.0, result.Total)
}

func TestStudentDiscountsSeasonMatchesPerClass(t *testing.T) {
	student := Student{ID: "stu-1"}
	classes := []ClassInfo{
		{ID: "c1", Tuition: 100, SeasonID: "fall"},
		{ID: "c2", Tuition: 50, SeasonID: "fall"},
		{ID: "c3", Tuition: 80, SeasonID: "spring"},
	}
	discounts := []Discount{
		{Name: "Fall Sale", Active: true, Association: AssociationSeason, AssociationItemID: "fall", Type: DiscountFixed, Amount: 5},
	}

	result := StudentDiscounts(student, classes, discounts, nil)

	// Applies once per matching class.
	require.Len(t, result.Discounts, 2)
	assert.Equal(t, 10.0, result.Total)
}

func TestStudentDiscountsPromoCodeCaseInsensitive(t *testing.T) {
	student := Student{ID: "stu-1", PromoCodes: []string{"save10"}}
	classes := []ClassInfo{{ID: "c1", Tuition: 100}}
	discounts := []Discount{
		{Name: "Promo", Active: true, Association: AssociationCode, Code: "SAVE10", Type: DiscountFixed, Amount: 10},
	}

	result := StudentDiscounts(student, classes, discounts, nil)
	require.Len(t, result.Discounts, 1)
	assert.Equal(t, 10.0, result.Total)
	assert.Equal(t, "SAVE10", result.Discounts[0].Code)
}

func TestStudentDiscountsMatchesFamilyHeldCodes(t *testing.T) {
	student := Student{ID: "stu-1"}
	classes := []ClassInfo{{ID: "c1", Tuition: 100}}
	discounts := []Discount{
		{Name: "Save Ten", Active: true, Association: AssociationCode, Code: "SAVE10", Type: DiscountPercentage, Amount: 10},
	}

	// Codes held by the family reach the student pass through extraCodes.
	result := StudentDiscounts(student, classes, discounts, []string{"SAVE10"})
	require.Len(t, result.Discounts, 1)
	assert.Equal(t, 10.0, result.Total)
	assert.Equal(t, DiscountKindPromoCode, result.Discounts[0].Kind)
}

func TestStudentDiscountsEmptyCodeNeverMatches(t *testing.T) {
	student := Student{ID: "stu-1", PromoCodes: []string{""}}
	classes := []ClassInfo{{ID: "c1", Tuition: 100}}
	discounts := []Discount{
		{Name: "Codeless", Active: true, Association: AssociationCode, Type: DiscountFixed, Amount: 10},
	}

	assert.Empty(t, StudentDiscounts(student, classes, discounts, nil).Discounts)
}

func TestStudentDiscountsFiltersInactive(t *testing.T) {
	student := Student{ID: "stu-1"}
	classes := []ClassInfo{{ID: "c1", Tuition: 100}}
	discounts := []Discount{
		{Name: "Expired", Active: false, Association: AssociationClass, AssociationItemID: "c1", Type: DiscountFixed, Amount: 10},
	}

	assert.Empty(t, StudentDiscounts(student, classes, discounts, nil).Discounts)
}

func TestStudentDiscountsUnknownTypeDegradesToFixed(t *testing.T) {
	student := Student{ID: "stu-1"}
	classes := []ClassInfo{{ID: "c1", Tuition: 100}}
	discounts := []Discount{
		{Name: "Odd One", Active: true, Association: AssociationClass, AssociationItemID: "c1", Type: "Bogus", Amount: 15},
	}

	result := StudentDiscounts(student, classes, discounts, nil)
	require.Len(t, result.Discounts, 1)
	assert.Equal(t, 15.0, result.Total)
}

func TestFamilyDiscountsFamilyTargeted(t *testing.T) {
	discounts := []Discount{
		{Name: "Family Deal", Active: true, Association: AssociationFamily, AssociationItemID: "fam-1", Type: DiscountPercentage, Amount: 10},
		{Name: "Other Family", Active: true, Association: AssociationFamily, AssociationItemID: "fam-2", Type: DiscountFixed, Amount: 99},
	}

	result := FamilyDiscounts("fam-1", nil, discounts, nil, 1, 200)

	require.Len(t, result.Discounts, 1)
	assert.Equal(t, 20.0, result.Total)
}

func TestFamilyDiscountsMultiStudentThreshold(t *testing.T) {
	plans := map[string]RatePlan{
		"plan-1": {
			Name:           "Standard",
			FamilyDiscount: &FamilyDiscountRule{StudentThreshold: 2, Amount: 25, Type: "fixed"},
		},
	}

	single := FamilyDiscounts("fam-1", nil, nil, plans, 1, 300)
	assert.Empty(t, single.Discounts)

	multi := FamilyDiscounts("fam-1", nil, nil, plans, 2, 300)
	require.Len(t, multi.Discounts, 1)
	assert.Equal(t, 25.0, multi.Total)
	assert.Equal(t, DiscountKindMultiStudent, multi.Discounts[0].Kind)
}

func TestFamilyDiscountsMultiStudentThresholdOfOne(t *testing.T) {
	plans := map[string]RatePlan{
		"plan-1": {
			Name:           "Standard",
			FamilyDiscount: &FamilyDiscountRule{StudentThreshold: 1, Amount: 25, Type: "fixed"},
		},
	}

	// A threshold of one fires for a single-student family.
	result := FamilyDiscounts("fam-1", nil, nil, plans, 1, 300)
	require.Len(t, result.Discounts, 1)
	assert.Equal(t, 25.0, result.Total)
}

func TestFamilyDiscountsMultiStudentPercentageBasis(t *testing.T) {
	plans := map[string]RatePlan{
		"plan-1": {
			Name:           "Standard",
			FamilyDiscount: &FamilyDiscountRule{StudentThreshold: 2, Amount: 10, Type: "percentage"},
		},
	}

	result := FamilyDiscounts("fam-1", nil, nil, plans, 3, 300)
	assert.Equal(t, 30.0, result.Total)
}

func TestFamilyDiscountsSkipsDegenerateRules(t *testing.T) {
	plans := map[string]RatePlan{
		"no-rule":   {Name: "A"},
		"no-thresh": {Name: "B", FamilyDiscount: &FamilyDiscountRule{StudentThreshold: 0, Amount: 25}},
		"no-amount": {Name: "C", FamilyDiscount: &FamilyDiscountRule{StudentThreshold: 2, Amount: 0}},
	}

	assert.Empty(t, FamilyDiscounts("fam-1", nil, nil, plans, 2, 300).Discounts)
}

func TestFamilyDiscountsPromoCodes(t *testing.T) {
	discounts := []Discount{
		{Name: "Welcome", Active: true, Association: AssociationCode, Code: "WELCOME", Type: DiscountPercentage, Amount: 5},
	}

	result := FamilyDiscounts("fam-1", []string{"welcome"}, discounts, nil, 1, 200)

	require.Len(t, result.Discounts, 1)
	assert.Equal(t, DiscountKindFamilyPromoCode, result.Discounts[0].Kind)
	assert.Equal(t, 10.0, result.Total)
}
