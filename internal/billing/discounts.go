package billing

import (
	"sort"
	"strings"
)

// Applied-discount kind tags, observable in output line items.
const (
	DiscountKindClass           = "Class"
	DiscountKindSeason          = "Season"
	DiscountKindStudent         = "Student"
	DiscountKindPromoCode       = "PromoCode"
	DiscountKindFamily          = "Family"
	DiscountKindMultiStudent    = "MultiStudent"
	DiscountKindFamilyPromoCode = "FamilyPromoCode"
)

// DiscountResult is the outcome of one discount pass.
type DiscountResult struct {
	Discounts []AppliedDiscount
	Total     float64
}

// StudentDiscounts applies class, season, student and promo-code discounts for
// one student. All discounts stack additively against the running total; none
// are mutually exclusive. Percentage bases: single-class tuition for class and
// season discounts, the sum of all class tuitions for student and promo-code
// discounts. Inactive discounts are filtered here even when collaborators
// pre-filter.
func StudentDiscounts(student Student, classes []ClassInfo, discounts []Discount, extraCodes []string) DiscountResult {
	result := DiscountResult{Discounts: []AppliedDiscount{}}
	if len(classes) == 0 || len(discounts) == 0 {
		return result
	}

	codes := append(append([]string{}, student.PromoCodes...), extraCodes...)

	for _, class := range classes {
		for _, discount := range discounts {
			if !discount.Active {
				continue
			}
			switch {
			case discount.Association == AssociationClass && discount.AssociationItemID == class.ID:
				result.add(AppliedDiscount{
					Name:      discount.Name,
					Kind:      DiscountKindClass,
					ClassName: classLabel(class),
					Amount:    discountAmount(discount, class.Tuition),
				})
			case discount.Association == AssociationSeason && class.SeasonID != "" && discount.AssociationItemID == class.SeasonID:
				result.add(AppliedDiscount{
					Name:      discount.Name,
					Kind:      DiscountKindSeason,
					ClassName: classLabel(class),
					Amount:    discountAmount(discount, class.Tuition),
				})
			}
		}
	}

	// Student-scope percentage basis is the raw class-tuition sum, not the
	// rate-plan figure.
	totalTuition := 0.0
	for _, class := range classes {
		totalTuition += class.Tuition
	}

	for _, discount := range discounts {
		if !discount.Active {
			continue
		}
		if discount.Association == AssociationStudent && discount.AssociationItemID == student.ID {
			result.add(AppliedDiscount{
				Name:   discount.Name,
				Kind:   DiscountKindStudent,
				Amount: discountAmount(discount, totalTuition),
			})
		}
	}

	if len(codes) > 0 {
		for _, discount := range discounts {
			if !discount.Active || discount.Association != AssociationCode {
				continue
			}
			if matchesCode(codes, discount.Code) {
				result.add(AppliedDiscount{
					Name:   discount.Name,
					Kind:   DiscountKindPromoCode,
					Code:   discount.Code,
					Amount: discountAmount(discount, totalTuition),
				})
			}
		}
	}

	return result
}

// FamilyDiscounts runs the family-scope pass once per family: family-targeted
// discounts, multi-student thresholds defined on rate plans, and family promo
// codes. Percentage bases use the rate-plan-resolved family tuition total.
func FamilyDiscounts(familyID string, promoCodes []string, discounts []Discount, ratePlans map[string]RatePlan, activeStudents int, totalTuition float64) DiscountResult {
	result := DiscountResult{Discounts: []AppliedDiscount{}}

	for _, discount := range discounts {
		if !discount.Active {
			continue
		}
		if discount.Association == AssociationFamily && discount.AssociationItemID == familyID {
			result.add(AppliedDiscount{
				Name:   discount.Name,
				Kind:   DiscountKindFamily,
				Amount: discountAmount(discount, totalTuition),
			})
		}
	}

	planIDs := make([]string, 0, len(ratePlans))
	for planID := range ratePlans {
		planIDs = append(planIDs, planID)
	}
	sort.Strings(planIDs)

	for _, planID := range planIDs {
		plan := ratePlans[planID]
		rule := plan.FamilyDiscount
		if rule == nil || rule.StudentThreshold <= 0 || rule.Amount.Value() <= 0 {
			continue
		}
		if activeStudents < rule.StudentThreshold {
			continue
		}
		amount := rule.Amount.Value()
		if !strings.EqualFold(rule.Type, "fixed") {
			amount = totalTuition * amount / 100
		}
		result.add(AppliedDiscount{
			Name:   "Multi-Student Discount (" + plan.Name + ")",
			Kind:   DiscountKindMultiStudent,
			Amount: amount,
		})
	}

	if len(promoCodes) > 0 {
		for _, discount := range discounts {
			if !discount.Active || discount.Association != AssociationCode {
				continue
			}
			if matchesCode(promoCodes, discount.Code) {
				result.add(AppliedDiscount{
					Name:   discount.Name,
					Kind:   DiscountKindFamilyPromoCode,
					Code:   discount.Code,
					Amount: discountAmount(discount, totalTuition),
				})
			}
		}
	}

	return result
}

func (r *DiscountResult) add(d AppliedDiscount) {
	r.Discounts = append(r.Discounts, d)
	r.Total += d.Amount
}

// discountAmount resolves a discount against its basis. Unknown discount
// types degrade to fixed so a misconfigured document never drops a discount
// or produces NaN.
func discountAmount(discount Discount, basis float64) float64 {
	if discount.Type == DiscountPercentage {
		return basis * discount.Amount.Value() / 100
	}
	return discount.Amount.Value()
}

func matchesCode(codes []string, discountCode string) bool {
	if discountCode == "" {
		return false
	}
	for _, code := range codes {
		if strings.EqualFold(code, discountCode) {
			return true
		}
	}
	return false
}

func classLabel(class ClassInfo) string {
	if class.Name != "" {
		return class.Name
	}
	return class.ID
}
