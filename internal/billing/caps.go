package billing

// CapResult reports cap-adjusted totals and the reduction caps caused.
type CapResult struct {
	StudentTotals map[string]float64
	FamilyTotal   float64
	Reduction     float64
}

// ApplyCaps clips per-student totals to StudentMax, recomputes the family
// total from the clipped values, then clips that against FamilyMax. Caps run
// after all discounts; the reduction is reported separately from discount
// totals and is never negative. Absent or zero caps echo the inputs.
func ApplyCaps(studentTotals map[string]float64, familyTotal float64, caps *Caps) CapResult {
	adjusted := make(map[string]float64, len(studentTotals))
	for id, total := range studentTotals {
		adjusted[id] = total
	}

	if caps == nil || (caps.StudentMax <= 0 && caps.FamilyMax <= 0) {
		return CapResult{StudentTotals: adjusted, FamilyTotal: familyTotal}
	}

	adjustedFamily := familyTotal
	if caps.StudentMax > 0 {
		for id, total := range adjusted {
			if total > caps.StudentMax {
				adjusted[id] = caps.StudentMax
			}
		}
		// The student-capped sum replaces the passed family total; the
		// family cap applies to this recombined figure.
		adjustedFamily = 0
		for _, total := range adjusted {
			adjustedFamily += total
		}
	}

	if caps.FamilyMax > 0 && adjustedFamily > caps.FamilyMax {
		adjustedFamily = caps.FamilyMax
	}

	reduction := familyTotal - adjustedFamily
	if reduction < 0 {
		reduction = 0
	}

	return CapResult{StudentTotals: adjusted, FamilyTotal: adjustedFamily, Reduction: reduction}
}
