package billing

import (
	"fmt"
	"sort"
)

// ResolveTuition maps a student's classes to their effective rate plans and
// sums the bracket charge for each plan group. Classes whose effective plan id
// has no match in ratePlans contribute zero and are skipped.
func ResolveTuition(classes []ClassInfo, ratePlans map[string]RatePlan, defaultRatePlanID string, sink EventSink) float64 {
	if len(classes) == 0 {
		return 0
	}

	hoursByPlan := make(map[string]float64)
	for _, class := range classes {
		planID := class.RatePlanID
		if planID == "" {
			planID = defaultRatePlanID
		}
		hoursByPlan[planID] += classHours(class)
	}

	planIDs := make([]string, 0, len(hoursByPlan))
	for planID := range hoursByPlan {
		planIDs = append(planIDs, planID)
	}
	sort.Strings(planIDs)

	total := 0.0
	for _, planID := range planIDs {
		plan, ok := ratePlans[planID]
		if !ok {
			sink.emit(fmt.Sprintf("rate plan %s not found, classes contribute no tuition", planID))
			continue
		}
		cost := bracketCost(hoursByPlan[planID], plan.Pricing())
		sink.emit(fmt.Sprintf("rate plan %s: %.2f hours -> %.2f", plan.Name, hoursByPlan[planID], cost))
		total += cost
	}
	return total
}

// classHours converts a class duration to hours, defaulting missing or
// non-positive durations to a one-hour class.
func classHours(class ClassInfo) float64 {
	if class.DurationMinutes <= 0 {
		return 1
	}
	return class.DurationMinutes / 60
}

// bracketCost applies plateau pricing: brackets sorted ascending by hours, the
// first bracket covering the total hours wins, and hours beyond every bracket
// clamp to the last one. An empty table costs nothing.
func bracketCost(hours float64, table PricingTable) float64 {
	if len(table.Brackets) == 0 {
		return 0
	}

	brackets := make([]RateBracket, len(table.Brackets))
	copy(brackets, table.Brackets)
	sort.SliceStable(brackets, func(i, j int) bool { return brackets[i].Hours < brackets[j].Hours })

	for _, bracket := range brackets {
		if hours <= bracket.Hours {
			return bracket.Amount
		}
	}
	return brackets[len(brackets)-1].Amount
}
