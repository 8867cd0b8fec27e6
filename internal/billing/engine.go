package billing

import (
	"fmt"
)

// EventSink receives human-readable calculation events. It is an optional
// observer: a nil sink is valid, and nothing the sink does can influence
// computed values.
type EventSink func(msg string)

func (s EventSink) emit(msg string) {
	if s != nil {
		s(msg)
	}
}

// Engine composes the rate resolver, fee processor, discount engine and cap
// enforcer into one deterministic charge calculation. It owns no state beyond
// the optional event sink and performs no I/O.
type Engine struct {
	sink EventSink
}

// NewEngine constructs an engine with an optional event sink.
func NewEngine(sink EventSink) *Engine {
	return &Engine{sink: sink}
}

// Calculate computes the final bill for one family from a fully-materialized
// input snapshot. Any internal failure is returned inside the Result
// envelope; no panic crosses this boundary. Identical inputs always produce
// identical output.
func (e *Engine) Calculate(in Input) (result Result) {
	var logs []string
	capture := func(msg string) {
		logs = append(logs, msg)
		e.sink.emit(msg)
	}
	sink := EventSink(capture)

	defer func() {
		if r := recover(); r != nil {
			result = Result{Success: false, Error: fmt.Sprintf("charge calculation failed: %v", r), Logs: logs}
		}
	}()

	if in.Students == nil {
		return Result{Success: false, Error: "no students supplied", Logs: logs}
	}

	totalClasses := 0
	for _, student := range in.Students {
		totalClasses += len(student.Classes)
	}
	if len(in.Students) == 0 || totalClasses == 0 {
		sink("family has no enrolled classes, nothing to charge")
		return Result{Success: true, ChargeData: emptyChargeData(in.RatePlanName), Logs: logs}
	}

	processedFees := ProcessFees(in.Fees, in.AsOf, sink)
	totalFees := 0.0
	for _, fee := range processedFees {
		totalFees += fee.Amount
	}

	students := make([]StudentCharge, 0, len(in.Students))
	totalTuition := 0.0
	totalDiscount := 0.0

	for _, student := range in.Students {
		tuition := ResolveTuition(student.Classes, in.RatePlans, in.DefaultRatePlanID, sink)
		discountResult := StudentDiscounts(student, student.Classes, in.Discounts, in.PromoCodes)

		studentFees := 0.0
		for _, fee := range processedFees {
			if fee.StudentID != "" && fee.StudentID == student.ID {
				studentFees += fee.Amount
			}
		}

		classes := make([]ClassRef, 0, len(student.Classes))
		for _, class := range student.Classes {
			classes = append(classes, ClassRef{ID: class.ID, Name: classLabel(class)})
		}

		charge := StudentCharge{
			ID:               student.ID,
			Name:             student.Name,
			Tuition:          tuition,
			RegistrationFees: studentFees,
			Discounts:        discountResult.Discounts,
			DiscountTotal:    discountResult.Total,
			Total:            tuition + studentFees - discountResult.Total,
			Classes:          classes,
		}
		students = append(students, charge)

		totalTuition += tuition
		totalDiscount += discountResult.Total
	}

	familyResult := FamilyDiscounts(in.FamilyID, in.PromoCodes, in.Discounts, in.RatePlans, len(in.Students), totalTuition)
	totalDiscount += familyResult.Total

	finalTotal := totalTuition + totalFees - totalDiscount
	sink(fmt.Sprintf("pre-cap totals: tuition %.2f, fees %.2f, discounts %.2f, final %.2f",
		totalTuition, totalFees, totalDiscount, finalTotal))

	// Caps clip the per-student net totals and their combined sum; the
	// resulting reduction comes off the final total, reported separately
	// from discounts.
	studentTotals := make(map[string]float64, len(students))
	combined := 0.0
	for _, charge := range students {
		studentTotals[charge.ID] = charge.Total
		combined += charge.Total
	}
	capResult := ApplyCaps(studentTotals, combined, in.Caps)
	if capResult.Reduction > 0 {
		sink(fmt.Sprintf("caps reduced family total by %.2f", capResult.Reduction))
	}
	for i := range students {
		students[i].Total = capResult.StudentTotals[students[i].ID]
	}
	finalTotal -= capResult.Reduction

	return Result{
		Success: true,
		ChargeData: &ChargeData{
			Students:      students,
			TotalTuition:  totalTuition,
			TotalFees:     totalFees,
			Fees:          processedFees,
			Discounts:     familyResult.Discounts,
			TotalDiscount: totalDiscount,
			FinalTotal:    finalTotal,
			RatePlan:      in.RatePlanName,
			CapReduction:  capResult.Reduction,
		},
		Logs: logs,
	}
}

func emptyChargeData(ratePlanName string) *ChargeData {
	return &ChargeData{
		Students:  []StudentCharge{},
		Fees:      []ProcessedFee{},
		Discounts: []AppliedDiscount{},
		RatePlan:  ratePlanName,
	}
}
