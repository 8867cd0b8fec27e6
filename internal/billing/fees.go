package billing

import (
	"fmt"
	"time"
)

const (
	// FeeKindRecurring marks a processed installment of a recurring fee.
	FeeKindRecurring = "Recurring"
	// FeeKindOneTime marks a processed one-time fee.
	FeeKindOneTime = "OneTime"
)

// ProcessFees selects at most one currently-payable schedule entry per fee.
// Recurring fees take the first unpaid entry due on or after asOf; one-time
// fees take the first unpaid entry, charged now unless its due date is still
// in the future. Fees without a schedule, or with a due date that cannot be
// parsed where a comparison is required, are skipped with a logged reason.
func ProcessFees(fees []Fee, asOf time.Time, sink EventSink) []ProcessedFee {
	processed := make([]ProcessedFee, 0, len(fees))
	for _, fee := range fees {
		if len(fee.Schedule) == 0 {
			sink.emit(fmt.Sprintf("fee %s has no schedule, skipping", fee.Name))
			continue
		}
		if fee.Recurring {
			if entry, ok := nextRecurringEntry(fee, asOf, sink); ok {
				sink.emit(fmt.Sprintf("recurring fee %s: %.2f due %s", fee.Name, entry.Amount.Value(), entry.Month))
				processed = append(processed, buildProcessedFee(fee, entry, FeeKindRecurring))
			}
			continue
		}
		if entry, ok := dueOneTimeEntry(fee, asOf, sink); ok {
			sink.emit(fmt.Sprintf("one-time fee %s: %.2f", fee.Name, entry.Amount.Value()))
			processed = append(processed, buildProcessedFee(fee, entry, FeeKindOneTime))
		}
	}
	return processed
}

// nextRecurringEntry walks the schedule in array order; entries are not
// re-sorted by date, so ties follow document order.
func nextRecurringEntry(fee Fee, asOf time.Time, sink EventSink) (FeeScheduleEntry, bool) {
	for _, entry := range fee.Schedule {
		if entry.Status != FeeStatusUnpaid {
			continue
		}
		due, err := parseDueDate(entry.DueDate)
		if err != nil {
			sink.emit(fmt.Sprintf("fee %s has unparseable due date %q, skipping", fee.Name, entry.DueDate))
			return FeeScheduleEntry{}, false
		}
		if !due.Before(asOf) {
			return entry, true
		}
	}
	return FeeScheduleEntry{}, false
}

func dueOneTimeEntry(fee Fee, asOf time.Time, sink EventSink) (FeeScheduleEntry, bool) {
	for _, entry := range fee.Schedule {
		if entry.Status != FeeStatusUnpaid {
			continue
		}
		if entry.DueDate == "" {
			return entry, true
		}
		due, err := parseDueDate(entry.DueDate)
		if err != nil {
			sink.emit(fmt.Sprintf("fee %s has unparseable due date %q, skipping", fee.Name, entry.DueDate))
			return FeeScheduleEntry{}, false
		}
		if !due.After(asOf) {
			return entry, true
		}
		sink.emit(fmt.Sprintf("skipping future one-time fee %s, due %s", fee.Name, entry.Month))
		return FeeScheduleEntry{}, false
	}
	return FeeScheduleEntry{}, false
}

func buildProcessedFee(fee Fee, entry FeeScheduleEntry, kind string) ProcessedFee {
	return ProcessedFee{
		ID:          fee.ID,
		Name:        fee.Name,
		Amount:      entry.Amount.Value(),
		DueDate:     entry.DueDate,
		Month:       entry.Month,
		Kind:        kind,
		ClassID:     fee.ClassID,
		ClassName:   fee.ClassName,
		StudentID:   fee.StudentID,
		StudentName: fee.StudentName,
	}
}

var dueDateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDueDate(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
