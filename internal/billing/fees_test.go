package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func billingDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestProcessFeesRecurringPicksNextUnpaid(t *testing.T) {
	fee := Fee{
		ID:        "fee-1",
		Name:      "Costume Fee",
		Recurring: true,
		Schedule: []FeeScheduleEntry{
			{Status: FeeStatusPaid, DueDate: "2026-01-01", Amount: 25, Month: "January"},
			{Status: FeeStatusUnpaid, DueDate: "2026-02-01", Amount: 25, Month: "February"},
			{Status: FeeStatusUnpaid, DueDate: "2026-03-01", Amount: 25, Month: "March"},
		},
	}

	processed := ProcessFees([]Fee{fee}, billingDate("2026-01-15"), nil)

	require.Len(t, processed, 1)
	assert.Equal(t, "February", processed[0].Month)
	assert.Equal(t, 25.0, processed[0].Amount)
	assert.Equal(t, FeeKindRecurring, processed[0].Kind)
}

func TestProcessFeesRecurringSkipsPastDueEntries(t *testing.T) {
	fee := Fee{
		Name:      "Monthly Fee",
		Recurring: true,
		Schedule: []FeeScheduleEntry{
			{Status: FeeStatusUnpaid, DueDate: "2025-11-01", Amount: 10, Month: "November"},
			{Status: FeeStatusUnpaid, DueDate: "2026-02-01", Amount: 10, Month: "February"},
		},
	}

	processed := ProcessFees([]Fee{fee}, billingDate("2026-01-15"), nil)

	require.Len(t, processed, 1)
	assert.Equal(t, "February", processed[0].Month)
}

func TestProcessFeesRecurringAllPaid(t *testing.T) {
	fee := Fee{
		Name:      "Done Fee",
		Recurring: true,
		Schedule: []FeeScheduleEntry{
			{Status: FeeStatusPaid, DueDate: "2026-01-01", Amount: 10},
		},
	}

	assert.Empty(t, ProcessFees([]Fee{fee}, billingDate("2026-01-15"), nil))
}

func TestProcessFeesRecurringMalformedDateSkipsFee(t *testing.T) {
	var events []string
	sink := EventSink(func(msg string) { events = append(events, msg) })

	fee := Fee{
		Name:      "Broken Fee",
		Recurring: true,
		Schedule: []FeeScheduleEntry{
			{Status: FeeStatusUnpaid, DueDate: "next tuesday", Amount: 10},
			{Status: FeeStatusUnpaid, DueDate: "2026-02-01", Amount: 10},
		},
	}

	// The whole fee is skipped, not just the malformed entry.
	assert.Empty(t, ProcessFees([]Fee{fee}, billingDate("2026-01-15"), sink))
	assert.NotEmpty(t, events)
}

func TestProcessFeesOneTimeDueNow(t *testing.T) {
	fee := Fee{
		ID:   "fee-2",
		Name: "Registration",
		Schedule: []FeeScheduleEntry{
			{Status: FeeStatusUnpaid, DueDate: "2026-01-01", Amount: 35},
		},
		StudentID:   "stu-1",
		StudentName: "Ada",
	}

	processed := ProcessFees([]Fee{fee}, billingDate("2026-01-15"), nil)

	require.Len(t, processed, 1)
	assert.Equal(t, FeeKindOneTime, processed[0].Kind)
	assert.Equal(t, 35.0, processed[0].Amount)
	assert.Equal(t, "stu-1", processed[0].StudentID)
}

func TestProcessFeesOneTimeWithoutDueDateChargesImmediately(t *testing.T) {
	fee := Fee{
		Name:     "Recital Fee",
		Schedule: []FeeScheduleEntry{{Status: FeeStatusUnpaid, Amount: 20}},
	}

	processed := ProcessFees([]Fee{fee}, billingDate("2026-01-15"), nil)
	require.Len(t, processed, 1)
	assert.Equal(t, 20.0, processed[0].Amount)
}

func TestProcessFeesOneTimeFutureDueDateSkipped(t *testing.T) {
	fee := Fee{
		Name:     "Spring Fee",
		Schedule: []FeeScheduleEntry{{Status: FeeStatusUnpaid, DueDate: "2026-05-01", Amount: 20}},
	}

	assert.Empty(t, ProcessFees([]Fee{fee}, billingDate("2026-01-15"), nil))
}

func TestProcessFeesEmptySchedule(t *testing.T) {
	assert.Empty(t, ProcessFees([]Fee{{Name: "Hollow Fee"}}, billingDate("2026-01-15"), nil))
}

func TestParseDueDateAcceptsRFC3339AndDateOnly(t *testing.T) {
	_, err := parseDueDate("2026-02-01T00:00:00Z")
	assert.NoError(t, err)

	_, err = parseDueDate("2026-02-01")
	assert.NoError(t, err)

	_, err = parseDueDate("Feb 1 2026")
	assert.Error(t, err)
}
