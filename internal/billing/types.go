package billing

import (
	"bytes"
	"strconv"
	"time"
)

// PricingMode tags which pricing table a rate plan uses.
type PricingMode string

const (
	// PricingHourRates is the current bracket format.
	PricingHourRates PricingMode = "HourRates"
	// PricingTiers is the legacy bracket format, kept for older studio documents.
	PricingTiers PricingMode = "Tiers"
)

// RateBracket maps an hour threshold to a flat charge. Crossing a threshold
// changes the whole group's charge, not just the excess hours.
type RateBracket struct {
	Hours  float64 `json:"hours"`
	Amount float64 `json:"amount"`
}

// PricingTable is the resolved pricing mode and brackets for a rate plan.
type PricingTable struct {
	Mode     PricingMode
	Brackets []RateBracket
}

// FamilyDiscountRule is an optional multi-student discount carried by a rate
// plan, applied once per family when enough students are active.
type FamilyDiscountRule struct {
	StudentThreshold int        `json:"student_threshold"`
	Amount           FlexAmount `json:"amount"`
	Type             string     `json:"type"`
}

// RatePlan is a named pricing policy. Studio documents may carry either
// HourRates or the legacy Tiers list; Pricing resolves the union.
type RatePlan struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	HourRates      []RateBracket       `json:"hour_rates,omitempty"`
	Tiers          []RateBracket       `json:"tiers,omitempty"`
	FamilyDiscount *FamilyDiscountRule `json:"family_discount,omitempty"`
}

// Pricing returns the plan's pricing table, preferring HourRates over the
// legacy Tiers list when both are present.
func (p RatePlan) Pricing() PricingTable {
	if len(p.HourRates) > 0 {
		return PricingTable{Mode: PricingHourRates, Brackets: p.HourRates}
	}
	if len(p.Tiers) > 0 {
		return PricingTable{Mode: PricingTiers, Brackets: p.Tiers}
	}
	return PricingTable{}
}

// ClassInfo describes one enrolled class as supplied by the collaborator layer.
type ClassInfo struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	DurationMinutes float64 `json:"duration_minutes"`
	RatePlanID      string  `json:"rate_plan_id,omitempty"`
	SeasonID        string  `json:"season_id,omitempty"`
	Tuition         float64 `json:"tuition"`
}

// Student carries a student's enrolled classes and promo codes.
type Student struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	FamilyID   string      `json:"family_id"`
	Classes    []ClassInfo `json:"classes"`
	PromoCodes []string    `json:"promo_codes,omitempty"`
}

// AssociationType is the targeting dimension of a discount.
type AssociationType string

const (
	AssociationClass   AssociationType = "Class"
	AssociationSeason  AssociationType = "Season"
	AssociationStudent AssociationType = "Student"
	AssociationFamily  AssociationType = "Family"
	AssociationCode    AssociationType = "Code"
)

// DiscountType selects how a discount amount is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "Percentage"
	DiscountFixed      DiscountType = "Fixed"
)

// Discount is one configured discount document.
type Discount struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Active            bool            `json:"active"`
	Association       AssociationType `json:"association_type"`
	AssociationItemID string          `json:"association_item_id,omitempty"`
	Type              DiscountType    `json:"discount_type"`
	Amount            FlexAmount      `json:"amount"`
	Code              string          `json:"discount_code,omitempty"`
}

// Fee schedule entry statuses.
const (
	FeeStatusPaid   = "Paid"
	FeeStatusUnpaid = "Unpaid"
)

// FeeScheduleEntry is one installment of a fee. DueDate stays a raw string
// because studio documents carry inconsistent date formats; the fee processor
// parses it defensively.
type FeeScheduleEntry struct {
	Status  string     `json:"status"`
	DueDate string     `json:"due_date,omitempty"`
	Amount  FlexAmount `json:"amount"`
	Month   string     `json:"month,omitempty"`
}

// Fee is one configured fee document with its payment schedule.
type Fee struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Recurring   bool               `json:"recurring"`
	Schedule    []FeeScheduleEntry `json:"schedule"`
	ClassID     string             `json:"class_id,omitempty"`
	ClassName   string             `json:"class_name,omitempty"`
	StudentID   string             `json:"student_id,omitempty"`
	StudentName string             `json:"student_name,omitempty"`
}

// Caps bounds per-student and per-family totals. Zero means no cap.
type Caps struct {
	StudentMax float64 `json:"student_max"`
	FamilyMax  float64 `json:"family_max"`
}

// Input is the fully-materialized snapshot the engine computes from. The
// engine performs no I/O; the collaborator layer resolves every reference
// before the call.
type Input struct {
	FamilyID          string              `json:"family_id"`
	FamilyName        string              `json:"family_name"`
	PromoCodes        []string            `json:"promo_codes,omitempty"`
	Students          []Student           `json:"students"`
	RatePlans         map[string]RatePlan `json:"rate_plans"`
	DefaultRatePlanID string              `json:"default_rate_plan_id"`
	RatePlanName      string              `json:"rate_plan"`
	Discounts         []Discount          `json:"discounts"`
	Fees              []Fee               `json:"fees"`
	Caps              *Caps               `json:"caps,omitempty"`
	AsOf              time.Time           `json:"as_of"`
}

// AppliedDiscount is one discount line item in the output.
type AppliedDiscount struct {
	Name      string  `json:"name"`
	Kind      string  `json:"type"`
	ClassName string  `json:"class_name,omitempty"`
	Code      string  `json:"code,omitempty"`
	Amount    float64 `json:"amount"`
}

// ProcessedFee is a fee schedule entry selected as currently payable.
type ProcessedFee struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date,omitempty"`
	Month       string  `json:"month,omitempty"`
	Kind        string  `json:"type"`
	ClassID     string  `json:"class_id,omitempty"`
	ClassName   string  `json:"class_name,omitempty"`
	StudentID   string  `json:"student_id,omitempty"`
	StudentName string  `json:"student_name,omitempty"`
}

// ClassRef names a class on a student's breakdown.
type ClassRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StudentCharge is the per-student breakdown.
type StudentCharge struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Tuition          float64           `json:"tuition"`
	RegistrationFees float64           `json:"registration_fees"`
	Discounts        []AppliedDiscount `json:"discounts"`
	DiscountTotal    float64           `json:"discount_total"`
	Total            float64           `json:"total"`
	Classes          []ClassRef        `json:"classes"`
}

// ChargeData is the computed bill for one family.
type ChargeData struct {
	Students      []StudentCharge   `json:"students"`
	TotalTuition  float64           `json:"total_tuition"`
	TotalFees     float64           `json:"total_fees"`
	Fees          []ProcessedFee    `json:"fees"`
	Discounts     []AppliedDiscount `json:"discounts"`
	TotalDiscount float64           `json:"total_discount"`
	FinalTotal    float64           `json:"final_total"`
	RatePlan      string            `json:"rate_plan"`
	CapReduction  float64           `json:"cap_reduction"`
}

// Result is the engine's external contract. Failures surface here, never as
// panics crossing the engine boundary.
type Result struct {
	Success    bool        `json:"success"`
	ChargeData *ChargeData `json:"charge_data,omitempty"`
	Logs       []string    `json:"logs,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// FlexAmount tolerates the string-or-number amounts found in studio
// documents. Unparseable values coerce to zero so NaN never reaches output.
type FlexAmount float64

// UnmarshalJSON accepts e.g. 15, 15.5, "15" and "" (as zero).
func (a *FlexAmount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*a = 0
		return nil
	}
	*a = FlexAmount(v)
	return nil
}

// Value returns the amount as a float64.
func (a FlexAmount) Value() float64 {
	return float64(a)
}
