package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studiosync/billing-api/internal/billing"
	"github.com/studiosync/billing-api/internal/models"
	appErrors "github.com/studiosync/billing-api/pkg/errors"
)

// FamilyRepository describes family persistence required by billing services.
type FamilyRepository interface {
	FindByID(ctx context.Context, id string) (*models.Family, error)
	ListActive(ctx context.Context) ([]models.Family, error)
	AddToBalance(ctx context.Context, id string, amount float64) error
}

// StudentRepository describes student persistence required by billing services.
type StudentRepository interface {
	ListActiveByFamily(ctx context.Context, familyID string) ([]models.Student, error)
}

// ClassRepository describes class persistence required by billing services.
type ClassRepository interface {
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.Class, error)
}

// RatePlanRepository describes rate plan persistence required by billing services.
type RatePlanRepository interface {
	ListActive(ctx context.Context) ([]models.RatePlan, error)
}

// DiscountRepository describes discount persistence required by billing services.
type DiscountRepository interface {
	ListActive(ctx context.Context) ([]models.Discount, error)
}

// FeeRepository describes fee persistence required by billing services.
type FeeRepository interface {
	ListActiveForFamily(ctx context.Context, familyID string, studentIDs, classIDs []string) ([]models.Fee, error)
}

// SettingsRepository describes settings persistence required by billing services.
type SettingsRepository interface {
	Get(ctx context.Context) (*models.BillingSettings, error)
}

// ChargeRepository describes charge persistence required by billing services.
type ChargeRepository interface {
	ExistsForPeriod(ctx context.Context, familyID string, month, year int) (bool, error)
	Create(ctx context.Context, charge models.Charge, items []models.ChargeLineItem) (string, error)
	FindByID(ctx context.Context, id string) (*models.ChargeDetail, error)
	List(ctx context.Context, filter models.ChargeFilter) ([]models.Charge, int, error)
	Summary(ctx context.Context, month, year int) (*models.ChargeSummary, error)
	ListUnpaidForPeriod(ctx context.Context, month, year int) ([]models.Charge, error)
	MarkPaid(ctx context.Context, id string, paidAt time.Time) error
	RecordError(ctx context.Context, chargeErr models.ChargeError) error
}

// ChargeService assembles billing snapshots from persistence and runs the
// charge calculation engine over them.
type ChargeService struct {
	families  FamilyRepository
	students  StudentRepository
	classes   ClassRepository
	ratePlans RatePlanRepository
	discounts DiscountRepository
	fees      FeeRepository
	settings  SettingsRepository
	charges   ChargeRepository
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
	validator *validator.Validate

	summaryTTL time.Duration
}

// NewChargeService constructs a charge service.
func NewChargeService(
	families FamilyRepository,
	students StudentRepository,
	classes ClassRepository,
	ratePlans RatePlanRepository,
	discounts DiscountRepository,
	fees FeeRepository,
	settings SettingsRepository,
	charges ChargeRepository,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	summaryTTL time.Duration,
) *ChargeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaryTTL <= 0 {
		summaryTTL = 5 * time.Minute
	}
	return &ChargeService{
		families:   families,
		students:   students,
		classes:    classes,
		ratePlans:  ratePlans,
		discounts:  discounts,
		fees:       fees,
		settings:   settings,
		charges:    charges,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		validator:  validator.New(),
		summaryTTL: summaryTTL,
	}
}

// Calculate materializes the family's billing snapshot and runs the engine.
// Engine failures ride inside the result envelope; only persistence failures
// surface as errors.
func (s *ChargeService) Calculate(ctx context.Context, familyID string, asOf time.Time) (*billing.Result, error) {
	if err := s.validator.Var(familyID, "required"); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "family id is required")
	}

	input, err := s.buildInput(ctx, familyID, asOf)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	engine := billing.NewEngine(func(msg string) {
		s.logger.Debug("charge calculation", zap.String("family_id", familyID), zap.String("event", msg))
	})
	result := engine.Calculate(*input)
	if s.metrics != nil {
		s.metrics.ObserveCalculation(time.Since(start))
	}

	if !result.Success {
		s.logger.Warn("charge calculation failed",
			zap.String("family_id", familyID),
			zap.String("error", result.Error))
	}
	return &result, nil
}

// buildInput loads every document the engine needs for one family.
func (s *ChargeService) buildInput(ctx context.Context, familyID string, asOf time.Time) (*billing.Input, error) {
	family, err := s.families.FindByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "family not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load family")
	}

	studentRows, err := s.students.ListActiveByFamily(ctx, familyID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	studentIDs := make([]string, 0, len(studentRows))
	classIDSet := map[string]struct{}{}
	classNames := map[string]string{}
	studentNames := map[string]string{}

	students := make([]billing.Student, 0, len(studentRows))
	for _, row := range studentRows {
		studentIDs = append(studentIDs, row.ID)
		studentNames[row.ID] = row.FullName

		classRows, err := s.classes.ListActiveByStudent(ctx, row.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
		}

		classes := make([]billing.ClassInfo, 0, len(classRows))
		for _, class := range classRows {
			classIDSet[class.ID] = struct{}{}
			classNames[class.ID] = class.Name
			info := billing.ClassInfo{
				ID:              class.ID,
				Name:            class.Name,
				DurationMinutes: class.DurationMinutes,
				Tuition:         class.Tuition,
			}
			if class.RatePlanID != nil {
				info.RatePlanID = *class.RatePlanID
			}
			if class.SeasonID != nil {
				info.SeasonID = *class.SeasonID
			}
			classes = append(classes, info)
		}

		students = append(students, billing.Student{
			ID:         row.ID,
			Name:       row.FullName,
			FamilyID:   familyID,
			Classes:    classes,
			PromoCodes: row.PromoCodes,
		})
	}

	planRows, err := s.ratePlans.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rate plans")
	}
	plans, defaultPlanID, defaultPlanName := s.decodeRatePlans(planRows)

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load billing settings")
	}
	var caps *billing.Caps
	if settings != nil {
		if settings.StudentMax > 0 || settings.FamilyMax > 0 {
			caps = &billing.Caps{StudentMax: settings.StudentMax, FamilyMax: settings.FamilyMax}
		}
		if settings.DefaultRatePlanID != nil {
			if plan, ok := plans[*settings.DefaultRatePlanID]; ok {
				defaultPlanID = plan.ID
				defaultPlanName = plan.Name
			}
		}
	}

	discountRows, err := s.discounts.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load discounts")
	}
	discounts := make([]billing.Discount, 0, len(discountRows))
	for _, row := range discountRows {
		discount := billing.Discount{
			ID:          row.ID,
			Name:        row.Name,
			Active:      row.Active,
			Association: billing.AssociationType(row.AssociationType),
			Type:        billing.DiscountType(row.DiscountType),
			Amount:      billing.FlexAmount(row.Amount),
		}
		if row.AssociationItemID != nil {
			discount.AssociationItemID = *row.AssociationItemID
		}
		if row.DiscountCode != nil {
			discount.Code = *row.DiscountCode
		}
		discounts = append(discounts, discount)
	}

	classIDs := make([]string, 0, len(classIDSet))
	for id := range classIDSet {
		classIDs = append(classIDs, id)
	}
	feeRows, err := s.fees.ListActiveForFamily(ctx, familyID, studentIDs, classIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fees")
	}
	fees := make([]billing.Fee, 0, len(feeRows))
	for _, row := range feeRows {
		fee := billing.Fee{
			ID:        row.ID,
			Name:      row.Name,
			Recurring: row.Recurring,
		}
		if len(row.Schedule) > 0 {
			if err := json.Unmarshal(row.Schedule, &fee.Schedule); err != nil {
				s.logger.Warn("skipping fee with malformed schedule",
					zap.String("fee_id", row.ID), zap.Error(err))
				continue
			}
		}
		if row.ClassID != nil {
			fee.ClassID = *row.ClassID
			fee.ClassName = classNames[*row.ClassID]
		}
		if row.StudentID != nil {
			fee.StudentID = *row.StudentID
			fee.StudentName = studentNames[*row.StudentID]
		}
		fees = append(fees, fee)
	}

	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	return &billing.Input{
		FamilyID:          family.ID,
		FamilyName:        family.Name,
		PromoCodes:        family.PromoCodes,
		Students:          students,
		RatePlans:         plans,
		DefaultRatePlanID: defaultPlanID,
		RatePlanName:      defaultPlanName,
		Discounts:         discounts,
		Fees:              fees,
		Caps:              caps,
		AsOf:              asOf,
	}, nil
}

// decodeRatePlans converts stored plan rows into engine types, returning the
// flagged default plan alongside the map.
func (s *ChargeService) decodeRatePlans(rows []models.RatePlan) (map[string]billing.RatePlan, string, string) {
	plans := make(map[string]billing.RatePlan, len(rows))
	defaultID := ""
	defaultName := ""
	for _, row := range rows {
		plan := billing.RatePlan{ID: row.ID, Name: row.Name}
		if len(row.HourRates) > 0 {
			if err := json.Unmarshal(row.HourRates, &plan.HourRates); err != nil {
				s.logger.Warn("rate plan has malformed hour rates",
					zap.String("rate_plan_id", row.ID), zap.Error(err))
			}
		}
		if len(row.FamilyDiscount) > 0 {
			if err := json.Unmarshal(row.FamilyDiscount, &plan.FamilyDiscount); err != nil {
				s.logger.Warn("rate plan has malformed family discount",
					zap.String("rate_plan_id", row.ID), zap.Error(err))
			}
		}
		plans[row.ID] = plan
		if row.IsDefault && defaultID == "" {
			defaultID = row.ID
			defaultName = row.Name
		}
	}
	return plans, defaultID, defaultName
}

// GetCharge returns a posted charge with its line items.
func (s *ChargeService) GetCharge(ctx context.Context, id string) (*models.ChargeDetail, error) {
	detail, err := s.charges.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "charge not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load charge")
	}
	return detail, nil
}

// ListCharges returns posted charges with pagination metadata.
func (s *ChargeService) ListCharges(ctx context.Context, filter models.ChargeFilter) ([]models.Charge, *models.Pagination, error) {
	charges, total, err := s.charges.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list charges")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return charges, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Summary aggregates one billing period. The boolean indicates whether the
// result came from cache.
func (s *ChargeService) Summary(ctx context.Context, month, year int) (*models.ChargeSummary, bool, error) {
	cacheKey := summaryCacheKey(month, year)
	var cached models.ChargeSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	summary, err := s.charges.Summary(ctx, month, year)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summary")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("charge_summary", time.Since(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, s.summaryTTL); err != nil {
			s.logger.Warn("cache summary", zap.Error(err))
		}
	}
	return summary, false, nil
}

// InvalidateSummaries drops cached period summaries after postings or payments.
func (s *ChargeService) InvalidateSummaries(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "billing:summary:*"); err != nil {
		s.logger.Warn("invalidate summaries", zap.Error(err))
	}
}
