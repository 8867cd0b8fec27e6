package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studiosync/billing-api/internal/billing"
	"github.com/studiosync/billing-api/internal/models"
	"github.com/studiosync/billing-api/pkg/jobs"
)

// ChargeCalculator computes a family's bill from its current documents.
type ChargeCalculator interface {
	Calculate(ctx context.Context, familyID string, asOf time.Time) (*billing.Result, error)
	InvalidateSummaries(ctx context.Context)
}

// PostingService sweeps active families once per billing period, posting one
// charge per family and recording failures without aborting the run.
type PostingService struct {
	calculator ChargeCalculator
	families   FamilyRepository
	charges    ChargeRepository
	settings   SettingsRepository
	queue      *jobs.Queue
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewPostingService constructs a posting service. Call StartQueue before
// enqueueing scheduled runs.
func NewPostingService(calculator ChargeCalculator, families FamilyRepository, charges ChargeRepository, settings SettingsRepository, metrics *MetricsService, logger *zap.Logger, queueCfg jobs.QueueConfig) *PostingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &PostingService{
		calculator: calculator,
		families:   families,
		charges:    charges,
		settings:   settings,
		metrics:    metrics,
		logger:     logger,
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("charge-posting", s.handleJob, queueCfg)
	return s
}

// StartQueue starts the background posting workers.
func (s *PostingService) StartQueue(ctx context.Context) {
	s.queue.Start(ctx)
}

// StopQueue drains and stops the background posting workers.
func (s *PostingService) StopQueue() {
	s.queue.Stop()
}

// EnqueueRun schedules a posting sweep for the given period on the worker
// queue. The scheduled nightly sweep uses this path so retries apply.
func (s *PostingService) EnqueueRun(month, year int) error {
	return s.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    "posting_run",
		Payload: [2]int{month, year},
	})
}

// EnqueueScheduledRun is the nightly cron entry point. The studio's
// configured post-charges day decides whether tonight's sweep actually
// posts; an unset day disables scheduled posting entirely.
func (s *PostingService) EnqueueScheduledRun(ctx context.Context) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load billing settings: %w", err)
	}
	now := time.Now().UTC()
	if settings == nil || settings.PostChargesDay == 0 {
		s.logger.Debug("scheduled posting disabled, no post-charges day configured")
		return nil
	}
	if settings.PostChargesDay != now.Day() {
		return nil
	}
	return s.EnqueueRun(int(now.Month()), now.Year())
}

func (s *PostingService) handleJob(ctx context.Context, job jobs.Job) error {
	period, ok := job.Payload.([2]int)
	if !ok {
		return fmt.Errorf("posting job %s has unexpected payload", job.ID)
	}
	_, err := s.Run(ctx, period[0], period[1])
	return err
}

// Run posts charges for every active family in the billing period. Families
// already billed for the period are skipped; zero and negative totals are
// skipped; per-family failures are recorded and the sweep continues.
func (s *PostingService) Run(ctx context.Context, month, year int) (*models.PostingRunResult, error) {
	if month < 1 || month > 12 || year < 2000 {
		now := time.Now().UTC()
		month = int(now.Month())
		year = now.Year()
	}

	families, err := s.families.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list families for posting: %w", err)
	}

	result := &models.PostingRunResult{Month: month, Year: year}
	asOf := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	for _, family := range families {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if err := s.postFamily(ctx, family, month, year, asOf, result); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", family.ID, err))
			if s.metrics != nil {
				s.metrics.RecordPostingFailure()
			}
			s.logger.Error("posting failed for family",
				zap.String("family_id", family.ID),
				zap.Int("month", month),
				zap.Int("year", year),
				zap.Error(err))
			if recErr := s.charges.RecordError(ctx, models.ChargeError{
				FamilyID: family.ID,
				Month:    month,
				Year:     year,
				Message:  err.Error(),
			}); recErr != nil {
				s.logger.Error("record posting error", zap.String("family_id", family.ID), zap.Error(recErr))
			}
		}
	}

	s.calculator.InvalidateSummaries(ctx)
	s.logger.Info("posting run complete",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("posted", result.Posted),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}

func (s *PostingService) postFamily(ctx context.Context, family models.Family, month, year int, asOf time.Time, result *models.PostingRunResult) error {
	exists, err := s.charges.ExistsForPeriod(ctx, family.ID, month, year)
	if err != nil {
		return err
	}
	if exists {
		result.Skipped++
		return nil
	}

	calc, err := s.calculator.Calculate(ctx, family.ID, asOf)
	if err != nil {
		return err
	}
	if !calc.Success {
		return fmt.Errorf("calculation failed: %s", calc.Error)
	}
	data := calc.ChargeData
	if data == nil || data.FinalTotal <= 0 {
		result.Skipped++
		return nil
	}

	charge := models.Charge{
		FamilyID:      family.ID,
		FamilyName:    family.Name,
		Month:         month,
		Year:          year,
		Status:        models.ChargeStatusUnpaid,
		TotalTuition:  data.TotalTuition,
		TotalFees:     data.TotalFees,
		TotalDiscount: data.TotalDiscount,
		CapReduction:  data.CapReduction,
		FinalTotal:    data.FinalTotal,
	}

	items := buildLineItems(data)
	if _, err := s.charges.Create(ctx, charge, items); err != nil {
		return err
	}
	if err := s.families.AddToBalance(ctx, family.ID, data.FinalTotal); err != nil {
		return err
	}

	result.Posted++
	if s.metrics != nil {
		s.metrics.RecordChargePosted()
	}
	return nil
}

// buildLineItems flattens computed charge data into persisted line items:
// tuition and fee lines per student, family-level fees and discounts after.
func buildLineItems(data *billing.ChargeData) []models.ChargeLineItem {
	var items []models.ChargeLineItem

	for i := range data.Students {
		student := data.Students[i]
		id := student.ID
		name := student.Name
		if student.Tuition > 0 {
			items = append(items, models.ChargeLineItem{
				StudentID:   &id,
				StudentName: &name,
				Kind:        models.LineItemTuition,
				Description: "Tuition",
				Amount:      student.Tuition,
			})
		}
		for _, discount := range student.Discounts {
			items = append(items, models.ChargeLineItem{
				StudentID:   &id,
				StudentName: &name,
				Kind:        models.LineItemDiscount,
				Description: discount.Name,
				Amount:      -discount.Amount,
			})
		}
	}

	for _, fee := range data.Fees {
		item := models.ChargeLineItem{
			Kind:        models.LineItemFee,
			Description: fee.Name,
			Amount:      fee.Amount,
		}
		if fee.StudentID != "" {
			id := fee.StudentID
			name := fee.StudentName
			item.StudentID = &id
			item.StudentName = &name
		}
		items = append(items, item)
	}

	for _, discount := range data.Discounts {
		items = append(items, models.ChargeLineItem{
			Kind:        models.LineItemDiscount,
			Description: discount.Name,
			Amount:      -discount.Amount,
		})
	}

	return items
}
