package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
	"github.com/dmitrijs2005/tradejournal/internal/server/objectstore"
	"github.com/dmitrijs2005/tradejournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tradejournal/internal/server/respect"
	"github.com/shopspring/decimal"
)

const (
	DefaultHistoryPerPage = 20
	MaxHistoryPerPage     = 100
)

// TransactionService manages journaled trades. The respect score is always
// computed here from the referenced plan and the ticked steps.
type TransactionService struct {
	repomanager repomanager.RepositoryManager
	respect     *respect.Calculator
	presigner   objectstore.Presigner
	now         func() time.Time
}

// NewTransactionService builds the service. presigner may be nil, in which
// case screenshot operations report common.ErrorUnavailable.
func NewTransactionService(m repomanager.RepositoryManager, presigner objectstore.Presigner) *TransactionService {
	return &TransactionService{
		repomanager: m,
		respect:     respect.NewCalculator(m.Steps()),
		presigner:   presigner,
		now:         time.Now,
	}
}

func (s *TransactionService) List(ctx context.Context, userID string) ([]*models.Transaction, error) {
	list, err := s.repomanager.Transactions().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}
	return list, nil
}

func (s *TransactionService) Create(ctx context.Context, userID string, in *models.NewTransaction) (*models.Transaction, error) {
	asset := strings.TrimSpace(in.Asset)
	timeframe := strings.TrimSpace(in.Timeframe)
	emotion := strings.TrimSpace(in.EmotionBefore)
	if asset == "" || timeframe == "" || emotion == "" {
		return nil, common.NewValidationError(common.CodeMissingFields, "asset, timeframe and emotionBefore are required")
	}

	planID := blankToNil(in.PlanID)
	if err := s.checkPlan(ctx, userID, planID); err != nil {
		return nil, err
	}
	checked := dropBlank(in.CheckedStepIDs)

	score := 0
	switch {
	case planID != nil || in.CheckedStepIDs != nil:
		var err error
		if score, err = s.respect.Compute(ctx, planID, checked); err != nil {
			return nil, fmt.Errorf("error computing respect: %w", err)
		}
	case in.RespectSteps != nil && *in.RespectSteps > 0:
		score = respect.Percent(*in.RespectSteps, deref(in.TotalSteps))
	}

	tx, err := s.repomanager.Transactions().Create(ctx, &models.Transaction{
		UserID:         userID,
		Asset:          asset,
		Timeframe:      timeframe,
		DateIn:         s.now().UTC(),
		Status:         models.StatusOpen,
		EmotionBefore:  emotion,
		RespectPlan:    score,
		Confidence:     in.Confidence,
		PlanID:         planID,
		CheckedStepIDs: checked,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating transaction: %w", err)
	}
	return tx, nil
}

// Update applies patch to the caller's transaction with one write. Any
// validation failure leaves the stored document unchanged.
func (s *TransactionService) Update(ctx context.Context, userID, id string, patch *models.TransactionPatch) (*models.Transaction, error) {
	tx, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	planChanged := false
	if patch.PlanID.Set {
		next := blankToNil(patch.PlanID.Value)
		if err := s.checkPlan(ctx, userID, next); err != nil {
			return nil, err
		}
		planChanged = deref(next) != deref(tx.PlanID)
		tx.PlanID = next
	}
	if patch.CheckedStepIDs.Set {
		tx.CheckedStepIDs = dropBlank(deref(patch.CheckedStepIDs.Value))
	}

	if patch.Asset.Set {
		tx.Asset = *patch.Asset.Value
	}
	if patch.Timeframe.Set {
		tx.Timeframe = *patch.Timeframe.Value
	}
	if patch.EmotionBefore.Set {
		tx.EmotionBefore = *patch.EmotionBefore.Value
	}
	if patch.EmotionAfter.Set {
		tx.EmotionAfter = patch.EmotionAfter.Value
	}
	if patch.Result.Set {
		tx.Result = patch.Result.Value
	}
	if patch.Confidence.Set {
		tx.Confidence = patch.Confidence.Value
	}
	if patch.Profit.Set {
		tx.Profit = patch.Profit.Value
	}
	if patch.DateOut.Set {
		tx.DateOut = patch.DateOut.Value
	}
	if patch.Status.Set {
		switch *patch.Status.Value {
		case models.StatusClosed:
			if tx.DateOut == nil {
				now := s.now().UTC()
				tx.DateOut = &now
			}
		case models.StatusOpen:
			tx.DateOut = nil
		}
		tx.Status = *patch.Status.Value
	}

	switch {
	case planChanged || patch.CheckedStepIDs.Set:
		score, err := s.respect.Compute(ctx, tx.PlanID, tx.CheckedStepIDs)
		if err != nil {
			return nil, fmt.Errorf("error computing respect: %w", err)
		}
		tx.RespectPlan = score
	case !patch.PlanID.Set && (patch.RespectSteps.Value != nil || patch.TotalSteps.Value != nil):
		tx.RespectPlan = respect.Percent(deref(patch.RespectSteps.Value), deref(patch.TotalSteps.Value))
	}

	updated, err := s.repomanager.Transactions().Update(ctx, tx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error updating transaction: %w", err)
	}
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if _, err := s.repomanager.Transactions().Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting transaction: %w", err)
	}
	return nil
}

// History returns one page of the caller's closed transactions, most
// recently closed first. page and perPage default when zero.
func (s *TransactionService) History(ctx context.Context, userID string, page, perPage int) (*models.HistoryPage, error) {
	if page == 0 {
		page = 1
	}
	if perPage == 0 {
		perPage = DefaultHistoryPerPage
	}
	if page < 1 || perPage < 1 || perPage > MaxHistoryPerPage {
		return nil, common.NewValidationError(common.CodeInvalidPaging, "page must be >= 1 and perPage within 1..100")
	}

	all, err := s.repomanager.Transactions().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing transactions: %w", err)
	}

	closed := make([]*models.Transaction, 0, len(all))
	for _, tx := range all {
		if tx.Status == models.StatusClosed {
			closed = append(closed, tx)
		}
	}
	sort.SliceStable(closed, func(i, j int) bool {
		a, b := closed[i].DateOut, closed[j].DateOut
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})

	totalPages := (len(closed) + perPage - 1) / perPage
	from, to := len(closed), len(closed)
	if page <= totalPages {
		from = (page - 1) * perPage
		to = min(from+perPage, len(closed))
	}

	return &models.HistoryPage{
		Transactions: closed[from:to],
		Page:         page,
		PerPage:      perPage,
		TotalPages:   totalPages,
		Summary:      summarize(closed),
	}, nil
}

func summarize(closed []*models.Transaction) models.HistorySummary {
	sum := models.HistorySummary{Closed: len(closed), TotalProfit: decimal.Zero}
	respectTotal := 0
	for _, tx := range closed {
		if tx.Result != nil {
			switch *tx.Result {
			case models.ResultWin:
				sum.Wins++
			case models.ResultLoss:
				sum.Losses++
			}
		}
		if tx.Profit != nil {
			sum.TotalProfit = sum.TotalProfit.Add(decimal.NewFromFloat(*tx.Profit))
		}
		respectTotal += tx.RespectPlan
	}
	sum.WinRate = respect.Percent(sum.Wins, sum.Wins+sum.Losses)
	if len(closed) > 0 {
		sum.AverageRespect = (2*respectTotal + len(closed)) / (2 * len(closed))
	}
	return sum
}

// ScreenshotUploadURL assigns a fresh screenshot key to the transaction
// and returns a presigned PUT URL for it.
func (s *TransactionService) ScreenshotUploadURL(ctx context.Context, userID, id string) (*models.ScreenshotUpload, error) {
	if s.presigner == nil {
		return nil, common.ErrorUnavailable
	}
	tx, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	key := objectstore.ScreenshotKey(userID, s.now().UTC())
	url, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	tx.ScreenshotKey = &key
	if _, err := s.repomanager.Transactions().Update(ctx, tx); err != nil {
		return nil, fmt.Errorf("error updating transaction: %w", err)
	}
	return &models.ScreenshotUpload{Key: key, URL: url}, nil
}

// ScreenshotURL returns a presigned GET URL for the transaction's
// screenshot, or common.ErrorNotFound when none was uploaded.
func (s *TransactionService) ScreenshotURL(ctx context.Context, userID, id string) (string, error) {
	if s.presigner == nil {
		return "", common.ErrorUnavailable
	}
	tx, err := s.owned(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if tx.ScreenshotKey == nil {
		return "", common.ErrorNotFound
	}

	url, err := s.presigner.PresignGet(ctx, *tx.ScreenshotKey)
	if err != nil {
		return "", fmt.Errorf("error presigning download: %w", err)
	}
	return url, nil
}

func (s *TransactionService) owned(ctx context.Context, userID, id string) (*models.Transaction, error) {
	tx, err := s.repomanager.Transactions().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting transaction: %w", err)
	}
	if tx.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return tx, nil
}

// checkPlan accepts a nil plan id or one of the caller's plans.
func (s *TransactionService) checkPlan(ctx context.Context, userID string, planID *string) error {
	if planID == nil {
		return nil
	}
	if _, err := ownedPlan(ctx, s.repomanager, userID, *planID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewValidationError(common.CodeInvalidPlan, "planId does not reference one of your plans")
		}
		return err
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

func dropBlank(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) != "" {
			out = append(out, id)
		}
	}
	return out
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
