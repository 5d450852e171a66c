package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	StatusOpen   TransactionStatus = "open"
	StatusClosed TransactionStatus = "closed"
)

func (s TransactionStatus) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

type TradeResult string

const (
	ResultWin  TradeResult = "win"
	ResultLoss TradeResult = "loss"
)

func (r TradeResult) Valid() bool {
	return r == ResultWin || r == ResultLoss
}

// Transaction is one journaled trade. RespectPlan is computed by the
// server from PlanID and CheckedStepIDs and never taken from the client.
type Transaction struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	Asset          string            `json:"asset"`
	Timeframe      string            `json:"timeframe"`
	DateIn         time.Time         `json:"dateIn"`
	DateOut        *time.Time        `json:"dateOut"`
	Status         TransactionStatus `json:"status"`
	EmotionBefore  string            `json:"emotionBefore"`
	EmotionAfter   *string           `json:"emotionAfter"`
	RespectPlan    int               `json:"respectPlan"`
	Confidence     *bool             `json:"confidence"`
	Result         *TradeResult      `json:"result"`
	Profit         *float64          `json:"profit"`
	PlanID         *string           `json:"planId"`
	CheckedStepIDs []string          `json:"checkedStepIds"`
	ScreenshotKey  *string           `json:"screenshotKey,omitempty"`
}

// NewTransaction is the input of a transaction create.
type NewTransaction struct {
	Asset          string
	Timeframe      string
	EmotionBefore  string
	Confidence     *bool
	PlanID         *string
	CheckedStepIDs []string

	// Legacy score inputs from older clients.
	RespectSteps *int
	TotalSteps   *int
}

// Optional is a patch field. Set reports that the field was present in the
// request; a nil Value then means an explicit null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Of returns a present, non-null Optional.
func Of[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present Optional holding null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// TransactionPatch is a normalized partial update. Fields left unset keep
// their stored value.
type TransactionPatch struct {
	Asset          Optional[string]
	Timeframe      Optional[string]
	EmotionBefore  Optional[string]
	EmotionAfter   Optional[string]
	Status         Optional[TransactionStatus]
	Result         Optional[TradeResult]
	Confidence     Optional[bool]
	Profit         Optional[float64]
	DateOut        Optional[time.Time]
	PlanID         Optional[string]
	CheckedStepIDs Optional[[]string]

	// Legacy score inputs from older clients.
	RespectSteps Optional[int]
	TotalSteps   Optional[int]
}

// HistorySummary aggregates every closed transaction of a user, not only
// the returned page.
type HistorySummary struct {
	Closed         int             `json:"closed"`
	Wins           int             `json:"wins"`
	Losses         int             `json:"losses"`
	WinRate        int             `json:"winRate"`
	TotalProfit    decimal.Decimal `json:"totalProfit"`
	AverageRespect int             `json:"averageRespect"`
}

// HistoryPage is one page of closed transactions, newest exit first.
type HistoryPage struct {
	Transactions []*Transaction `json:"transactions"`
	Page         int            `json:"page"`
	PerPage      int            `json:"perPage"`
	TotalPages   int            `json:"totalPages"`
	Summary      HistorySummary `json:"summary"`
}

// ScreenshotUpload instructs the client to PUT a trade screenshot to URL.
type ScreenshotUpload struct {
	Key string `json:"key"`
	URL string `json:"uploadUrl"`
}
