package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/dmitrijs2005/tradejournal/internal/server/models"
)

// MaxStepCount bounds the legacy respectSteps and totalSteps counts.
const MaxStepCount = 1_000_000

// DecodeNewTransaction parses a transaction create body. Required fields
// are checked by TransactionService.Create.
func DecodeNewTransaction(body []byte) (*models.NewTransaction, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	in := &models.NewTransaction{}
	for key, raw := range fields {
		switch key {
		case "asset":
			in.Asset, err = optionalString(raw)
		case "timeframe":
			in.Timeframe, err = optionalString(raw)
		case "emotionBefore":
			in.EmotionBefore, err = optionalString(raw)
		case "confidence":
			var v models.Optional[bool]
			v, err = decodeNullable[bool](raw, common.CodeInvalidBody)
			in.Confidence = v.Value
		case "planId":
			in.PlanID = normalizePlanID(raw).Value
		case "checkedStepIds":
			if !isNull(raw) {
				in.CheckedStepIDs = normalizeStepIDs(raw)
			}
		case "respectSteps":
			var v models.Optional[int]
			v, err = decodeCount(raw)
			in.RespectSteps = v.Value
		case "totalSteps":
			var v models.Optional[int]
			v, err = decodeCount(raw)
			in.TotalSteps = v.Value
		}
		if err != nil {
			return nil, err
		}
	}
	return in, nil
}

// DecodeTransactionPatch parses and normalizes a transaction update body.
//
//   - planId: null, blank or non-string becomes null.
//   - checkedStepIds: a non-array becomes []; non-string and blank entries are dropped.
//   - profit: null or "" becomes null; a number is kept; anything else is INVALID_PROFIT.
//   - status must be open or closed, result win, loss or null.
//   - dateOut must be RFC 3339 or null.
//
// Unknown fields, including server-owned ones such as userId or
// respectPlan, are ignored.
func DecodeTransactionPatch(body []byte) (*models.TransactionPatch, error) {
	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	p := &models.TransactionPatch{}
	for key, raw := range fields {
		switch key {
		case "asset":
			p.Asset, err = decodeRequiredString(raw)
		case "timeframe":
			p.Timeframe, err = decodeRequiredString(raw)
		case "emotionBefore":
			p.EmotionBefore, err = decodeRequiredString(raw)
		case "emotionAfter":
			p.EmotionAfter, err = decodeNullable[string](raw, common.CodeInvalidBody)
			if err == nil && p.EmotionAfter.Value != nil {
				trimmed := strings.TrimSpace(*p.EmotionAfter.Value)
				p.EmotionAfter.Value = &trimmed
			}
		case "status":
			p.Status, err = decodeStatus(raw)
		case "result":
			p.Result, err = decodeResult(raw)
		case "confidence":
			p.Confidence, err = decodeNullable[bool](raw, common.CodeInvalidBody)
		case "profit":
			p.Profit, err = decodeProfit(raw)
		case "dateOut":
			p.DateOut, err = decodeDate(raw)
		case "planId":
			p.PlanID = normalizePlanID(raw)
		case "checkedStepIds":
			p.CheckedStepIDs = models.Of(normalizeStepIDs(raw))
		case "respectSteps":
			p.RespectSteps, err = decodeCount(raw)
		case "totalSteps":
			p.TotalSteps, err = decodeCount(raw)
		}
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	if !json.Valid(body) {
		return nil, common.NewValidationError(common.CodeInvalidJSON, "")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, common.NewValidationError(common.CodeInvalidBody, "expected a JSON object")
	}
	return fields, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// optionalString accepts a string or null; null and other types read as "".
func optionalString(raw json.RawMessage) (string, error) {
	var s string
	if isNull(raw) {
		return "", nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", common.NewValidationError(common.CodeInvalidBody, "expected a string")
	}
	return s, nil
}

func decodeRequiredString(raw json.RawMessage) (models.Optional[string], error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || isNull(raw) {
		return models.Optional[string]{}, common.NewValidationError(common.CodeInvalidBody, "expected a string")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Optional[string]{}, common.NewValidationError(common.CodeMissingFields, "field must not be blank")
	}
	return models.Of(s), nil
}

func decodeNullable[T any](raw json.RawMessage, code string) (models.Optional[T], error) {
	if isNull(raw) {
		return models.Null[T](), nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return models.Optional[T]{}, common.NewValidationError(code, "")
	}
	return models.Of(v), nil
}

func decodeStatus(raw json.RawMessage) (models.Optional[models.TransactionStatus], error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || isNull(raw) || !models.TransactionStatus(s).Valid() {
		return models.Optional[models.TransactionStatus]{}, common.NewValidationError(common.CodeInvalidStatus, "status must be open or closed")
	}
	return models.Of(models.TransactionStatus(s)), nil
}

func decodeResult(raw json.RawMessage) (models.Optional[models.TradeResult], error) {
	if isNull(raw) {
		return models.Null[models.TradeResult](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || !models.TradeResult(s).Valid() {
		return models.Optional[models.TradeResult]{}, common.NewValidationError(common.CodeInvalidResult, "result must be win, loss or null")
	}
	return models.Of(models.TradeResult(s)), nil
}

func decodeProfit(raw json.RawMessage) (models.Optional[float64], error) {
	if isNull(raw) {
		return models.Null[float64](), nil
	}
	var s string
	if json.Unmarshal(raw, &s) == nil && s == "" {
		return models.Null[float64](), nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Optional[float64]{}, common.NewValidationError(common.CodeInvalidProfit, "profit must be a number or null")
	}
	return models.Of(v), nil
}

func decodeDate(raw json.RawMessage) (models.Optional[time.Time], error) {
	if isNull(raw) {
		return models.Null[time.Time](), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return models.Optional[time.Time]{}, common.NewValidationError(common.CodeInvalidDate, "dateOut must be an RFC 3339 timestamp")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return models.Optional[time.Time]{}, common.NewValidationError(common.CodeInvalidDate, "dateOut must be an RFC 3339 timestamp")
	}
	return models.Of(t.UTC()), nil
}

func decodeCount(raw json.RawMessage) (models.Optional[int], error) {
	if isNull(raw) {
		return models.Null[int](), nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || v != math.Trunc(v) || v < 0 || v > MaxStepCount {
		return models.Optional[int]{}, common.NewValidationError(common.CodeInvalidBody, fmt.Sprintf("expected a whole number between 0 and %d", MaxStepCount))
	}
	return models.Of(int(v)), nil
}

func normalizePlanID(raw json.RawMessage) models.Optional[string] {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || isNull(raw) || strings.TrimSpace(s) == "" {
		return models.Null[string]()
	}
	return models.Of(s)
}

func normalizeStepIDs(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil || isNull(item) || strings.TrimSpace(s) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
