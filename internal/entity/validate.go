package entity

import (
	"errors"
	"time"
)

// Business-rule checks shared by every mutation path. They are invoked
// explicitly by each state-transition operation before the write; no storage
// hook enforces them.

var (
	ErrDeadlineNotFuture   = errors.New("deadline must be in the future")
	ErrCriteriaWeightsSum  = errors.New("evaluation criteria weights must sum to 100")
	ErrDeliveryDateInPast  = errors.New("delivery date must not be in the past")
	ErrNonPositiveQuantity = errors.New("quantity must be positive")
	ErrNegativeUnitPrice   = errors.New("unit price must not be negative")
	ErrScoreOutOfRange     = errors.New("score must be between 0 and its max score")
	ErrEmptyScoreList      = errors.New("score list must not be empty")
)

// ValidateDeadline requires a strictly future deadline. Applied at market
// request creation and at every status-preserving update that touches it.
func ValidateDeadline(deadline, now time.Time) error {
	if !deadline.After(now) {
		return ErrDeadlineNotFuture
	}
	return nil
}

// ValidateCriteriaWeights requires weights of a non-empty criteria list to
// sum to exactly 100. An empty list is valid.
func ValidateCriteriaWeights(criteria []EvaluationCriterion) error {
	if len(criteria) == 0 {
		return nil
	}
	sum := 0
	for _, c := range criteria {
		sum += c.Weight
	}
	if sum != 100 {
		return ErrCriteriaWeightsSum
	}
	return nil
}

// ValidateDeliveryDate requires a delivery date on or after the current day.
func ValidateDeliveryDate(deliveryDate, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if deliveryDate.Before(today) {
		return ErrDeliveryDateInPast
	}
	return nil
}

// ValidateProposalPricing guards the inputs of the derived total price.
func ValidateProposalPricing(unitPriceNegative bool, quantity int) error {
	if quantity <= 0 {
		return ErrNonPositiveQuantity
	}
	if unitPriceNegative {
		return ErrNegativeUnitPrice
	}
	return nil
}

// ValidateScores guards a manual score list before aggregation.
func ValidateScores(scores []CriterionScore) error {
	if len(scores) == 0 {
		return ErrEmptyScoreList
	}
	for _, s := range scores {
		if s.Score < 0 || s.MaxScore <= 0 || s.Score > s.MaxScore {
			return ErrScoreOutOfRange
		}
	}
	return nil
}
