package engine

import (
	"fmt"
	"time"

	"github.com/dlemos/procurement-service/internal/model"
)

// DeadlineRule holds business-day offsets for one (type, priority) pair.
type DeadlineRule struct {
	ProposalDays int
	DeliveryDays int
}

// Fixed policy table, two types by three priorities.
var deadlineMatrix = map[model.DemandType]map[model.DemandPriority]DeadlineRule{
	model.TypeMaterials: {
		model.PriorityLow:    {ProposalDays: 5, DeliveryDays: 10},
		model.PriorityMedium: {ProposalDays: 3, DeliveryDays: 5},
		model.PriorityUrgent: {ProposalDays: 1, DeliveryDays: 1},
	},
	model.TypeServices: {
		model.PriorityLow:    {ProposalDays: 7, DeliveryDays: 15},
		model.PriorityMedium: {ProposalDays: 5, DeliveryDays: 7},
		model.PriorityUrgent: {ProposalDays: 2, DeliveryDays: 3},
	},
}

func RuleFor(demandType model.DemandType, priority model.DemandPriority) (DeadlineRule, error) {
	byPriority, ok := deadlineMatrix[demandType]
	if !ok {
		return DeadlineRule{}, fmt.Errorf("%w: unknown demand type %q", ErrValidation, demandType)
	}
	rule, ok := byPriority[priority]
	if !ok {
		return DeadlineRule{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, priority)
	}
	return rule, nil
}

type Deadlines struct {
	Proposal time.Time
	Delivery time.Time
}

// ComputeDeadlines resolves the rule for the pair and lays both deadlines
// out in business days. The delivery window counts from the proposal
// deadline, not from now. Callers must only invoke this when a demand's
// deadlines are still unset; re-scheduling an already scheduled demand is
// not this function's business.
func ComputeDeadlines(demandType model.DemandType, priority model.DemandPriority, now time.Time) (Deadlines, error) {
	rule, err := RuleFor(demandType, priority)
	if err != nil {
		return Deadlines{}, err
	}
	proposal := AddBusinessDays(now, rule.ProposalDays)
	delivery := AddBusinessDays(proposal, rule.DeliveryDays)
	return Deadlines{Proposal: proposal, Delivery: delivery}, nil
}

// AddBusinessDays advances one calendar day at a time, counting only
// weekdays, until days qualifying days have been added. The start day is
// never counted. The result is normalized to end of day.
func AddBusinessDays(from time.Time, days int) time.Time {
	current := from
	added := 0
	for added < days {
		current = current.AddDate(0, 0, 1)
		if isBusinessDay(current) {
			added++
		}
	}
	return endOfDay(current)
}

func isBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
