package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dlemos/procurement-service/internal/model"
)

// 2024-06-07 is a Friday.
var friday = time.Date(2024, 6, 7, 10, 30, 0, 0, time.UTC)

func TestAddBusinessDaysSkipsWeekends(t *testing.T) {
	monday := AddBusinessDays(friday, 1)
	require.Equal(t, time.Monday, monday.Weekday())
	require.Equal(t, time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC), monday)

	tuesday := AddBusinessDays(monday, 1)
	require.Equal(t, time.Tuesday, tuesday.Weekday())
	require.Equal(t, time.Date(2024, 6, 11, 23, 59, 59, 0, time.UTC), tuesday)
}

func TestAddBusinessDaysNeverCountsStartDay(t *testing.T) {
	saturday := time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC)
	got := AddBusinessDays(saturday, 1)
	require.Equal(t, time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC), got)
}

func TestUrgentMaterialsRule(t *testing.T) {
	rule, err := RuleFor(model.TypeMaterials, model.PriorityUrgent)
	require.NoError(t, err)
	require.Equal(t, DeadlineRule{ProposalDays: 1, DeliveryDays: 1}, rule)

	deadlines, err := ComputeDeadlines(model.TypeMaterials, model.PriorityUrgent, friday)
	require.NoError(t, err)
	require.Equal(t, time.Monday, deadlines.Proposal.Weekday())
	require.Equal(t, time.Tuesday, deadlines.Delivery.Weekday())
}

func TestComputeDeadlinesAllPairs(t *testing.T) {
	types := []model.DemandType{model.TypeMaterials, model.TypeServices}
	priorities := []model.DemandPriority{model.PriorityLow, model.PriorityMedium, model.PriorityUrgent}

	for _, typ := range types {
		for _, prio := range priorities {
			deadlines, err := ComputeDeadlines(typ, prio, friday)
			require.NoError(t, err, "%s/%s", typ, prio)
			require.False(t, deadlines.Delivery.Before(deadlines.Proposal), "%s/%s", typ, prio)
			require.NotEqual(t, time.Saturday, deadlines.Proposal.Weekday())
			require.NotEqual(t, time.Sunday, deadlines.Proposal.Weekday())
			require.NotEqual(t, time.Saturday, deadlines.Delivery.Weekday())
			require.NotEqual(t, time.Sunday, deadlines.Delivery.Weekday())
		}
	}
}

func TestComputeDeadlinesUnknownPair(t *testing.T) {
	_, err := ComputeDeadlines("FURNITURE", model.PriorityLow, friday)
	require.ErrorIs(t, err, ErrValidation)

	_, err = ComputeDeadlines(model.TypeMaterials, "CRITICAL", friday)
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeliveryCountsFromProposalDeadline(t *testing.T) {
	// Services/Low is {7, 15}: delivery must equal proposal plus 15
	// business days, not now plus 15.
	deadlines, err := ComputeDeadlines(model.TypeServices, model.PriorityLow, friday)
	require.NoError(t, err)
	require.Equal(t, AddBusinessDays(deadlines.Proposal, 15), deadlines.Delivery)
}
