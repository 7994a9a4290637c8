package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dlemos/procurement-service/internal/model"
)

var now = time.Date(2024, 6, 7, 14, 0, 0, 0, time.UTC)

func TestSubmitForReview(t *testing.T) {
	d := newDemand(model.StatusDraft, newItem("Chalk", 100))

	patch, err := RequestTransition(d, ActionSubmitForReview, Evidence{}, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusPendingWarehouseReview, *patch.Status)
	require.Nil(t, patch.ProposalDeadline)
	require.Nil(t, patch.DeliveryDeadline)
}

func TestSubmitForReviewRequiresItemsAndText(t *testing.T) {
	empty := newDemand(model.StatusDraft)
	_, err := RequestTransition(empty, ActionSubmitForReview, Evidence{}, now)
	require.ErrorIs(t, err, ErrValidation)

	untitled := newDemand(model.StatusDraft, newItem("Chalk", 100))
	untitled.Title = "  "
	_, err = RequestTransition(untitled, ActionSubmitForReview, Evidence{}, now)
	require.ErrorIs(t, err, ErrValidation)
}

func TestApproveComputesDeadlinesWhenAbsent(t *testing.T) {
	d := newDemand(model.StatusPendingWarehouseReview, newItem("Chalk", 100))

	patch, err := RequestTransition(d, ActionApprove, Evidence{Observations: "published to registered suppliers"}, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusOpenForBidding, *patch.Status)
	require.NotNil(t, patch.ProposalDeadline)
	require.NotNil(t, patch.DeliveryDeadline)
	require.False(t, patch.DeliveryDeadline.Before(*patch.ProposalDeadline))
	require.Equal(t, "published to registered suppliers", *patch.Observations)
}

func TestApproveKeepsExistingDeadlines(t *testing.T) {
	d := newDemand(model.StatusPendingWarehouseReview, newItem("Chalk", 100))
	proposal := time.Date(2024, 6, 12, 23, 59, 59, 0, time.UTC)
	delivery := time.Date(2024, 6, 19, 23, 59, 59, 0, time.UTC)
	d.ProposalDeadline = &proposal
	d.DeliveryDeadline = &delivery

	patch, err := RequestTransition(d, ActionApprove, Evidence{}, now)
	require.NoError(t, err)
	require.Nil(t, patch.ProposalDeadline)
	require.Nil(t, patch.DeliveryDeadline)
}

func TestRejectRequiresReason(t *testing.T) {
	d := newDemand(model.StatusPendingWarehouseReview, newItem("Chalk", 100))

	_, err := RequestTransition(d, ActionReject, Evidence{}, now)
	require.ErrorIs(t, err, ErrValidation)

	patch, err := RequestTransition(d, ActionReject, Evidence{Reason: "stock already covers it"}, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusRejected, *patch.Status)
	require.Equal(t, "stock already covers it", *patch.RejectionReason)
	require.NotNil(t, patch.DecisionDate)
}

func TestCloseBiddingTagsReason(t *testing.T) {
	d := newDemand(model.StatusOpenForBidding, newItem("Chalk", 100))
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)
	d.DeliveryDeadline = &future

	d.ProposalDeadline = &future
	patch, err := RequestTransition(d, ActionCloseBidding, Evidence{Reason: "all suppliers answered"}, now)
	require.NoError(t, err)
	require.Equal(t, "[early] all suppliers answered", *patch.ClosingReason)

	d.ProposalDeadline = &past
	patch, err = RequestTransition(d, ActionCloseBidding, Evidence{Reason: "window over"}, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusUnderAnalysis, *patch.Status)
	require.Equal(t, "[expired] window over", *patch.ClosingReason)

	_, err = RequestTransition(d, ActionCloseBidding, Evidence{}, now)
	require.ErrorIs(t, err, ErrValidation)
}

func TestHomologateRequiresValidAward(t *testing.T) {
	d := newDemand(model.StatusUnderAnalysis, newItem("Chalk", 100))

	_, err := RequestTransition(d, ActionHomologate, Evidence{}, now)
	require.ErrorIs(t, err, ErrValidation)

	_, err = RequestTransition(d, ActionHomologate, Evidence{Award: &model.Award{Mode: model.AwardModeGlobal}}, now)
	require.ErrorIs(t, err, ErrValidation)

	award := &model.Award{
		Mode:          model.AwardModeGlobal,
		Justification: "lowest overall price",
		SupplierName:  "Alpha Ltda",
		TotalValue:    900,
	}
	patch, err := RequestTransition(d, ActionHomologate, Evidence{Award: award}, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusAwardDefined, *patch.Status)
	require.Equal(t, award, patch.Award)
	require.Equal(t, now, *patch.DecisionDate)
}

func TestFinalize(t *testing.T) {
	d := newDemand(model.StatusAwardDefined, newItem("Chalk", 100))
	patch, err := RequestTransition(d, ActionFinalize, Evidence{}, now)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, *patch.Status)
}

func TestCancelFromPreAwardStates(t *testing.T) {
	for _, status := range []model.DemandStatus{
		model.StatusDraft,
		model.StatusPendingWarehouseReview,
		model.StatusOpenForBidding,
		model.StatusUnderAnalysis,
	} {
		d := newDemand(status, newItem("Chalk", 100))
		patch, err := RequestTransition(d, ActionCancel, Evidence{Reason: "budget cut"}, now)
		require.NoError(t, err, status)
		require.Equal(t, model.StatusCancelled, *patch.Status)
	}

	d := newDemand(model.StatusAwardDefined, newItem("Chalk", 100))
	_, err := RequestTransition(d, ActionCancel, Evidence{Reason: "budget cut"}, now)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTerminalStatesAcceptNothing(t *testing.T) {
	actions := []Action{
		ActionSubmitForReview, ActionApprove, ActionReject,
		ActionCloseBidding, ActionHomologate, ActionFinalize, ActionCancel,
	}
	for _, status := range []model.DemandStatus{
		model.StatusCompleted, model.StatusClosed, model.StatusRejected, model.StatusCancelled,
	} {
		for _, action := range actions {
			d := newDemand(status, newItem("Chalk", 100))
			_, err := RequestTransition(d, action, Evidence{Reason: "x"}, now)
			require.ErrorIs(t, err, ErrInvalidTransition, "%s via %s", status, action)
		}
	}
}

func TestUnknownActionRejected(t *testing.T) {
	d := newDemand(model.StatusDraft, newItem("Chalk", 100))
	_, err := RequestTransition(d, Action("ARCHIVE"), Evidence{}, now)
	require.ErrorIs(t, err, ErrValidation)
}
