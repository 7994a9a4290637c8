package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlemos/procurement-service/internal/model"
)

type Action string

const (
	ActionSubmitForReview Action = "SUBMIT_FOR_REVIEW"
	ActionApprove         Action = "APPROVE"
	ActionReject          Action = "REJECT"
	ActionCloseBidding    Action = "CLOSE_BIDDING"
	ActionHomologate      Action = "HOMOLOGATE"
	ActionFinalize        Action = "FINALIZE"
	ActionCancel          Action = "CANCEL"
)

func (a Action) Valid() bool {
	switch a {
	case ActionSubmitForReview, ActionApprove, ActionReject,
		ActionCloseBidding, ActionHomologate, ActionFinalize, ActionCancel:
		return true
	default:
		return false
	}
}

func (a Action) target() model.DemandStatus {
	switch a {
	case ActionSubmitForReview:
		return model.StatusPendingWarehouseReview
	case ActionApprove:
		return model.StatusOpenForBidding
	case ActionReject:
		return model.StatusRejected
	case ActionCloseBidding:
		return model.StatusUnderAnalysis
	case ActionHomologate:
		return model.StatusAwardDefined
	case ActionFinalize:
		return model.StatusCompleted
	case ActionCancel:
		return model.StatusCancelled
	default:
		return ""
	}
}

// Evidence carries the operator input backing a transition request.
type Evidence struct {
	// Reason backs reject, close-bidding and cancel requests.
	Reason string
	// Observations are attached on approval, visible to bidders.
	Observations string
	// Award backs homologation; it must already have passed ResolveAward.
	Award *model.Award
}

// RequestTransition is the single decision point of the lifecycle. It
// performs no I/O: given the demand snapshot, the requested action and
// its evidence it returns either an error or a patch holding exactly the
// fields to persist. The snapshot itself is never mutated.
func RequestTransition(d *model.Demand, action Action, ev Evidence, now time.Time) (*model.Patch, error) {
	if !action.Valid() {
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	switch action {
	case ActionSubmitForReview:
		return submitForReview(d)
	case ActionApprove:
		return approve(d, ev, now)
	case ActionReject:
		return reject(d, ev, now)
	case ActionCloseBidding:
		return closeBidding(d, ev, now)
	case ActionHomologate:
		return homologate(d, ev, now)
	case ActionFinalize:
		return finalize(d)
	case ActionCancel:
		return cancel(d, ev, now)
	}
	return nil, transitionError(d.Status, action)
}

func submitForReview(d *model.Demand) (*model.Patch, error) {
	if d.Status != model.StatusDraft {
		return nil, transitionError(d.Status, ActionSubmitForReview)
	}
	if strings.TrimSpace(d.Title) == "" || strings.TrimSpace(d.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", ErrValidation)
	}
	if len(d.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrValidation)
	}
	return &model.Patch{Status: statusPtr(model.StatusPendingWarehouseReview)}, nil
}

func approve(d *model.Demand, ev Evidence, now time.Time) (*model.Patch, error) {
	if d.Status != model.StatusPendingWarehouseReview {
		return nil, transitionError(d.Status, ActionApprove)
	}

	patch := &model.Patch{Status: statusPtr(model.StatusOpenForBidding)}
	if obs := strings.TrimSpace(ev.Observations); obs != "" {
		patch.Observations = &obs
	}

	// Compute-if-absent: an already scheduled demand keeps its deadlines.
	if !d.Scheduled() {
		deadlines, err := ComputeDeadlines(d.Type, d.Priority, now)
		if err != nil {
			return nil, err
		}
		patch.ProposalDeadline = &deadlines.Proposal
		patch.DeliveryDeadline = &deadlines.Delivery
	}
	return patch, nil
}

func reject(d *model.Demand, ev Evidence, now time.Time) (*model.Patch, error) {
	if d.Status != model.StatusPendingWarehouseReview {
		return nil, transitionError(d.Status, ActionReject)
	}
	reason := strings.TrimSpace(ev.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}
	decided := now
	return &model.Patch{
		Status:          statusPtr(model.StatusRejected),
		RejectionReason: &reason,
		DecisionDate:    &decided,
	}, nil
}

func closeBidding(d *model.Demand, ev Evidence, now time.Time) (*model.Patch, error) {
	if d.Status != model.StatusOpenForBidding {
		return nil, transitionError(d.Status, ActionCloseBidding)
	}
	reason := strings.TrimSpace(ev.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: closing reason is required", ErrValidation)
	}

	// Tag the stored reason for audit: expired when the proposal window
	// already ran out, early when an operator forced the close.
	tag := "early"
	if d.ProposalDeadline != nil && now.After(*d.ProposalDeadline) {
		tag = "expired"
	}
	tagged := fmt.Sprintf("[%s] %s", tag, reason)
	return &model.Patch{
		Status:        statusPtr(model.StatusUnderAnalysis),
		ClosingReason: &tagged,
	}, nil
}

func homologate(d *model.Demand, ev Evidence, now time.Time) (*model.Patch, error) {
	if d.Status != model.StatusUnderAnalysis {
		return nil, transitionError(d.Status, ActionHomologate)
	}
	if ev.Award == nil {
		return nil, fmt.Errorf("%w: award is required", ErrValidation)
	}
	if strings.TrimSpace(ev.Award.Justification) == "" {
		return nil, fmt.Errorf("%w: justification is required", ErrValidation)
	}
	if !ev.Award.Mode.Valid() {
		return nil, fmt.Errorf("%w: unknown award mode %q", ErrValidation, ev.Award.Mode)
	}
	decided := now
	return &model.Patch{
		Status:       statusPtr(model.StatusAwardDefined),
		Award:        ev.Award,
		DecisionDate: &decided,
	}, nil
}

func finalize(d *model.Demand) (*model.Patch, error) {
	if d.Status != model.StatusAwardDefined {
		return nil, transitionError(d.Status, ActionFinalize)
	}
	return &model.Patch{Status: statusPtr(model.StatusCompleted)}, nil
}

func cancel(d *model.Demand, ev Evidence, now time.Time) (*model.Patch, error) {
	switch d.Status {
	case model.StatusDraft, model.StatusPendingWarehouseReview,
		model.StatusOpenForBidding, model.StatusUnderAnalysis:
	default:
		return nil, transitionError(d.Status, ActionCancel)
	}
	reason := strings.TrimSpace(ev.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: cancellation reason is required", ErrValidation)
	}
	decided := now
	return &model.Patch{
		Status:          statusPtr(model.StatusCancelled),
		RejectionReason: &reason,
		DecisionDate:    &decided,
	}, nil
}

func transitionError(current model.DemandStatus, action Action) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, action.target())
}

func statusPtr(s model.DemandStatus) *model.DemandStatus {
	return &s
}
