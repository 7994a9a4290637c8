package model

import (
	"time"

	"github.com/google/uuid"
)

type DemandStatus string

const (
	StatusDraft                  DemandStatus = "DRAFT"
	StatusPendingWarehouseReview DemandStatus = "PENDING_WAREHOUSE_REVIEW"
	StatusOpenForBidding         DemandStatus = "OPEN_FOR_BIDDING"
	StatusUnderAnalysis          DemandStatus = "UNDER_ANALYSIS"
	StatusAwardDefined           DemandStatus = "AWARD_DEFINED"
	StatusCompleted              DemandStatus = "COMPLETED"
	StatusClosed                 DemandStatus = "CLOSED"
	StatusRejected               DemandStatus = "REJECTED"
	StatusCancelled              DemandStatus = "CANCELLED"
)

func (s DemandStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingWarehouseReview, StatusOpenForBidding,
		StatusUnderAnalysis, StatusAwardDefined, StatusCompleted,
		StatusClosed, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition may leave the status.
// CLOSED only appears on ingested legacy records; nothing transitions into it.
func (s DemandStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusClosed, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

type DemandType string

const (
	TypeMaterials DemandType = "MATERIALS"
	TypeServices  DemandType = "SERVICES"
)

func (t DemandType) Valid() bool {
	return t == TypeMaterials || t == TypeServices
}

type DemandPriority string

const (
	PriorityLow    DemandPriority = "LOW"
	PriorityMedium DemandPriority = "MEDIUM"
	PriorityUrgent DemandPriority = "URGENT"
)

func (p DemandPriority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityUrgent
}

type Demand struct {
	ID               uuid.UUID
	Protocol         string
	Title            string
	Department       string
	Type             DemandType
	Priority         DemandPriority
	Description      string
	Items            []Item
	Status           DemandStatus
	Proposals        []Proposal
	Award            *Award
	ProposalDeadline *time.Time
	DeliveryDeadline *time.Time
	Observations     *string
	RejectionReason  *string
	ClosingReason    *string
	CreatedByUserID  uuid.UUID
	CreatedAt        time.Time
	DecisionDate     *time.Time
	Attachments      []Attachment
}

// Scheduled reports whether both bidding deadlines are set. They are
// either both present or both absent; any demand past the warehouse
// review carries them.
func (d *Demand) Scheduled() bool {
	return d.ProposalDeadline != nil && d.DeliveryDeadline != nil
}

func (d *Demand) ItemByID(id uuid.UUID) *Item {
	for i := range d.Items {
		if d.Items[i].ID == id {
			return &d.Items[i]
		}
	}
	return nil
}

type Item struct {
	ID            uuid.UUID
	Description   string
	Unit          string
	Quantity      int
	GroupID       string
	CatalogItemID *uuid.UUID
}

type Attachment struct {
	ID         uuid.UUID
	DemandID   uuid.UUID
	FileName   string
	ObjectName string
	UploadedAt time.Time
}
