package model

import (
	"time"

	"github.com/google/uuid"
)

type ProposalStatus string

const (
	ProposalActive   ProposalStatus = "ACTIVE"
	ProposalDeclined ProposalStatus = "DECLINED"
)

func (s ProposalStatus) Valid() bool {
	return s == ProposalActive || s == ProposalDeclined
}

type Proposal struct {
	ID           uuid.UUID
	Protocol     string
	DemandID     uuid.UUID
	SupplierID   uuid.UUID
	SupplierName string
	// Sequence is assigned at submission and increases monotonically per
	// demand. Alias assignment orders by it, never by price.
	Sequence     int
	SubmittedAt  time.Time
	DeliveryTime string
	Status       ProposalStatus
	Items        []ProposalItem
	Observations *string
}

func (p *Proposal) Declined() bool {
	return p.Status == ProposalDeclined
}

// LineFor returns the proposal line quoting the given demand item, or nil
// when the proposal carries no line for it.
func (p *Proposal) LineFor(itemID uuid.UUID) *ProposalItem {
	for i := range p.Items {
		if p.Items[i].ItemID == itemID {
			return &p.Items[i]
		}
	}
	return nil
}

type ProposalItem struct {
	ItemID    uuid.UUID
	UnitPrice float64
	Brand     *string
	// Declined marks a per-item decline: the line is excluded from totals
	// and can never win its item, while the rest of the proposal stands.
	Declined bool
}
