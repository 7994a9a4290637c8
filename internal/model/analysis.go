package model

import (
	"time"

	"github.com/google/uuid"
)

// AliasedProposal is a proposal as shown during the blind phase: the
// supplier identity is replaced by a sequential alias.
type AliasedProposal struct {
	Alias           string
	ProposalID      uuid.UUID
	Sequence        int
	DeliveryTime    string
	CalculatedTotal float64
	// HistoricalTotal prices every demand item at its most recent
	// historical unit price. Informational benchmark only, never ranked.
	HistoricalTotal float64
	Lines           []ProposalItem
}

type RankedProposal struct {
	Position   int
	Alias      string
	ProposalID uuid.UUID
	Total      float64
}

type Economicity struct {
	Diff    float64
	Percent float64
}

// ItemQuote is one usable (non-declined) unit price for an item.
type ItemQuote struct {
	Alias      string
	ProposalID uuid.UUID
	UnitPrice  float64
	Brand      *string
}

type ItemAnalysis struct {
	ItemID        uuid.UUID
	Description   string
	Quantity      int
	Quotes        []ItemQuote
	BestAlias     string
	BestUnitPrice float64
	// BestTotal is BestUnitPrice times quantity; zero when no usable quote
	// exists.
	BestTotal float64
}

type BidAnalysis struct {
	DemandID         uuid.UUID
	AliasedProposals []AliasedProposal
	RankedProposals  []RankedProposal
	// Economicity is nil with fewer than two ranked proposals or a zero
	// highest total.
	Economicity *Economicity
	Items       []ItemAnalysis
	// PotentialMixedTotal is the theoretical best of a fully automatic
	// per-item award: the sum of every item's lowest usable line total.
	PotentialMixedTotal float64
}

func (a *BidAnalysis) ProposalByID(id uuid.UUID) *AliasedProposal {
	for i := range a.AliasedProposals {
		if a.AliasedProposals[i].ProposalID == id {
			return &a.AliasedProposals[i]
		}
	}
	return nil
}

func (a *BidAnalysis) ItemByID(id uuid.UUID) *ItemAnalysis {
	for i := range a.Items {
		if a.Items[i].ItemID == id {
			return &a.Items[i]
		}
	}
	return nil
}

type PriceHistoryEntry struct {
	Date         time.Time
	SupplierName string
	UnitPrice    float64
	Protocol     string
}

type PriceHistorySummary struct {
	LastValue      *float64
	AverageAll     float64
	AverageRecent3 float64
}
