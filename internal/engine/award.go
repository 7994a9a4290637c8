package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dlemos/procurement-service/internal/model"
)

// Selection is the operator's choice of winners, owned by the caller and
// passed in whole. The engine keeps no selection state between calls.
type Selection struct {
	Mode model.AwardMode
	// ProposalID selects the global winner; global mode only.
	ProposalID uuid.UUID
	// ItemWinners maps demand item id to winning proposal id; item mode
	// only. Items absent from the map stay out of the award.
	ItemWinners map[uuid.UUID]uuid.UUID
}

// ResolveAward validates the operator's selection against the analysis
// view and the demand snapshot and produces the single immutable award
// payload. Homologation is the only way an award comes into existence.
func ResolveAward(d *model.Demand, analysis *model.BidAnalysis, sel Selection, justification string) (*model.Award, error) {
	justification = strings.TrimSpace(justification)
	if justification == "" {
		return nil, fmt.Errorf("%w: justification is required", ErrValidation)
	}

	switch sel.Mode {
	case model.AwardModeGlobal:
		return resolveGlobal(d, analysis, sel, justification)
	case model.AwardModeItem:
		return resolveItem(d, sel, justification)
	default:
		return nil, fmt.Errorf("%w: unknown award mode %q", ErrValidation, sel.Mode)
	}
}

func resolveGlobal(d *model.Demand, analysis *model.BidAnalysis, sel Selection, justification string) (*model.Award, error) {
	if sel.ProposalID == uuid.Nil {
		return nil, fmt.Errorf("%w: a winning proposal must be selected", ErrValidation)
	}
	aliased := analysis.ProposalByID(sel.ProposalID)
	if aliased == nil {
		return nil, fmt.Errorf("%w: selected proposal is not part of the analysis", ErrIntegrity)
	}
	winner := proposalByID(d, sel.ProposalID)
	if winner == nil || winner.Declined() {
		return nil, fmt.Errorf("%w: selected proposal is not an active proposal of this demand", ErrIntegrity)
	}
	return &model.Award{
		Mode:          model.AwardModeGlobal,
		Justification: justification,
		SupplierName:  winner.SupplierName,
		TotalValue:    aliased.CalculatedTotal,
	}, nil
}

func resolveItem(d *model.Demand, sel Selection, justification string) (*model.Award, error) {
	if len(sel.ItemWinners) == 0 {
		return nil, fmt.Errorf("%w: at least one item must have a selected winner", ErrValidation)
	}

	award := &model.Award{
		Mode:          model.AwardModeItem,
		Justification: justification,
	}
	// Walk the demand's item order so the award payload is deterministic.
	for _, item := range d.Items {
		proposalID, ok := sel.ItemWinners[item.ID]
		if !ok {
			continue
		}
		winner := proposalByID(d, proposalID)
		if winner == nil || winner.Declined() {
			return nil, fmt.Errorf("%w: item %s selects a proposal that is not active", ErrIntegrity, item.ID)
		}
		line := winner.LineFor(item.ID)
		if line == nil {
			return nil, fmt.Errorf("%w: item %s selects a proposal with no line for it", ErrIntegrity, item.ID)
		}
		if line.Declined {
			return nil, fmt.Errorf("%w: item %s selects a per-item-declined line", ErrIntegrity, item.ID)
		}
		total := line.UnitPrice * float64(item.Quantity)
		award.Items = append(award.Items, model.AwardItem{
			ItemID:       item.ID,
			SupplierName: winner.SupplierName,
			UnitPrice:    line.UnitPrice,
			Quantity:     item.Quantity,
			TotalValue:   total,
		})
		award.TotalValue += total
	}

	if len(award.Items) != len(sel.ItemWinners) {
		return nil, fmt.Errorf("%w: selection references an item the demand does not carry", ErrIntegrity)
	}
	return award, nil
}

// SuggestJustification renders the non-binding template the operator may
// edit before committing. Regenerating it is the caller's call; the
// engine never stores or overwrites operator text.
func SuggestJustification(analysis *model.BidAnalysis, sel Selection) string {
	switch sel.Mode {
	case model.AwardModeGlobal:
		aliased := analysis.ProposalByID(sel.ProposalID)
		if aliased == nil {
			return ""
		}
		return fmt.Sprintf(
			"Award to %s, whose proposal presented the most advantageous overall value of %.2f.",
			aliased.Alias, aliased.CalculatedTotal)
	case model.AwardModeItem:
		count := 0
		total := 0.0
		suppliers := make(map[uuid.UUID]struct{})
		for _, ia := range analysis.Items {
			proposalID, ok := sel.ItemWinners[ia.ItemID]
			if !ok {
				continue
			}
			aliased := analysis.ProposalByID(proposalID)
			if aliased == nil {
				continue
			}
			for _, q := range ia.Quotes {
				if q.ProposalID == proposalID {
					count++
					total += q.UnitPrice * float64(ia.Quantity)
					suppliers[proposalID] = struct{}{}
					break
				}
			}
		}
		if count == 0 {
			return ""
		}
		return fmt.Sprintf(
			"Per-item award covering %d item(s) across %d supplier(s), for an aggregate value of %.2f.",
			count, len(suppliers), total)
	default:
		return ""
	}
}

func proposalByID(d *model.Demand, id uuid.UUID) *model.Proposal {
	for i := range d.Proposals {
		if d.Proposals[i].ID == id {
			return &d.Proposals[i]
		}
	}
	return nil
}
