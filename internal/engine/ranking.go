package engine

import (
	"fmt"
	"sort"

	"github.com/dlemos/procurement-service/internal/model"
)

// Analyze builds the blind-phase view of a demand's proposals: aliases,
// totals, ranking, economicity and per-item best prices. The same input
// always yields the same aliases and the same ranking order; aliases are
// assigned by submission sequence, never by price, so re-ranking cannot
// reshuffle identities. allDemands feeds the historical benchmark and may
// be nil.
func Analyze(d *model.Demand, allDemands []model.Demand) *model.BidAnalysis {
	analysis := &model.BidAnalysis{DemandID: d.ID}

	active := make([]model.Proposal, 0, len(d.Proposals))
	for _, p := range d.Proposals {
		if !p.Declined() {
			active = append(active, p)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].Sequence < active[j].Sequence
	})

	benchmark := historicalBenchmark(d, allDemands)

	for i, p := range active {
		analysis.AliasedProposals = append(analysis.AliasedProposals, model.AliasedProposal{
			Alias:           fmt.Sprintf("Bidder %02d", i+1),
			ProposalID:      p.ID,
			Sequence:        p.Sequence,
			DeliveryTime:    p.DeliveryTime,
			CalculatedTotal: calculatedTotal(d, &p),
			HistoricalTotal: benchmark,
			Lines:           p.Items,
		})
	}

	ranked := make([]model.RankedProposal, 0, len(analysis.AliasedProposals))
	for _, ap := range analysis.AliasedProposals {
		ranked = append(ranked, model.RankedProposal{
			Alias:      ap.Alias,
			ProposalID: ap.ProposalID,
			Total:      ap.CalculatedTotal,
		})
	}
	// Stable: ties keep submission order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total < ranked[j].Total
	})
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	analysis.RankedProposals = ranked
	analysis.Economicity = economicity(ranked)

	analysis.Items, analysis.PotentialMixedTotal = analyzeItems(d, analysis.AliasedProposals, active)
	return analysis
}

// calculatedTotal sums quantity times unit price over the proposal's
// lines, skipping per-item-declined lines and lines quoting items the
// demand no longer carries.
func calculatedTotal(d *model.Demand, p *model.Proposal) float64 {
	total := 0.0
	for _, item := range d.Items {
		line := p.LineFor(item.ID)
		if line == nil || line.Declined {
			continue
		}
		total += float64(item.Quantity) * line.UnitPrice
	}
	return total
}

// historicalBenchmark prices every demand item at its most recent
// historical unit price (zero when no history exists). It is the same
// figure for every proposal; it informs, it never ranks.
func historicalBenchmark(d *model.Demand, allDemands []model.Demand) float64 {
	if len(allDemands) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range d.Items {
		entries := PriceHistory(RefForItem(item), allDemands)
		if len(entries) == 0 {
			continue
		}
		total += float64(item.Quantity) * entries[0].UnitPrice
	}
	return total
}

func economicity(ranked []model.RankedProposal) *model.Economicity {
	if len(ranked) < 2 {
		return nil
	}
	lowest := ranked[0].Total
	highest := ranked[len(ranked)-1].Total
	if highest == 0 {
		return nil
	}
	diff := highest - lowest
	return &model.Economicity{
		Diff:    diff,
		Percent: diff / highest * 100,
	}
}

func analyzeItems(d *model.Demand, aliased []model.AliasedProposal, active []model.Proposal) ([]model.ItemAnalysis, float64) {
	aliasByProposal := make(map[string]string, len(aliased))
	for _, ap := range aliased {
		aliasByProposal[ap.ProposalID.String()] = ap.Alias
	}

	items := make([]model.ItemAnalysis, 0, len(d.Items))
	mixedTotal := 0.0
	for _, item := range d.Items {
		ia := model.ItemAnalysis{
			ItemID:      item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
		}
		for _, p := range active {
			line := p.LineFor(item.ID)
			if line == nil || line.Declined {
				continue
			}
			quote := model.ItemQuote{
				Alias:      aliasByProposal[p.ID.String()],
				ProposalID: p.ID,
				UnitPrice:  line.UnitPrice,
				Brand:      line.Brand,
			}
			ia.Quotes = append(ia.Quotes, quote)
			if ia.BestAlias == "" || quote.UnitPrice < ia.BestUnitPrice {
				ia.BestAlias = quote.Alias
				ia.BestUnitPrice = quote.UnitPrice
			}
		}
		if ia.BestAlias != "" {
			ia.BestTotal = ia.BestUnitPrice * float64(item.Quantity)
			mixedTotal += ia.BestTotal
		}
		items = append(items, ia)
	}
	return items, mixedTotal
}
