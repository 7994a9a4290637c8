package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dlemos/procurement-service/internal/model"
)

func TestAnalyzeAliasesFollowSubmissionOrderNotPrice(t *testing.T) {
	item := newItem("Whiteboard", 1)
	d := newDemand(model.StatusUnderAnalysis, item)

	a := newProposal(1, "Alpha Ltda", quoted(item.ID, 1200))
	b := newProposal(2, "Beta Com", quoted(item.ID, 900))
	c := newProposal(3, "Gamma SA", quoted(item.ID, 1000))
	// Stored out of order on purpose; aliasing sorts by sequence.
	d.Proposals = []model.Proposal{c, a, b}

	analysis := Analyze(d, nil)

	require.Len(t, analysis.AliasedProposals, 3)
	require.Equal(t, "Bidder 01", analysis.AliasedProposals[0].Alias)
	require.Equal(t, a.ID, analysis.AliasedProposals[0].ProposalID)
	require.Equal(t, "Bidder 02", analysis.AliasedProposals[1].Alias)
	require.Equal(t, b.ID, analysis.AliasedProposals[1].ProposalID)
	require.Equal(t, "Bidder 03", analysis.AliasedProposals[2].Alias)
	require.Equal(t, c.ID, analysis.AliasedProposals[2].ProposalID)

	require.Equal(t, []float64{900, 1000, 1200}, []float64{
		analysis.RankedProposals[0].Total,
		analysis.RankedProposals[1].Total,
		analysis.RankedProposals[2].Total,
	})
	require.Equal(t, "Bidder 02", analysis.RankedProposals[0].Alias)
	require.Equal(t, "Bidder 03", analysis.RankedProposals[1].Alias)
	require.Equal(t, "Bidder 01", analysis.RankedProposals[2].Alias)

	require.NotNil(t, analysis.Economicity)
	require.InDelta(t, 300, analysis.Economicity.Diff, 1e-9)
	require.InDelta(t, 25, analysis.Economicity.Percent, 1e-9)
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	item := newItem("Chair", 4)
	d := newDemand(model.StatusUnderAnalysis, item)
	d.Proposals = []model.Proposal{
		newProposal(1, "Alpha", quoted(item.ID, 50)),
		newProposal(2, "Beta", quoted(item.ID, 50)),
	}

	first := Analyze(d, nil)
	second := Analyze(d, nil)
	require.Equal(t, first, second)

	// Equal totals keep submission order.
	require.Equal(t, "Bidder 01", first.RankedProposals[0].Alias)
	require.Equal(t, "Bidder 02", first.RankedProposals[1].Alias)
}

func TestAnalyzeExcludesWholeDeclines(t *testing.T) {
	item := newItem("Projector", 2)
	d := newDemand(model.StatusUnderAnalysis, item)

	declined := newProposal(1, "Alpha", quoted(item.ID, 100))
	declined.Status = model.ProposalDeclined
	active := newProposal(2, "Beta", quoted(item.ID, 300))
	d.Proposals = []model.Proposal{declined, active}

	analysis := Analyze(d, nil)
	require.Len(t, analysis.AliasedProposals, 1)
	require.Equal(t, "Bidder 01", analysis.AliasedProposals[0].Alias)
	require.Equal(t, active.ID, analysis.AliasedProposals[0].ProposalID)
	require.Nil(t, analysis.Economicity)
}

func TestAnalyzePerItemDeclineExclusion(t *testing.T) {
	itemX := newItem("Paper A4", 1)
	d := newDemand(model.StatusUnderAnalysis, itemX)
	d.Proposals = []model.Proposal{
		newProposal(1, "Alpha", quoted(itemX.ID, 10)),
		newProposal(2, "Beta", declinedLine(itemX.ID)),
		newProposal(3, "Gamma", quoted(itemX.ID, 12)),
	}

	analysis := Analyze(d, nil)
	require.Len(t, analysis.Items, 1)

	ia := analysis.Items[0]
	require.Equal(t, "Bidder 01", ia.BestAlias)
	require.InDelta(t, 10, ia.BestUnitPrice, 1e-9)
	require.Len(t, ia.Quotes, 2)
	require.InDelta(t, 10, analysis.PotentialMixedTotal, 1e-9)

	// The declined line also drops out of Bidder 02's total.
	require.InDelta(t, 0, analysis.AliasedProposals[1].CalculatedTotal, 1e-9)
}

func TestAnalyzePotentialMixedTotalAcrossItems(t *testing.T) {
	pens := newItem("Pen", 10)
	desks := newItem("Desk", 2)
	d := newDemand(model.StatusUnderAnalysis, pens, desks)
	d.Proposals = []model.Proposal{
		newProposal(1, "Alpha", quoted(pens.ID, 2), quoted(desks.ID, 400)),
		newProposal(2, "Beta", quoted(pens.ID, 3), quoted(desks.ID, 350)),
	}

	analysis := Analyze(d, nil)
	// Pens from Bidder 01 (2×10) plus desks from Bidder 02 (350×2).
	require.InDelta(t, 720, analysis.PotentialMixedTotal, 1e-9)
}

func TestAnalyzeEconomicityOmittedWhenHighestIsZero(t *testing.T) {
	item := newItem("Donated goods", 1)
	d := newDemand(model.StatusUnderAnalysis, item)
	d.Proposals = []model.Proposal{
		newProposal(1, "Alpha", quoted(item.ID, 0)),
		newProposal(2, "Beta", quoted(item.ID, 0)),
	}

	analysis := Analyze(d, nil)
	require.Nil(t, analysis.Economicity)
}

func TestAnalyzeHistoricalBenchmark(t *testing.T) {
	catalogID := uuid.New()
	item := newItem("Printer toner", 5)
	item.CatalogItemID = &catalogID
	d := newDemand(model.StatusUnderAnalysis, item)
	d.Proposals = []model.Proposal{newProposal(1, "Alpha", quoted(item.ID, 90))}

	past := closedDemandWithItemAward("Old Supplier", catalogID, 80, "2024-01-10")
	analysis := Analyze(d, []model.Demand{*past})

	// 5 units at the most recent historical price of 80.
	require.InDelta(t, 400, analysis.AliasedProposals[0].HistoricalTotal, 1e-9)
	require.InDelta(t, 450, analysis.AliasedProposals[0].CalculatedTotal, 1e-9)
}
