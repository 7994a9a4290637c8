package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dlemos/procurement-service/internal/model"
)

func analysisFixture(t *testing.T) (*model.Demand, *model.BidAnalysis) {
	t.Helper()
	pens := newItem("Pen", 10)
	desks := newItem("Desk", 2)
	d := newDemand(model.StatusUnderAnalysis, pens, desks)
	d.Proposals = []model.Proposal{
		newProposal(1, "Alpha Ltda", quoted(pens.ID, 2), quoted(desks.ID, 400)),
		newProposal(2, "Beta Com", quoted(pens.ID, 3), declinedLine(desks.ID)),
	}
	return d, Analyze(d, nil)
}

func TestResolveGlobalAward(t *testing.T) {
	d, analysis := analysisFixture(t)
	winner := d.Proposals[0]

	award, err := ResolveAward(d, analysis, Selection{
		Mode:       model.AwardModeGlobal,
		ProposalID: winner.ID,
	}, "lowest overall total")
	require.NoError(t, err)
	require.Equal(t, model.AwardModeGlobal, award.Mode)
	require.Equal(t, "Alpha Ltda", award.SupplierName)
	require.InDelta(t, 820, award.TotalValue, 1e-9) // 10×2 + 2×400
	require.Empty(t, award.Items)
}

func TestResolveGlobalAwardRequiresSelection(t *testing.T) {
	d, analysis := analysisFixture(t)

	_, err := ResolveAward(d, analysis, Selection{Mode: model.AwardModeGlobal}, "ok")
	require.ErrorIs(t, err, ErrValidation)

	_, err = ResolveAward(d, analysis, Selection{
		Mode:       model.AwardModeGlobal,
		ProposalID: uuid.New(),
	}, "ok")
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestResolveAwardEmptyJustification(t *testing.T) {
	d, analysis := analysisFixture(t)
	winner := d.Proposals[0]

	for _, sel := range []Selection{
		{Mode: model.AwardModeGlobal, ProposalID: winner.ID},
		{Mode: model.AwardModeItem, ItemWinners: map[uuid.UUID]uuid.UUID{d.Items[0].ID: winner.ID}},
	} {
		_, err := ResolveAward(d, analysis, sel, "   ")
		require.ErrorIs(t, err, ErrValidation)
	}
}

func TestResolveItemAwardTotals(t *testing.T) {
	d, analysis := analysisFixture(t)
	pens, desks := d.Items[0], d.Items[1]
	alpha, beta := d.Proposals[0], d.Proposals[1]

	award, err := ResolveAward(d, analysis, Selection{
		Mode: model.AwardModeItem,
		ItemWinners: map[uuid.UUID]uuid.UUID{
			pens.ID:  alpha.ID,
			desks.ID: alpha.ID,
		},
	}, "best price per item")
	require.NoError(t, err)
	require.Equal(t, model.AwardModeItem, award.Mode)
	require.Len(t, award.Items, 2)

	sum := 0.0
	for _, ai := range award.Items {
		sum += ai.TotalValue
	}
	require.InDelta(t, sum, award.TotalValue, 1e-9)
	require.InDelta(t, 820, award.TotalValue, 1e-9)

	// Partial awards are allowed: leaving desks unselected just drops it.
	partial, err := ResolveAward(d, analysis, Selection{
		Mode:        model.AwardModeItem,
		ItemWinners: map[uuid.UUID]uuid.UUID{pens.ID: beta.ID},
	}, "best price per item")
	require.NoError(t, err)
	require.Len(t, partial.Items, 1)
	require.InDelta(t, 30, partial.TotalValue, 1e-9)
}

func TestResolveItemAwardEmptySelection(t *testing.T) {
	d, analysis := analysisFixture(t)
	_, err := ResolveAward(d, analysis, Selection{Mode: model.AwardModeItem}, "ok")
	require.ErrorIs(t, err, ErrValidation)
}

func TestResolveItemAwardRejectsDeclinedLine(t *testing.T) {
	d, analysis := analysisFixture(t)
	desks := d.Items[1]
	beta := d.Proposals[1] // declined the desks line

	_, err := ResolveAward(d, analysis, Selection{
		Mode:        model.AwardModeItem,
		ItemWinners: map[uuid.UUID]uuid.UUID{desks.ID: beta.ID},
	}, "ok")
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestResolveItemAwardRejectsUnknownItem(t *testing.T) {
	d, analysis := analysisFixture(t)
	alpha := d.Proposals[0]

	_, err := ResolveAward(d, analysis, Selection{
		Mode:        model.AwardModeItem,
		ItemWinners: map[uuid.UUID]uuid.UUID{uuid.New(): alpha.ID},
	}, "ok")
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestResolveAwardRejectsWholeDeclinedProposal(t *testing.T) {
	d, analysis := analysisFixture(t)
	d.Proposals[0].Status = model.ProposalDeclined

	_, err := ResolveAward(d, analysis, Selection{
		Mode:       model.AwardModeGlobal,
		ProposalID: d.Proposals[0].ID,
	}, "ok")
	require.ErrorIs(t, err, ErrIntegrity)
}

func TestSuggestJustification(t *testing.T) {
	d, analysis := analysisFixture(t)
	alpha := d.Proposals[0]

	global := SuggestJustification(analysis, Selection{
		Mode:       model.AwardModeGlobal,
		ProposalID: alpha.ID,
	})
	require.Contains(t, global, "Bidder 01")
	require.Contains(t, global, "820.00")

	item := SuggestJustification(analysis, Selection{
		Mode: model.AwardModeItem,
		ItemWinners: map[uuid.UUID]uuid.UUID{
			d.Items[0].ID: alpha.ID,
			d.Items[1].ID: alpha.ID,
		},
	})
	require.Contains(t, item, "2 item(s)")
	require.Contains(t, item, "1 supplier(s)")
	require.Contains(t, item, "820.00")

	require.Empty(t, SuggestJustification(analysis, Selection{
		Mode:       model.AwardModeGlobal,
		ProposalID: uuid.New(),
	}))
}
