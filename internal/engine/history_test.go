package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dlemos/procurement-service/internal/model"
)

func TestPriceHistoryOrdering(t *testing.T) {
	catalogID := uuid.New()
	d1 := closedDemandWithItemAward("Supplier One", catalogID, 32.50, "2024-01-10")
	d2 := closedDemandWithItemAward("Supplier Two", catalogID, 35.00, "2024-03-01")

	entries := PriceHistory(ItemRef{CatalogItemID: &catalogID}, []model.Demand{*d1, *d2})
	require.Len(t, entries, 2)
	require.InDelta(t, 35.00, entries[0].UnitPrice, 1e-9)
	require.InDelta(t, 32.50, entries[1].UnitPrice, 1e-9)
	require.Equal(t, "Supplier Two", entries[0].SupplierName)

	summary := Summarize(entries)
	require.NotNil(t, summary.LastValue)
	require.InDelta(t, 35.00, *summary.LastValue, 1e-9)
	require.InDelta(t, 33.75, summary.AverageAll, 1e-9)
	require.InDelta(t, 33.75, summary.AverageRecent3, 1e-9)
}

func TestPriceHistorySkipsPreAwardDemands(t *testing.T) {
	catalogID := uuid.New()
	open := closedDemandWithItemAward("Supplier", catalogID, 10, "2024-02-01")
	open.Status = model.StatusOpenForBidding

	noWinner := closedDemandWithItemAward("Supplier", catalogID, 10, "2024-02-02")
	noWinner.Award = nil

	entries := PriceHistory(ItemRef{CatalogItemID: &catalogID}, []model.Demand{*open, *noWinner})
	require.Empty(t, entries)
}

func TestPriceHistoryGlobalAwardResolution(t *testing.T) {
	item := newItem("Cement bag 50kg", 40)
	d := newDemand(model.StatusAwardDefined, item)
	winner := newProposal(1, "Construfort", quoted(item.ID, 28.90))
	loser := newProposal(2, "Outra Ltda", quoted(item.ID, 31.00))
	d.Proposals = []model.Proposal{winner, loser}
	decided := time.Date(2024, 4, 15, 16, 0, 0, 0, time.UTC)
	d.DecisionDate = &decided
	d.Award = &model.Award{
		Mode:          model.AwardModeGlobal,
		Justification: "lowest total",
		SupplierName:  "Construfort",
		TotalValue:    28.90 * 40,
	}

	entries := PriceHistory(ItemRef{Description: "cement BAG 50kg"}, []model.Demand{*d})
	require.Len(t, entries, 1)
	require.InDelta(t, 28.90, entries[0].UnitPrice, 1e-9)
	require.Equal(t, "Construfort", entries[0].SupplierName)
	require.Equal(t, decided, entries[0].Date)
	require.Equal(t, d.Protocol, entries[0].Protocol)
}

func TestPriceHistoryFallsBackToCreationDate(t *testing.T) {
	catalogID := uuid.New()
	d := closedDemandWithItemAward("Supplier", catalogID, 12, "2024-02-01")
	d.DecisionDate = nil

	entries := PriceHistory(ItemRef{CatalogItemID: &catalogID}, []model.Demand{*d})
	require.Len(t, entries, 1)
	require.Equal(t, d.CreatedAt, entries[0].Date)
}

func TestPriceHistoryDescriptionMatchIsExact(t *testing.T) {
	catalogID := uuid.New()
	d := closedDemandWithItemAward("Supplier", catalogID, 12, "2024-02-01")

	entries := PriceHistory(ItemRef{Description: "Historical"}, []model.Demand{*d})
	require.Empty(t, entries)

	entries = PriceHistory(ItemRef{Description: "historical ITEM"}, []model.Demand{*d})
	require.Len(t, entries, 1)
}

func TestSummarizeRecentWindow(t *testing.T) {
	catalogID := uuid.New()
	demands := []model.Demand{
		*closedDemandWithItemAward("S1", catalogID, 10, "2024-01-01"),
		*closedDemandWithItemAward("S2", catalogID, 20, "2024-02-01"),
		*closedDemandWithItemAward("S3", catalogID, 30, "2024-03-01"),
		*closedDemandWithItemAward("S4", catalogID, 40, "2024-04-01"),
	}

	entries := PriceHistory(ItemRef{CatalogItemID: &catalogID}, demands)
	require.Len(t, entries, 4)

	summary := Summarize(entries)
	require.InDelta(t, 40, *summary.LastValue, 1e-9)
	require.InDelta(t, 25, summary.AverageAll, 1e-9)
	require.InDelta(t, 30, summary.AverageRecent3, 1e-9) // 40, 30, 20

	empty := Summarize(nil)
	require.Nil(t, empty.LastValue)
	require.Zero(t, empty.AverageAll)
	require.Zero(t, empty.AverageRecent3)
}
