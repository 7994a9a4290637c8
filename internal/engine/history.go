package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dlemos/procurement-service/internal/model"
)

// ItemRef identifies the item whose price history is wanted, preferably
// by catalog id, falling back to a case-insensitive exact description.
type ItemRef struct {
	CatalogItemID *uuid.UUID
	Description   string
}

func RefForItem(item model.Item) ItemRef {
	return ItemRef{CatalogItemID: item.CatalogItemID, Description: item.Description}
}

func (r ItemRef) matches(item model.Item) bool {
	if r.CatalogItemID != nil && item.CatalogItemID != nil {
		return *r.CatalogItemID == *item.CatalogItemID
	}
	return strings.EqualFold(strings.TrimSpace(r.Description), strings.TrimSpace(item.Description))
}

// PriceHistory mines closed demands for unit prices historically paid for
// the referenced item. Only demands that reached AWARD_DEFINED or
// COMPLETED with a winner on record contribute; nothing is ever
// synthesized for pre-award demands. Entries come back most recent first.
func PriceHistory(ref ItemRef, demands []model.Demand) []model.PriceHistoryEntry {
	var entries []model.PriceHistoryEntry
	for i := range demands {
		d := &demands[i]
		if d.Status != model.StatusCompleted && d.Status != model.StatusAwardDefined {
			continue
		}
		if d.Award == nil {
			continue
		}
		for _, item := range d.Items {
			if !ref.matches(item) {
				continue
			}
			price, supplier, ok := awardedPrice(d, item.ID)
			if !ok {
				continue
			}
			entries = append(entries, model.PriceHistoryEntry{
				Date:         decisionDate(d),
				SupplierName: supplier,
				UnitPrice:    price,
				Protocol:     d.Protocol,
			})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries
}

// awardedPrice resolves what was actually paid for one demand item. Item
// awards carry the price directly; global awards are resolved through the
// winning proposal's line for the item.
func awardedPrice(d *model.Demand, itemID uuid.UUID) (float64, string, bool) {
	award := d.Award
	if award.Mode == model.AwardModeItem {
		for _, ai := range award.Items {
			if ai.ItemID == itemID {
				return ai.UnitPrice, ai.SupplierName, true
			}
		}
		return 0, "", false
	}

	for i := range d.Proposals {
		p := &d.Proposals[i]
		if p.Declined() || !strings.EqualFold(p.SupplierName, award.SupplierName) {
			continue
		}
		line := p.LineFor(itemID)
		if line == nil || line.Declined {
			return 0, "", false
		}
		return line.UnitPrice, p.SupplierName, true
	}
	return 0, "", false
}

func decisionDate(d *model.Demand) time.Time {
	if d.DecisionDate != nil {
		return *d.DecisionDate
	}
	return d.CreatedAt
}

// Summarize derives the benchmark figures consumers display next to new
// bids.
func Summarize(entries []model.PriceHistoryEntry) model.PriceHistorySummary {
	var summary model.PriceHistorySummary
	if len(entries) == 0 {
		return summary
	}

	last := entries[0].UnitPrice
	summary.LastValue = &last

	sum := 0.0
	for _, e := range entries {
		sum += e.UnitPrice
	}
	summary.AverageAll = sum / float64(len(entries))

	recent := entries
	if len(recent) > 3 {
		recent = recent[:3]
	}
	sum = 0
	for _, e := range recent {
		sum += e.UnitPrice
	}
	summary.AverageRecent3 = sum / float64(len(recent))
	return summary
}
