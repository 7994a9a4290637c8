package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/dlemos/procurement-service/internal/model"
)

func newDemand(status model.DemandStatus, items ...model.Item) *model.Demand {
	return &model.Demand{
		ID:          uuid.New(),
		Protocol:    "DM-2024-0001",
		Title:       "Office supplies",
		Department:  "Education",
		Type:        model.TypeMaterials,
		Priority:    model.PriorityMedium,
		Description: "Supplies for the school year",
		Items:       items,
		Status:      status,
		CreatedAt:   time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	}
}

func newItem(description string, quantity int) model.Item {
	return model.Item{
		ID:          uuid.New(),
		Description: description,
		Unit:        "unit",
		Quantity:    quantity,
		GroupID:     "G1",
	}
}

func newProposal(sequence int, supplier string, lines ...model.ProposalItem) model.Proposal {
	return model.Proposal{
		ID:           uuid.New(),
		Protocol:     "PR-2024-000" + string(rune('0'+sequence)),
		SupplierID:   uuid.New(),
		SupplierName: supplier,
		Sequence:     sequence,
		SubmittedAt:  time.Date(2024, 5, 10, 8, 0, sequence, 0, time.UTC),
		DeliveryTime: "10 days",
		Status:       model.ProposalActive,
		Items:        lines,
	}
}

func quoted(itemID uuid.UUID, price float64) model.ProposalItem {
	return model.ProposalItem{ItemID: itemID, UnitPrice: price}
}

func declinedLine(itemID uuid.UUID) model.ProposalItem {
	return model.ProposalItem{ItemID: itemID, Declined: true}
}

// closedDemandWithItemAward builds a completed demand whose single item
// was won at the given unit price, dated by the decision date.
func closedDemandWithItemAward(supplier string, catalogID uuid.UUID, price float64, decided string) *model.Demand {
	item := newItem("Historical item", 1)
	item.CatalogItemID = &catalogID
	d := newDemand(model.StatusCompleted, item)
	d.Protocol = "DM-HIST-" + decided
	when, _ := time.Parse("2006-01-02", decided)
	d.DecisionDate = &when
	d.Award = &model.Award{
		Mode:          model.AwardModeItem,
		Justification: "best price per item",
		TotalValue:    price * float64(item.Quantity),
		Items: []model.AwardItem{{
			ItemID:       item.ID,
			SupplierName: supplier,
			UnitPrice:    price,
			Quantity:     item.Quantity,
			TotalValue:   price * float64(item.Quantity),
		}},
	}
	return d
}
