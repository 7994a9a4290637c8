package http

import (
	"time"

	"github.com/google/uuid"

	"github.com/dlemos/procurement-service/internal/model"
)

type itemResponse struct {
	ID            uuid.UUID  `json:"id"`
	Description   string     `json:"description"`
	Unit          string     `json:"unit"`
	Quantity      int        `json:"quantity"`
	GroupID       string     `json:"group_id,omitempty"`
	CatalogItemID *uuid.UUID `json:"catalog_item_id,omitempty"`
}

type awardItemResponse struct {
	ItemID       uuid.UUID `json:"item_id"`
	SupplierName string    `json:"supplier_name"`
	UnitPrice    float64   `json:"unit_price"`
	Quantity     int       `json:"quantity"`
	TotalValue   float64   `json:"total_value"`
}

type awardResponse struct {
	Mode          model.AwardMode     `json:"mode"`
	Justification string              `json:"justification"`
	SupplierName  string              `json:"supplier_name,omitempty"`
	TotalValue    float64             `json:"total_value"`
	Items         []awardItemResponse `json:"items,omitempty"`
}

type attachmentResponse struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type demandResponse struct {
	ID               uuid.UUID            `json:"id"`
	Protocol         string               `json:"protocol"`
	Title            string               `json:"title"`
	Department       string               `json:"department"`
	Type             model.DemandType     `json:"type"`
	Priority         model.DemandPriority `json:"priority"`
	Description      string               `json:"description"`
	Status           model.DemandStatus   `json:"status"`
	Items            []itemResponse       `json:"items,omitempty"`
	ProposalCount    int                  `json:"proposal_count"`
	Award            *awardResponse       `json:"award,omitempty"`
	ProposalDeadline *time.Time           `json:"proposal_deadline,omitempty"`
	DeliveryDeadline *time.Time           `json:"delivery_deadline,omitempty"`
	Observations     *string              `json:"observations,omitempty"`
	RejectionReason  *string              `json:"rejection_reason,omitempty"`
	ClosingReason    *string              `json:"closing_reason,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	DecisionDate     *time.Time           `json:"decision_date,omitempty"`
	Attachments      []attachmentResponse `json:"attachments,omitempty"`
}

func demandResponseFrom(d *model.Demand) demandResponse {
	resp := demandResponse{
		ID:               d.ID,
		Protocol:         d.Protocol,
		Title:            d.Title,
		Department:       d.Department,
		Type:             d.Type,
		Priority:         d.Priority,
		Description:      d.Description,
		Status:           d.Status,
		ProposalCount:    len(d.Proposals),
		ProposalDeadline: d.ProposalDeadline,
		DeliveryDeadline: d.DeliveryDeadline,
		Observations:     d.Observations,
		RejectionReason:  d.RejectionReason,
		ClosingReason:    d.ClosingReason,
		CreatedAt:        d.CreatedAt,
		DecisionDate:     d.DecisionDate,
	}
	for _, item := range d.Items {
		resp.Items = append(resp.Items, itemResponse{
			ID:            item.ID,
			Description:   item.Description,
			Unit:          item.Unit,
			Quantity:      item.Quantity,
			GroupID:       item.GroupID,
			CatalogItemID: item.CatalogItemID,
		})
	}
	if d.Award != nil {
		award := awardResponse{
			Mode:          d.Award.Mode,
			Justification: d.Award.Justification,
			SupplierName:  d.Award.SupplierName,
			TotalValue:    d.Award.TotalValue,
		}
		for _, ai := range d.Award.Items {
			award.Items = append(award.Items, awardItemResponse{
				ItemID:       ai.ItemID,
				SupplierName: ai.SupplierName,
				UnitPrice:    ai.UnitPrice,
				Quantity:     ai.Quantity,
				TotalValue:   ai.TotalValue,
			})
		}
		resp.Award = &award
	}
	for _, a := range d.Attachments {
		resp.Attachments = append(resp.Attachments, attachmentResponse{
			ID:         a.ID,
			FileName:   a.FileName,
			UploadedAt: a.UploadedAt,
		})
	}
	return resp
}

type proposalLineResponse struct {
	ItemID    uuid.UUID `json:"item_id"`
	UnitPrice float64   `json:"unit_price"`
	Brand     *string   `json:"brand,omitempty"`
	Declined  bool      `json:"declined"`
}

type aliasedProposalResponse struct {
	Alias           string                 `json:"alias"`
	ProposalID      uuid.UUID              `json:"proposal_id"`
	DeliveryTime    string                 `json:"delivery_time"`
	CalculatedTotal float64                `json:"calculated_total"`
	HistoricalTotal float64                `json:"historical_total"`
	Lines           []proposalLineResponse `json:"lines"`
}

type rankedProposalResponse struct {
	Position   int       `json:"position"`
	Alias      string    `json:"alias"`
	ProposalID uuid.UUID `json:"proposal_id"`
	Total      float64   `json:"total"`
}

type economicityResponse struct {
	Diff    float64 `json:"diff"`
	Percent float64 `json:"percent"`
}

type itemQuoteResponse struct {
	Alias      string    `json:"alias"`
	ProposalID uuid.UUID `json:"proposal_id"`
	UnitPrice  float64   `json:"unit_price"`
	Brand      *string   `json:"brand,omitempty"`
}

type itemAnalysisResponse struct {
	ItemID        uuid.UUID           `json:"item_id"`
	Description   string              `json:"description"`
	Quantity      int                 `json:"quantity"`
	Quotes        []itemQuoteResponse `json:"quotes"`
	BestAlias     string              `json:"best_alias,omitempty"`
	BestUnitPrice float64             `json:"best_unit_price"`
	BestTotal     float64             `json:"best_total"`
}

type analysisResponse struct {
	DemandID            uuid.UUID                 `json:"demand_id"`
	AliasedProposals    []aliasedProposalResponse `json:"aliased_proposals"`
	RankedProposals     []rankedProposalResponse  `json:"ranked_proposals"`
	Economicity         *economicityResponse      `json:"economicity,omitempty"`
	Items               []itemAnalysisResponse    `json:"items"`
	PotentialMixedTotal float64                   `json:"potential_mixed_total"`
}

func analysisResponseFrom(a *model.BidAnalysis) analysisResponse {
	resp := analysisResponse{
		DemandID:            a.DemandID,
		PotentialMixedTotal: a.PotentialMixedTotal,
	}
	for _, ap := range a.AliasedProposals {
		lines := make([]proposalLineResponse, 0, len(ap.Lines))
		for _, line := range ap.Lines {
			lines = append(lines, proposalLineResponse{
				ItemID:    line.ItemID,
				UnitPrice: line.UnitPrice,
				Brand:     line.Brand,
				Declined:  line.Declined,
			})
		}
		resp.AliasedProposals = append(resp.AliasedProposals, aliasedProposalResponse{
			Alias:           ap.Alias,
			ProposalID:      ap.ProposalID,
			DeliveryTime:    ap.DeliveryTime,
			CalculatedTotal: ap.CalculatedTotal,
			HistoricalTotal: ap.HistoricalTotal,
			Lines:           lines,
		})
	}
	for _, rp := range a.RankedProposals {
		resp.RankedProposals = append(resp.RankedProposals, rankedProposalResponse{
			Position:   rp.Position,
			Alias:      rp.Alias,
			ProposalID: rp.ProposalID,
			Total:      rp.Total,
		})
	}
	if a.Economicity != nil {
		resp.Economicity = &economicityResponse{
			Diff:    a.Economicity.Diff,
			Percent: a.Economicity.Percent,
		}
	}
	for _, ia := range a.Items {
		quotes := make([]itemQuoteResponse, 0, len(ia.Quotes))
		for _, q := range ia.Quotes {
			quotes = append(quotes, itemQuoteResponse{
				Alias:      q.Alias,
				ProposalID: q.ProposalID,
				UnitPrice:  q.UnitPrice,
				Brand:      q.Brand,
			})
		}
		resp.Items = append(resp.Items, itemAnalysisResponse{
			ItemID:        ia.ItemID,
			Description:   ia.Description,
			Quantity:      ia.Quantity,
			Quotes:        quotes,
			BestAlias:     ia.BestAlias,
			BestUnitPrice: ia.BestUnitPrice,
			BestTotal:     ia.BestTotal,
		})
	}
	return resp
}

type priceHistoryEntryResponse struct {
	Date         time.Time `json:"date"`
	SupplierName string    `json:"supplier_name"`
	UnitPrice    float64   `json:"unit_price"`
	Protocol     string    `json:"protocol"`
}

type priceHistoryResponse struct {
	Entries        []priceHistoryEntryResponse `json:"entries"`
	LastValue      *float64                    `json:"last_value,omitempty"`
	AverageAll     float64                     `json:"average_all"`
	AverageRecent3 float64                     `json:"average_recent_3"`
}

func priceHistoryResponseFrom(entries []model.PriceHistoryEntry, summary model.PriceHistorySummary) priceHistoryResponse {
	resp := priceHistoryResponse{
		Entries:        make([]priceHistoryEntryResponse, 0, len(entries)),
		LastValue:      summary.LastValue,
		AverageAll:     summary.AverageAll,
		AverageRecent3: summary.AverageRecent3,
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, priceHistoryEntryResponse{
			Date:         e.Date,
			SupplierName: e.SupplierName,
			UnitPrice:    e.UnitPrice,
			Protocol:     e.Protocol,
		})
	}
	return resp
}
