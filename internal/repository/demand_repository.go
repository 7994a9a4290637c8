package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dlemos/procurement-service/internal/model"
)

type DemandRepository struct {
	db *gorm.DB
}

func NewDemandRepository(db *gorm.DB) *DemandRepository {
	return &DemandRepository{db: db}
}

type demandRow struct {
	ID               uuid.UUID
	Protocol         string
	Title            string
	Department       string
	DemandType       string
	Priority         string
	Description      string
	Status           string
	ProposalDeadline *time.Time
	DeliveryDeadline *time.Time
	Observations     *string
	RejectionReason  *string
	ClosingReason    *string
	CreatedByUserID  uuid.UUID
	CreatedAt        time.Time
	DecisionDate     *time.Time
}

func (row *demandRow) toModel() *model.Demand {
	return &model.Demand{
		ID:               row.ID,
		Protocol:         row.Protocol,
		Title:            row.Title,
		Department:       row.Department,
		Type:             model.DemandType(row.DemandType),
		Priority:         model.DemandPriority(row.Priority),
		Description:      row.Description,
		Status:           model.DemandStatus(row.Status),
		ProposalDeadline: row.ProposalDeadline,
		DeliveryDeadline: row.DeliveryDeadline,
		Observations:     row.Observations,
		RejectionReason:  row.RejectionReason,
		ClosingReason:    row.ClosingReason,
		CreatedByUserID:  row.CreatedByUserID,
		CreatedAt:        row.CreatedAt,
		DecisionDate:     row.DecisionDate,
	}
}

const demandColumns = `
	id, protocol, title, department, demand_type, priority, description,
	status, proposal_deadline, delivery_deadline, observations,
	rejection_reason, closing_reason, created_by_user_id, created_at,
	decision_date
`

func (r *DemandRepository) Create(ctx context.Context, d *model.Demand) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`
			INSERT INTO demand (
				id, protocol, title, department, demand_type, priority,
				description, status, created_by_user_id, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, d.ID, d.Protocol, d.Title, d.Department, string(d.Type), string(d.Priority),
			d.Description, string(d.Status), d.CreatedByUserID, d.CreatedAt).Error
		if err != nil {
			return err
		}
		return insertItems(tx, d.ID, d.Items)
	})
}

func insertItems(tx *gorm.DB, demandID uuid.UUID, items []model.Item) error {
	for i, item := range items {
		err := tx.Exec(`
			INSERT INTO demand_item (
				id, demand_id, description, unit, quantity, group_id,
				catalog_item_id, position
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, demandID, item.Description, item.Unit, item.Quantity,
			item.GroupID, item.CatalogItemID, i).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// ReplaceItems swaps the demand's item list during the pre-bidding review
// step. Items are fixed once the demand opens for bidding; enforcing that
// is the service's job.
func (r *DemandRepository) ReplaceItems(ctx context.Context, demandID uuid.UUID, items []model.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM demand_item WHERE demand_id = ?`, demandID).Error; err != nil {
			return err
		}
		return insertItems(tx, demandID, items)
	})
}

func (r *DemandRepository) Get(ctx context.Context, id uuid.UUID) (*model.Demand, error) {
	var row demandRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+demandColumns+`
		FROM demand
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	d := row.toModel()
	if err := r.loadAggregate(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns demand headers, newest first, optionally filtered by
// status. Items, proposals and awards are not loaded.
func (r *DemandRepository) List(ctx context.Context, status *model.DemandStatus) ([]model.Demand, error) {
	query := `SELECT ` + demandColumns + ` FROM demand`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC`

	var rows []demandRow
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	demands := make([]model.Demand, 0, len(rows))
	for i := range rows {
		demands = append(demands, *rows[i].toModel())
	}
	return demands, nil
}

// ListAwarded loads the full aggregates of every demand that reached
// AWARD_DEFINED or COMPLETED. This is the price-history mining input.
func (r *DemandRepository) ListAwarded(ctx context.Context) ([]model.Demand, error) {
	var rows []demandRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+demandColumns+`
		FROM demand
		WHERE status IN ('AWARD_DEFINED', 'COMPLETED')
		ORDER BY created_at DESC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	demands := make([]model.Demand, 0, len(rows))
	for i := range rows {
		d := rows[i].toModel()
		if err := r.loadAggregate(ctx, d); err != nil {
			return nil, err
		}
		demands = append(demands, *d)
	}
	return demands, nil
}

func (r *DemandRepository) loadAggregate(ctx context.Context, d *model.Demand) error {
	if err := r.loadItems(ctx, d); err != nil {
		return err
	}
	if err := r.loadProposals(ctx, d); err != nil {
		return err
	}
	if err := r.loadAward(ctx, d); err != nil {
		return err
	}
	return r.loadAttachments(ctx, d)
}

func (r *DemandRepository) loadItems(ctx context.Context, d *model.Demand) error {
	var rows []struct {
		ID            uuid.UUID
		Description   string
		Unit          string
		Quantity      int
		GroupID       string
		CatalogItemID *uuid.UUID
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, description, unit, quantity, group_id, catalog_item_id
		FROM demand_item
		WHERE demand_id = ?
		ORDER BY position ASC
	`, d.ID).Scan(&rows).Error
	if err != nil {
		return err
	}

	d.Items = make([]model.Item, 0, len(rows))
	for _, row := range rows {
		d.Items = append(d.Items, model.Item{
			ID:            row.ID,
			Description:   row.Description,
			Unit:          row.Unit,
			Quantity:      row.Quantity,
			GroupID:       row.GroupID,
			CatalogItemID: row.CatalogItemID,
		})
	}
	return nil
}

func (r *DemandRepository) loadProposals(ctx context.Context, d *model.Demand) error {
	var rows []struct {
		ID           uuid.UUID
		Protocol     string
		SupplierID   uuid.UUID
		SupplierName string
		Sequence     int
		SubmittedAt  time.Time
		DeliveryTime string
		Status       string
		Observations *string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, protocol, supplier_id, supplier_name, sequence,
			submitted_at, delivery_time, status, observations
		FROM proposal
		WHERE demand_id = ?
		ORDER BY sequence ASC
	`, d.ID).Scan(&rows).Error
	if err != nil {
		return err
	}

	d.Proposals = make([]model.Proposal, 0, len(rows))
	for _, row := range rows {
		proposal := model.Proposal{
			ID:           row.ID,
			Protocol:     row.Protocol,
			DemandID:     d.ID,
			SupplierID:   row.SupplierID,
			SupplierName: row.SupplierName,
			Sequence:     row.Sequence,
			SubmittedAt:  row.SubmittedAt,
			DeliveryTime: row.DeliveryTime,
			Status:       model.ProposalStatus(row.Status),
			Observations: row.Observations,
		}
		if err := r.loadProposalItems(ctx, &proposal); err != nil {
			return err
		}
		d.Proposals = append(d.Proposals, proposal)
	}
	return nil
}

func (r *DemandRepository) loadProposalItems(ctx context.Context, p *model.Proposal) error {
	var rows []struct {
		ItemID    uuid.UUID
		UnitPrice float64
		Brand     *string
		Declined  bool
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT item_id, unit_price, brand, declined
		FROM proposal_item
		WHERE proposal_id = ?
	`, p.ID).Scan(&rows).Error
	if err != nil {
		return err
	}

	p.Items = make([]model.ProposalItem, 0, len(rows))
	for _, row := range rows {
		p.Items = append(p.Items, model.ProposalItem{
			ItemID:    row.ItemID,
			UnitPrice: row.UnitPrice,
			Brand:     row.Brand,
			Declined:  row.Declined,
		})
	}
	return nil
}

func (r *DemandRepository) loadAward(ctx context.Context, d *model.Demand) error {
	var row struct {
		DemandID      uuid.UUID
		Mode          *string
		Justification string
		SupplierName  string
		TotalValue    float64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT demand_id, mode, justification, supplier_name, total_value
		FROM award
		WHERE demand_id = ?
		LIMIT 1
	`, d.ID).Scan(&row).Error
	if err != nil {
		return err
	}
	if row.DemandID == uuid.Nil {
		return nil
	}

	award := &model.Award{
		Justification: row.Justification,
		SupplierName:  row.SupplierName,
		TotalValue:    row.TotalValue,
	}
	if row.Mode != nil {
		award.Mode = model.AwardMode(*row.Mode)
	}

	var items []struct {
		ItemID       uuid.UUID
		SupplierName string
		UnitPrice    float64
		Quantity     int
		TotalValue   float64
	}
	err = r.db.WithContext(ctx).Raw(`
		SELECT item_id, supplier_name, unit_price, quantity, total_value
		FROM award_item
		WHERE demand_id = ?
	`, d.ID).Scan(&items).Error
	if err != nil {
		return err
	}
	for _, item := range items {
		award.Items = append(award.Items, model.AwardItem{
			ItemID:       item.ItemID,
			SupplierName: item.SupplierName,
			UnitPrice:    item.UnitPrice,
			Quantity:     item.Quantity,
			TotalValue:   item.TotalValue,
		})
	}

	// Legacy rows may lack a mode; infer it once here from the presence
	// of item entries so no reader ever sees an untagged award.
	if row.Mode == nil {
		if len(award.Items) > 0 {
			award.Mode = model.AwardModeItem
		} else {
			award.Mode = model.AwardModeGlobal
		}
	}

	d.Award = award
	return nil
}

func (r *DemandRepository) loadAttachments(ctx context.Context, d *model.Demand) error {
	var rows []model.Attachment
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, demand_id, file_name, object_name, uploaded_at
		FROM demand_attachment
		WHERE demand_id = ?
		ORDER BY uploaded_at ASC
	`, d.ID).Scan(&rows).Error
	if err != nil {
		return err
	}
	d.Attachments = rows
	return nil
}

// NextSequence reserves the next submission sequence for a demand.
func (r *DemandRepository) NextSequence(ctx context.Context, demandID uuid.UUID) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(MAX(sequence), 0) + 1
		FROM proposal
		WHERE demand_id = ?
	`, demandID).Scan(&next).Error
	return next, err
}

func (r *DemandRepository) AddProposal(ctx context.Context, p *model.Proposal) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Exec(`
			INSERT INTO proposal (
				id, demand_id, protocol, supplier_id, supplier_name,
				sequence, submitted_at, delivery_time, status, observations
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.DemandID, p.Protocol, p.SupplierID, p.SupplierName,
			p.Sequence, p.SubmittedAt, p.DeliveryTime, string(p.Status), p.Observations).Error
		if err != nil {
			return err
		}
		for _, line := range p.Items {
			err := tx.Exec(`
				INSERT INTO proposal_item (proposal_id, item_id, unit_price, brand, declined)
				VALUES (?, ?, ?, ?, ?)
			`, p.ID, line.ItemID, line.UnitPrice, line.Brand, line.Declined).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyPatch persists a lifecycle decision in one transaction. Only
// non-nil patch fields are written.
func (r *DemandRepository) ApplyPatch(ctx context.Context, demandID uuid.UUID, patch *model.Patch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if patch.Status != nil {
			updates["status"] = string(*patch.Status)
		}
		if patch.ProposalDeadline != nil {
			updates["proposal_deadline"] = *patch.ProposalDeadline
		}
		if patch.DeliveryDeadline != nil {
			updates["delivery_deadline"] = *patch.DeliveryDeadline
		}
		if patch.Observations != nil {
			updates["observations"] = *patch.Observations
		}
		if patch.RejectionReason != nil {
			updates["rejection_reason"] = *patch.RejectionReason
		}
		if patch.ClosingReason != nil {
			updates["closing_reason"] = *patch.ClosingReason
		}
		if patch.DecisionDate != nil {
			updates["decision_date"] = *patch.DecisionDate
		}
		if len(updates) > 0 {
			if err := tx.Table("demand").Where("id = ?", demandID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if patch.Award != nil {
			return writeAward(tx, demandID, patch.Award)
		}
		return nil
	})
}

func writeAward(tx *gorm.DB, demandID uuid.UUID, award *model.Award) error {
	if err := tx.Exec(`DELETE FROM award WHERE demand_id = ?`, demandID).Error; err != nil {
		return err
	}
	err := tx.Exec(`
		INSERT INTO award (demand_id, mode, justification, supplier_name, total_value)
		VALUES (?, ?, ?, ?, ?)
	`, demandID, string(award.Mode), award.Justification, award.SupplierName, award.TotalValue).Error
	if err != nil {
		return err
	}
	for _, item := range award.Items {
		err := tx.Exec(`
			INSERT INTO award_item (demand_id, item_id, supplier_name, unit_price, quantity, total_value)
			VALUES (?, ?, ?, ?, ?, ?)
		`, demandID, item.ItemID, item.SupplierName, item.UnitPrice, item.Quantity, item.TotalValue).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *DemandRepository) AddAttachment(ctx context.Context, a *model.Attachment) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO demand_attachment (id, demand_id, file_name, object_name, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, a.DemandID, a.FileName, a.ObjectName, a.UploadedAt).Error
}

func (r *DemandRepository) GetAttachment(ctx context.Context, demandID, attachmentID uuid.UUID) (*model.Attachment, error) {
	var row model.Attachment
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, demand_id, file_name, object_name, uploaded_at
		FROM demand_attachment
		WHERE id = ? AND demand_id = ?
		LIMIT 1
	`, attachmentID, demandID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &row, nil
}
