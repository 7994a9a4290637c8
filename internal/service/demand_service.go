package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dlemos/procurement-service/internal/engine"
	"github.com/dlemos/procurement-service/internal/model"
	"github.com/dlemos/procurement-service/internal/repository"
)

type AnalysisExporter interface {
	Generate(d *model.Demand, analysis *model.BidAnalysis) ([]byte, error)
}

type AwardTermGenerator interface {
	Generate(d *model.Demand) ([]byte, error)
}

type AttachmentStore interface {
	Upload(ctx context.Context, demandID uuid.UUID, fileName string, data []byte) (string, error)
	PresignedURL(ctx context.Context, objectName string) (string, error)
}

// DemandService wires the pure bidding engine to persistence and
// transport. All decisions are made by the engine over a loaded snapshot;
// this layer fetches, authorizes, persists and renders.
type DemandService struct {
	repo    *repository.DemandRepository
	excel   AnalysisExporter
	pdf     AwardTermGenerator
	storage AttachmentStore
	now     func() time.Time
}

func NewDemandService(repo *repository.DemandRepository, excel AnalysisExporter, pdf AwardTermGenerator, store AttachmentStore) *DemandService {
	return &DemandService{
		repo:    repo,
		excel:   excel,
		pdf:     pdf,
		storage: store,
		now:     time.Now,
	}
}

type ItemInput struct {
	Description   string
	Unit          string
	Quantity      int
	GroupID       string
	CatalogItemID *uuid.UUID
}

type CreateDemandInput struct {
	Title       string
	Department  string
	Type        model.DemandType
	Priority    model.DemandPriority
	Description string
	Items       []ItemInput
	Principal   model.Principal
}

func (s *DemandService) CreateDemand(ctx context.Context, input CreateDemandInput) (*model.Demand, error) {
	if !(input.Principal.IsRequester() || input.Principal.IsAdmin()) {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: invalid demand type", ErrInvalidInput)
	}
	if !input.Priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority", ErrInvalidInput)
	}

	items, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	now := s.now()
	demand := &model.Demand{
		ID:              uuid.New(),
		Protocol:        buildProtocol(now),
		Title:           strings.TrimSpace(input.Title),
		Department:      strings.TrimSpace(input.Department),
		Type:            input.Type,
		Priority:        input.Priority,
		Description:     strings.TrimSpace(input.Description),
		Items:           items,
		Status:          model.StatusDraft,
		CreatedByUserID: input.Principal.UserID,
		CreatedAt:       now,
	}
	if err := s.repo.Create(ctx, demand); err != nil {
		return nil, err
	}
	return demand, nil
}

func buildItems(inputs []ItemInput) ([]model.Item, error) {
	items := make([]model.Item, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Description) == "" {
			return nil, fmt.Errorf("%w: item description is required", ErrInvalidInput)
		}
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", ErrInvalidInput)
		}
		items = append(items, model.Item{
			ID:            uuid.New(),
			Description:   strings.TrimSpace(in.Description),
			Unit:          strings.TrimSpace(in.Unit),
			Quantity:      in.Quantity,
			GroupID:       in.GroupID,
			CatalogItemID: in.CatalogItemID,
		})
	}
	return items, nil
}

func buildProtocol(now time.Time) string {
	return fmt.Sprintf("DM-%d-%s", now.Year(), strings.ToUpper(uuid.New().String()[:8]))
}

func (s *DemandService) GetDemand(ctx context.Context, id uuid.UUID) (*model.Demand, error) {
	demand, err := s.repo.Get(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return demand, nil
}

func (s *DemandService) ListDemands(ctx context.Context, status *model.DemandStatus) ([]model.Demand, error) {
	if status != nil && !status.Valid() {
		return nil, fmt.Errorf("%w: invalid status filter", ErrInvalidInput)
	}
	return s.repo.List(ctx, status)
}

// UpdateItems adjusts the item list during the pre-bidding review step.
// Once the demand opens for bidding the list is fixed.
func (s *DemandService) UpdateItems(ctx context.Context, demandID uuid.UUID, inputs []ItemInput, principal model.Principal) (*model.Demand, error) {
	if !(principal.IsWarehouse() || principal.IsRequester() || principal.IsAdmin()) {
		return nil, ErrPermissionDenied
	}
	demand, err := s.GetDemand(ctx, demandID)
	if err != nil {
		return nil, err
	}
	if demand.Status != model.StatusDraft && demand.Status != model.StatusPendingWarehouseReview {
		return nil, fmt.Errorf("%w: items are fixed once bidding opens", ErrInvalidInput)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one item is required", ErrInvalidInput)
	}

	items, err := buildItems(inputs)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceItems(ctx, demandID, items); err != nil {
		return nil, err
	}
	return s.GetDemand(ctx, demandID)
}

type ProposalLineInput struct {
	ItemID    uuid.UUID
	UnitPrice float64
	Brand     *string
	Declined  bool
}

type SubmitProposalInput struct {
	DemandID     uuid.UUID
	SupplierID   uuid.UUID
	SupplierName string
	DeliveryTime string
	Declined     bool
	Lines        []ProposalLineInput
	Observations *string
	Principal    model.Principal
}

func (s *DemandService) SubmitProposal(ctx context.Context, input SubmitProposalInput) (*model.Proposal, error) {
	if !(input.Principal.IsSupplier() || input.Principal.IsAdmin()) {
		return nil, ErrPermissionDenied
	}
	demand, err := s.GetDemand(ctx, input.DemandID)
	if err != nil {
		return nil, err
	}
	if demand.Status != model.StatusOpenForBidding {
		return nil, fmt.Errorf("%w: demand is not open for bidding", ErrInvalidInput)
	}
	if demand.ProposalDeadline != nil && s.now().After(*demand.ProposalDeadline) {
		return nil, fmt.Errorf("%w: proposal deadline has passed", ErrInvalidInput)
	}
	if strings.TrimSpace(input.SupplierName) == "" {
		return nil, fmt.Errorf("%w: supplier name is required", ErrInvalidInput)
	}

	// At most one active proposal per supplier per demand.
	for i := range demand.Proposals {
		p := &demand.Proposals[i]
		if p.SupplierID == input.SupplierID && !p.Declined() {
			return nil, fmt.Errorf("%w: supplier already submitted a proposal", ErrInvalidInput)
		}
	}

	status := model.ProposalActive
	if input.Declined {
		status = model.ProposalDeclined
	}

	lines := make([]model.ProposalItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		if demand.ItemByID(line.ItemID) == nil {
			return nil, fmt.Errorf("%w: line references an unknown item", ErrInvalidInput)
		}
		if !line.Declined && line.UnitPrice <= 0 {
			return nil, fmt.Errorf("%w: quoted lines need a positive unit price", ErrInvalidInput)
		}
		lines = append(lines, model.ProposalItem{
			ItemID:    line.ItemID,
			UnitPrice: line.UnitPrice,
			Brand:     line.Brand,
			Declined:  line.Declined,
		})
	}
	if status == model.ProposalActive && len(lines) == 0 {
		return nil, fmt.Errorf("%w: an active proposal needs at least one line", ErrInvalidInput)
	}

	sequence, err := s.repo.NextSequence(ctx, demand.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	proposal := &model.Proposal{
		ID:           uuid.New(),
		Protocol:     fmt.Sprintf("PR-%d-%s", now.Year(), strings.ToUpper(uuid.New().String()[:8])),
		DemandID:     demand.ID,
		SupplierID:   input.SupplierID,
		SupplierName: strings.TrimSpace(input.SupplierName),
		Sequence:     sequence,
		SubmittedAt:  now,
		DeliveryTime: strings.TrimSpace(input.DeliveryTime),
		Status:       status,
		Items:        lines,
		Observations: input.Observations,
	}
	if err := s.repo.AddProposal(ctx, proposal); err != nil {
		return nil, err
	}
	return proposal, nil
}

// Transition runs one lifecycle action through the engine and persists
// the resulting patch.
func (s *DemandService) Transition(ctx context.Context, demandID uuid.UUID, action engine.Action, ev engine.Evidence, principal model.Principal) (*model.Demand, error) {
	if err := authorizeAction(action, principal); err != nil {
		return nil, err
	}
	demand, err := s.GetDemand(ctx, demandID)
	if err != nil {
		return nil, err
	}

	patch, err := engine.RequestTransition(demand, action, ev, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.ApplyPatch(ctx, demandID, patch); err != nil {
		return nil, err
	}
	return s.GetDemand(ctx, demandID)
}

func authorizeAction(action engine.Action, principal model.Principal) error {
	if principal.IsAdmin() {
		return nil
	}
	switch action {
	case engine.ActionSubmitForReview:
		if principal.IsRequester() {
			return nil
		}
	case engine.ActionApprove, engine.ActionReject:
		if principal.IsWarehouse() {
			return nil
		}
	case engine.ActionCloseBidding, engine.ActionHomologate, engine.ActionFinalize:
		if principal.IsPurchasing() {
			return nil
		}
	case engine.ActionCancel:
		if principal.IsRequester() || principal.IsPurchasing() {
			return nil
		}
	}
	return ErrPermissionDenied
}

// Analyze builds the blind-phase operator view. Read-only; suppliers
// never see it.
func (s *DemandService) Analyze(ctx context.Context, demandID uuid.UUID, principal model.Principal) (*model.Demand, *model.BidAnalysis, error) {
	if principal.IsSupplier() {
		return nil, nil, ErrPermissionDenied
	}
	demand, err := s.GetDemand(ctx, demandID)
	if err != nil {
		return nil, nil, err
	}
	switch demand.Status {
	case model.StatusOpenForBidding, model.StatusUnderAnalysis,
		model.StatusAwardDefined, model.StatusCompleted:
	default:
		return nil, nil, fmt.Errorf("%w: demand has no bids to analyze", ErrInvalidInput)
	}

	awarded, err := s.repo.ListAwarded(ctx)
	if err != nil {
		return nil, nil, err
	}
	return demand, engine.Analyze(demand, awarded), nil
}

type HomologationInput struct {
	DemandID      uuid.UUID
	Selection     engine.Selection
	Justification string
	Principal     model.Principal
}

// Homologate resolves the operator's selection into an award and commits
// the AWARD_DEFINED transition.
func (s *DemandService) Homologate(ctx context.Context, input HomologationInput) (*model.Demand, error) {
	demand, analysis, err := s.Analyze(ctx, input.DemandID, input.Principal)
	if err != nil {
		return nil, err
	}

	award, err := engine.ResolveAward(demand, analysis, input.Selection, input.Justification)
	if err != nil {
		return nil, err
	}
	return s.Transition(ctx, input.DemandID, engine.ActionHomologate, engine.Evidence{Award: award}, input.Principal)
}

// SuggestJustification renders the editable award-justification template
// for the current selection.
func (s *DemandService) SuggestJustification(ctx context.Context, demandID uuid.UUID, sel engine.Selection, principal model.Principal) (string, error) {
	_, analysis, err := s.Analyze(ctx, demandID, principal)
	if err != nil {
		return "", err
	}
	return engine.SuggestJustification(analysis, sel), nil
}

// PriceHistory mines closed demands for the referenced item's paid
// prices.
func (s *DemandService) PriceHistory(ctx context.Context, ref engine.ItemRef) ([]model.PriceHistoryEntry, model.PriceHistorySummary, error) {
	if ref.CatalogItemID == nil && strings.TrimSpace(ref.Description) == "" {
		return nil, model.PriceHistorySummary{}, fmt.Errorf("%w: catalog_item_id or description is required", ErrInvalidInput)
	}
	awarded, err := s.repo.ListAwarded(ctx)
	if err != nil {
		return nil, model.PriceHistorySummary{}, err
	}
	entries := engine.PriceHistory(ref, awarded)
	return entries, engine.Summarize(entries), nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *DemandService) ExportAnalysis(ctx context.Context, demandID uuid.UUID, principal model.Principal) (*ExportResult, error) {
	demand, analysis, err := s.Analyze(ctx, demandID, principal)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(demand, analysis)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("bid-analysis-%s.xlsx", sanitizeFileName(demand.Protocol)),
		Content:  content,
	}, nil
}

func (s *DemandService) ExportAwardTerm(ctx context.Context, demandID uuid.UUID, principal model.Principal) (*ExportResult, error) {
	if principal.IsSupplier() {
		return nil, ErrPermissionDenied
	}
	demand, err := s.GetDemand(ctx, demandID)
	if err != nil {
		return nil, err
	}
	if demand.Award == nil {
		return nil, fmt.Errorf("%w: demand has no award on record", ErrInvalidInput)
	}
	content, err := s.pdf.Generate(demand)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("homologation-term-%s.pdf", sanitizeFileName(demand.Protocol)),
		Content:  content,
	}, nil
}

func (s *DemandService) UploadAttachment(ctx context.Context, demandID uuid.UUID, fileName string, data []byte, principal model.Principal) (*model.Attachment, error) {
	if principal.IsSupplier() {
		return nil, ErrPermissionDenied
	}
	demand, err := s.GetDemand(ctx, demandID)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}

	objectName, err := s.storage.Upload(ctx, demand.ID, fileName, data)
	if err != nil {
		return nil, err
	}
	attachment := &model.Attachment{
		ID:         uuid.New(),
		DemandID:   demand.ID,
		FileName:   fileName,
		ObjectName: objectName,
		UploadedAt: s.now(),
	}
	if err := s.repo.AddAttachment(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *DemandService) AttachmentURL(ctx context.Context, demandID, attachmentID uuid.UUID) (string, error) {
	attachment, err := s.repo.GetAttachment(ctx, demandID, attachmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.storage.PresignedURL(ctx, attachment.ObjectName)
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
