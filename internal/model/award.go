package model

import "github.com/google/uuid"

type AwardMode string

const (
	AwardModeGlobal AwardMode = "GLOBAL"
	AwardModeItem   AwardMode = "ITEM"
)

func (m AwardMode) Valid() bool {
	return m == AwardModeGlobal || m == AwardModeItem
}

// Award is written exactly once, by homologation. It is never edited in
// place; a new homologation replaces it wholesale.
type Award struct {
	Mode          AwardMode
	Justification string
	// SupplierName is set in global mode only.
	SupplierName string
	TotalValue   float64
	// Items is set in item mode only; demand items without a selected
	// winner are simply absent.
	Items []AwardItem
}

type AwardItem struct {
	ItemID       uuid.UUID
	SupplierName string
	UnitPrice    float64
	Quantity     int
	TotalValue   float64
}
