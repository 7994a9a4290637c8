package model

import "time"

// Patch describes exactly the demand fields a lifecycle decision wants
// persisted. Nil fields are left untouched by the writer.
type Patch struct {
	Status           *DemandStatus
	ProposalDeadline *time.Time
	DeliveryDeadline *time.Time
	Observations     *string
	RejectionReason  *string
	ClosingReason    *string
	Award            *Award
	DecisionDate     *time.Time
}
