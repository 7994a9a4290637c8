package model

import "github.com/google/uuid"

type Role string

const (
	RoleRequester  Role = "REQUESTER"
	RoleWarehouse  Role = "WAREHOUSE"
	RolePurchasing Role = "PURCHASING"
	RoleAdmin      Role = "ADMIN"
	RoleSupplier   Role = "SUPPLIER"
)

type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

func (p Principal) IsRequester() bool  { return p.Role == RoleRequester }
func (p Principal) IsWarehouse() bool  { return p.Role == RoleWarehouse }
func (p Principal) IsPurchasing() bool { return p.Role == RolePurchasing }
func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
func (p Principal) IsSupplier() bool   { return p.Role == RoleSupplier }
