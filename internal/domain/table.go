package domain

import "time"

const (
	TableStatusAvailable   = "available"
	TableStatusOccupied    = "occupied"
	TableStatusReserved    = "reserved"
	TableStatusMaintenance = "maintenance"
)

type Table struct {
	ID             uint
	TenantID       int
	TableNumber    string
	Capacity       int
	Status         string
	CurrentOrderID *uint
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func IsValidTableStatus(status string) bool {
	switch status {
	case TableStatusAvailable, TableStatusOccupied, TableStatusReserved, TableStatusMaintenance:
		return true
	}
	return false
}
