package dto

type TableStatusRequest struct {
	Status string `json:"status"`
}
