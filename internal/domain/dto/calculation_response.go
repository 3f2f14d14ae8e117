package dto

import "github.com/guttosm/tracecalc/internal/domain/models"

// StatusSuccess is the envelope status of every 2xx calculation response.
const StatusSuccess = "success"

// CalculationResponse represents the JSON structure returned by the
// POST /calculate endpoint on success.
type CalculationResponse struct {
	Status string          `json:"status" example:"success"`
	Data   CalculationData `json:"data"`
}

// CalculationData mirrors models.Calculation on the API surface.
type CalculationData struct {
	Total   int64 `json:"total" example:"10"`
	Average int64 `json:"average" example:"2"`
	Count   int   `json:"count" example:"4"`
}

// NewCalculationResponse wraps a calculation in the success envelope.
func NewCalculationResponse(c *models.Calculation) CalculationResponse {
	return CalculationResponse{
		Status: StatusSuccess,
		Data: CalculationData{
			Total:   c.Total,
			Average: c.Average,
			Count:   c.Count,
		},
	}
}
