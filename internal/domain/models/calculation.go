package models

// Calculation represents the outcome of aggregating a list of integers.
//
// Fields:
//   - Total: arithmetic sum of the input.
//   - Average: Total divided by Count, truncated toward zero.
//   - Count: number of input values.
//
// The record lives for a single request and is never persisted.
type Calculation struct {
	Total   int64 `json:"total" example:"10"`
	Average int64 `json:"average" example:"2"`
	Count   int   `json:"count" example:"4"`
}
