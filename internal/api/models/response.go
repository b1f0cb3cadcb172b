package models

import (
	"time"

	"spv-projection/internal/analysis"
	"spv-projection/internal/model"
)

// ProjectionResponse represents the response from a projection run
type ProjectionResponse struct {
	ID       string               `json:"id"`
	Status   string               `json:"status"`
	Range    *model.ScenarioRange `json:"range"`
	KPIs     analysis.KPIs        `json:"kpis"`
	MinKPIs  *analysis.KPIs       `json:"min_kpis,omitempty"`
	MaxKPIs  *analysis.KPIs       `json:"max_kpis,omitempty"`
	Warnings model.Warnings       `json:"warnings"`
	Ledger   []model.LedgerRow    `json:"ledger,omitempty"`
}

// Projection statuses. A run with warnings still completed.
const (
	StatusCompleted = "completed"
	StatusWarnings  = "completed_with_warnings"
)

// CompareResponse represents the ranked comparison of variations
type CompareResponse struct {
	Comparison []analysis.RankedVariation `json:"comparison"`
	Skipped    []SkippedVariation         `json:"skipped,omitempty"`
}

// SkippedVariation names a variation that could not be run
type SkippedVariation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ScenarioInfo is the list view of a saved scenario
type ScenarioInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Timestamp  time.Time `json:"timestamp"`
	HasResults bool      `json:"has_results"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
