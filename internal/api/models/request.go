package models

import "spv-projection/internal/config"

// ProjectionRequest represents the request body for running a projection.
// Config has the same shape as a JSON config file; base_file is not allowed.
type ProjectionRequest struct {
	Config  config.File       `json:"config"`
	Options ProjectionOptions `json:"options,omitempty"`
}

// ProjectionOptions contains optional projection parameters
type ProjectionOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// CompareRequest represents a request to compare variations of one plan
type CompareRequest struct {
	Base       config.File `json:"base"`
	Variations []Variation `json:"variations" binding:"required,min=1"`
}

// Variation defines a variation to test. Its config overrides the base
// field by field; its scenarios and stress tests come before the base's.
type Variation struct {
	Name   string      `json:"name" binding:"required"`
	Config config.File `json:"config"`
}

// SaveScenarioRequest represents the body of PUT /api/v1/scenarios/:name
type SaveScenarioRequest struct {
	Config config.File `json:"config"`
	// Run stores the base/min/max results alongside the settings.
	Run bool `json:"run,omitempty"`
}
