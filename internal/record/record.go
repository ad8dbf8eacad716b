package record

import (
	"github.com/MohammedZaid-AI/docextract/constants"
)

// FieldValue is the unit of extraction: a value plus the model's confidence
// in it. Value is a string, float64, []string, or nil.
type FieldValue struct {
	Value      any
	Confidence float32
	// Valid is cleared by the validator when a rule fails. It never affects
	// the serialized shape but feeds the confidence aggregation.
	Valid bool
}

// Record is the sole output artifact of a pipeline run. Built incrementally
// by the pipeline stages, then frozen before it is handed to the caller.
type Record struct {
	DetectedType      constants.DocumentType
	Fields            map[string]FieldValue
	OverallConfidence float32
	Warnings          []string
	NeedsReview       bool

	frozen bool
}

// New returns an empty record for a detected document type.
func New(detected constants.DocumentType) *Record {
	return &Record{
		DetectedType: detected,
		Fields:       make(map[string]FieldValue),
		Warnings:     []string{},
	}
}

// AddWarning appends a validation warning. No-op once frozen.
func (r *Record) AddWarning(w string) {
	if r.frozen {
		return
	}
	r.Warnings = append(r.Warnings, w)
}

// SetField stores a field value. No-op once frozen.
func (r *Record) SetField(name string, fv FieldValue) {
	if r.frozen {
		return
	}
	r.Fields[name] = fv
}

// Freeze marks the record final.
func (r *Record) Freeze() {
	r.frozen = true
}

// Frozen reports whether the record has been finalized.
func (r *Record) Frozen() bool {
	return r.frozen
}

// ClampConfidence forces c into [0,1].
func ClampConfidence(c float32) float32 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
