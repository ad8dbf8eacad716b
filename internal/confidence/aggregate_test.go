package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/record"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

func invoiceDef() schema.Definition {
	return schema.Definition{Name: "invoice", Fields: map[string]schema.FieldSpec{
		"invoice_number": {Type: schema.TypeString, Required: true},
		"date":           {Type: schema.TypeDate, Required: true},
		"total_amount":   {Type: schema.TypeNumeric, Required: true},
		"currency":       {Type: schema.TypeCurrency},
	}}
}

func fullRecord() *record.Record {
	r := record.New(constants.Invoice)
	r.SetField("invoice_number", record.FieldValue{Value: "INV-7", Confidence: 0.9, Valid: true})
	r.SetField("date", record.FieldValue{Value: "2024-05-01", Confidence: 0.8, Valid: true})
	r.SetField("total_amount", record.FieldValue{Value: 120.0, Confidence: 0.85, Valid: true})
	r.SetField("currency", record.FieldValue{Value: "USD", Confidence: 0.7, Valid: true})
	return r
}

func TestAggregateWeightedMean(t *testing.T) {
	got := Aggregate(fullRecord(), invoiceDef())
	// (2*0.9 + 2*0.8 + 2*0.85 + 1*0.7) / 7 * (3/3)
	want := (2*0.9 + 2*0.8 + 2*0.85 + 1*0.7) / 7.0
	assert.InDelta(t, want, got, 1e-5)
}

func TestAggregateMissingRequiredScoresLower(t *testing.T) {
	full := Aggregate(fullRecord(), invoiceDef())

	missing := fullRecord()
	missing.SetField("date", record.FieldValue{Value: nil, Confidence: 0, Valid: false})
	degraded := Aggregate(missing, invoiceDef())

	assert.Less(t, degraded, full)
	// completeness factor: only 2 of 3 required fields present
	assert.Less(t, degraded, full*2/3+0.01)
}

func TestAggregateInvalidRequiredHurtsCompleteness(t *testing.T) {
	full := Aggregate(fullRecord(), invoiceDef())

	invalid := fullRecord()
	invalid.SetField("date", record.FieldValue{Value: "not a date", Confidence: 0.4, Valid: false})
	assert.Less(t, Aggregate(invalid, invoiceDef()), full)
}

func TestAggregateNoRequiredFields(t *testing.T) {
	def := schema.Definition{Name: "loose", Fields: map[string]schema.FieldSpec{
		"a": {Type: schema.TypeString},
		"b": {Type: schema.TypeString},
	}}
	r := record.New(constants.General)
	r.SetField("a", record.FieldValue{Value: "x", Confidence: 0.6, Valid: true})
	r.SetField("b", record.FieldValue{Value: "y", Confidence: 0.8, Valid: true})

	assert.InDelta(t, 0.7, Aggregate(r, def), 1e-5)
}

func TestAggregateEmptySchema(t *testing.T) {
	assert.Equal(t, float32(0), Aggregate(record.New(constants.General), schema.Definition{}))
}

func TestAggregateStaysInRange(t *testing.T) {
	r := fullRecord()
	r.SetField("invoice_number", record.FieldValue{Value: "INV-7", Confidence: 1.0, Valid: true})
	got := Aggregate(r, invoiceDef())
	assert.GreaterOrEqual(t, got, float32(0))
	assert.LessOrEqual(t, got, float32(1))
}
