package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MohammedZaid-AI/docextract/constants"
	"github.com/MohammedZaid-AI/docextract/internal/record"
	"github.com/MohammedZaid-AI/docextract/internal/schema"
)

func defWith(fields map[string]schema.FieldSpec) schema.Definition {
	return schema.Definition{Name: "test", Fields: fields}
}

func recWith(fields map[string]record.FieldValue) *record.Record {
	r := record.New(constants.General)
	for k, v := range fields {
		r.SetField(k, v)
	}
	return r
}

func TestDateNormalizationAndIdempotency(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"date": {Type: schema.TypeDate, Required: true}})
	rec := recWith(map[string]record.FieldValue{
		"date": {Value: "07/01/2016", Confidence: 0.9, Valid: true},
	})

	Apply(rec, def)
	assert.Equal(t, "2016-07-01", rec.Fields["date"].Value)
	assert.Empty(t, rec.Warnings)
	assert.InDelta(t, 0.9, rec.Fields["date"].Confidence, 1e-6)

	// re-validating the normalized value leaves it unchanged
	Apply(rec, def)
	assert.Equal(t, "2016-07-01", rec.Fields["date"].Value)
	assert.Empty(t, rec.Warnings)
}

func TestInvalidDatePenalized(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"date": {Type: schema.TypeDate, Required: true}})
	rec := recWith(map[string]record.FieldValue{
		"date": {Value: "sometime last week", Confidence: 0.8, Valid: true},
	})
	Apply(rec, def)
	assert.InDelta(t, 0.4, rec.Fields["date"].Confidence, 1e-6)
	assert.False(t, rec.Fields["date"].Valid)
	require.Len(t, rec.Warnings, 1)
	assert.Contains(t, rec.Warnings[0], "invalid date")
}

func TestNumericStripsCurrencyAndSeparators(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"total_amount": {Type: schema.TypeNumeric, Required: true}})
	rec := recWith(map[string]record.FieldValue{
		"total_amount": {Value: "$5,500.00", Confidence: 0.9, Valid: true},
	})
	Apply(rec, def)
	assert.Equal(t, 5500.0, rec.Fields["total_amount"].Value)
	assert.Empty(t, rec.Warnings)
}

func TestNumericInvalid(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"total_amount": {Type: schema.TypeNumeric}})
	rec := recWith(map[string]record.FieldValue{
		"total_amount": {Value: "around forty", Confidence: 0.6, Valid: true},
	})
	Apply(rec, def)
	assert.InDelta(t, 0.3, rec.Fields["total_amount"].Confidence, 1e-6)
	require.Len(t, rec.Warnings, 1)
	assert.Contains(t, rec.Warnings[0], "not numeric")
}

func TestEmailInvalidHalvesConfidence(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"email": {Type: schema.TypeEmail, Required: true}})
	rec := recWith(map[string]record.FieldValue{
		"email": {Value: "not-an-email", Confidence: 0.8, Valid: true},
	})
	Apply(rec, def)
	assert.InDelta(t, 0.4, rec.Fields["email"].Confidence, 1e-6)
	assert.False(t, rec.Fields["email"].Valid)
	require.Len(t, rec.Warnings, 1)
	assert.Contains(t, rec.Warnings[0], "not a valid email")

	// valid email passes untouched
	rec2 := recWith(map[string]record.FieldValue{
		"email": {Value: "jane.doe+work@example.co.uk", Confidence: 0.9, Valid: true},
	})
	Apply(rec2, def)
	assert.Empty(t, rec2.Warnings)
	assert.InDelta(t, 0.9, rec2.Fields["email"].Confidence, 1e-6)
}

func TestPhoneStripsSeparators(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"phone": {Type: schema.TypePhone}})

	rec := recWith(map[string]record.FieldValue{
		"phone": {Value: "+1 (415) 555-01.23", Confidence: 0.85, Valid: true},
	})
	Apply(rec, def)
	assert.Equal(t, "+14155550123", rec.Fields["phone"].Value)
	assert.Empty(t, rec.Warnings)

	short := recWith(map[string]record.FieldValue{
		"phone": {Value: "12-34", Confidence: 0.8, Valid: true},
	})
	Apply(short, def)
	assert.InDelta(t, 0.4, short.Fields["phone"].Confidence, 1e-6)
	assert.Contains(t, short.Warnings[0], "not a valid phone number")
}

func TestCurrencySymbolMapping(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"currency": {Type: schema.TypeCurrency}})

	for symbol, iso := range map[string]string{"$": "USD", "€": "EUR", "£": "GBP", "₹": "INR"} {
		rec := recWith(map[string]record.FieldValue{
			"currency": {Value: symbol, Confidence: 0.9, Valid: true},
		})
		Apply(rec, def)
		assert.Equal(t, iso, rec.Fields["currency"].Value)
		assert.Empty(t, rec.Warnings)
	}

	// lowercase ISO code is uppercased
	rec := recWith(map[string]record.FieldValue{
		"currency": {Value: "usd", Confidence: 0.9, Valid: true},
	})
	Apply(rec, def)
	assert.Equal(t, "USD", rec.Fields["currency"].Value)

	// ambiguous symbol: kept, warned, not penalized
	amb := recWith(map[string]record.FieldValue{
		"currency": {Value: "¥", Confidence: 0.9, Valid: true},
	})
	Apply(amb, def)
	assert.Equal(t, "¥", amb.Fields["currency"].Value)
	assert.True(t, amb.Fields["currency"].Valid)
	assert.InDelta(t, 0.9, amb.Fields["currency"].Confidence, 1e-6)
	require.Len(t, amb.Warnings, 1)
	assert.Contains(t, amb.Warnings[0], "unresolved currency symbol")
}

func TestRequiredMissingField(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{
		"vendor_name": {Type: schema.TypeString, Required: true},
		"notes":       {Type: schema.TypeString},
	})
	rec := recWith(map[string]record.FieldValue{
		"vendor_name": {Value: nil, Confidence: 0.3, Valid: true},
		"notes":       {Value: nil, Confidence: 0.1, Valid: true},
	})
	Apply(rec, def)

	assert.Equal(t, float32(0), rec.Fields["vendor_name"].Confidence)
	assert.False(t, rec.Fields["vendor_name"].Valid)
	require.Len(t, rec.Warnings, 1, "optional missing fields produce no warning")
	assert.Equal(t, "vendor_name required but not found", rec.Warnings[0])
}

func TestListTrimsAndDropsEmpties(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"items": {Type: schema.TypeList, Required: true}})
	rec := recWith(map[string]record.FieldValue{
		"items": {Value: []string{" tea ", "", "milk", "   "}, Confidence: 0.7, Valid: true},
	})
	Apply(rec, def)
	assert.Equal(t, []string{"tea", "milk"}, rec.Fields["items"].Value)
	assert.Empty(t, rec.Warnings)
}

func TestKeysMatchSchemaExactly(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{
		"a": {Type: schema.TypeString, Required: true},
		"b": {Type: schema.TypeString},
	})
	rec := recWith(map[string]record.FieldValue{
		"a":        {Value: "x", Confidence: 0.9, Valid: true},
		"stowaway": {Value: "y", Confidence: 0.9, Valid: true},
	})
	Apply(rec, def)

	assert.Len(t, rec.Fields, 2)
	assert.Contains(t, rec.Fields, "a")
	assert.Contains(t, rec.Fields, "b")
	assert.NotContains(t, rec.Fields, "stowaway")
}

func TestConfidencesStayInRange(t *testing.T) {
	def := defWith(map[string]schema.FieldSpec{"date": {Type: schema.TypeDate}})
	rec := recWith(map[string]record.FieldValue{
		"date": {Value: "garbage", Confidence: 1.0, Valid: true},
	})
	Apply(rec, def)
	c := rec.Fields["date"].Confidence
	assert.GreaterOrEqual(t, c, float32(0))
	assert.LessOrEqual(t, c, float32(1))
}
