package quote

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scrambledDocument = `{
  "Budget": {"year": 2025, "make": "Toyota", "model": "Grand Highlander", "trim": "Limited", "price": 52000,
    "finance": {"apr_percent": 5.9, "term_months": 60}, "lease": {"term_months": 36, "estimated_monthly_payment": 690}},
  "Balanced": {"year": 2025, "make": "Toyota", "model": "Corolla", "trim": "LE", "price": 23000,
    "finance": {"apr_percent": 4.9, "term_months": 60}, "lease": {"term_months": 36, "estimated_monthly_payment": 289}},
  "Premium": {"year": 2025, "make": "Toyota", "model": "RAV4", "trim": "XLE", "price": 33000,
    "finance": {"apr_percent": 5.4, "term_months": 60}, "lease": {"term_months": 36, "estimated_monthly_payment": 399}},
  "Affordability": {"monthly_cap": 650},
  "Recommendation": {"primary": "Finance", "reason": "Stable income"}
}`

func mustParse(t *testing.T, data string) Document {
	t.Helper()
	doc, err := ParseDocument([]byte(data))
	require.NoError(t, err)
	return doc
}

func modelOf(t *testing.T, raw json.RawMessage) string {
	t.Helper()
	var offer VehicleOffer
	require.NoError(t, json.Unmarshal(raw, &offer))
	return offer.Model
}

// TestNormalizeSortsByPrice проверяет перестановку слотов по возрастанию цены.
func TestNormalizeSortsByPrice(t *testing.T) {
	doc := mustParse(t, scrambledDocument)
	original := doc[SlotBudget]

	out, ok := Normalize(doc)
	require.True(t, ok)

	assert.Equal(t, "Corolla", modelOf(t, out[SlotBudget]))
	assert.Equal(t, "RAV4", modelOf(t, out[SlotBalanced]))
	assert.Equal(t, "Grand Highlander", modelOf(t, out[SlotPremium]))
	assert.LessOrEqual(t, OfferPrice(out[SlotBudget]), OfferPrice(out[SlotBalanced]))
	assert.LessOrEqual(t, OfferPrice(out[SlotBalanced]), OfferPrice(out[SlotPremium]))

	assert.JSONEq(t, string(doc["Affordability"]), string(out["Affordability"]))
	assert.JSONEq(t, string(doc["Recommendation"]), string(out["Recommendation"]))
	assert.Equal(t, string(original), string(doc[SlotBudget]), "input must not be mutated")
}

func TestNormalizeIdempotent(t *testing.T) {
	once, ok := Normalize(mustParse(t, scrambledDocument))
	require.True(t, ok)
	twice, ok := Normalize(once)
	require.True(t, ok)
	assert.Equal(t, once, twice)
}

// TestNormalizeMissingSlot проверяет, что неполный документ возвращается без изменений.
func TestNormalizeMissingSlot(t *testing.T) {
	cases := map[string]string{
		"missing premium": `{"Budget": {"price": 3}, "Balanced": {"price": 2}}`,
		"null balanced":   `{"Budget": {"price": 3}, "Balanced": null, "Premium": {"price": 1}}`,
		"empty":           `{}`,
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			doc := mustParse(t, data)
			out, ok := Normalize(doc)
			assert.False(t, ok)
			assert.Equal(t, doc, out)
		})
	}
}

// TestNormalizeMissingPrice проверяет, что отсутствующая цена считается нулевой.
func TestNormalizeMissingPrice(t *testing.T) {
	doc := mustParse(t, `{
		"Budget": {"model": "Camry", "price": 28000},
		"Balanced": {"model": "Prius", "price": "call dealer"},
		"Premium": {"model": "Tacoma"}
	}`)

	out, ok := Normalize(doc)
	require.True(t, ok)
	assert.Equal(t, "Prius", modelOf(t, out[SlotBudget]))
	assert.Equal(t, "Tacoma", modelOf(t, out[SlotBalanced]))
	assert.Equal(t, "Camry", modelOf(t, out[SlotPremium]))
}

// TestNormalizeStableTies проверяет порядок при равных ценах.
func TestNormalizeStableTies(t *testing.T) {
	doc := mustParse(t, `{
		"Budget": {"model": "A", "price": 30000},
		"Balanced": {"model": "B", "price": 30000},
		"Premium": {"model": "C", "price": 20000}
	}`)

	out, ok := Normalize(doc)
	require.True(t, ok)
	assert.Equal(t, "C", modelOf(t, out[SlotBudget]))
	assert.Equal(t, "A", modelOf(t, out[SlotBalanced]))
	assert.Equal(t, "B", modelOf(t, out[SlotPremium]))
}

func TestDocumentTiers(t *testing.T) {
	out, ok := Normalize(mustParse(t, scrambledDocument))
	require.True(t, ok)

	tiers, err := out.Tiers()
	require.NoError(t, err)
	assert.Equal(t, "Corolla", tiers.Essential.Model)
	assert.Equal(t, "RAV4", tiers.Comfort.Model)
	assert.Equal(t, "Grand Highlander", tiers.Premium.Model)
	assert.Equal(t, 289.0, tiers.Essential.Lease.EstimatedMonthlyPayment)

	_, err = mustParse(t, `{"Budget": {"price": 1}}`).Tiers()
	require.ErrorIs(t, err, ErrIncompleteDocument)
}

func TestParseTier(t *testing.T) {
	cases := map[string]Tier{
		"Essential": TierEssential,
		"budget":    TierEssential,
		"COMFORT":   TierComfort,
		"Balanced":  TierComfort,
		" premium ": TierPremium,
	}
	for input, want := range cases {
		got, err := ParseTier(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseTier("luxury")
	require.ErrorIs(t, err, ErrUnknownTier)
}

func TestTierSlot(t *testing.T) {
	assert.Equal(t, SlotBudget, TierEssential.Slot())
	assert.Equal(t, SlotBalanced, TierComfort.Slot())
	assert.Equal(t, SlotPremium, TierPremium.Slot())
	assert.Equal(t, "", Tier("Other").Slot())
}

func TestVehicleOfferLenientPrice(t *testing.T) {
	var offer VehicleOffer
	require.NoError(t, json.Unmarshal([]byte(`{"year": 2025, "make": "Toyota", "model": "Camry", "trim": "SE", "price": "n/a"}`), &offer))
	assert.Equal(t, 0.0, offer.Price)
	assert.Equal(t, "2025 Toyota Camry SE", offer.Summary())
}

func TestParseDocumentRejectsNonObject(t *testing.T) {
	_, err := ParseDocument([]byte(`[1, 2, 3]`))
	require.ErrorIs(t, err, ErrMalformedDocument)

	_, err = ParseDocument([]byte(`null`))
	require.ErrorIs(t, err, ErrMalformedDocument)
}

// TestNormalizeAllOrders проверяет упорядочивание для всех перестановок цен.
func TestNormalizeAllOrders(t *testing.T) {
	prices := map[string]int{"L": 18000, "M": 27000, "H": 41000}
	orders := [][3]string{
		{"L", "M", "H"},
		{"L", "H", "M"},
		{"M", "L", "H"},
		{"M", "H", "L"},
		{"H", "L", "M"},
		{"H", "M", "L"},
	}

	for _, order := range orders {
		t.Run(order[0]+order[1]+order[2], func(t *testing.T) {
			doc := mustParse(t, fmt.Sprintf(`{
				"Budget": {"model": %q, "price": %d},
				"Balanced": {"model": %q, "price": %d},
				"Premium": {"model": %q, "price": %d}
			}`, order[0], prices[order[0]], order[1], prices[order[1]], order[2], prices[order[2]]))

			out, ok := Normalize(doc)
			require.True(t, ok)
			assert.Equal(t, "L", modelOf(t, out[SlotBudget]))
			assert.Equal(t, "M", modelOf(t, out[SlotBalanced]))
			assert.Equal(t, "H", modelOf(t, out[SlotPremium]))
			assert.LessOrEqual(t, OfferPrice(out[SlotBudget]), OfferPrice(out[SlotBalanced]))
			assert.LessOrEqual(t, OfferPrice(out[SlotBalanced]), OfferPrice(out[SlotPremium]))
		})
	}
}

func TestDocumentTiersMalformedOffer(t *testing.T) {
	doc := mustParse(t, `{
		"Budget": {"year": "2025", "model": "Corolla", "price": 23000},
		"Balanced": {"year": 2025, "model": "Camry", "price": 30000},
		"Premium": {"year": 2025, "model": "Highlander", "price": 45000}
	}`)

	_, err := doc.Tiers()
	require.ErrorIs(t, err, ErrMalformedDocument)
	assert.Contains(t, err.Error(), "Budget")
}
