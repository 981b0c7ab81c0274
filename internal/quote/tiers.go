package quote

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

// Tier is the customer facing label of a price slot.
type Tier string

const (
	TierEssential Tier = "Essential"
	TierComfort   Tier = "Comfort"
	TierPremium   Tier = "Premium"
)

// Slot names as the model returns them.
const (
	SlotBudget   = "Budget"
	SlotBalanced = "Balanced"
	SlotPremium  = "Premium"
)

var (
	ErrIncompleteDocument = errors.New("recommendation document is incomplete")
	ErrMalformedDocument  = errors.New("recommendation document is malformed")
	ErrUnknownTier        = errors.New("unknown tier")
)

var slotOrder = [...]string{SlotBudget, SlotBalanced, SlotPremium}

var tierBySlot = map[string]Tier{
	SlotBudget:   TierEssential,
	SlotBalanced: TierComfort,
	SlotPremium:  TierPremium,
}

// Document is a model response keyed by top level field.
type Document map[string]json.RawMessage

// ParseDocument разбирает JSON объект ответа модели.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(ErrMalformedDocument, "quote: decode document: %v", err)
	}
	if doc == nil {
		return nil, eris.Wrap(ErrMalformedDocument, "quote: document is not an object")
	}
	return doc, nil
}

// Bytes кодирует документ обратно в JSON.
func (d Document) Bytes() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, eris.Wrap(err, "quote: encode document")
	}
	return data, nil
}

// Complete reports whether all three price slots are present.
func (d Document) Complete() bool {
	for _, slot := range slotOrder {
		if isNull(d[slot]) {
			return false
		}
	}
	return true
}

// Normalize orders the three slots by price so that the cheapest offer sits in
// Budget and the most expensive in Premium. Documents without all three slots
// are returned as is with ok=false. The input is never modified.
func Normalize(doc Document) (Document, bool) {
	if !doc.Complete() {
		return doc, false
	}

	type ranked struct {
		offer json.RawMessage
		price float64
	}

	offers := make([]ranked, 0, len(slotOrder))
	for _, slot := range slotOrder {
		offers = append(offers, ranked{offer: doc[slot], price: OfferPrice(doc[slot])})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].price < offers[j].price
	})

	out := make(Document, len(doc))
	for key, value := range doc {
		out[key] = value
	}
	for i, slot := range slotOrder {
		out[slot] = offers[i].offer
	}
	return out, true
}

// OfferPrice читает цену предложения; отсутствующая или нечисловая цена дает 0.
func OfferPrice(offer []byte) float64 {
	if !gjson.ValidBytes(offer) {
		return 0
	}
	price := gjson.GetBytes(offer, "price")
	if price.Type != gjson.Number {
		return 0
	}
	return price.Float()
}

// Tiers decodes the three slots into typed offers.
func (d Document) Tiers() (TieredRecommendation, error) {
	if !d.Complete() {
		return TieredRecommendation{}, ErrIncompleteDocument
	}

	var out TieredRecommendation
	targets := map[string]*VehicleOffer{
		SlotBudget:   &out.Essential,
		SlotBalanced: &out.Comfort,
		SlotPremium:  &out.Premium,
	}
	for slot, target := range targets {
		if err := json.Unmarshal(d[slot], target); err != nil {
			return TieredRecommendation{}, eris.Wrapf(ErrMalformedDocument, "quote: decode %s offer: %v", slot, err)
		}
	}
	return out, nil
}

// TieredRecommendation holds one offer per tier.
type TieredRecommendation struct {
	Essential VehicleOffer `json:"essential"`
	Comfort   VehicleOffer `json:"comfort"`
	Premium   VehicleOffer `json:"premium"`
}

// Offer возвращает предложение выбранного уровня.
func (t TieredRecommendation) Offer(tier Tier) (VehicleOffer, error) {
	switch tier {
	case TierEssential:
		return t.Essential, nil
	case TierComfort:
		return t.Comfort, nil
	case TierPremium:
		return t.Premium, nil
	default:
		return VehicleOffer{}, ErrUnknownTier
	}
}

// Slot returns the wire slot that carries the tier.
func (t Tier) Slot() string {
	for slot, tier := range tierBySlot {
		if tier == t {
			return slot
		}
	}
	return ""
}

// ParseTier accepts both the label and the slot name, case-insensitive.
func ParseTier(value string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "essential", "budget":
		return TierEssential, nil
	case "comfort", "balanced":
		return TierComfort, nil
	case "premium":
		return TierPremium, nil
	default:
		return "", eris.Wrapf(ErrUnknownTier, "%q", value)
	}
}

// AllTiers перечисляет уровни от дешевого к дорогому.
func AllTiers() []Tier {
	return []Tier{TierEssential, TierComfort, TierPremium}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
