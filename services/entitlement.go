package services

import (
	"strings"

	"esgportal/models"
)

// Feature names gated by tier.
const FeatureDisclosureGeneration = "disclosure_generation"

// EntitlementVerdict is the outcome of an entitlement check. It is never stored.
type EntitlementVerdict struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// ParseTier normalizes a stored tier value. Anything unknown maps to "" so that
// callers fail closed.
func ParseTier(raw string) models.Tier {
	switch t := models.Tier(strings.ToLower(strings.TrimSpace(raw))); t {
	case models.TierFree, models.TierPro, models.TierEnterprise:
		return t
	default:
		return ""
	}
}

// CheckDisclosureEntitlement decides whether tier may generate disclosures.
//
// Pages call it to avoid showing controls that would be refused; the
// generation endpoint calls it again before doing any work, and only that call
// is enforcing.
func CheckDisclosureEntitlement(tier models.Tier) EntitlementVerdict {
	switch tier {
	case models.TierPro, models.TierEnterprise:
		return EntitlementVerdict{Allowed: true, Reason: "included in " + string(tier) + " plan"}
	case models.TierFree:
		return EntitlementVerdict{Allowed: false, Reason: "disclosure generation requires a pro or enterprise plan"}
	default:
		return EntitlementVerdict{Allowed: false, Reason: "unknown subscription tier"}
	}
}

// IsValidPriceType reports whether p is a plan that can be checked out.
func IsValidPriceType(p models.PriceType) bool {
	return p == models.PricePerReport || p == models.PriceAnnual
}

// TierForPrice is the tier granted once a checkout for p completes.
// Both plans unlock generation; per_report is billed once instead of yearly.
func TierForPrice(p models.PriceType) models.Tier {
	if IsValidPriceType(p) {
		return models.TierPro
	}
	return models.TierFree
}
