package resolver

import (
	"context"
	"fmt"
	"strings"

	"ai-support-be/internal/entity"

	"github.com/google/uuid"
)

const (
	maxSuggestedGovernorates = 10
	historyLookback          = 3
	minGovernorateRunes      = 3
)

// Shipping intent keywords, stored raw and compared after normalization.
var shippingKeywords = []string{
	"شحن", "الشحن", "مصاريف الشحن", "بكام الشحن",
	"توصيل", "التوصيل", "بتوصلوا", "توصلوا", "يوصل", "هيوصل", "هتوصل", "يوصلني", "وصول الطلب",
	"بتشحنوا", "تشحنوا", "مده التوصيل", "مدة التوصيل",
	"delivery", "deliver", "shipping", "ship to", "shipment",
}

var normalizedShippingKeywords = func() []string {
	out := make([]string, 0, len(shippingKeywords))
	for _, k := range shippingKeywords {
		if n := NormalizeArabic(k); n != "" {
			out = append(out, n)
		}
	}
	return out
}()

// ZoneFinder loads the shipping zones of a company.
type ZoneFinder interface {
	FindShippingZones(ctx context.Context, companyId uuid.UUID) ([]*entity.ShippingZone, error)
}

type ShippingInfo struct {
	Governorate  string
	Price        float64
	DeliveryTime string
}

// ShippingResult describes what the shipping section should say.
// IsAsking with a nil ShippingInfo and empty FoundGovernorate means the
// customer asked without naming a governorate.
type ShippingResult struct {
	IsAsking              bool
	FoundGovernorate      string
	ShippingInfo          *ShippingInfo
	AvailableGovernorates []string
}

type ShippingResolver struct {
	zones ZoneFinder
}

func NewShippingResolver(zones ZoneFinder) *ShippingResolver {
	return &ShippingResolver{zones: zones}
}

// IsAskingAboutShipping reports whether message mentions shipping or delivery.
func IsAskingAboutShipping(message string) bool {
	normalized := NormalizeArabic(message)
	if normalized == "" {
		return false
	}
	for _, k := range normalizedShippingKeywords {
		if strings.Contains(normalized, k) {
			return true
		}
	}
	return false
}

// Resolve looks for a governorate in the message (then, when the customer is asking,
// in the last few turns) and resolves its zone. A lookup failure returns (nil, err)
// and the caller drops the section.
func (r *ShippingResolver) Resolve(ctx context.Context, message string, companyId uuid.UUID, history []ConversationTurn) (*ShippingResult, error) {
	zones, err := r.zones.FindShippingZones(ctx, companyId)
	if err != nil {
		return nil, fmt.Errorf("find shipping zones: %w", err)
	}

	result := &ShippingResult{IsAsking: IsAskingAboutShipping(message)}

	match := findGovernorate(message, zones)
	if match == nil && result.IsAsking {
		for i := len(history) - 1; i >= 0 && i >= len(history)-historyLookback; i-- {
			if match = findGovernorate(history[i].Content, zones); match != nil {
				break
			}
		}
	}

	if match != nil {
		result.FoundGovernorate = match.name
		if match.zone.IsActive && match.zone.Price > 0 {
			result.ShippingInfo = &ShippingInfo{
				Governorate:  match.name,
				Price:        match.zone.Price,
				DeliveryTime: match.zone.DeliveryTime,
			}
		}
	}

	if result.IsAsking && result.ShippingInfo == nil {
		result.AvailableGovernorates = availableGovernorates(zones, maxSuggestedGovernorates)
	}
	return result, nil
}

type governorateMatch struct {
	name       string
	normalized string
	zone       *entity.ShippingZone
}

// findGovernorate returns the longest governorate spelling found in text.
// Active priced zones win over inactive ones for the same spelling length.
func findGovernorate(text string, zones []*entity.ShippingZone) *governorateMatch {
	normalized := NormalizeArabic(text)
	if normalized == "" {
		return nil
	}
	padded := " " + normalized + " "

	var best *governorateMatch
	for _, zone := range zones {
		if zone == nil {
			continue
		}
		for _, name := range zone.Governorates {
			n := NormalizeArabic(name)
			if len([]rune(n)) < minGovernorateRunes || !strings.Contains(padded, " "+n+" ") {
				continue
			}
			if best == nil || len(n) > len(best.normalized) ||
				(len(n) == len(best.normalized) && usable(zone) && !usable(best.zone)) {
				best = &governorateMatch{name: name, normalized: n, zone: zone}
			}
		}
	}
	return best
}

func usable(zone *entity.ShippingZone) bool {
	return zone.IsActive && zone.Price > 0
}

func availableGovernorates(zones []*entity.ShippingZone, limit int) []string {
	seen := make(map[string]bool)
	out := make([]string, 0, limit)
	for _, zone := range zones {
		if zone == nil || !usable(zone) || len(zone.Governorates) == 0 {
			continue
		}
		// First spelling is the display name.
		name := zone.Governorates[0]
		if key := NormalizeArabic(name); !seen[key] {
			seen[key] = true
			out = append(out, name)
		}
		if len(out) == limit {
			break
		}
	}
	return out
}
