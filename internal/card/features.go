package card

import "strings"

// Feature labels returned by ExtractFeatures.
const (
	FeatureFirstEdition = "1st Edition"
	FeatureShadowless   = "Shadowless"
	FeatureStamped      = "Stamped"
	FeatureStaff        = "Staff"
	FeaturePrerelease   = "Pre-release"
)

// Set name fragments of event sets whose cards carry a stamp.
var stampedSetKeywords = []string{
	"league",
	"championship",
	"worlds",
	"regional",
	"city championship",
	"state championship",
}

// Card name fragments that mark a stamped card.
var stampedNameKeywords = []string{"staff", "prerelease"}

// Card name fragments that mark a stamped promo.
var stampedPromoNameKeywords = []string{"league", "championship", "worlds"}

// featureSet keeps labels in insertion order and skips duplicates.
type featureSet []string

func (fs *featureSet) add(label string) {
	if !fs.has(label) {
		*fs = append(*fs, label)
	}
}

func (fs featureSet) has(label string) bool {
	for _, l := range fs {
		if l == label {
			return true
		}
	}
	return false
}

// ExtractFeatures derives special print characteristics from a card's API
// record and its price category. Every rule is evaluated; labels come back
// in rule order without duplicates. The result is never nil.
func ExtractFeatures(raw Raw, priceCategory string) []string {
	features := featureSet{}

	category := strings.ToLower(priceCategory)
	setName := strings.ToLower(raw.Set.Name)
	name := strings.ToLower(raw.Name)

	if strings.Contains(category, "1st") {
		features.add(FeatureFirstEdition)
	}

	if strings.Contains(setName, "base") && strings.Contains(category, "shadowless") {
		features.add(FeatureShadowless)
	}

	if containsAny(setName, stampedSetKeywords) ||
		containsAny(name, stampedNameKeywords) ||
		(name == "wynaut" && strings.Contains(setName, "legend maker")) {
		features.add(FeatureStamped)
	}

	if strings.Contains(setName, "promo") {
		if strings.Contains(name, "staff") {
			features.add(FeatureStaff)
		} else if strings.Contains(name, "prerelease") {
			features.add(FeaturePrerelease)
		}
		if !features.has(FeatureStamped) && containsAny(name, stampedPromoNameKeywords) {
			features.add(FeatureStamped)
		}
	}

	return []string(features)
}

// MergeCharacteristics appends extra labels to base, skipping any label
// already present (case-insensitive). base is not modified.
func MergeCharacteristics(base []string, extra ...string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, c := range list {
			key := strings.ToLower(strings.TrimSpace(c))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, strings.TrimSpace(c))
		}
	}
	return out
}
