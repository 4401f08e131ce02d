package stylist

import "strings"

type FormalityLevel int

const (
	FormalityUnknown FormalityLevel = iota
	FormalityAthletic
	FormalityCasual
	FormalitySmartCasual
	FormalitySemiFormal
	FormalityFormal
	FormalityEvening
)

// keys are lower-cased with spaces, hyphens and underscores removed
var formalityLevels = map[string]FormalityLevel{
	"athletic":       FormalityAthletic,
	"sporty":         FormalityAthletic,
	"activewear":     FormalityAthletic,
	"casual":         FormalityCasual,
	"informal":       FormalityCasual,
	"smartcasual":    FormalitySmartCasual,
	"businesscasual": FormalitySmartCasual,
	"semiformal":     FormalitySemiFormal,
	"business":       FormalitySemiFormal,
	"formal":         FormalityFormal,
	"veryformal":     FormalityEvening,
	"blacktie":       FormalityEvening,
	"whitetie":       FormalityEvening,
	"evening":        FormalityEvening,
}

func ParseFormality(label string) FormalityLevel {
	key := strings.NewReplacer(" ", "", "-", "", "_", "").Replace(strings.ToLower(label))
	return formalityLevels[key]
}

// FormalityCompatible reports whether an item labelled a can stand in for b.
// Besides exact levels only formal/semi-formal and casual/smart casual are near-matches.
func FormalityCompatible(a, b string) bool {
	la, lb := ParseFormality(a), ParseFormality(b)
	if la == FormalityUnknown || lb == FormalityUnknown {
		return false
	}
	if la == lb {
		return true
	}
	pair := func(x, y FormalityLevel) bool {
		return (la == x && lb == y) || (la == y && lb == x)
	}
	return pair(FormalityFormal, FormalitySemiFormal) || pair(FormalityCasual, FormalitySmartCasual)
}

func (l FormalityLevel) dressy() bool {
	return l >= FormalityFormal
}

func (l FormalityLevel) relaxed() bool {
	return l == FormalityAthletic || l == FormalityCasual
}
