package stylist

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

type Occasion string

const (
	WhiteTieEvent           Occasion = "white tie event"
	BlackTieEvent           Occasion = "black tie event"
	VeryFormalOccasion      Occasion = "very formal occasion"
	JobInterview            Occasion = "job interview"
	Wedding                 Occasion = "wedding"
	GeneralFormalOccasion   Occasion = "general formal occasion"
	Work                    Occasion = "work"
	DinnerParty             Occasion = "dinner party"
	DateNight               Occasion = "date night"
	Party                   Occasion = "party"
	CasualOuting            Occasion = "casual outing"
	GeneralInformalOccasion Occasion = "general informal occasion"
	Gym                     Occasion = "gym"
	AllOccasions            Occasion = "all occasions"
)

// Vocabulary is the closed set of occasions, AllOccasions is the catch-all.
var Vocabulary = []Occasion{
	WhiteTieEvent,
	BlackTieEvent,
	VeryFormalOccasion,
	JobInterview,
	Wedding,
	GeneralFormalOccasion,
	Work,
	DinnerParty,
	DateNight,
	Party,
	CasualOuting,
	GeneralInformalOccasion,
	Gym,
	AllOccasions,
}

func ParseOccasion(s string) (Occasion, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, o := range Vocabulary {
		if string(o) == s {
			return o, true
		}
	}
	return "", false
}

// synonym phrases, matched as whole words after the vocabulary itself
var occasionSynonyms = map[string]Occasion{
	"very formal": VeryFormalOccasion,
	"black tie":   BlackTieEvent,
	"black-tie":   BlackTieEvent,
	"white tie":   WhiteTieEvent,
	"white-tie":   WhiteTieEvent,
	"interview":   JobInterview,
	"dinner":      DinnerParty,
	"office":      Work,
	"gym":         Gym,
	"workout":     Gym,
	"casual":      CasualOuting,
	"date":        DateNight,
	"party":       Party,
	"formal":      GeneralFormalOccasion,
	"informal":    GeneralInformalOccasion,
}

type phraseMatcher struct {
	re       *regexp.Regexp
	occasion Occasion
}

var vocabularyMatchers, synonymMatchers = buildMatchers()

func longestFirst(phrases []string) {
	sort.SliceStable(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})
}

func buildMatchers() ([]phraseMatcher, []phraseMatcher) {
	compile := func(phrase string) *regexp.Regexp {
		return regexp.MustCompile(`\b` + regexp.QuoteMeta(phrase) + `\b`)
	}

	vocab := make([]string, 0, len(Vocabulary))
	for _, o := range Vocabulary {
		vocab = append(vocab, string(o))
	}
	longestFirst(vocab)
	var vm []phraseMatcher
	for _, p := range vocab {
		vm = append(vm, phraseMatcher{re: compile(p), occasion: Occasion(p)})
	}

	syn := make([]string, 0, len(occasionSynonyms))
	for p := range occasionSynonyms {
		syn = append(syn, p)
	}
	longestFirst(syn)
	var sm []phraseMatcher
	for _, p := range syn {
		sm = append(sm, phraseMatcher{re: compile(p), occasion: occasionSynonyms[p]})
	}
	return vm, sm
}

// ResolveOccasion is the deterministic fallback: the longest vocabulary phrase
// found in the message, then the synonym table, then AllOccasions.
func ResolveOccasion(message string) Occasion {
	text := strings.ToLower(message)
	for _, m := range vocabularyMatchers {
		if m.re.MatchString(text) {
			return m.occasion
		}
	}
	for _, m := range synonymMatchers {
		if m.re.MatchString(text) {
			return m.occasion
		}
	}
	return AllOccasions
}

const classifierTemperature = 0.3

type OccasionClassifier struct {
	completer Completer
}

func NewOccasionClassifier(completer Completer) *OccasionClassifier {
	return &OccasionClassifier{completer: completer}
}

func vocabularyList() string {
	names := make([]string, len(Vocabulary))
	for i, o := range Vocabulary {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}

func classifierPrompt(message string) string {
	return fmt.Sprintf(`Classify the occasion the user is dressing for.
Answer with exactly one value from this list and nothing else: %s.
If no specific occasion is mentioned, answer "all occasions".

User message: %s
Occasion:`, vocabularyList(), strings.TrimSpace(message))
}

// Classify never fails: any completion error or off-vocabulary answer falls
// back to ResolveOccasion.
func (c *OccasionClassifier) Classify(ctx context.Context, message string) Occasion {
	logger := zerolog.Ctx(ctx)
	if c == nil || c.completer == nil {
		return ResolveOccasion(message)
	}

	answer, err := c.completer.Complete(ctx, classifierPrompt(message), classifierTemperature)
	if err != nil {
		logger.Warn().Err(err).Msg("occasion classification failed, using keyword fallback")
		return ResolveOccasion(message)
	}
	cleaned := strings.Trim(strings.TrimSpace(answer), "\"'`.")
	if o, ok := ParseOccasion(cleaned); ok {
		return o
	}
	logger.Warn().Str("answer", answer).Msg("occasion outside vocabulary, using keyword fallback")
	return ResolveOccasion(message)
}
