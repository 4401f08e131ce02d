package stylist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
)

// Completer is a single-shot text completion backend.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

var ErrCompletionUnavailable = errors.New("completion service unavailable")

const (
	DefaultGenerationTimeout     = 60 * time.Second
	DefaultClassificationTimeout = 10 * time.Second
)

type Config struct {
	MinFilteredItems  int
	MaxColors         int
	MaxPatterns       int
	GenerationTimeout time.Duration
	// capped at GenerationTimeout; on expiry the classifier falls back to keywords
	ClassificationTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinFilteredItems:      MinFilteredItems,
		MaxColors:             MaxColors,
		MaxPatterns:           MaxPatterns,
		GenerationTimeout:     DefaultGenerationTimeout,
		ClassificationTimeout: DefaultClassificationTimeout,
	}
}

// Observer receives pipeline outcomes, metrics hook in here.
type Observer interface {
	OutfitGenerated(ctx context.Context, occasion Occasion, outcome string)
}

const (
	OutcomeValid       = "valid"
	OutcomeRepaired    = "repaired"
	OutcomeRetried     = "retried"
	OutcomeInvalid     = "invalid"
	OutcomeParseFailed = "parse_failed"
	OutcomeTimeout     = "timeout"
	OutcomeUpstream    = "upstream_error"
)

// Stylist turns a free-text request into a validated outfit. It holds only
// read-only state and is safe for concurrent use.
type Stylist struct {
	completer  Completer
	classifier *OccasionClassifier
	rules      *RuleTable
	filter     *WardrobeFilter
	prompts    *PromptBuilder
	validator  *OutfitValidator
	timeout    time.Duration
	classify   time.Duration
	observer   Observer
}

type Option func(*Stylist)

func WithObserver(o Observer) Option {
	return func(s *Stylist) { s.observer = o }
}

func WithClassifier(c *OccasionClassifier) Option {
	return func(s *Stylist) { s.classifier = c }
}

func New(completer Completer, rules *RuleTable, cfg Config, opts ...Option) *Stylist {
	if rules == nil {
		rules = DefaultRuleTable()
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = DefaultGenerationTimeout
	}
	if cfg.ClassificationTimeout <= 0 {
		cfg.ClassificationTimeout = DefaultClassificationTimeout
	}
	if cfg.ClassificationTimeout > cfg.GenerationTimeout {
		cfg.ClassificationTimeout = cfg.GenerationTimeout
	}
	if cfg.MaxColors <= 0 {
		cfg.MaxColors = MaxColors
	}
	if cfg.MaxPatterns <= 0 {
		cfg.MaxPatterns = MaxPatterns
	}
	s := &Stylist{
		completer:  completer,
		classifier: NewOccasionClassifier(completer),
		rules:      rules,
		filter:     NewWardrobeFilter(rules, cfg.MinFilteredItems),
		prompts:    NewPromptBuilder(rules, cfg.MaxColors, cfg.MaxPatterns),
		validator:  NewOutfitValidator(rules, cfg.MaxColors, cfg.MaxPatterns),
		timeout:    cfg.GenerationTimeout,
		classify:   cfg.ClassificationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Stylist) Rules() *RuleTable {
	return s.rules
}

func (s *Stylist) Classifier() *OccasionClassifier {
	return s.classifier
}

func (s *Stylist) Validator() *OutfitValidator {
	return s.validator
}

type Request struct {
	Message     string
	Weather     WeatherSnapshot
	Wardrobe    []WardrobeItem
	Preferences *Preferences
}

type generationState int

const (
	stateGenerated generationState = iota
	stateRetryPending
	stateValidated
)

func (s *Stylist) complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.completer.Complete(ctx, prompt, temperature)
}

func (s *Stylist) observe(ctx context.Context, o Occasion, outcome string) {
	if s.observer != nil {
		s.observer.OutfitGenerated(ctx, o, outcome)
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// GenerateOutfit always returns a well-formed candidate. The error is non-nil
// only when the completion backend failed outright on the first attempt, and
// then wraps ErrCompletionUnavailable.
func (s *Stylist) GenerateOutfit(ctx context.Context, req Request) (*OutfitCandidate, error) {
	logger := zerolog.Ctx(ctx)

	classifyCtx, cancel := context.WithTimeout(ctx, s.classify)
	occasion := s.classifier.Classify(classifyCtx, req.Message)
	cancel()
	temperature := s.rules.Temperature(occasion)
	wardrobe := s.filter.Filter(req.Wardrobe, req.Weather, occasion)
	logger.Info().
		Str("occasion", string(occasion)).
		Int("wardrobe", len(req.Wardrobe)).
		Int("filtered", len(wardrobe)).
		Msg("generating outfit")

	in := PromptInput{
		Message:     req.Message,
		Occasion:    occasion,
		Weather:     req.Weather,
		Wardrobe:    wardrobe,
		Preferences: req.Preferences,
	}

	raw, err := s.complete(ctx, s.prompts.Build(in), temperature)
	if err != nil {
		if isTimeout(err) {
			logger.Warn().Err(err).Msg("outfit generation timed out")
			s.observe(ctx, occasion, OutcomeTimeout)
			failed := FailedCandidate(occasion, ErrorGenerationDescription, "The stylist took too long to answer.")
			return &failed, nil
		}
		logger.Error().Err(err).Msg("outfit generation failed")
		s.observe(ctx, occasion, OutcomeUpstream)
		failed := FailedCandidate(occasion, ErrorGenerationDescription, "The stylist is unavailable right now.")
		return &failed, fmt.Errorf("%w: %v", ErrCompletionUnavailable, err)
	}

	candidate, err := Extract(raw)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			logger.Warn().Err(err).Str("raw", perr.Raw).Msg("could not parse outfit response")
		}
		s.observe(ctx, occasion, OutcomeParseFailed)
		failed := FailedCandidate(occasion, FailedGenerationDescription, "Could not read the stylist's answer.")
		return &failed, nil
	}
	candidate.Occasion = occasion

	var (
		state  = stateGenerated
		result CompositionResult
	)
	for state != stateValidated {
		switch state {
		case stateGenerated:
			candidate, result = s.validator.Validate(candidate, wardrobe, occasion)
			if !result.OK && result.Critical {
				state = stateRetryPending
				continue
			}
			state = stateValidated
			switch {
			case !result.OK:
				s.observe(ctx, occasion, OutcomeInvalid)
			case len(candidate.Warnings) > 0:
				s.observe(ctx, occasion, OutcomeRepaired)
			default:
				s.observe(ctx, occasion, OutcomeValid)
			}
		case stateRetryPending:
			candidate = s.retry(ctx, in, candidate, result, temperature)
			state = stateValidated
		}
	}
	return &candidate, nil
}

// retry asks once more with the failure reason. The new outfit is adopted
// only when its composition passes, and inherits the first attempt's warnings.
func (s *Stylist) retry(ctx context.Context, in PromptInput, previous OutfitCandidate, failed CompositionResult, temperature float32) OutfitCandidate {
	logger := zerolog.Ctx(ctx)
	in.RetryReason = failed.Reason
	logger.Info().Str("reason", failed.Reason).Msg("retrying outfit generation")

	raw, err := s.complete(ctx, s.prompts.Build(in), temperature)
	if err != nil {
		logger.Warn().Err(err).Msg("outfit retry failed")
		s.observe(ctx, in.Occasion, OutcomeInvalid)
		return previous
	}
	next, err := Extract(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("could not parse outfit retry")
		s.observe(ctx, in.Occasion, OutcomeInvalid)
		return previous
	}
	next.Occasion = in.Occasion
	next, result := s.validator.Validate(next, in.Wardrobe, in.Occasion)
	if !result.OK {
		s.observe(ctx, in.Occasion, OutcomeInvalid)
		return previous
	}
	s.observe(ctx, in.Occasion, OutcomeRetried)
	warnings := slices.Clone(previous.Warnings)
	warnings = append(warnings, fmt.Sprintf("First suggestion was incomplete (%s), regenerated", failed.Reason))
	next.Warnings = append(warnings, next.Warnings...)
	return next
}
