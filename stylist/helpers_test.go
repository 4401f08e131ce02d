package stylist

import (
	"context"
	"errors"
	"sync"
)

type scriptedReply struct {
	text string
	err  error
}

// scriptedCompleter answers with queued replies and records every prompt.
type scriptedCompleter struct {
	mu           sync.Mutex
	replies      []scriptedReply
	prompts      []string
	temperatures []float32
}

func (s *scriptedCompleter) push(text string) *scriptedCompleter {
	s.replies = append(s.replies, scriptedReply{text: text})
	return s
}

func (s *scriptedCompleter) fail(err error) *scriptedCompleter {
	s.replies = append(s.replies, scriptedReply{err: err})
	return s
}

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	s.temperatures = append(s.temperatures, temperature)
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r.text, r.err
}

func item(id string, t ItemType, color string) WardrobeItem {
	return WardrobeItem{
		ID:                  id,
		ItemType:            t,
		Color:               color,
		Material:            "cotton",
		Formality:           "casual",
		Pattern:             "solid",
		SubType:             string(t),
		SuitableForWeather:  []string{"all weather"},
		SuitableForOccasion: []string{"all occasions"},
	}
}

func sampleWardrobe() []WardrobeItem {
	return []WardrobeItem{
		item("a", Top, "white"),
		item("b", Bottom, "navy"),
		item("c", Shoes, "black"),
		item("d", Shoes, "brown"),
		item("e", Outerwear, "grey"),
		item("f", Accessory, "black"),
	}
}
