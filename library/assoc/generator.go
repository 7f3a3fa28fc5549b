package assoc

import (
	"context"
	"strings"
)

// ResponseCount is the number of cues in one round and of responses returned.
const ResponseCount = 26

// Request is one round of generation.
type Request struct {
	// Cues are the raw cue words, in order.
	Cues []string
	// Used holds every raw response word emitted in earlier rounds.
	Used []string
	// FavoriteLetter biases toward candidates starting with it; may be empty.
	FavoriteLetter string
	// PTwoHop overrides DefaultPTwoHop when not nil.
	PTwoHop *float64
}

// Generator produces one round of responses.
type Generator struct {
	selector *Selector
}

// NewGenerator creates a Generator on top of selector.
func NewGenerator(selector *Selector) *Generator {
	return &Generator{selector: selector}
}

// Generate answers every cue in order and returns exactly ResponseCount words.
//
// Each response is added to the used set before the next cue is processed,
// so later cues avoid repeating earlier ones within the same call.
func (g *Generator) Generate(ctx context.Context, req Request) []string {
	used := NewUsedSet(req.Used)
	pTwoHop := DefaultPTwoHop
	if req.PTwoHop != nil {
		pTwoHop = *req.PTwoHop
	}
	favoriteLetter := strings.TrimSpace(req.FavoriteLetter)

	out := make([]string, 0, ResponseCount)
	for _, cue := range req.Cues {
		chosen := g.selector.ChooseResponse(ctx, cue, used, favoriteLetter, pTwoHop)
		out = append(out, chosen)
		used.Add(chosen)
	}

	for len(out) < ResponseCount {
		out = append(out, SentinelUnknown)
	}

	return out[:ResponseCount]
}
