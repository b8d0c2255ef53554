package chatbot

import (
	"strings"
	"sync"
	"unicode"

	"github.com/folio-labs/folio-go/internal/domain"
)

const (
	MaxMessageLen  = 500
	IntentFallback = "fallback"
)

type Reply struct {
	Intent      string   `json:"intent"`
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions"`
	Matched     bool     `json:"matched"`
}

// Bot answers messages from the current knowledge table. The table can be
// swapped at any time with Replace.
type Bot struct {
	mu sync.RWMutex
	kb *Knowledge
}

func NewBot(kb *Knowledge) *Bot {
	return &Bot{kb: kb}
}

func (b *Bot) Replace(kb *Knowledge) {
	if kb == nil {
		return
	}
	b.mu.Lock()
	b.kb = kb
	b.mu.Unlock()
}

func (b *Bot) Knowledge() *Knowledge {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.kb
}

// Ask validates the message and returns the best matching reply.
func (b *Bot) Ask(message string) (Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{}, &domain.ValidationError{Field: "message", Code: domain.CodeRequired}
	}
	if len([]rune(message)) > MaxMessageLen {
		return Reply{}, &domain.ValidationError{Field: "message", Code: domain.CodeTooLong}
	}
	return Match(b.Knowledge(), message), nil
}

// Match scores every rule by the number of its keywords found in message.
// The highest score wins, ties go to the earlier rule, zero falls back.
func Match(kb *Knowledge, message string) Reply {
	tokens := tokenize(message)
	words := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		words[tok] = struct{}{}
	}
	text := " " + strings.Join(tokens, " ") + " "

	best, bestScore := -1, 0
	for i, rule := range kb.Rules {
		score := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(kw, " ") {
				if strings.Contains(text, " "+kw+" ") {
					score++
				}
				continue
			}
			if _, ok := words[kw]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return Reply{
			Intent:      IntentFallback,
			Response:    kb.Fallback.Response,
			Suggestions: nonNil(kb.Fallback.Suggestions),
		}
	}
	rule := kb.Rules[best]
	return Reply{
		Intent:      rule.Intent,
		Response:    rule.Response,
		Suggestions: nonNil(rule.Suggestions),
		Matched:     true,
	}
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
