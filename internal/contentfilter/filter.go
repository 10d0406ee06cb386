// Package contentfilter validates and masks user-submitted post text.
package contentfilter

import (
	"strings"
	"unicode/utf8"
)

// MaxLength is the maximum post length in characters after trimming.
const MaxLength = 1000

// Rejection reasons surfaced to callers.
const (
	ReasonEmpty   = "empty content"
	ReasonTooLong = "too long"
)

// Result is the outcome of Validate. Text is only meaningful when OK is true.
type Result struct {
	OK     bool
	Text   string
	Reason string
}

// Filter masks configured phrases in submitted text.
type Filter struct {
	phrases []string
}

// New builds a Filter over phrases, matched literally. Empty entries are ignored.
func New(phrases []string) *Filter {
	kept := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p == "" {
			continue
		}
		kept = append(kept, p)
	}
	return &Filter{phrases: kept}
}

// Phrases returns a copy of the active phrase list.
func (f *Filter) Phrases() []string {
	return append([]string(nil), f.phrases...)
}

// Validate trims raw, enforces length bounds and masks every configured phrase
// with one '*' per character.
func (f *Filter) Validate(raw string) Result {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Result{Reason: ReasonEmpty}
	}
	if utf8.RuneCountInString(text) > MaxLength {
		return Result{Reason: ReasonTooLong}
	}
	return Result{OK: true, Text: f.Mask(text)}
}

// Mask replaces each occurrence of every phrase. Matching is case-sensitive.
func (f *Filter) Mask(text string) string {
	for _, p := range f.phrases {
		if !strings.Contains(text, p) {
			continue
		}
		text = strings.ReplaceAll(text, p, strings.Repeat("*", utf8.RuneCountInString(p)))
	}
	return text
}
