package models

import "time"

// VariantState is the quote variant state machine. It is a plain value so it
// serializes into a session unchanged; concurrency control belongs to the
// caller holding the session.
type VariantState struct {
	Variants      []QuoteVariant `json:"variants"`
	SelectedIndex int            `json:"selected_index"`
}

// Populated reports whether any variants have been received.
func (s *VariantState) Populated() bool {
	return len(s.Variants) > 0
}

// Receive replaces the variant list. A non-empty list always resets the
// selection to the first variant.
func (s *VariantState) Receive(variants []QuoteVariant) {
	s.Variants = variants
	s.SelectedIndex = 0
}

// Select moves the selection. An index outside the valid range is a no-op
// and returns false.
func (s *VariantState) Select(index int) bool {
	if index < 0 || index >= len(s.Variants) {
		return false
	}
	s.SelectedIndex = index
	return true
}

// Selected returns the currently selected variant, if any.
func (s *VariantState) Selected() (QuoteVariant, bool) {
	if !s.Populated() {
		return QuoteVariant{}, false
	}
	return s.Variants[s.SelectedIndex], true
}

// QuoteSession is one submitted quote with its variant state, persisted for
// the session TTL so the selection survives across requests.
type QuoteSession struct {
	ID        string       `json:"id"`
	Request   QuoteRequest `json:"request"`
	State     VariantState `json:"state"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
