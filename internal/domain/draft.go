package domain

import (
	"fmt"
	"strings"
)

// Check trims the draft's text and rejects one that must not reach the
// screener. The returned draft has a canonical Type. Errors wrap ErrInvalid.
func (d ListingDraft) Check() (ListingDraft, error) {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)

	var missing string
	switch {
	case d.Title == "":
		missing = "title"
	case d.Description == "":
		missing = "description"
	case d.Location == "":
		missing = "location"
	}
	if missing != "" {
		return ListingDraft{}, fmt.Errorf("%w: %s is required", ErrInvalid, missing)
	}
	if d.Price.IsNegative() {
		return ListingDraft{}, fmt.Errorf("%w: price must not be negative", ErrInvalid)
	}
	t, ok := ParseListingType(string(d.Type))
	if !ok {
		return ListingDraft{}, fmt.Errorf("%w: unknown listing type %q", ErrInvalid, d.Type)
	}
	d.Type = t
	return d, nil
}
