// Package history builds the read-only, merged view of both chat surfaces.
package history

import (
	"slices"

	"github.com/ashureev/apsfd-portal/internal/domain"
)

// EmptyText is shown when neither surface has any message.
const EmptyText = "No conversations yet."

// Entry is a message tagged with the surface it came from.
type Entry struct {
	domain.Message
	Mode  domain.ChatMode `json:"mode"`
	Label string          `json:"label"`
}

// Merge tags, merges, and sorts the histories newest first. Inputs are not
// assumed to be sorted. Ties keep surface order (general before cei) and
// insertion order.
func Merge(general, cei []domain.Message) []Entry {
	entries := make([]Entry, 0, len(general)+len(cei))
	entries = appendTagged(entries, domain.ChatGeneral, general)
	entries = appendTagged(entries, domain.ChatCEI, cei)

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return entries
}

func appendTagged(dst []Entry, mode domain.ChatMode, msgs []domain.Message) []Entry {
	for _, m := range msgs {
		dst = append(dst, Entry{Message: m, Mode: mode, Label: mode.Label()})
	}
	return dst
}
