package history

import (
	"testing"
	"time"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func msg(id string, ts time.Time) domain.Message {
	return domain.Message{ID: id, Text: id, Sender: domain.SenderUser, Timestamp: ts}
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestMergeSortsDescending(t *testing.T) {
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	t1, t2, t3 := base, base.Add(time.Minute), base.Add(2*time.Minute)

	got := Merge(
		[]domain.Message{msg("g1", t1), msg("g3", t3)},
		[]domain.Message{msg("c2", t2)},
	)

	if diff := cmp.Diff([]string{"g3", "c2", "g1"}, ids(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got[1].Label != "CEI Exchange" || got[1].Mode != domain.ChatCEI {
		t.Errorf("unexpected tag for cei entry: %+v", got[1])
	}
	if got[0].Label != "AI Assistant" {
		t.Errorf("unexpected label for general entry: %q", got[0].Label)
	}
}

func TestMergeUnsortedInput(t *testing.T) {
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	got := Merge(
		[]domain.Message{msg("late", base.Add(time.Hour)), msg("early", base)},
		[]domain.Message{msg("mid", base.Add(30*time.Minute))},
	)

	if diff := cmp.Diff([]string{"late", "mid", "early"}, ids(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeEmpty(t *testing.T) {
	got := Merge(nil, nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
