package domain

import (
	"testing"
	"time"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "elonmusk", expected: "elonmusk"},
		{name: "leading at", input: "@elonmusk", expected: "elonmusk"},
		{name: "uppercase", input: "ElonMusk", expected: "elonmusk"},
		{name: "whitespace", input: "  @Sama \n", expected: "sama"},
		{name: "empty", input: "", expected: ""},
		{name: "bare at", input: "@", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeHandle(tt.input); got != tt.expected {
				t.Errorf("NormalizeHandle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEngagementScore(t *testing.T) {
	tw := Tweet{Likes: 10, Retweets: 5, Replies: 2}
	// 10 + 5*2 + 2*3 = 26
	if got := tw.EngagementScore(); got != 26 {
		t.Errorf("EngagementScore() = %d, want 26", got)
	}
}

func TestSortTweetsDesc(t *testing.T) {
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	tweets := []Tweet{
		{ID: "1", CreatedAt: base},
		{ID: "3", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "2", CreatedAt: base.Add(time.Hour)},
	}

	SortTweetsDesc(tweets)

	want := []string{"3", "2", "1"}
	for i, id := range want {
		if tweets[i].ID != id {
			t.Fatalf("position %d: got id %s, want %s", i, tweets[i].ID, id)
		}
	}
}

func TestSortTweetsDesc_StableOnEqualTimes(t *testing.T) {
	at := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	tweets := []Tweet{
		{ID: "a", CreatedAt: at},
		{ID: "b", CreatedAt: at},
	}

	SortTweetsDesc(tweets)

	if tweets[0].ID != "b" || tweets[1].ID != "a" {
		t.Errorf("equal-time tiebreak: got [%s %s], want [b a]", tweets[0].ID, tweets[1].ID)
	}
}

func TestResolved(t *testing.T) {
	var a Account
	if a.Resolved() {
		t.Error("account without UserID should not be resolved")
	}

	empty := ""
	a.UserID = &empty
	if a.Resolved() {
		t.Error("account with empty UserID should not be resolved")
	}

	id := "12345"
	a.UserID = &id
	if !a.Resolved() {
		t.Error("account with UserID should be resolved")
	}
}

func TestCanonicalURL(t *testing.T) {
	got := CanonicalURL("sama", "987")
	want := "https://x.com/sama/status/987"
	if got != want {
		t.Errorf("CanonicalURL = %q, want %q", got, want)
	}
}
