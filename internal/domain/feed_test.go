package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedEntryKey_NewerEntriesSortFirst(t *testing.T) {
	older := FeedEntryKey(1_000, "01AAAAAAAAAAAAAAAAAAAAAAAA")
	newer := FeedEntryKey(2_000, "01AAAAAAAAAAAAAAAAAAAAAAAA")

	// Ascending string order must put the newer entry first.
	assert.Less(t, newer, older)
}

func TestFeedEntryKey_TiesBreakByFeedIDAscending(t *testing.T) {
	a := FeedEntryKey(5_000, "01AAAAAAAAAAAAAAAAAAAAAAAA")
	b := FeedEntryKey(5_000, "01BBBBBBBBBBBBBBBBBBBBBBBB")

	assert.Less(t, a, b)
}

func TestFeedEntryKey_SortOrderMatchesReverseChronology(t *testing.T) {
	keys := []string{
		FeedEntryKey(300, "01C"),
		FeedEntryKey(100, "01A"),
		FeedEntryKey(200, "01B"),
		FeedEntryKey(200, "01A"),
	}
	sort.Strings(keys)

	want := []string{
		FeedEntryKey(300, "01C"),
		FeedEntryKey(200, "01A"),
		FeedEntryKey(200, "01B"),
		FeedEntryKey(100, "01A"),
	}
	assert.Equal(t, want, keys)
}

func TestFeedEntryKey_FixedWidthTimestamp(t *testing.T) {
	// Small timestamps must be zero-padded, otherwise string order breaks.
	key := FeedEntryKey(0, "01A")
	assert.Equal(t, "9999999999999#01A", key)
}
