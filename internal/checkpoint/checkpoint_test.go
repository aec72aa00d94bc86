package checkpoint

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir())
}

func TestLinksRoundTrip(t *testing.T) {
	s := testStore(t)

	ls := []domain.Listing{
		{City: "newyork", Title: "Video Editor", Link: "https://x/1", PostDate: "2024-03-01", Processed: false},
		{City: "chicago", Title: "Title, with commas \"and quotes\"", Link: "https://x/2", PostDate: "Mar 1", Processed: true},
	}
	require.NoError(t, s.SaveLinks(ls))

	got, err := s.LoadLinks()
	require.NoError(t, err)
	assert.Equal(t, ls, got)
}

func TestLoadLinksMissingFile(t *testing.T) {
	s := testStore(t)
	got, err := s.LoadLinks()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResultsRoundTrip(t *testing.T) {
	s := testStore(t)

	rs := []domain.Enriched{
		{
			Listing:     domain.Listing{City: "newyork", Title: "Editor", Link: "https://x/1", PostDate: "2024-03-01", Processed: true},
			Description: "Cut videos.\nMultiline description.",
			Remote:      domain.RemoteYes,
			Email:       "a@b.c",
			DefaultMail: "mailto:a@b.c",
			Gmail:       "https://mail.google.com/x",
		},
		{
			Listing:     domain.Listing{City: "chicago", Title: "Designer", Link: "https://x/2"},
			Description: domain.DescriptionMissing,
			Remote:      domain.RemoteUnknown,
			Email:       domain.EmailUnavailable,
		},
	}
	require.NoError(t, s.SaveResults(rs))

	got, err := s.LoadResults()
	require.NoError(t, err)
	assert.Equal(t, rs, got)
	assert.True(t, s.HasResults())
}

func TestSaveLinksReplacesPrevious(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.SaveLinks([]domain.Listing{{Title: "old", Link: "o"}}))
	require.NoError(t, s.SaveLinks([]domain.Listing{{Title: "new", Link: "n"}}))

	got, err := s.LoadLinks()
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Title)
}

func TestClearWorkingKeepsHistory(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.SaveLinks([]domain.Listing{{Title: "a", Link: "l"}}))
	require.NoError(t, s.SaveResults([]domain.Enriched{{Listing: domain.Listing{Title: "a", Link: "l"}}}))
	_, err := s.AppendHistory([]domain.Listing{{Link: "l", City: "c", Title: "a"}}, time.Now())
	require.NoError(t, err)

	require.NoError(t, s.ClearWorking())

	assert.False(t, s.HasResults())
	_, err = os.Stat(s.LinksPath)
	assert.True(t, os.IsNotExist(err))

	hs, err := s.LoadHistory()
	require.NoError(t, err)
	assert.Len(t, hs, 1)

	// Clearing an already clean dir is fine.
	require.NoError(t, s.ClearWorking())
}

func TestRemoveResultsKeepsLinks(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.SaveLinks([]domain.Listing{{Title: "a", Link: "l"}}))
	require.NoError(t, s.SaveResults([]domain.Enriched{{Listing: domain.Listing{Title: "a", Link: "l"}}}))

	require.NoError(t, s.RemoveResults())
	assert.False(t, s.HasResults())

	got, err := s.LoadLinks()
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAppendHistoryDedupesLinks(t *testing.T) {
	s := testStore(t)
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	n, err := s.AppendHistory([]domain.Listing{
		{Link: "https://x/1", City: "newyork", Title: "Editor"},
		{Link: "https://x/2", City: "newyork", Title: "Designer"},
		{Link: "https://x/1", City: "newyork", Title: "Editor again"},
		{Link: ""},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// A second append with the same links adds nothing.
	n, err = s.AppendHistory([]domain.Listing{
		{Link: "https://x/2", City: "chicago", Title: "Designer"},
		{Link: "https://x/3", City: "chicago", Title: "Animator"},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hs, err := s.LoadHistory()
	require.NoError(t, err)
	require.Len(t, hs, 3)
	assert.Equal(t, "https://x/1", hs[0].Link)
	assert.Equal(t, "2024-03-01 12:30:00", hs[0].DateScraped)

	links, err := s.HistoryLinks()
	require.NoError(t, err)
	assert.True(t, links["https://x/3"])
	assert.False(t, links["https://x/9"])
}

func TestEnsureHistoryIdempotent(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.EnsureHistory())
	_, err := s.AppendHistory([]domain.Listing{{Link: "l", City: "c", Title: "t"}}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.EnsureHistory())

	hs, err := s.LoadHistory()
	require.NoError(t, err)
	assert.Len(t, hs, 1)
}
