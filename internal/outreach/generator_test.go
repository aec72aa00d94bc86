package outreach

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/domain"
)

func testGenerator(c *Client) *Generator {
	return &Generator{
		Client:   c,
		Personas: defaultPersonas(),
	}
}

func TestGenerateFallbackWhenServerDown(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "") // nothing listens here
	g := testGenerator(c)

	email, err := g.Generate(context.Background(), Request{
		Title: "Video Editor",
		Link:  "https://x/1",
	})
	require.NoError(t, err)
	assert.Contains(t, email, "Subject: Interested in Video Editor")
	assert.Contains(t, email, "Job Reference: https://x/1")
}

func TestGenerateUnknownPersona(t *testing.T) {
	g := testGenerator(NewClient("http://127.0.0.1:1", ""))
	_, err := g.Generate(context.Background(), Request{
		Title:   "x",
		Link:    "y",
		Persona: "nobody",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown persona")
}

func TestGenerateEnforcesTemplate(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3:8b"}, wellFormed)
	g := testGenerator(NewClient(srv.URL, ""))

	email, err := g.Generate(context.Background(), Request{
		Title:       "Video Editor",
		Description: "Cut videos",
		Link:        "https://x/1",
	})
	require.NoError(t, err)
	assert.Contains(t, email, "Subject:")
	assert.Contains(t, email, "Job Reference: https://x/1")
}

func TestGenerateFallbackOnGarbageOutput(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3:8b"}, "ok")
	g := testGenerator(NewClient(srv.URL, ""))

	email, err := g.Generate(context.Background(), Request{
		Title: "Video Editor",
		Link:  "https://x/1",
	})
	require.NoError(t, err)
	// Too short to keep; the simple template applies.
	assert.Contains(t, email, "Subject: Job Application")
	assert.Contains(t, email, "Job Reference: https://x/1")
}

func TestBatchGeneratesForEveryRecord(t *testing.T) {
	srv := newFakeOllama(t, []string{"llama3:8b"}, wellFormed)
	g := testGenerator(NewClient(srv.URL, ""))
	g.Parallel = 2

	recs := []domain.Enriched{
		{Listing: domain.Listing{Title: "Editor A", Link: "https://x/a"}, Email: "a@b.c"},
		{Listing: domain.Listing{Title: "Editor B", Link: "https://x/b"}, Email: "b@b.c"},
		{Listing: domain.Listing{Title: "Editor C", Link: "https://x/c"}, Email: "c@b.c"},
	}
	out, err := g.Batch(context.Background(), recs, "")
	require.NoError(t, err)
	require.Len(t, out, 3)
	for i, got := range out {
		assert.Equal(t, recs[i].Link, got.Record.Link)
		assert.True(t, strings.Contains(got.Email, "Job Reference: "+recs[i].Link))
	}
}

func TestBuildPromptMentionsEverything(t *testing.T) {
	p := buildPrompt("Abj", "Video Editor", "Cut videos daily", "https://x/1")
	assert.Contains(t, p, "You are Abj")
	assert.Contains(t, p, "TITLE: Video Editor")
	assert.Contains(t, p, "DESCRIPTION: Cut videos daily")
	assert.Contains(t, p, "Job Reference: https://x/1")
}
