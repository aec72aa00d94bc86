package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)
	require.NoError(t, Migrate(db))

	var v int
	require.NoError(t, db.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestInsertAndListSends(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	id1, err := InsertSend(ctx, db, SendRecord{
		Recipient: "a@b.c", Subject: "s1", Body: "b1",
		Link: "https://x/1", Persona: "default", Status: SendStatusSent,
	})
	require.NoError(t, err)
	assert.Positive(t, id1)

	_, err = InsertSend(ctx, db, SendRecord{
		Recipient: "d@e.f", Subject: "s2", Body: "b2",
		Link: "https://x/2", Status: SendStatusFailed, Error: "boom",
	})
	require.NoError(t, err)

	out, err := ListSends(ctx, db, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// Newest first.
	assert.Equal(t, "d@e.f", out[0].Recipient)
	assert.Equal(t, SendStatusFailed, out[0].Status)
	assert.Equal(t, "boom", out[0].Error)
	assert.False(t, out[0].Replied)
	assert.NotEmpty(t, out[0].SentAt)

	assert.Equal(t, "a@b.c", out[1].Recipient)
	assert.Equal(t, SendStatusSent, out[1].Status)

	limited, err := ListSends(ctx, db, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMarkRepliedAndSentLinks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	for _, r := range []SendRecord{
		{Recipient: "a@b.c", Subject: "s", Body: "b", Link: "https://x/1", Status: SendStatusSent},
		{Recipient: "a@b.c", Subject: "s", Body: "b", Link: "https://x/1", Status: SendStatusSent},
		{Recipient: "d@e.f", Subject: "s", Body: "b", Link: "https://x/2", Status: SendStatusSent},
		{Recipient: "g@h.i", Subject: "s", Body: "b", Link: "https://x/3", Status: SendStatusFailed},
		{Recipient: "j@k.l", Subject: "s", Body: "b", Link: "", Status: SendStatusSent},
	} {
		_, err := InsertSend(ctx, db, r)
		require.NoError(t, err)
	}

	links, err := SentLinks(ctx, db)
	require.NoError(t, err)
	// Failed sends and empty links are excluded; duplicates collapse.
	assert.ElementsMatch(t, []string{"https://x/1", "https://x/2"}, links)

	n, err := MarkReplied(ctx, db, "https://x/1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// Already-replied rows don't match twice.
	n, err = MarkReplied(ctx, db, "https://x/1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	links, err = SentLinks(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x/2"}, links)
}

func TestCleanupOldSends(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	_, err := InsertSend(ctx, db, SendRecord{
		Recipient: "old@b.c", Subject: "s", Body: "b",
		SentAt: "2020-01-01T00:00:00Z", Status: SendStatusSent,
	})
	require.NoError(t, err)
	_, err = InsertSend(ctx, db, SendRecord{
		Recipient: "new@b.c", Subject: "s", Body: "b", Status: SendStatusSent,
	})
	require.NoError(t, err)

	n, err := CleanupOldSends(db)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	out, err := ListSends(ctx, db, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "new@b.c", out[0].Recipient)
}
