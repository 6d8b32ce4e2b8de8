package drafts

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/Raay/internal/builder"
)

func sampleSnapshot(t *testing.T) builder.Snapshot {
	t.Helper()
	s := builder.NewSession("draft", builder.WithLocale(builder.LocaleArabic))
	_, err := s.AddQuestion(builder.TypeMultiChoice)
	require.NoError(t, err)
	_, err = s.AddQuestion(builder.TypeNPS)
	require.NoError(t, err)
	require.NoError(t, s.DeleteQuestion(1))
	s.SetTitle(builder.L("Draft", "مسودة"))
	return s.Snapshot()
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Hour)
	snap := sampleSnapshot(t)

	_, ok, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "s1", snap))
	got, ok, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []int{2}, got.IDs)
	assert.Equal(t, 2, got.LastID)

	require.NoError(t, m.Delete(ctx, "s1"))
	_, ok, _ = m.Get(ctx, "s1")
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	require.NoError(t, m.Set(ctx, "s1", sampleSnapshot(t)))

	now = now.Add(59 * time.Second)
	_, ok, _ := m.Get(ctx, "s1")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "s1")
	assert.False(t, ok)
}

func TestDraftKey(t *testing.T) {
	assert.Equal(t, "builder:draft:abc", draftKey("abc"))
}

// Runs against a real server when RAAY_TEST_REDIS_ADDR is set.
func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("RAAY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("RAAY_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())

	store := NewRedisStore(client, time.Minute)
	snap := sampleSnapshot(t)
	require.NoError(t, store.Set(ctx, "test-session", snap))
	t.Cleanup(func() { _ = store.Delete(ctx, "test-session") })

	got, ok, err := store.Get(ctx, "test-session")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.IDs, got.IDs)
	assert.Equal(t, snap.Envelope.Title, got.Envelope.Title)

	ttl, err := client.TTL(ctx, draftKey("test-session")).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	_, err = builder.Restore("test-session", got)
	require.NoError(t, err)
}
