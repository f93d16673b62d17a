package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestFirstRunReturnsEmptyDefaults(t *testing.T) {
	c := openTestCache(t)

	assert.Empty(t, c.LikedPostIDs())
	assert.Empty(t, c.LikeCounts())
	assert.Equal(t, DefaultPreferences(), c.Preferences())
}

func TestLikedPostIDsRoundTrip(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.SaveLikedPostIDs([]string{"p1", "p2"}))
	assert.ElementsMatch(t, []string{"p1", "p2"}, c.LikedPostIDs())

	// Overwrite wins
	require.NoError(t, c.SaveLikedPostIDs([]string{"p3"}))
	assert.Equal(t, []string{"p3"}, c.LikedPostIDs())
}

func TestLikeCountsRoundTrip(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.SaveLikeCounts(map[string]uint64{"p1": 3, "p2": 0}))
	assert.Equal(t, map[string]uint64{"p1": 3, "p2": 0}, c.LikeCounts())
}

func TestPreferencesRoundTrip(t *testing.T) {
	c := openTestCache(t)

	prefs := Preferences{Muted: true, AutoplayEnabled: false, DataSaver: true}
	require.NoError(t, c.SavePreferences(prefs))
	assert.Equal(t, prefs, c.Preferences())
}

func TestCorruptedEntriesFallBackToDefaults(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.SaveLikedPostIDs([]string{"p1"}))
	require.NoError(t, c.SavePreferences(Preferences{Muted: true}))

	// Corrupt every entry on disk
	for _, key := range []string{keyLikedPosts, keyLikeCounts, keyPreferences} {
		entry := Entry{Key: key, Value: []byte("{not json"), UpdatedAt: time.Now()}
		require.NoError(t, c.db.Save(&entry).Error)
	}

	assert.Empty(t, c.LikedPostIDs())
	assert.Empty(t, c.LikeCounts())
	assert.Equal(t, DefaultPreferences(), c.Preferences())
}

func TestValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	c, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c.SaveLikedPostIDs([]string{"p1"}))
	require.NoError(t, c.SaveLikeCounts(map[string]uint64{"p1": 7}))
	require.NoError(t, c.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []string{"p1"}, reopened.LikedPostIDs())
	assert.Equal(t, map[string]uint64{"p1": 7}, reopened.LikeCounts())
}

func TestClearRemovesEverything(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.SaveLikedPostIDs([]string{"p1"}))
	require.NoError(t, c.SavePreferences(Preferences{Muted: true}))

	require.NoError(t, c.Clear())

	assert.Empty(t, c.LikedPostIDs())
	assert.Equal(t, DefaultPreferences(), c.Preferences())
}
