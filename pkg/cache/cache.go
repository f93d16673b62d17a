// Package cache is the durable local store: liked post IDs, like counts and
// user preferences survive process restarts in a sqlite database of
// JSON-encoded blobs. A missing or corrupted entry always degrades to the
// empty default; startup never fails on bad cache data.
package cache

import (
	"errors"
	"time"

	"github.com/clipstream/clipstream-go/pkg/logger"
	jsoniter "github.com/json-iterator/go"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	keyLikedPosts  = "likes.posts"
	keyLikeCounts  = "likes.counts"
	keyPreferences = "user.preferences"
)

// Entry is one key-value row in the cache database
type Entry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte
	UpdatedAt time.Time
}

// TableName sets the sqlite table name
func (Entry) TableName() string {
	return "cache_entries"
}

// Preferences are the user-level settings shared across screens
type Preferences struct {
	Muted           bool `json:"muted"`
	AutoplayEnabled bool `json:"autoplay_enabled"`
	DataSaver       bool `json:"data_saver"`
}

// DefaultPreferences returns the first-run preference values
func DefaultPreferences() Preferences {
	return Preferences{AutoplayEnabled: true}
}

// Cache wraps the sqlite-backed key-value store
type Cache struct {
	db *gorm.DB
}

// Open opens (creating if needed) the cache database at path
func Open(path string) (*Cache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database
func (c *Cache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// get loads and decodes one entry. Returns false for a missing key or an
// undecodable value; corruption is logged and treated as absent.
func (c *Cache) get(key string, out interface{}) bool {
	var entry Entry
	err := c.db.First(&entry, "key = ?", key).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(entry.Value, out); err != nil {
		logger.Warn("Corrupted cache entry, using defaults", "key", key, "error", err)
		return false
	}

	return true
}

// put encodes and upserts one entry
func (c *Cache) put(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := Entry{Key: key, Value: data, UpdatedAt: time.Now()}
	return c.db.Save(&entry).Error
}

// LikedPostIDs returns the persisted liked-post-ID set, empty on first run
// or corruption
func (c *Cache) LikedPostIDs() []string {
	var ids []string
	if !c.get(keyLikedPosts, &ids) {
		return []string{}
	}
	return ids
}

// SaveLikedPostIDs persists the liked-post-ID set
func (c *Cache) SaveLikedPostIDs(ids []string) error {
	return c.put(keyLikedPosts, ids)
}

// LikeCounts returns the persisted per-post like counts, empty on first run
// or corruption
func (c *Cache) LikeCounts() map[string]uint64 {
	counts := make(map[string]uint64)
	if !c.get(keyLikeCounts, &counts) {
		return map[string]uint64{}
	}
	return counts
}

// SaveLikeCounts persists the per-post like counts
func (c *Cache) SaveLikeCounts(counts map[string]uint64) error {
	return c.put(keyLikeCounts, counts)
}

// Preferences returns the persisted user preferences, defaults on first run
// or corruption
func (c *Cache) Preferences() Preferences {
	prefs := DefaultPreferences()
	if !c.get(keyPreferences, &prefs) {
		return DefaultPreferences()
	}
	return prefs
}

// SavePreferences persists the user preferences
func (c *Cache) SavePreferences(prefs Preferences) error {
	return c.put(keyPreferences, prefs)
}

// Clear removes every cache entry (logout)
func (c *Cache) Clear() error {
	return c.db.Where("1 = 1").Delete(&Entry{}).Error
}
