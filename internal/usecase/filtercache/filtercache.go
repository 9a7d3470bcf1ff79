// Package filtercache wraps a filter (or nested pipeline) with a
// two-level timed-LRU cache keyed on the feed's lossy normalized
// projection, so repeated requests against an unchanged upstream feed
// skip re-running expensive filters.
package filtercache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/usecase/filter"
	"feedgate/pkg/lru"
)

const (
	defaultFeedCacheSize = 5
	defaultFeedCacheTTL  = 12 * time.Hour
	defaultPostCacheSize = 40
	defaultPostCacheTTL  = time.Hour
)

// Cache wraps one Runner with the feed-cache/post-cache pair described
// by its configuration. One Cache instance serves one endpoint.
type Cache struct {
	feedCache *lru.TimedLRU[string, feed.Feed]
	postCache *lru.TimedLRU[string, feed.Post]
}

// New builds a Cache from cfg, falling back to the built-in defaults
// for any zero field.
func New(cfg config.FilterCacheConfig) *Cache {
	feedSize := cfg.FeedCacheSize
	if feedSize == 0 {
		feedSize = defaultFeedCacheSize
	}
	feedTTL := cfg.FeedCacheTTL
	if feedTTL == 0 {
		feedTTL = defaultFeedCacheTTL
	}
	postSize := cfg.PostCacheSize
	if postSize == 0 {
		postSize = defaultPostCacheSize
	}
	postTTL := cfg.PostCacheTTL
	if postTTL == 0 {
		postTTL = defaultPostCacheTTL
	}

	return &Cache{
		feedCache: lru.New[string, feed.Feed](feedSize, feedTTL),
		postCache: lru.New[string, feed.Post](postSize, postTTL),
	}
}

// feedKey hashes a feed's normalized projection to a comparable string
// key; NormalizedFeed itself isn't comparable since it carries slices.
func feedKey(f feed.Feed) string {
	return hashOf(feed.Normalize(f))
}

func postKey(p feed.Post) string {
	return hashOf(feed.NormalizePost(p))
}

func hashOf(v interface{}) string {
	// json.Marshal is a deterministic, order-preserving encoding of the
	// normalized struct's exported fields — sufficient for a cache key,
	// not meant to be a stable wire format.
	b, err := json.Marshal(v)
	if err != nil {
		// Unreachable for the plain string/int64/slice fields normalize.go
		// produces; fall back to a key that never hits rather than panic.
		return fmt.Sprintf("unhashable:%p", &v)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Run executes f (granularity) against input, consulting the feed
// cache first and, for FeedAndPost, the post cache for each post.
func (c *Cache) Run(ctx context.Context, fctx *filterctx.Context, input feed.Feed, granularity filter.Granularity, run filter.Runner) (feed.Feed, error) {
	kFeed := feedKey(input)
	if cached, ok := c.feedCache.Get(kFeed); ok {
		return cached, nil
	}

	var (
		uncached feed.Feed
		slots    []cacheSlot
	)

	if granularity == filter.FeedOnly {
		uncached = input
	} else {
		posts := input.Posts()
		slots = make([]cacheSlot, len(posts))
		uncachedPosts := make([]feed.Post, 0, len(posts))
		for i, p := range posts {
			kPost := postKey(p)
			slots[i].key = kPost
			if cachedPost, ok := c.postCache.Get(kPost); ok {
				slots[i].post = cachedPost
				slots[i].hit = true
				continue
			}
			uncachedPosts = append(uncachedPosts, p)
		}
		uncached = input
		uncached.SetPosts(uncachedPosts)
	}

	output, err := run.Run(ctx, fctx, uncached)
	if err != nil {
		return feed.Feed{}, err
	}

	finalFeed := output
	if granularity == filter.FeedAndPost {
		finalFeed = assemble(output, slots, c.postCache)
	}

	c.feedCache.Insert(kFeed, finalFeed)
	return finalFeed, nil
}

type cacheSlot struct {
	key  string
	post feed.Post
	hit  bool
}

// assemble re-keys each output post by its uncached input's normalized
// form (for future lookups) and walks slots in order: a hit slot
// contributes its cached post, a miss slot consumes the next output
// post. Any surplus output posts (a filter that emits more posts than
// it consumed) are appended at the end.
func assemble(output feed.Feed, slots []cacheSlot, postCache *lru.TimedLRU[string, feed.Post]) feed.Feed {
	outputPosts := output.Posts()
	final := make([]feed.Post, 0, len(slots))

	next := 0
	for _, slot := range slots {
		if slot.hit {
			final = append(final, slot.post)
			continue
		}
		if next >= len(outputPosts) {
			continue
		}
		p := outputPosts[next]
		next++
		postCache.Insert(slot.key, p)
		final = append(final, p)
	}
	for ; next < len(outputPosts); next++ {
		final = append(final, outputPosts[next])
	}

	result := output
	result.SetPosts(final)
	return result
}
