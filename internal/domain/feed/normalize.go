package feed

import "time"

// NormalizedPost is the lossy, hashable cache-key projection of a Post.
// Grounded directly on original_source/src/feed/norm.rs's field list.
type NormalizedPost struct {
	Title  string
	Author string
	Link   string
	Body   string
	Date   int64 // unix seconds, 0 if absent
}

// NormalizedFeed is the lossy, hashable cache-key projection of a Feed.
type NormalizedFeed struct {
	Title       string
	Link        string
	Description string
	Posts       []NormalizedPost
}

// Normalize projects a Feed into its NormalizedFeed cache key.
// Deterministic for a given input; deliberately lossy (ignores
// extensions, categories, enclosures) so semantically-equivalent
// inputs collide (testable property 3).
func Normalize(f Feed) NormalizedFeed {
	posts := f.Posts()
	out := NormalizedFeed{
		Title:       f.Title(),
		Link:        f.Link(),
		Description: f.Description(),
		Posts:       make([]NormalizedPost, len(posts)),
	}
	for i, p := range posts {
		out.Posts[i] = NormalizePost(p)
	}
	return out
}

// NormalizePost projects a Post into its NormalizedPost cache key.
func NormalizePost(p Post) NormalizedPost {
	body := p.Description()
	if body == "" {
		body = p.Content()
	}
	n := NormalizedPost{
		Title:  p.Title(),
		Author: p.Author(),
		Link:   p.Link(),
		Body:   body,
	}
	if d := p.PubDate(); d != nil {
		n.Date = d.Unix()
	}
	return n
}

// AsTime returns the normalized date as a time.Time, or the zero value
// if absent.
func (n NormalizedPost) AsTime() time.Time {
	if n.Date == 0 {
		return time.Time{}
	}
	return time.Unix(n.Date, 0).UTC()
}
