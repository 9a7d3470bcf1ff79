// Package feed defines the tagged RSS/Atom feed and post model, the
// lossy normalized projection used as a cache key, and bidirectional
// conversion between the two wire formats.
package feed

import "time"

// Format discriminates which wire shape a Feed or Post carries.
type Format int

const (
	FormatRSS Format = iota
	FormatAtom
)

func (f Format) String() string {
	if f == FormatAtom {
		return "atom"
	}
	return "rss"
}

// Extension is a single parsed feed-extension element, mirroring the
// shape gofeed already produces (name, value, attributes, nested
// children), so extensions parsed via gofeed can be carried over
// without reprojection.
type Extension struct {
	Name     string
	Value    string
	Attrs    map[string]string
	Children map[string][]Extension
}

// Extensions is keyed by XML namespace prefix, then element name.
type Extensions map[string]map[string][]Extension

// Enclosure is a media attachment on a post (RSS <enclosure>, or the
// closest Atom <link> analogue).
type Enclosure struct {
	URL    string
	Type   string
	Length string
}

// Feed is a tagged variant over {RSS channel, Atom feed}. Exactly one
// of RSS/Atom is non-nil, matching Format. The two shapes are kept
// distinct rather than collapsed into one struct (spec design note:
// "do not collapse into a single struct; carry the tag until
// serialization").
type Feed struct {
	Format Format
	RSS    *RSSChannel
	Atom   *AtomFeed
}

// RSSChannel is the RSS 2.0 <channel> shape.
type RSSChannel struct {
	Title          string
	Link           string
	Description    string
	Language       string
	Generator      string
	LastBuildDate  *time.Time
	PubDate        *time.Time
	ManagingEditor string
	Categories     []string
	Extensions     Extensions
	Items          []*RSSItem
}

// AtomFeed is the Atom 1.0 <feed> shape.
type AtomFeed struct {
	Title      string
	ID         string
	Updated    time.Time
	Authors    []Person
	Links      []Link
	Categories []string
	Subtitle   string
	Generator  string
	Lang       string
	Extensions Extensions
	Entries    []*AtomEntry
}

// Person is an Atom author/contributor.
type Person struct {
	Name  string
	Email string
	URI   string
}

// Link is an Atom <link>.
type Link struct {
	Href string
	Rel  string
	Type string
}

// RSSItem is a single RSS <item>.
type RSSItem struct {
	Title      string
	Link       string
	Description string
	Content    string
	Author     string
	Categories []string
	PubDate    *time.Time
	GUID       string
	Enclosure  *Enclosure
	Extensions Extensions
}

// AtomEntry is a single Atom <entry>.
type AtomEntry struct {
	Title      string
	ID         string
	Updated    time.Time
	Published  *time.Time
	Authors    []Person
	Links      []Link
	Categories []string
	Summary    string
	Content    string
	Extensions Extensions
}

// Post is a tagged variant over {RSS item, Atom entry}, mirroring Feed.
type Post struct {
	Format Format
	RSS    *RSSItem
	Atom   *AtomEntry
}

// NewFeed constructs an empty feed of the given format with the bare
// minimum fields a FromScratch source supplies.
func NewFeed(format Format, title, link, description string) Feed {
	switch format {
	case FormatAtom:
		return Feed{
			Format: FormatAtom,
			Atom: &AtomFeed{
				Title:    title,
				ID:       link,
				Updated:  time.Time{},
				Subtitle: description,
				Links: func() []Link {
					if link == "" {
						return nil
					}
					return []Link{{Href: link, Rel: "alternate"}}
				}(),
			},
		}
	default:
		return Feed{
			Format: FormatRSS,
			RSS: &RSSChannel{
				Title:       title,
				Link:        link,
				Description: description,
			},
		}
	}
}

// Posts returns the feed's posts as the homogeneous Post variant,
// preserving order.
func (f Feed) Posts() []Post {
	switch f.Format {
	case FormatAtom:
		posts := make([]Post, 0, len(f.Atom.Entries))
		for _, e := range f.Atom.Entries {
			posts = append(posts, Post{Format: FormatAtom, Atom: e})
		}
		return posts
	default:
		posts := make([]Post, 0, len(f.RSS.Items))
		for _, it := range f.RSS.Items {
			posts = append(posts, Post{Format: FormatRSS, RSS: it})
		}
		return posts
	}
}

// SetPosts replaces the feed's posts in place, preserving the format tag.
// Posts of the wrong tag are skipped (a filter that wants to change
// format must go through ConvertTo first).
func (f *Feed) SetPosts(posts []Post) {
	switch f.Format {
	case FormatAtom:
		entries := make([]*AtomEntry, 0, len(posts))
		for _, p := range posts {
			if p.Atom != nil {
				entries = append(entries, p.Atom)
			}
		}
		f.Atom.Entries = entries
	default:
		items := make([]*RSSItem, 0, len(posts))
		for _, p := range posts {
			if p.RSS != nil {
				items = append(items, p.RSS)
			}
		}
		f.RSS.Items = items
	}
}

// Title returns the feed's title regardless of format.
func (f Feed) Title() string {
	if f.Format == FormatAtom {
		return f.Atom.Title
	}
	return f.RSS.Title
}

// Link returns the feed's primary link regardless of format.
func (f Feed) Link() string {
	if f.Format == FormatAtom {
		for _, l := range f.Atom.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				return l.Href
			}
		}
		if len(f.Atom.Links) > 0 {
			return f.Atom.Links[0].Href
		}
		return f.Atom.ID
	}
	return f.RSS.Link
}

// Description returns the feed's description/subtitle regardless of format.
func (f Feed) Description() string {
	if f.Format == FormatAtom {
		return f.Atom.Subtitle
	}
	return f.RSS.Description
}

// Clone performs a deep-enough copy of a Feed for use where a filter
// must mutate one view while preserving another (e.g. the filter
// cache's uncached/cached split).
func (f Feed) Clone() Feed {
	posts := f.Posts()
	cloned := make([]Post, len(posts))
	for i, p := range posts {
		cloned[i] = p.Clone()
	}
	out := f
	switch f.Format {
	case FormatAtom:
		atomCopy := *f.Atom
		out.Atom = &atomCopy
	default:
		rssCopy := *f.RSS
		out.RSS = &rssCopy
	}
	out.SetPosts(cloned)
	return out
}

// Clone performs a deep-enough copy of a Post.
func (p Post) Clone() Post {
	out := p
	if p.Format == FormatAtom && p.Atom != nil {
		c := *p.Atom
		out.Atom = &c
	}
	if p.Format == FormatRSS && p.RSS != nil {
		c := *p.RSS
		out.RSS = &c
	}
	return out
}

// Title returns the post's title regardless of format.
func (p Post) Title() string {
	if p.Format == FormatAtom {
		return p.Atom.Title
	}
	return p.RSS.Title
}

// Link returns the post's primary link regardless of format (first
// link for Atom).
func (p Post) Link() string {
	if p.Format == FormatAtom {
		if len(p.Atom.Links) > 0 {
			return p.Atom.Links[0].Href
		}
		return ""
	}
	return p.RSS.Link
}

// Description returns the post's description/summary.
func (p Post) Description() string {
	if p.Format == FormatAtom {
		return p.Atom.Summary
	}
	return p.RSS.Description
}

// SetDescription sets the post's description/summary.
func (p Post) SetDescription(v string) {
	if p.Format == FormatAtom {
		p.Atom.Summary = v
		return
	}
	p.RSS.Description = v
}

// Content returns the post's optional HTML content body, preferring it
// over Description for filters that want the richest available body.
func (p Post) Content() string {
	if p.Format == FormatAtom {
		return p.Atom.Content
	}
	return p.RSS.Content
}

// SetContent sets the post's content field.
func (p Post) SetContent(v string) {
	if p.Format == FormatAtom {
		p.Atom.Content = v
		return
	}
	p.RSS.Content = v
}

// Bodies returns every textual body a filter might want to scan
// (description then content), skipping empties.
func (p Post) Bodies() []string {
	var out []string
	if d := p.Description(); d != "" {
		out = append(out, d)
	}
	if c := p.Content(); c != "" && c != p.Description() {
		out = append(out, c)
	}
	return out
}

// Author returns the post's first author name.
func (p Post) Author() string {
	if p.Format == FormatAtom {
		if len(p.Atom.Authors) > 0 {
			return p.Atom.Authors[0].Name
		}
		return ""
	}
	return p.RSS.Author
}

// Categories returns the post's categories.
func (p Post) Categories() []string {
	if p.Format == FormatAtom {
		return p.Atom.Categories
	}
	return p.RSS.Categories
}

// PubDate returns the post's publication instant, or nil if absent/unparseable.
func (p Post) PubDate() *time.Time {
	if p.Format == FormatAtom {
		if p.Atom.Published != nil {
			return p.Atom.Published
		}
		if !p.Atom.Updated.IsZero() {
			u := p.Atom.Updated
			return &u
		}
		return nil
	}
	return p.RSS.PubDate
}

// GUID returns the post's guid/id.
func (p Post) GUID() string {
	if p.Format == FormatAtom {
		return p.Atom.ID
	}
	return p.RSS.GUID
}

// Enclosures returns the post's attachments.
func (p Post) Enclosures() []Enclosure {
	if p.Format == FormatAtom {
		var out []Enclosure
		for _, l := range p.Atom.Links {
			if l.Type != "" && l.Rel != "alternate" {
				out = append(out, Enclosure{URL: l.Href, Type: l.Type})
			}
		}
		return out
	}
	if p.RSS.Enclosure != nil {
		return []Enclosure{*p.RSS.Enclosure}
	}
	return nil
}
