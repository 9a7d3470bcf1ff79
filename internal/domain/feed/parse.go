package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/extensions"
)

// Parse parses raw feed bytes. If hint is FormatRSS or FormatAtom, that
// format is tried first; on failure (or with no hint) gofeed's own
// detection is used as a fallback — gofeed's underlying parser already
// performs RSS/Atom fallback internally, so Parse adds only the
// format-tag projection on
// top of it.
func Parse(data []byte, hint Format) (Feed, error) {
	fp := gofeed.NewParser()
	gf, err := fp.Parse(strings.NewReader(string(data)))
	if err != nil {
		return Feed{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return project(gf, hint), nil
}

// project converts a parsed gofeed.Feed into our tagged Feed. gofeed
// collapses RSS/Atom into one struct; we use gf.FeedType to recover the
// original tag and fall back to the hint when gofeed can't tell (rare).
func project(gf *gofeed.Feed, hint Format) Feed {
	format := hint
	switch strings.ToLower(gf.FeedType) {
	case "atom":
		format = FormatAtom
	case "rss", "rdf":
		format = FormatRSS
	}

	if format == FormatAtom {
		return projectAtom(gf)
	}
	return projectRSS(gf)
}

func projectRSS(gf *gofeed.Feed) Feed {
	channel := &RSSChannel{
		Title:       gf.Title,
		Link:        gf.Link,
		Description: gf.Description,
		Language:    gf.Language,
		Extensions:  projectExtensions(gf.Extensions),
	}
	if gf.Image != nil && gf.Generator == "" {
		channel.Generator = gf.Generator
	} else {
		channel.Generator = gf.Generator
	}
	if gf.UpdatedParsed != nil {
		channel.LastBuildDate = gf.UpdatedParsed
	}
	if gf.PublishedParsed != nil {
		channel.PubDate = gf.PublishedParsed
	}
	if len(gf.Authors) > 0 {
		channel.ManagingEditor = gf.Authors[0].Name
	}
	channel.Categories = append(channel.Categories, gf.Categories...)

	items := make([]*RSSItem, 0, len(gf.Items))
	for _, it := range gf.Items {
		items = append(items, projectRSSItem(it))
	}
	channel.Items = items
	return Feed{Format: FormatRSS, RSS: channel}
}

func projectRSSItem(it *gofeed.Item) *RSSItem {
	item := &RSSItem{
		Title:       it.Title,
		Link:        it.Link,
		Description: it.Description,
		Content:     it.Content,
		GUID:        it.GUID,
		Categories:  append([]string{}, it.Categories...),
		Extensions:  projectExtensions(it.Extensions),
	}
	if it.PublishedParsed != nil {
		item.PubDate = it.PublishedParsed
	} else if it.UpdatedParsed != nil {
		item.PubDate = it.UpdatedParsed
	}
	if len(it.Authors) > 0 {
		item.Author = it.Authors[0].Name
	} else if it.Author != nil {
		item.Author = it.Author.Name
	}
	if len(it.Enclosures) > 0 {
		e := it.Enclosures[0]
		item.Enclosure = &Enclosure{URL: e.URL, Type: e.Type, Length: e.Length}
	}
	if item.GUID == "" {
		item.GUID = it.Link
	}
	return item
}

func projectAtom(gf *gofeed.Feed) Feed {
	af := &AtomFeed{
		Title:      gf.Title,
		ID:         gf.Link,
		Subtitle:   gf.Description,
		Generator:  gf.Generator,
		Lang:       gf.Language,
		Categories: append([]string{}, gf.Categories...),
		Extensions: projectExtensions(gf.Extensions),
	}
	if gf.UpdatedParsed != nil {
		af.Updated = *gf.UpdatedParsed
	} else {
		af.Updated = time.Now().UTC()
	}
	for _, a := range gf.Authors {
		af.Authors = append(af.Authors, Person{Name: a.Name, Email: a.Email})
	}
	for _, l := range gf.Links {
		af.Links = append(af.Links, Link{Href: l, Rel: "alternate"})
	}

	entries := make([]*AtomEntry, 0, len(gf.Items))
	for _, it := range gf.Items {
		entries = append(entries, projectAtomEntry(it))
	}
	af.Entries = entries
	return Feed{Format: FormatAtom, Atom: af}
}

func projectAtomEntry(it *gofeed.Item) *AtomEntry {
	entry := &AtomEntry{
		Title:      it.Title,
		ID:         it.GUID,
		Summary:    it.Description,
		Content:    it.Content,
		Categories: append([]string{}, it.Categories...),
		Extensions: projectExtensions(it.Extensions),
	}
	if entry.ID == "" {
		entry.ID = it.Link
	}
	if it.Link != "" {
		entry.Links = append(entry.Links, Link{Href: it.Link, Rel: "alternate"})
	}
	if it.UpdatedParsed != nil {
		entry.Updated = *it.UpdatedParsed
	} else if it.PublishedParsed != nil {
		entry.Updated = *it.PublishedParsed
	}
	if it.PublishedParsed != nil {
		entry.Published = it.PublishedParsed
	}
	if len(it.Authors) > 0 {
		for _, a := range it.Authors {
			entry.Authors = append(entry.Authors, Person{Name: a.Name, Email: a.Email})
		}
	} else if it.Author != nil {
		entry.Authors = append(entry.Authors, Person{Name: it.Author.Name, Email: it.Author.Email})
	}
	return entry
}

func projectExtensions(src extensions.Extensions) Extensions {
	if src == nil {
		return nil
	}
	out := make(Extensions, len(src))
	for ns, elems := range src {
		out[ns] = projectExtensionMap(elems)
	}
	return out
}

func projectExtensionMap(src map[string][]extensions.Extension) map[string][]Extension {
	out := make(map[string][]Extension, len(src))
	for name, list := range src {
		converted := make([]Extension, 0, len(list))
		for _, e := range list {
			converted = append(converted, projectExtension(e))
		}
		out[name] = converted
	}
	return out
}

func projectExtension(e extensions.Extension) Extension {
	out := Extension{Name: e.Name, Value: e.Value, Attrs: e.Attrs}
	if len(e.Children) > 0 {
		out.Children = projectExtensionMap(e.Children)
	}
	return out
}
