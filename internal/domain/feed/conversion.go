package feed

import "time"

// ConvertToRSS converts an Atom feed to RSS. Conversion is total:
// missing fields default to the zero value rather
// than erroring. Grounded on original_source/src/feed/conversion.rs's
// `impl From<AtomFeed> for RssChannel`.
func ConvertToRSS(f Feed) Feed {
	if f.Format == FormatRSS {
		return f
	}
	af := f.Atom

	ch := &RSSChannel{
		Title:       af.Title,
		Description: af.Subtitle,
		Generator:   af.Generator,
		Language:    af.Lang,
		Categories:  append([]string{}, af.Categories...),
		Extensions:  af.Extensions,
	}
	if len(af.Links) > 0 {
		ch.Link = af.Links[0].Href
	} else {
		ch.Link = af.ID
	}
	if !af.Updated.IsZero() {
		t := af.Updated
		ch.LastBuildDate = &t
	}
	if len(af.Authors) > 0 {
		ch.ManagingEditor = af.Authors[0].Name
	}

	ch.Items = make([]*RSSItem, 0, len(af.Entries))
	for _, e := range af.Entries {
		ch.Items = append(ch.Items, atomEntryToRSSItem(e))
	}
	return Feed{Format: FormatRSS, RSS: ch}
}

func atomEntryToRSSItem(e *AtomEntry) *RSSItem {
	item := &RSSItem{
		Title:      e.Title,
		Description: e.Summary,
		Content:    e.Content,
		Categories: append([]string{}, e.Categories...),
		Extensions: e.Extensions,
	}
	if len(e.Links) > 0 {
		item.Link = e.Links[0].Href
	}
	if e.ID != "" {
		item.GUID = e.ID
	} else {
		item.GUID = item.Link
	}
	if e.Published != nil {
		item.PubDate = e.Published
	} else if !e.Updated.IsZero() {
		t := e.Updated
		item.PubDate = &t
	}
	if len(e.Authors) > 0 {
		item.Author = e.Authors[0].Name
	}
	return item
}

// ConvertToAtom converts an RSS feed to Atom. Grounded on
// original_source/src/feed/conversion.rs's
// `impl From<RssChannel> for AtomFeed`.
func ConvertToAtom(f Feed) Feed {
	if f.Format == FormatAtom {
		return f
	}
	ch := f.RSS

	af := &AtomFeed{
		Title:      ch.Title,
		ID:         ch.Link,
		Subtitle:   ch.Description,
		Generator:  ch.Generator,
		Lang:       ch.Language,
		Categories: append([]string{}, ch.Categories...),
		Extensions: ch.Extensions,
	}
	if ch.Link != "" {
		af.Links = append(af.Links, Link{Href: ch.Link, Rel: "alternate"})
	}
	switch {
	case ch.LastBuildDate != nil:
		af.Updated = *ch.LastBuildDate
	case ch.PubDate != nil:
		af.Updated = *ch.PubDate
	default:
		af.Updated = time.Time{}
	}
	if ch.ManagingEditor != "" {
		af.Authors = append(af.Authors, Person{Name: ch.ManagingEditor})
	}

	af.Entries = make([]*AtomEntry, 0, len(ch.Items))
	for _, it := range ch.Items {
		af.Entries = append(af.Entries, rssItemToAtomEntry(it))
	}
	return Feed{Format: FormatAtom, Atom: af}
}

func rssItemToAtomEntry(it *RSSItem) *AtomEntry {
	entry := &AtomEntry{
		Title:      it.Title,
		Summary:    it.Description,
		Content:    it.Content,
		Categories: append([]string{}, it.Categories...),
		Extensions: it.Extensions,
	}
	if it.Link != "" {
		entry.Links = append(entry.Links, Link{Href: it.Link, Rel: "alternate"})
	}
	if it.GUID != "" {
		entry.ID = it.GUID
	} else {
		entry.ID = it.Link
	}
	if it.PubDate != nil {
		entry.Updated = *it.PubDate
		entry.Published = it.PubDate
	}
	if it.Author != "" {
		entry.Authors = append(entry.Authors, Person{Name: it.Author})
	}
	return entry
}

// Convert converts f to the target format, returning f unchanged if it
// is already in that format — a no-op short-circuit that keeps
// repeated conversion idempotent.
func Convert(f Feed, target Format) Feed {
	if f.Format == target {
		return f
	}
	if target == FormatAtom {
		return ConvertToAtom(f)
	}
	return ConvertToRSS(f)
}
