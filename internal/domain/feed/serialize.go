package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"
)

// Serialize renders a Feed to its wire bytes according to its current
// format tag.
func Serialize(f Feed) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	switch f.Format {
	case FormatAtom:
		if err := writeAtom(enc, f.Atom); err != nil {
			return nil, err
		}
	case FormatRSS:
		if err := writeRSS(enc, f.RSS); err != nil {
			return nil, err
		}
	default:
		return nil, ErrUnsupportedFormat
	}

	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentType returns the MIME type to respond with for the feed's
// current format tag.
func (f Feed) ContentType() string {
	if f.Format == FormatAtom {
		return "application/atom+xml"
	}
	return "application/rss+xml"
}

func writeRSS(enc *xml.Encoder, ch *RSSChannel) error {
	rssStart := xml.StartElement{Name: xml.Name{Local: "rss"}, Attr: []xml.Attr{{Name: xml.Name{Local: "version"}, Value: "2.0"}}}
	if err := enc.EncodeToken(rssStart); err != nil {
		return err
	}
	chanStart := xml.StartElement{Name: xml.Name{Local: "channel"}}
	if err := enc.EncodeToken(chanStart); err != nil {
		return err
	}

	writeElem(enc, "title", ch.Title)
	writeElem(enc, "link", ch.Link)
	writeElem(enc, "description", ch.Description)
	if ch.Language != "" {
		writeElem(enc, "language", ch.Language)
	}
	if ch.Generator != "" {
		writeElem(enc, "generator", ch.Generator)
	}
	if ch.ManagingEditor != "" {
		writeElem(enc, "managingEditor", ch.ManagingEditor)
	}
	if ch.LastBuildDate != nil {
		writeElem(enc, "lastBuildDate", ch.LastBuildDate.Format(time.RFC1123Z))
	}
	if ch.PubDate != nil {
		writeElem(enc, "pubDate", ch.PubDate.Format(time.RFC1123Z))
	}
	for _, c := range ch.Categories {
		writeElem(enc, "category", c)
	}
	if err := writeExtensions(enc, ch.Extensions); err != nil {
		return err
	}

	for _, item := range ch.Items {
		if err := writeRSSItem(enc, item); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(chanStart.End()); err != nil {
		return err
	}
	return enc.EncodeToken(rssStart.End())
}

func writeRSSItem(enc *xml.Encoder, it *RSSItem) error {
	start := xml.StartElement{Name: xml.Name{Local: "item"}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	writeElem(enc, "title", it.Title)
	writeElem(enc, "link", it.Link)
	writeElem(enc, "description", it.Description)
	if it.Content != "" {
		writeElem(enc, "content:encoded", it.Content)
	}
	if it.Author != "" {
		writeElem(enc, "author", it.Author)
	}
	for _, c := range it.Categories {
		writeElem(enc, "category", c)
	}
	if it.PubDate != nil {
		writeElem(enc, "pubDate", it.PubDate.Format(time.RFC1123Z))
	}
	if it.GUID != "" {
		writeElem(enc, "guid", it.GUID)
	}
	if it.Enclosure != nil {
		encStart := xml.StartElement{Name: xml.Name{Local: "enclosure"}, Attr: []xml.Attr{
			{Name: xml.Name{Local: "url"}, Value: it.Enclosure.URL},
			{Name: xml.Name{Local: "type"}, Value: it.Enclosure.Type},
			{Name: xml.Name{Local: "length"}, Value: it.Enclosure.Length},
		}}
		if err := enc.EncodeToken(encStart); err != nil {
			return err
		}
		if err := enc.EncodeToken(encStart.End()); err != nil {
			return err
		}
	}
	if err := writeExtensions(enc, it.Extensions); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func writeAtom(enc *xml.Encoder, af *AtomFeed) error {
	start := xml.StartElement{Name: xml.Name{Local: "feed"}, Attr: []xml.Attr{
		{Name: xml.Name{Local: "xmlns"}, Value: "http://www.w3.org/2005/Atom"},
	}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	writeElem(enc, "title", af.Title)
	writeElem(enc, "id", af.ID)
	writeElem(enc, "updated", af.Updated.Format(time.RFC3339))
	if af.Subtitle != "" {
		writeElem(enc, "subtitle", af.Subtitle)
	}
	if af.Generator != "" {
		writeElem(enc, "generator", af.Generator)
	}
	for _, a := range af.Authors {
		if err := writeAuthor(enc, a); err != nil {
			return err
		}
	}
	for _, l := range af.Links {
		if err := writeLink(enc, l); err != nil {
			return err
		}
	}
	for _, c := range af.Categories {
		catStart := xml.StartElement{Name: xml.Name{Local: "category"}, Attr: []xml.Attr{{Name: xml.Name{Local: "term"}, Value: c}}}
		if err := enc.EncodeToken(catStart); err != nil {
			return err
		}
		if err := enc.EncodeToken(catStart.End()); err != nil {
			return err
		}
	}
	if err := writeExtensions(enc, af.Extensions); err != nil {
		return err
	}
	for _, e := range af.Entries {
		if err := writeAtomEntry(enc, e); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

func writeAtomEntry(enc *xml.Encoder, e *AtomEntry) error {
	start := xml.StartElement{Name: xml.Name{Local: "entry"}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	writeElem(enc, "title", e.Title)
	writeElem(enc, "id", e.ID)
	writeElem(enc, "updated", e.Updated.Format(time.RFC3339))
	if e.Published != nil {
		writeElem(enc, "published", e.Published.Format(time.RFC3339))
	}
	for _, a := range e.Authors {
		if err := writeAuthor(enc, a); err != nil {
			return err
		}
	}
	for _, l := range e.Links {
		if err := writeLink(enc, l); err != nil {
			return err
		}
	}
	for _, c := range e.Categories {
		catStart := xml.StartElement{Name: xml.Name{Local: "category"}, Attr: []xml.Attr{{Name: xml.Name{Local: "term"}, Value: c}}}
		if err := enc.EncodeToken(catStart); err != nil {
			return err
		}
		if err := enc.EncodeToken(catStart.End()); err != nil {
			return err
		}
	}
	if e.Summary != "" {
		writeElem(enc, "summary", e.Summary)
	}
	if e.Content != "" {
		contentStart := xml.StartElement{Name: xml.Name{Local: "content"}, Attr: []xml.Attr{{Name: xml.Name{Local: "type"}, Value: "html"}}}
		if err := enc.EncodeToken(contentStart); err != nil {
			return err
		}
		if err := enc.EncodeToken(xml.CharData(e.Content)); err != nil {
			return err
		}
		if err := enc.EncodeToken(contentStart.End()); err != nil {
			return err
		}
	}
	if err := writeExtensions(enc, e.Extensions); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func writeAuthor(enc *xml.Encoder, p Person) error {
	start := xml.StartElement{Name: xml.Name{Local: "author"}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	writeElem(enc, "name", p.Name)
	if p.Email != "" {
		writeElem(enc, "email", p.Email)
	}
	return enc.EncodeToken(start.End())
}

func writeLink(enc *xml.Encoder, l Link) error {
	attrs := []xml.Attr{{Name: xml.Name{Local: "href"}, Value: l.Href}}
	if l.Rel != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "rel"}, Value: l.Rel})
	}
	if l.Type != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "type"}, Value: l.Type})
	}
	start := xml.StartElement{Name: xml.Name{Local: "link"}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

func writeElem(enc *xml.Encoder, name, value string) {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	_ = enc.EncodeToken(start)
	_ = enc.EncodeToken(xml.CharData(value))
	_ = enc.EncodeToken(start.End())
}

// writeExtensions emits each extension element verbatim, flattened
// under its namespace-qualified name (best-effort: attribute/child
// fidelity is preserved, exact namespace-prefix declarations are not
// re-derived).
func writeExtensions(enc *xml.Encoder, exts Extensions) error {
	for ns, elems := range exts {
		for name, list := range elems {
			for _, e := range list {
				if err := writeExtension(enc, ns, name, e); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writeExtension(enc *xml.Encoder, ns, name string, e Extension) error {
	local := name
	if ns != "" {
		local = fmt.Sprintf("%s:%s", ns, name)
	}
	var attrs []xml.Attr
	for k, v := range e.Attrs {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: k}, Value: v})
	}
	start := xml.StartElement{Name: xml.Name{Local: local}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.Value != "" {
		if err := enc.EncodeToken(xml.CharData(e.Value)); err != nil {
			return err
		}
	}
	for childNS, childElems := range e.Children {
		for childName, childList := range childElems {
			for _, c := range childList {
				if err := writeExtension(enc, childNS, childName, c); err != nil {
					return err
				}
			}
		}
	}
	return enc.EncodeToken(start.End())
}
