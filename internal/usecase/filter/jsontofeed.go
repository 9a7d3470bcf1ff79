package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"feedgate/internal/config"
	"feedgate/internal/domain/feed"
	"feedgate/internal/domain/filterctx"
	"feedgate/internal/infra/httpclient"
	"feedgate/internal/infra/jsonpathx"
)

// jsonToFeedConfig drives synthesizing a feed from an arbitrary JSON
// document, grounded on
// original_source/src/filter/json_to_feed.rs's JsonToFeedConfig.
type jsonToFeedConfig struct {
	URL    string               `yaml:"url,omitempty"`
	Items  string               `yaml:"items"`
	Map    fieldMapConfig       `yaml:"map,omitempty"`
	Feed   feedMetaConfig       `yaml:"feed,omitempty"`
	Client *config.ClientConfig `yaml:"client,omitempty"`
}

type fieldMapConfig struct {
	Title           string `yaml:"title,omitempty"`
	Link            string `yaml:"link,omitempty"`
	GUID            string `yaml:"guid,omitempty"`
	Description     string `yaml:"description,omitempty"`
	ContentHTML     string `yaml:"content_html,omitempty"`
	Author          string `yaml:"author,omitempty"`
	Categories      string `yaml:"categories,omitempty"`
	PubDate         string `yaml:"pub_date,omitempty"`
	EnclosureURL    string `yaml:"enclosure_url,omitempty"`
	EnclosureType   string `yaml:"enclosure_type,omitempty"`
	EnclosureLength string `yaml:"enclosure_length,omitempty"`
}

type feedMetaConfig struct {
	Title       string `yaml:"title,omitempty"`
	Link        string `yaml:"link,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// parsedField is a constant string or a JSONPath expression,
// distinguished the way original_source's parse_field does: a leading
// `\$` escapes to a literal `$...` constant, a bare `$` prefix is a
// JSONPath, anything else is a plain constant.
type parsedField struct {
	isConst bool
	value   string
	path    string
}

func parseField(raw string) parsedField {
	switch {
	case raw == "":
		return parsedField{}
	case strings.HasPrefix(raw, `\$`):
		return parsedField{isConst: true, value: raw[1:]}
	case strings.HasPrefix(raw, "$"):
		return parsedField{path: raw}
	default:
		return parsedField{isConst: true, value: raw}
	}
}

func (p parsedField) configured() bool {
	return p.isConst || p.path != ""
}

type parsedFieldMap struct {
	Title, Link, GUID, Description, ContentHTML, Author, Categories,
	PubDate, EnclosureURL, EnclosureType, EnclosureLength parsedField
}

type parsedFeedMetaMap struct {
	Title, Link, Description parsedField
}

type jsonToFeedFilter struct {
	url      string
	items    string
	itemMap  parsedFieldMap
	feedMeta parsedFeedMetaMap
	client   *httpclient.Client
}

func buildJSONToFeed(cfg config.FilterConfig, deps Deps) (Filter, error) {
	var c jsonToFeedConfig
	if err := cfg.Raw.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: json_to_feed: %v", ErrConfig, err)
	}
	if c.Items == "" {
		return nil, fmt.Errorf("%w: json_to_feed: items is required", ErrConfig)
	}

	client := deps.HTTPClient
	if c.Client != nil && deps.NewClient != nil {
		client = deps.NewClient(clientConfigFrom(*c.Client))
	}
	if client == nil {
		return nil, fmt.Errorf("%w: json_to_feed: no HTTP client available", ErrConfig)
	}

	return jsonToFeedFilter{
		url:   c.URL,
		items: c.Items,
		itemMap: parsedFieldMap{
			Title:           parseField(c.Map.Title),
			Link:            parseField(c.Map.Link),
			GUID:            parseField(c.Map.GUID),
			Description:     parseField(c.Map.Description),
			ContentHTML:     parseField(c.Map.ContentHTML),
			Author:          parseField(c.Map.Author),
			Categories:      parseField(c.Map.Categories),
			PubDate:         parseField(c.Map.PubDate),
			EnclosureURL:    parseField(c.Map.EnclosureURL),
			EnclosureType:   parseField(c.Map.EnclosureType),
			EnclosureLength: parseField(c.Map.EnclosureLength),
		},
		feedMeta: parsedFeedMetaMap{
			Title:       parseField(c.Feed.Title),
			Link:        parseField(c.Feed.Link),
			Description: parseField(c.Feed.Description),
		},
		client: client,
	}, nil
}

func selectString(doc interface{}, pf parsedField) (string, bool) {
	if pf.isConst {
		return pf.value, true
	}
	if pf.path == "" {
		return "", false
	}
	s, err := jsonpathx.QueryString(doc, pf.path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func selectStrings(doc interface{}, pf parsedField) ([]string, bool) {
	if pf.isConst {
		return []string{pf.value}, true
	}
	if pf.path == "" {
		return nil, false
	}
	ss, err := jsonpathx.QueryStrings(doc, pf.path)
	if err != nil || len(ss) == 0 {
		return nil, false
	}
	return ss, true
}

func (f jsonToFeedFilter) applyFeedMeta(out *feed.Feed, root interface{}) error {
	title, ok := selectString(root, f.feedMeta.Title)
	if !ok {
		return fmt.Errorf("%w: json_to_feed: feed.title", ErrMissingField)
	}
	link, ok := selectString(root, f.feedMeta.Link)
	if !ok {
		return fmt.Errorf("%w: json_to_feed: feed.link", ErrMissingField)
	}
	description, _ := selectString(root, f.feedMeta.Description)

	if out.Format == feed.FormatAtom {
		out.Atom.Title = title
		if len(out.Atom.Links) > 0 {
			out.Atom.Links[0].Href = link
		} else {
			out.Atom.Links = append(out.Atom.Links, feed.Link{Href: link, Rel: "alternate"})
		}
		if description != "" {
			out.Atom.Subtitle = description
		}
		return nil
	}

	out.RSS.Title = title
	out.RSS.Link = link
	if description != "" {
		out.RSS.Description = description
	}
	return nil
}

func (f jsonToFeedFilter) buildPost(format feed.Format, item interface{}) (feed.Post, error) {
	m := f.itemMap

	title, ok := selectString(item, m.Title)
	if !ok {
		return feed.Post{}, fmt.Errorf("%w: json_to_feed: title", ErrMissingField)
	}
	link, ok := selectString(item, m.Link)
	if !ok {
		return feed.Post{}, fmt.Errorf("%w: json_to_feed: link", ErrMissingField)
	}
	description, _ := selectString(item, m.Description)
	content, _ := selectString(item, m.ContentHTML)
	author, _ := selectString(item, m.Author)
	guid, hasGUID := selectString(item, m.GUID)
	if !hasGUID {
		guid = link
	}
	categories, _ := selectStrings(item, m.Categories)

	var pubDate *time.Time
	if raw, ok := selectString(item, m.PubDate); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			pubDate = &t
		} else if t, err := time.Parse(time.RFC1123Z, raw); err == nil {
			pubDate = &t
		}
	}

	var enclosure *feed.Enclosure
	if encURL, ok := selectString(item, m.EnclosureURL); ok {
		encType, _ := selectString(item, m.EnclosureType)
		if encType == "" {
			encType = "application/octet-stream"
		}
		encLength, _ := selectString(item, m.EnclosureLength)
		if encLength == "" {
			encLength = "0"
		}
		enclosure = &feed.Enclosure{URL: encURL, Type: encType, Length: encLength}
	}

	rssItem := &feed.RSSItem{
		Title:       title,
		Link:        link,
		Description: description,
		Content:     content,
		Author:      author,
		Categories:  categories,
		PubDate:     pubDate,
		GUID:        guid,
		Enclosure:   enclosure,
	}

	if format != feed.FormatAtom {
		return feed.Post{Format: feed.FormatRSS, RSS: rssItem}, nil
	}

	entry := &feed.AtomEntry{
		Title:      title,
		ID:         guid,
		Summary:    description,
		Content:    content,
		Categories: categories,
	}
	if pubDate != nil {
		entry.Updated = *pubDate
		entry.Published = pubDate
	}
	if author != "" {
		entry.Authors = []feed.Person{{Name: author}}
	}
	entry.Links = []feed.Link{{Href: link, Rel: "alternate"}}
	if enclosure != nil {
		entry.Links = append(entry.Links, feed.Link{Href: enclosure.URL, Type: enclosure.Type})
	}
	return feed.Post{Format: feed.FormatAtom, Atom: entry}, nil
}

func (f jsonToFeedFilter) resolveURL(fctx *filterctx.Context) (string, error) {
	if f.url != "" {
		return f.url, nil
	}
	if fctx.SourceURL != "" {
		return fctx.SourceURL, nil
	}
	return "", fmt.Errorf("%w: json_to_feed: no url configured and no dynamic source given", ErrFilter)
}

func (f jsonToFeedFilter) Run(ctx context.Context, fctx *filterctx.Context, inFeed feed.Feed) (feed.Feed, error) {
	url, err := f.resolveURL(fctx)
	if err != nil {
		return feed.Feed{}, err
	}

	resp, err := f.client.Get(ctx, url)
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: json_to_feed: fetching %q: %v", ErrFilter, url, err)
	}

	root, err := jsonpathx.Decode(resp.Body)
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: json_to_feed: decoding JSON: %v", ErrFilter, err)
	}

	out := inFeed.Clone()
	if err := f.applyFeedMeta(&out, root); err != nil {
		return feed.Feed{}, err
	}

	items, err := jsonpathx.Query(root, f.items)
	if err != nil {
		return feed.Feed{}, fmt.Errorf("%w: json_to_feed: selecting items %q: %v", ErrFilter, f.items, err)
	}

	posts := make([]feed.Post, 0, len(items))
	for _, item := range items {
		post, err := f.buildPost(out.Format, item)
		if err != nil {
			return feed.Feed{}, err
		}
		posts = append(posts, post)
	}
	out.SetPosts(posts)
	return out, nil
}

func (jsonToFeedFilter) CacheGranularity() Granularity { return FeedOnly }
