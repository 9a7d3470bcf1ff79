package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalRSS() Feed {
	pub := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return Feed{
		Format: FormatRSS,
		RSS: &RSSChannel{
			Title:       "Test",
			Link:        "http://example.com",
			Description: "a test feed",
			Items: []*RSSItem{
				{
					Title:       "Item 1",
					Link:        "http://example.com/item1",
					Description: "body",
					GUID:        "http://example.com/item1",
					PubDate:     &pub,
				},
			},
		},
	}
}

func TestConvertRSSToAtom(t *testing.T) {
	rss := minimalRSS()
	atom := Convert(rss, FormatAtom)

	require.Equal(t, FormatAtom, atom.Format)
	assert.Equal(t, "Test", atom.Title())
	require.Len(t, atom.Atom.Entries, 1)
	entry := atom.Atom.Entries[0]
	assert.Equal(t, "Item 1", entry.Title)
	require.Len(t, entry.Links, 1)
	assert.Equal(t, "http://example.com/item1", entry.Links[0].Href)
}

func TestConvertIdempotentWithinFormat(t *testing.T) {
	// property 2: ConvertTo rss; ConvertTo rss == ConvertTo rss.
	rss := minimalRSS()
	once, err := Serialize(Convert(rss, FormatRSS))
	require.NoError(t, err)
	twice, err := Serialize(Convert(Convert(rss, FormatRSS), FormatRSS))
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestConvertRoundTripRSSAtomRSS(t *testing.T) {
	// E2: convert_to atom then back to rss should equal the original.
	rss := minimalRSS()
	back := Convert(Convert(rss, FormatAtom), FormatRSS)

	assert.Equal(t, rss.Title(), back.Title())
	assert.Equal(t, rss.Link(), back.Link())
	require.Len(t, back.RSS.Items, 1)
	assert.Equal(t, rss.RSS.Items[0].Title, back.RSS.Items[0].Title)
	assert.Equal(t, rss.RSS.Items[0].Link, back.RSS.Items[0].Link)
}

func TestSerializeParseRoundTripRSS(t *testing.T) {
	rss := minimalRSS()
	data, err := Serialize(rss)
	require.NoError(t, err)

	parsed, err := Parse(data, FormatRSS)
	require.NoError(t, err)

	assert.Equal(t, "Test", parsed.Title())
	assert.Equal(t, "http://example.com", parsed.Link())
	assert.Equal(t, "a test feed", parsed.Description())
	require.Len(t, parsed.Posts(), 1)
	assert.Equal(t, "Item 1", parsed.Posts()[0].Title())
	assert.Equal(t, "http://example.com/item1", parsed.Posts()[0].Link())
}

func TestNormalizeStableAcrossSerializeParse(t *testing.T) {
	rss := minimalRSS()
	n1 := Normalize(rss)

	data, err := Serialize(rss)
	require.NoError(t, err)
	parsed, err := Parse(data, FormatRSS)
	require.NoError(t, err)
	n2 := Normalize(parsed)

	assert.Equal(t, n1.Title, n2.Title)
	assert.Equal(t, n1.Link, n2.Link)
	require.Len(t, n2.Posts, 1)
	assert.Equal(t, n1.Posts[0].Title, n2.Posts[0].Title)
	assert.Equal(t, n1.Posts[0].Link, n2.Posts[0].Link)
}
