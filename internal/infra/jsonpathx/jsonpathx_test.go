package jsonpathx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleJSON = `{
  "meta": {"title": "Example News", "home": "https://example.com"},
  "items": [
    {"id": "101", "title": "Hello World", "url": "https://example.com/hello", "summary": "Short blurb", "tags": ["intro", "general"]}
  ]
}`

func TestQueryStringTopLevel(t *testing.T) {
	doc, err := Decode([]byte(exampleJSON))
	require.NoError(t, err)

	title, err := QueryString(doc, "$.meta.title")
	require.NoError(t, err)
	assert.Equal(t, "Example News", title)
}

func TestQueryItemsAndCategories(t *testing.T) {
	doc, err := Decode([]byte(exampleJSON))
	require.NoError(t, err)

	items, err := Query(doc, "$.items[*]")
	require.NoError(t, err)
	require.Len(t, items, 1)

	tags, err := QueryStrings(items[0], "$.tags[*]")
	require.NoError(t, err)
	assert.Equal(t, []string{"intro", "general"}, tags)
}

func TestQueryStringRejectsMultiValue(t *testing.T) {
	doc, err := Decode([]byte(exampleJSON))
	require.NoError(t, err)

	_, err = QueryString(doc, "$.items[*].title")
	require.Error(t, err)
}
