package source

import (
	"testing"

	"feedgate/internal/domain/filterctx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemplatedRejectsUnusedPlaceholder(t *testing.T) {
	_, err := NewTemplated("https://example.com/${q}", map[string]*Placeholder{
		"q":     {},
		"extra": {},
	})
	require.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestNewTemplatedRejectsReservedName(t *testing.T) {
	_, err := NewTemplated("https://example.com/${base}", map[string]*Placeholder{
		"base": {},
	})
	require.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestTemplateValidationRejection(t *testing.T) {
	// property 7: placeholder validation "^[a-z]+$" rejects "ABC".
	pattern := "^[a-z]+$"
	src, err := NewTemplated("https://example.com/${validation}", map[string]*Placeholder{
		"validation": {ValidationPattern: pattern},
	})
	require.NoError(t, err)

	fctx := filterctx.New()
	fctx.ExtraQueries["validation"] = "ABC"

	_, err = src.resolveTemplate(fctx)
	require.ErrorIs(t, err, ErrTemplateValidation)
}

func TestTemplateUsesDefaultWhenAbsent(t *testing.T) {
	def := "hello"
	src, err := NewTemplated("https://example.com/${q}", map[string]*Placeholder{
		"q": {Default: &def},
	})
	require.NoError(t, err)

	resolved, err := src.resolveTemplate(filterctx.New())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/hello", resolved)
}

func TestTemplateMissingPlaceholderFails(t *testing.T) {
	src, err := NewTemplated("https://example.com/${q}", map[string]*Placeholder{
		"q": {},
	})
	require.NoError(t, err)

	_, err = src.resolveTemplate(filterctx.New())
	require.ErrorIs(t, err, ErrMissingPlaceholder)
}

func TestRelativeURLRequiresBase(t *testing.T) {
	src := &Source{Kind: KindRelativeURL, URL: "/feed.xml"}
	_, err := src.FetchFeed(nil, filterctx.New(), nil)
	require.ErrorIs(t, err, ErrBaseURLNotInferred)
}
