package onthefly

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanAppendsFilterParamsInOrder(t *testing.T) {
	result := Scan("discard=foo&limit=1", true)

	require.Len(t, result.Filters, 2)
	require.Equal(t, "discard", result.Filters[0].Kind)
	require.Equal(t, "limit", result.Filters[1].Kind)

	var discardValue string
	require.NoError(t, result.Filters[0].Raw.Decode(&discardValue))
	require.Equal(t, "foo", discardValue)

	var limitValue int
	require.NoError(t, result.Filters[1].Raw.Decode(&limitValue))
	require.Equal(t, 1, limitValue)
}

func TestScanBareParamUsesEmptyMapping(t *testing.T) {
	result := Scan("sanitize", true)
	require.Len(t, result.Filters, 1)
	require.Equal(t, "sanitize", result.Filters[0].Kind)

	var m map[string]interface{}
	require.NoError(t, result.Filters[0].Raw.Decode(&m))
}

func TestScanForwardsNonFilterAndReservedParams(t *testing.T) {
	result := Scan("source=https://x.example&foo=bar&limit_posts=3", true)
	require.Empty(t, result.Filters)
	require.Equal(t, "bar", result.ExtraQueries["foo"])

	_, hasSource := result.ExtraQueries["source"]
	require.False(t, hasSource, "reserved param source must not leak into extra queries")
	_, hasLimitPosts := result.ExtraQueries["limit_posts"]
	require.False(t, hasLimitPosts, "reserved param limit_posts must not leak into extra queries")
}

func TestScanDisabledNeverExtractsFilters(t *testing.T) {
	result := Scan("discard=foo", false)
	require.Empty(t, result.Filters)
	require.Equal(t, "foo", result.ExtraQueries["discard"])
}
