package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wiboard-complete/core"
)

func TestDecodeCollections_RoundTrip(t *testing.T) {
	data := []byte(`[{"name":"Travel","images":[{"url":"a.jpg","title":"Beach","id":"x1"}]}]`)

	cols := DecodeCollections(data)

	require.Len(t, cols, 1)
	assert.Equal(t, "Travel", cols[0].Name)
	assert.Equal(t, core.ImageRef{URL: "a.jpg", Title: "Beach", ID: "x1"}, cols[0].Images[0])
}

func TestDecodeCollections_MalformedFallsBackToEmpty(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte(``),
		[]byte(`not json at all`),
		[]byte(`{"name":"object not array"}`),
		[]byte(`42`),
		[]byte(`["strings","not","collections"]`),
	} {
		assert.Empty(t, DecodeCollections(data), "input %q", data)
	}
}

func TestDecodeCollections_SanitizesShapes(t *testing.T) {
	data := []byte(`[
		{"name":"","images":[{"url":"orphan.jpg"}]},
		{"name":"Travel","images":[{"url":""},{"url":"a.jpg"},{"url":"a.jpg","title":"Dup"}]},
		{"name":"Empty","images":[]},
		{"name":"Travel","images":[{"url":"b.jpg","title":"Mountain"}]}
	]`)

	cols := DecodeCollections(data)

	// Nameless and empty collections are dropped, duplicate names merge,
	// duplicate urls keep the first entry, missing titles get the default.
	require.Len(t, cols, 1)
	assert.Equal(t, "Travel", cols[0].Name)
	require.Len(t, cols[0].Images, 2)
	assert.Equal(t, core.ImageRef{URL: "a.jpg", Title: "Untitled"}, cols[0].Images[0])
	assert.Equal(t, core.ImageRef{URL: "b.jpg", Title: "Mountain"}, cols[0].Images[1])
}

func TestDecodeLikes_RoundTrip(t *testing.T) {
	data := []byte(`[{"url":"a.jpg","collection":"Sunsets"}]`)

	likes := DecodeLikes(data)

	require.Len(t, likes, 1)
	assert.Equal(t, core.LikedImage{URL: "a.jpg", Collection: "Sunsets"}, likes[0])
}

func TestDecodeLikes_MalformedFallsBackToEmpty(t *testing.T) {
	for _, data := range [][]byte{
		nil,
		[]byte(`{"oops":true}`),
		[]byte(`"a string"`),
	} {
		assert.Empty(t, DecodeLikes(data), "input %q", data)
	}
}

func TestDecodeLikes_DropsEntriesWithoutURLAndDedups(t *testing.T) {
	data := []byte(`[{"url":"","collection":"x"},{"url":"a.jpg","collection":"x"},{"url":"a.jpg","collection":"y"}]`)

	likes := DecodeLikes(data)

	require.Len(t, likes, 1)
	assert.Equal(t, "x", likes[0].Collection)
}
