package output

import (
	"encoding/json"
	"testing"

	"pagegrab/internal/fetcher"
	"pagegrab/internal/runner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []runner.Record {
	return []runner.Record{
		{
			Status:    runner.StatusSuccess,
			Message:   "extractLinks succeeded for http://example.com",
			Operation: fetcher.OpLinks,
			ItemIndex: 0,
			Data: &fetcher.Result{
				URL:   "http://example.com",
				Links: []string{"http://example.com/a", "http://example.com/b"},
			},
		},
		{
			Status:    runner.StatusError,
			Message:   "failed to fetch http://dead.example: connection refused",
			Operation: fetcher.OpText,
			ItemIndex: 1,
		},
	}
}

func TestFormatJSONRoundTrips(t *testing.T) {
	out, err := Format(sampleRecords(), "json")
	require.NoError(t, err)

	var decoded []runner.Record
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)

	assert.Equal(t, runner.StatusSuccess, decoded[0].Status)
	assert.Equal(t, []string{"http://example.com/a", "http://example.com/b"}, decoded[0].Data.Links)
	assert.Equal(t, 1, decoded[1].ItemIndex)
	assert.Nil(t, decoded[1].Data)
}

func TestFormatText(t *testing.T) {
	out, err := Format(sampleRecords(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "[0] http://example.com")
	assert.Contains(t, out, "http://example.com/a")
	assert.Contains(t, out, "[1] error:")
}

func TestFormatMarkdownConvertsHTML(t *testing.T) {
	records := []runner.Record{{
		Status:    runner.StatusSuccess,
		Operation: fetcher.OpHTML,
		Data: &fetcher.Result{
			URL:   "http://example.com",
			HTML:  "<html><body><h2>Heading</h2><p>Some <strong>bold</strong> text.</p></body></html>",
			Title: "Page",
		},
	}}

	out, err := Format(records, "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# Page")
	assert.Contains(t, out, "## Heading")
	assert.Contains(t, out, "**bold**")
}

func TestFormatUnknown(t *testing.T) {
	_, err := Format(nil, "csv")
	assert.Error(t, err)
}
