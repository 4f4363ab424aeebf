package export

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mpilhlt/kogito-playground/internal/grouping"
	"github.com/mpilhlt/kogito-playground/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRecords = models.InferenceRecords{
	{Head: "personx", Relation: "xIntent", Tails: []string{"to win", "to be famous"}},
	{Head: "basketball player", Relation: "ObjectUse", Tails: []string{}},
}

func TestMarshalResults(t *testing.T) {
	data, err := MarshalResults(testRecords)
	require.NoError(t, err)

	expected := "[\n    {\n        \"head\": \"personx\",\n        \"relation\": \"xIntent\",\n        \"tails\": [\n            \"to win\",\n            \"to be famous\"\n        ]\n    },\n    {\n        \"head\": \"basketball player\",\n        \"relation\": \"ObjectUse\",\n        \"tails\": []\n    }\n]"
	assert.Equal(t, expected, string(data))

	var parsed models.InferenceRecords
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, testRecords, parsed)
}

func TestMarshalResultsKeepsMarkup(t *testing.T) {
	records := models.InferenceRecords{
		{Head: "salt & pepper", Relation: "xWant", Tails: []string{"<to season>", "a > b"}},
	}
	data, err := MarshalResults(records)
	require.NoError(t, err)

	expected := "[\n    {\n        \"head\": \"salt & pepper\",\n        \"relation\": \"xWant\",\n        \"tails\": [\n            \"<to season>\",\n            \"a > b\"\n        ]\n    }\n]"
	assert.Equal(t, expected, string(data))
	assert.NotContains(t, string(data), `\u0026`)
	assert.NotContains(t, string(data), `\u003c`)

	parsed, err := ValidateResults(data)
	require.NoError(t, err)
	assert.Equal(t, records, parsed)
}

func TestMarshalRaw(t *testing.T) {
	data, err := MarshalRaw(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	data, err = MarshalRaw(testRecords)
	require.NoError(t, err)
	expected, err := MarshalResults(testRecords)
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(data))
}

func TestMarshalResultsEmpty(t *testing.T) {
	_, err := MarshalResults(nil)
	assert.ErrorIs(t, err, ErrNoResults)

	_, err = MarshalResults(models.InferenceRecords{})
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestSaveFile(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveFile(dir, testRecords)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "kogito-results.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var parsed models.InferenceRecords
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, testRecords, parsed)
}

func TestCopyToClipboard(t *testing.T) {
	var copied string
	orig := clipboardWriteAll
	defer func() { clipboardWriteAll = orig }()

	clipboardWriteAll = func(text string) error {
		copied = text
		return nil
	}
	require.NoError(t, CopyToClipboard(testRecords))
	expected, _ := MarshalResults(testRecords)
	assert.Equal(t, string(expected), copied)

	clipboardWriteAll = func(text string) error {
		return errors.New("no clipboard utility")
	}
	err := CopyToClipboard(testRecords)
	assert.ErrorContains(t, err, "no clipboard utility")

	assert.ErrorIs(t, CopyToClipboard(nil), ErrNoResults)
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="kogito-results.json"`, ContentDisposition())
}

func TestValidateResults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{"valid file", `[{"head": "personx", "relation": "xIntent", "tails": ["to win"]}]`, false},
		{"empty list", `[]`, false},
		{"missing tails", `[{"head": "personx", "relation": "xIntent"}]`, true},
		{"wrong tail type", `[{"head": "personx", "relation": "xIntent", "tails": [1]}]`, true},
		{"unexpected property", `[{"head": "personx", "relation": "xIntent", "tails": [], "score": 0.3}]`, true},
		{"not a list", `{"graph": []}`, true},
		{"not json", `head,relation,tails`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := ValidateResults([]byte(tt.input))
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, records)
		})
	}
}

func TestExportRoundTrip(t *testing.T) {
	data, err := MarshalResults(testRecords)
	require.NoError(t, err)

	records, err := ValidateResults(data)
	require.NoError(t, err)
	assert.Equal(t, testRecords, records)
}

func TestTableRows(t *testing.T) {
	rows := TableRows([]models.RelationEntry{
		{Relation: "xIntent", Tails: []string{"to win", "to be famous"}},
		{Relation: "xNeed", Tails: []string{}},
	})
	assert.Equal(t, [][]string{
		{"xIntent", "to win"},
		{"", "to be famous"},
		{"xNeed", ""},
	}, rows)
}

func TestRenderTable(t *testing.T) {
	grouped := grouping.Group(testRecords, []string{"personx", "becomes", "a", "great", "basketball", "player"})
	out := RenderTable(grouped)

	for _, s := range []string{"personx", "basketball player", "Relation", "Tails", "xIntent", "to be famous", "ObjectUse"} {
		assert.Contains(t, out, s)
	}
	assert.Less(t, strings.Index(out, "personx"), strings.Index(out, "basketball player"))
	assert.Empty(t, RenderTable(models.GroupedResult{}))
}
