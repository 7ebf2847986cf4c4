// SPDX-License-Identifier: Apache-2.0

package format

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestParseData(t *testing.T) {
	var fromYAML sample
	require.NoError(t, ParseData([]byte("name: scan\ncount: 3\n"), &fromYAML))
	assert.Equal(t, sample{Name: "scan", Count: 3}, fromYAML)

	var fromJSON sample
	require.NoError(t, ParseData([]byte(`{"name": "scan", "count": 3}`), &fromJSON))
	assert.Equal(t, sample{Name: "scan", Count: 3}, fromJSON)

	var bad sample
	err := ParseData([]byte("{{not parseable"), &bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestWriteFileByExtension(t *testing.T) {
	dir := t.TempDir()
	value := sample{Name: "scan", Count: 3}

	jsonPath := filepath.Join(dir, "out.json")
	require.NoError(t, WriteFile(jsonPath, value))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{"), "json extension produces JSON")

	yamlPath := filepath.Join(dir, "out.yaml")
	require.NoError(t, WriteFile(yamlPath, value))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: scan")

	var roundTrip sample
	require.NoError(t, ParseFile(yamlPath, &roundTrip))
	assert.Equal(t, value, roundTrip)
}

func TestFormatData(t *testing.T) {
	value := sample{Name: "scan", Count: 3}

	asYAML, err := FormatData(value, true)
	require.NoError(t, err)
	assert.Contains(t, asYAML, "count: 3")

	asJSON, err := FormatData(value, false)
	require.NoError(t, err)
	assert.Contains(t, asJSON, `"count": 3`)
}
