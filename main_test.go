package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

const charizardJSON = `{
  "data": {
    "id": "base1-4",
    "name": "Charizard",
    "number": "4",
    "rarity": "Rare Holo",
    "set": {"id": "base1", "name": "Base", "releaseDate": "1999/01/09"},
    "tcgplayer": {
      "url": "https://prices.pokemontcg.io/tcgplayer/base1-4",
      "prices": {
        "holofoil": {"low": 250, "mid": 400, "market": 350.5},
        "1stEditionHolofoil": {"market": 5000}
      }
    }
  }
}`

func TestReadRawCard(t *testing.T) {
	dir := t.TempDir()

	wrapped := filepath.Join(dir, "wrapped.json")
	require.NoError(t, os.WriteFile(wrapped, []byte(charizardJSON), 0644))
	raw, err := readRawCard(wrapped)
	require.NoError(t, err)
	assert.Equal(t, "Charizard", raw.Name)
	assert.Equal(t, "Base", raw.Set.Name)
	require.NotNil(t, raw.TCGPlayer)
	assert.Len(t, raw.TCGPlayer.Prices, 2)

	bare := filepath.Join(dir, "bare.json")
	require.NoError(t, os.WriteFile(bare, []byte(`{"name": "Pikachu", "rarity": "Common"}`), 0644))
	raw, err = readRawCard(bare)
	require.NoError(t, err)
	assert.Equal(t, "Pikachu", raw.Name)

	_, err = readRawCard(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestClassifyCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charizard.json")
	require.NoError(t, os.WriteFile(path, []byte(charizardJSON), 0644))

	out, err := runCommand(t, "", "classify", path)
	require.NoError(t, err)
	// Without characteristics first edition prices are excluded
	assert.Contains(t, out, "holofoil")
	assert.Contains(t, out, "350.50 (holofoil)")
	assert.Contains(t, out, "Holo")

	out, err = runCommand(t, "", "classify", path, "--price-category", "1stEditionHolofoil")
	require.NoError(t, err)
	assert.Contains(t, out, "1st Edition")
}

func TestPriceCommand(t *testing.T) {
	out, err := runCommand(t, "", "price", "--name", "Pikachu", "--set", "McDonald's Collection 2021", "--char", "Holo")
	require.NoError(t, err)
	assert.Contains(t, out, "McDonald's Collection Estimate")
	assert.Contains(t, out, "3.99")
	assert.Contains(t, out, "5.19")
}

func TestParseCommand(t *testing.T) {
	out, err := runCommand(t, "Charizard\nHP 120\n4/102\n", "parse")
	require.NoError(t, err)
	assert.Contains(t, out, "Charizard")
	assert.Contains(t, out, "4/102")

	out, err = runCommand(t, "", "parse")
	require.NoError(t, err)
	assert.Contains(t, out, "(none)")
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3"}}, []columnAlignment{alignLeft, alignRight})
	assert.Contains(t, out, "A")
	assert.Contains(t, out, "3")
	assert.Equal(t, "", renderTable(nil, nil, nil))
}
