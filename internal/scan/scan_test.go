package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupImages_SequentialPairs(t *testing.T) {
	groups := GroupImages([]string{
		"scans/IMG_0001.jpg",
		"scans/IMG_0002.jpg",
		"scans/IMG_0003.jpg",
		"scans/IMG_0004.jpg",
		"scans/IMG_0005.jpg",
	})

	require.Len(t, groups, 3)
	assert.Equal(t, Group{Key: "Card_001", Paths: []string{"scans/IMG_0001.jpg", "scans/IMG_0002.jpg"}, SequentialPair: true}, groups[0])
	assert.Equal(t, Group{Key: "Card_003", Paths: []string{"scans/IMG_0003.jpg", "scans/IMG_0004.jpg"}, SequentialPair: true}, groups[1])
	// The odd one out is grouped by its prefix
	assert.Equal(t, Group{Key: "IMG", Paths: []string{"scans/IMG_0005.jpg"}}, groups[2])
}

func TestGroupImages_NonConsecutive(t *testing.T) {
	groups := GroupImages([]string{"scan1.png", "scan3.png"})
	require.Len(t, groups, 2)
	assert.False(t, groups[0].SequentialPair)
	assert.Equal(t, "scan1", groups[0].Key)
	assert.Equal(t, "scan3", groups[1].Key)
}

func TestGroupImages_DuplicatePairKeys(t *testing.T) {
	groups := GroupImages([]string{"a1.jpg", "a2.jpg", "b1.jpg", "b2.jpg"})
	require.Len(t, groups, 2)
	assert.Equal(t, "Card_001", groups[0].Key)
	assert.Equal(t, "b_Card_001", groups[1].Key)
}

func TestGroupKey(t *testing.T) {
	tests := map[string]string{
		"Charizard_1.jpg":    "Charizard",
		"Charizard (2).JPG":  "Charizard",
		"Charizard - 3.png":  "Charizard",
		"Charizard [4].webp": "Charizard",
		"Charizard.jpg":      "Charizard",
		"front.tiff":         "front",
	}
	for name, want := range tests {
		assert.Equal(t, want, groupKey(name), name)
	}
}

func TestGroupImages_MergesByKey(t *testing.T) {
	groups := GroupImages([]string{"Mew front.jpg", "Pikachu (1).jpg", "Pikachu (3).jpg"})
	require.Len(t, groups, 2)
	assert.Equal(t, "Mew front", groups[0].Key)
	assert.Equal(t, Group{Key: "Pikachu", Paths: []string{"Pikachu (1).jpg", "Pikachu (3).jpg"}}, groups[1])
}

func TestFindGroups(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"scan_01.jpg", "scan_02.JPG", "notes.txt", "Mew.PNG"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))

	images, err := FindImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "Mew.PNG"),
		filepath.Join(dir, "scan_01.jpg"),
		filepath.Join(dir, "scan_02.JPG"),
	}, images)

	groups, err := FindGroups(dir)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Card_001", groups[0].Key)
	assert.Equal(t, "Mew", groups[1].Key)

	_, err = FindGroups(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
