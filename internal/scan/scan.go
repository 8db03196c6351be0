// Package scan finds card images in a scans folder and groups the images
// that belong to the same card.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Group is the set of images showing one card. Scanner pairs are front
// then back.
type Group struct {
	Key            string
	Paths          []string
	SequentialPair bool
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

const extPattern = `\.(?:jpg|jpeg|png|webp|bmp|tiff)$`

var (
	sequentialRe = regexp.MustCompile(`(?i)^(.*?)(\d+)` + extPattern)

	// Tried in order for images that are not part of a scanner pair
	groupPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^(.*?)[_\-\s](\d+)` + extPattern),
		regexp.MustCompile(`(?i)^(.*?)\s*\((\d+)\)` + extPattern),
		regexp.MustCompile(`(?i)^(.*?)\s*-\s*(\d+)` + extPattern),
		regexp.MustCompile(`(?i)^(.*?)\s*\[\s*(\d+)\s*\]` + extPattern),
	}
)

// FindImages returns the image files directly inside dir, sorted.
func FindImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scans folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// FindGroups scans dir and groups its images.
func FindGroups(dir string) ([]Group, error) {
	files, err := FindImages(dir)
	if err != nil {
		return nil, err
	}

	groups := GroupImages(files)

	pairs := 0
	total := 0
	for _, g := range groups {
		total += len(g.Paths)
		if g.SequentialPair {
			pairs++
		}
	}
	log.Info().
		Int("groups", len(groups)).
		Int("images", total).
		Int("sequentialPairs", pairs).
		Str("dir", dir).
		Msg("found image groups")

	return groups, nil
}

type numberedFile struct {
	path   string
	prefix string
	number int
}

// GroupImages groups sorted image paths. Consecutively numbered files with
// the same prefix become front/back pairs keyed "Card_NNN". The rest are
// grouped by a trailing "_1", " (1)", " - 1" or " [1]" suffix, falling back
// to the file name without extension.
func GroupImages(files []string) []Group {
	var groups []Group
	used := make(map[string]bool)
	keys := make(map[string]bool)

	// Sequential scanner pairs, prefixes in order of first appearance
	var prefixes []string
	byPrefix := make(map[string][]numberedFile)
	for _, path := range files {
		m := sequentialRe.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if _, ok := byPrefix[m[1]]; !ok {
			prefixes = append(prefixes, m[1])
		}
		byPrefix[m[1]] = append(byPrefix[m[1]], numberedFile{path: path, prefix: m[1], number: n})
	}

	for _, prefix := range prefixes {
		numbered := byPrefix[prefix]
		sort.SliceStable(numbered, func(i, j int) bool { return numbered[i].number < numbered[j].number })

		for i := 0; i+1 < len(numbered); i += 2 {
			front, back := numbered[i], numbered[i+1]
			if back.number != front.number+1 {
				continue
			}
			key := fmt.Sprintf("Card_%03d", front.number)
			if keys[key] {
				key = strings.TrimRight(prefix, "_- ") + "_" + key
			}
			keys[key] = true
			groups = append(groups, Group{
				Key:            key,
				Paths:          []string{front.path, back.path},
				SequentialPair: true,
			})
			used[front.path] = true
			used[back.path] = true
		}
	}

	// Everything else
	index := make(map[string]int)
	for _, path := range files {
		if used[path] {
			continue
		}
		key := groupKey(filepath.Base(path))
		if i, ok := index[key]; ok {
			groups[i].Paths = append(groups[i].Paths, path)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, Group{Key: key, Paths: []string{path}})
	}

	return groups
}

func groupKey(name string) string {
	for _, re := range groupPatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			if key := strings.TrimSpace(strings.TrimRight(m[1], "_- ")); key != "" {
				return key
			}
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
