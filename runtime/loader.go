package runtime

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"raid-lab/errors"

	"github.com/samber/lo"
)

//go:embed censored/*
var censoredFolder embed.FS

//go:embed catalog/*
var catalogFolder embed.FS

func CensoredFS() fs.FS { return censoredFolder }
func CatalogFS() fs.FS  { return catalogFolder }

// CensoredData carries the loaded words plus the languages found, for logging.
type CensoredData struct {
	Words     []string
	Languages []string
}

// CensoredLoader reads one word per line from every {lang}.txt file of a
// directory.
type CensoredLoader struct {
	fs fs.FS
}

func NewCensoredLoader(f fs.FS) *CensoredLoader {
	return &CensoredLoader{fs: f}
}

func (l *CensoredLoader) LoadAll(dir string) (*CensoredData, error) {
	files, err := readTextFiles(l.fs, dir)
	if err != nil {
		return nil, err
	}

	var languages, words []string
	for name, lines := range files {
		languages = append(languages, name)
		words = append(words, lines...)
	}
	sort.Strings(languages)
	words = lo.Uniq(words)
	if len(words) == 0 {
		return nil, errors.ErrEmptyWords
	}
	return &CensoredData{Words: words, Languages: languages}, nil
}

// CatalogLoader reads boss tier lists from tier{N}.txt files, one boss per
// line in the order the host picks them.
type CatalogLoader struct {
	fs fs.FS
}

func NewCatalogLoader(f fs.FS) *CatalogLoader {
	return &CatalogLoader{fs: f}
}

func (l *CatalogLoader) LoadAll(dir string) (map[int][]string, error) {
	files, err := readTextFiles(l.fs, dir)
	if err != nil {
		return nil, err
	}

	catalog := make(map[int][]string, len(files))
	for name, lines := range files {
		tier, err := strconv.Atoi(strings.TrimPrefix(name, "tier"))
		if err != nil || !strings.HasPrefix(name, "tier") {
			return nil, fmt.Errorf("catalog file %q: %w", name, errors.ErrUnknownTier)
		}
		if len(lines) == 0 {
			continue
		}
		catalog[tier] = lo.Uniq(lines)
	}
	if len(catalog) == 0 {
		return nil, errors.ErrEmptyCatalog
	}
	return catalog, nil
}

// readTextFiles returns the non-blank trimmed lines of every .txt file of dir,
// keyed by file name without extension.
func readTextFiles(f fs.FS, dir string) (map[string][]string, error) {
	entries, err := fs.ReadDir(f, dir)
	if err != nil {
		return nil, err
	}

	files := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		data, err := fs.ReadFile(f, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		// Scanner handles \n and \r\n alike
		var lines []string
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				lines = append(lines, line)
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		files[strings.TrimSuffix(entry.Name(), ".txt")] = lines
	}
	return files, nil
}
