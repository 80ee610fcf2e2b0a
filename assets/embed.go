// assets/embed.go
//
// Embedded puzzle data shipped with the binary.
// Files:
//   - answers{5,6,7}.txt:    words the daily fallback and random mode draw from.
//   - dictionary{5,6,7}.txt: allowed guesses per length.
//   - puzzles.json:          dated puzzle table, {"<length>": {"YYYY-MM-DD": {word, clue?}}}.
//   - clues.json:            clue text keyed by lowercase answer.
//   - definitions.json:      {"definitions": {"WORD": ["...", ...]}}.
//
// Any file can be overridden at runtime from WORDS_DIR (see internal/words).

package assets

import (
	"bufio"
	"embed"
	"io/fs"
	"strings"
)

//go:embed *.txt *.json
var FS embed.FS

// ReadLines returns the non-blank, non-comment lines of name in fsys,
// trimmed and lowercased.
func ReadLines(fsys fs.FS, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}
