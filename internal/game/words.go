package game

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed words/*.txt
var wordsFS embed.FS

// WordTable maps each category to its candidate words.
type WordTable map[Category][]string

func (t WordTable) Words(category Category) []string {
	return t[category]
}

// DefaultWords returns the word tables embedded in the binary.
func DefaultWords() WordTable {
	table := WordTable{}
	for _, c := range Categories {
		b, err := fs.ReadFile(wordsFS, "words/"+string(c)+".txt")
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(b), "\n") {
			if w := Normalize(line); w != "" {
				table[c] = append(table[c], w)
			}
		}
	}
	return table
}

// Merge adds words from other, skipping unknown categories and duplicates.
func (t WordTable) Merge(other WordTable) WordTable {
	out := WordTable{}
	for c, words := range t {
		out[c] = append([]string(nil), words...)
	}
	for c, words := range other {
		if _, ok := ParseCategory(string(c)); !ok {
			continue
		}
		seen := make(map[string]struct{}, len(out[c]))
		for _, w := range out[c] {
			seen[w] = struct{}{}
		}
		for _, w := range words {
			w = Normalize(w)
			if w == "" {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			out[c] = append(out[c], w)
		}
	}
	return out
}
