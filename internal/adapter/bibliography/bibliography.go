// Package bibliography renders citation labels and citation strings from
// bibliography entries. The import core treats the resulting strings as
// opaque; this adapter is the only place that knows their layout.
package bibliography

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const maxLabelLen = 50

// Person is one author of a bibliography entry.
type Person struct {
	First string `yaml:"first"`
	Last  string `yaml:"last"`
}

// String renders the author as "Last, First" (or just the last name).
func (p Person) String() string {
	if p.First == "" {
		return p.Last
	}
	return fmt.Sprintf("%s, %s", p.Last, p.First)
}

// Entry is one bibliography record.
type Entry struct {
	Authors []Person `yaml:"authors"`
	Year    string   `yaml:"year"`
	Title   string   `yaml:"title"`
	Journal string   `yaml:"journal"`
	Volume  string   `yaml:"volume"`
	DOI     string   `yaml:"doi"`
}

// LoadEntries parses a YAML bibliography file into its entries.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bibliography file %s: %w", path, err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse bibliography file %s: %w", path, err)
	}
	return entries, nil
}

// Label renders a short "LastNames Year" label, truncated to 50 characters
// with an ellipsis when longer.
func Label(e Entry) string {
	names := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		names = append(names, a.Last)
	}
	label := fmt.Sprintf("%s %s", strings.Join(names, " "), e.Year)
	if len(label) > maxLabelLen {
		label = label[:maxLabelLen-3] + "..."
	}
	return label
}

// Citation renders the full citation string: author(s), year and title,
// followed by journal, volume and DOI when present.
func Citation(e Entry) string {
	var authors string
	if len(e.Authors) == 1 {
		authors = e.Authors[0].String()
	} else {
		parts := make([]string, 0, len(e.Authors))
		for _, a := range e.Authors {
			parts = append(parts, a.String())
		}
		authors = strings.Join(parts, "; ")
	}

	citation := fmt.Sprintf("%s (%s) %s", authors, e.Year, e.Title)
	for _, extra := range []string{e.Journal, e.Volume, e.DOI} {
		if extra != "" {
			citation += " " + extra
		}
	}
	return citation
}
