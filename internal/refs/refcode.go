package refs

import (
	"regexp"
	"strings"
)

const maxRefCodeLen = 50

var (
	authorWordRe = regexp.MustCompile(`^[A-Z][a-z]+`)
	yearDigitsRe = regexp.MustCompile(`\d+`)
)

// CreateRefCode derives a short "Author Year" code from a full citation
// string. Personal communications and unpublished material keep their
// descriptive year markers. Codes longer than 50 characters are truncated.
func CreateRefCode(citation string) string {
	var head, year string
	switch {
	case strings.Contains(citation, "personal communication"):
		head = citation[:strings.Index(citation, " personal")]
		year = "pers. comm."
	case strings.Contains(citation, "unpublished"):
		head = citation[:strings.Index(citation, "unpublished")]
		year = "unpub."
	default:
		if idx := strings.Index(citation, ")"); idx >= 0 {
			head = citation[:idx]
		} else {
			head = citation
		}
		year = strings.Join(yearDigitsRe.FindAllString(head, -1), "")
	}
	head = strings.ReplaceAll(head, ",", "")

	var authors []string
	for _, word := range strings.Fields(head) {
		if authorWordRe.MatchString(word) {
			authors = append(authors, word)
		}
	}
	code := strings.Join(authors, " ") + " " + year
	if len(code) > maxRefCodeLen {
		code = code[:maxRefCodeLen]
	}
	return code
}

// CreateReportRefCode prefixes a report identifier with "RP " unless it
// already carries the RFA marker, truncating to 50 characters.
func CreateReportRefCode(id string) string {
	code := id
	if !strings.Contains(id, "^RFA") {
		code = "RP " + id
	}
	if len(code) > maxRefCodeLen {
		code = code[:maxRefCodeLen]
	}
	return code
}
