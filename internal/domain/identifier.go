package domain

import (
	"regexp"
	"strings"
)

// IdentifierKind distinguishes the identifier forms accepted by quick-add.
type IdentifierKind string

// Identifier kinds.
const (
	IdentifierDOI   IdentifierKind = "doi"
	IdentifierArXiv IdentifierKind = "arxiv"
)

// Identifier is a normalized external paper identifier.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

// String renders the identifier as kind:value.
func (i Identifier) String() string {
	return string(i.Kind) + ":" + i.Value
}

var (
	doiPattern      = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)
	arxivNewPattern = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
	arxivOldPattern = regexp.MustCompile(`^[a-z\-]+(\.[A-Z]{2})?/\d{7}(v\d+)?$`)
)

var doiPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
	"doi:",
}

var arxivPrefixes = []string{
	"https://arxiv.org/abs/",
	"http://arxiv.org/abs/",
	"https://arxiv.org/pdf/",
	"http://arxiv.org/pdf/",
	"arxiv:",
}

// NormalizeDOI strips resolver prefixes and lowercases the DOI.
func NormalizeDOI(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	for _, p := range doiPrefixes {
		if strings.HasPrefix(lower, p) {
			s = s[len(p):]
			break
		}
	}
	return strings.ToLower(s)
}

// IsDOI reports whether raw is a DOI, with or without a resolver prefix.
func IsDOI(raw string) bool {
	return doiPattern.MatchString(NormalizeDOI(raw))
}

// ParseIdentifier classifies raw as a DOI or an arXiv id.
func ParseIdentifier(raw string) (Identifier, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Identifier{}, NewValidationError("identifier", "is required")
	}

	if doi := NormalizeDOI(s); doiPattern.MatchString(doi) {
		return Identifier{Kind: IdentifierDOI, Value: doi}, nil
	}

	id := s
	lower := strings.ToLower(id)
	for _, p := range arxivPrefixes {
		if strings.HasPrefix(lower, p) {
			id = id[len(p):]
			break
		}
	}
	id = strings.TrimSuffix(id, ".pdf")
	if arxivNewPattern.MatchString(id) || arxivOldPattern.MatchString(id) {
		return Identifier{Kind: IdentifierArXiv, Value: id}, nil
	}

	return Identifier{}, NewValidationError("identifier", "must be a DOI or an arXiv id")
}
