package query

import (
	"regexp"
	"strings"

	"github.com/spendsense/spendsense/internal/model"
)

var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Parser composes the classifier and the extractors into a single pure
// function over query text. It performs no I/O.
type Parser struct {
	classifier *Classifier
	cfg        Config
}

// NewParser creates a parser with the given vocabularies.
func NewParser(cfg Config) *Parser {
	return &Parser{
		classifier: NewClassifier(cfg),
		cfg:        cfg,
	}
}

// NewDefaultParser creates a parser with the production vocabularies.
func NewDefaultParser() *Parser {
	return NewParser(DefaultConfig())
}

// Parse turns raw query text into a structured intent. The raw text is kept
// on the result for debugging.
func (p *Parser) Parse(raw string) model.ParsedIntent {
	normalized := Normalize(raw)

	return model.ParsedIntent{
		Intent:    p.classifier.DetectIntent(normalized),
		Time:      ExtractTime(normalized),
		Category:  ExtractCategory(normalized, p.cfg.KnownCategories),
		Filters:   make(map[string]any),
		RawQuery:  raw,
		QueryType: p.classifier.DetectQueryType(normalized),
	}
}

// Normalize lower-cases the query, trims surrounding whitespace and strips
// punctuation so keyword matching sees a uniform shape.
func Normalize(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	return punctuationRegex.ReplaceAllString(normalized, "")
}
