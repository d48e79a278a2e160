package query

import (
	"strings"

	"github.com/spendsense/spendsense/internal/model"
)

// Classifier maps normalized query text to an intent and a query type using
// ordered keyword rules. It is deterministic: the same text always resolves
// to the same intent.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier with the given vocabularies.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// DetectIntent returns the first intent whose rule matches the normalized
// query. Rules run in priority order and the earliest match wins; when
// nothing matches the configured default intent is returned.
func (c *Classifier) DetectIntent(normalized string) model.Intent {
	for _, rule := range c.cfg.IntentRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				return rule.Intent
			}
		}
	}
	return c.cfg.DefaultIntent
}

// DetectQueryType classifies the response shape independently of the
// intent, defaulting to a summary.
func (c *Classifier) DetectQueryType(normalized string) model.QueryType {
	for _, rule := range c.cfg.QueryTypeRules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(normalized, keyword) {
				return rule.Type
			}
		}
	}
	return c.cfg.DefaultType
}
