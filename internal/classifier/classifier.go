// Package classifier assigns records to a subsidiary.
//
// Explicit subsidiary and business fields are honoured first. Otherwise every
// subsidiary is scored against its keyword, category and role rules and the
// default subsidiary wins unless another one scores strictly higher.
package classifier

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// Signal weights
const (
	KeywordWeight  = 2
	CategoryWeight = 3
	RoleWeight     = 3
)

// Reasons reported by Explain
const (
	ReasonExplicitSubsidiary = "explicit_subsidiary"
	ReasonExplicitBusiness   = "explicit_business"
	ReasonScore              = "score"
	ReasonDefault            = "default"
)

// Record carries the signals extracted from one entity
type Record struct {
	Subsidiary string   `json:"subsidiary,omitempty"`
	Business   string   `json:"business,omitempty"`
	Text       []string `json:"text,omitempty"`
	Category   string   `json:"category,omitempty"`
	Role       string   `json:"role,omitempty"`
}

// Decision explains a classification
type Decision struct {
	Subsidiary domain.Subsidiary              `json:"subsidiary"`
	Reason     string                         `json:"reason"`
	Scores     map[domain.Subsidiary]int      `json:"scores,omitempty"`
	Matches    map[domain.Subsidiary][]string `json:"matches,omitempty"`
}

// Classifier scores records against a mutable rule set. It is safe for
// concurrent use; rule changes apply to subsequent classifications.
type Classifier struct {
	mu       sync.RWMutex
	rules    RuleSet
	defaults RuleSet
}

// New creates a classifier. A nil rule set means DefaultRuleSet.
func New(rules RuleSet) *Classifier {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	rules = rules.Clone()
	for _, sub := range domain.Subsidiaries() {
		if _, ok := rules[sub]; !ok {
			rules[sub] = NewRules(RuleConfig{})
		}
	}
	return &Classifier{
		rules:    rules,
		defaults: rules.Clone(),
	}
}

// Classify returns the subsidiary for rec
func (c *Classifier) Classify(rec Record) domain.Subsidiary {
	return c.Explain(rec).Subsidiary
}

// Explain classifies rec and reports how the decision was reached
func (c *Classifier) Explain(rec Record) Decision {
	if sub, ok := explicit(rec.Subsidiary); ok {
		return Decision{Subsidiary: sub, Reason: ReasonExplicitSubsidiary}
	}
	if sub, ok := explicit(rec.Business); ok {
		return Decision{Subsidiary: sub, Reason: ReasonExplicitBusiness}
	}

	text := strings.ToLower(strings.Join(rec.Text, " "))
	decision := Decision{
		Subsidiary: domain.DefaultSubsidiary,
		Reason:     ReasonDefault,
		Scores:     make(map[domain.Subsidiary]int, len(domain.Subsidiaries())),
		Matches:    make(map[domain.Subsidiary][]string),
	}

	c.mu.RLock()
	for _, sub := range domain.Subsidiaries() {
		score, matches := c.rules[sub].score(text, rec.Category, rec.Role)
		decision.Scores[sub] = score
		if len(matches) > 0 {
			decision.Matches[sub] = matches
		}
	}
	c.mu.RUnlock()

	kintsugi := decision.Scores[domain.SubsidiaryKintsugi]
	takosuya := decision.Scores[domain.SubsidiaryTakosuya]
	switch {
	case takosuya > kintsugi:
		decision.Subsidiary = domain.SubsidiaryTakosuya
		decision.Reason = ReasonScore
	case kintsugi > 0:
		decision.Reason = ReasonScore
	}

	return decision
}

func (r *Rules) score(text, category, role string) (int, []string) {
	var (
		score   int
		matches []string
	)
	for kw := range r.keywords {
		if strings.Contains(text, kw) {
			score += KeywordWeight
			matches = append(matches, "keyword:"+kw)
		}
	}
	if category != "" && r.categories.has(category) {
		score += CategoryWeight
		matches = append(matches, "category:"+canonical(category))
	}
	if role != "" && r.roles.has(role) {
		score += RoleWeight
		matches = append(matches, "role:"+canonical(role))
	}
	sort.Strings(matches)
	return score, matches
}

// explicit applies the substring test used for subsidiary and business fields
func explicit(value string) (domain.Subsidiary, bool) {
	v := strings.ToLower(value)
	switch {
	case v == "":
		return "", false
	case strings.Contains(v, "kintsugi"):
		return domain.SubsidiaryKintsugi, true
	case strings.Contains(v, "takosuya"), strings.Contains(v, "tako"):
		return domain.SubsidiaryTakosuya, true
	}
	return "", false
}

// Add registers a signal value for sub. It reports whether the value was new.
func (c *Classifier) Add(sub domain.Subsidiary, kind SignalKind, value string) (bool, error) {
	return c.mutate(sub, kind, value, true)
}

// Remove drops a signal value from sub. It reports whether the value existed.
func (c *Classifier) Remove(sub domain.Subsidiary, kind SignalKind, value string) (bool, error) {
	return c.mutate(sub, kind, value, false)
}

func (c *Classifier) mutate(sub domain.Subsidiary, kind SignalKind, value string, add bool) (bool, error) {
	if !sub.IsValid() {
		return false, apperrors.NewValidationError(fmt.Sprintf("unknown subsidiary %q", sub))
	}
	if canonical(value) == "" {
		return false, apperrors.NewValidationError("rule value cannot be empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rules := c.rules[sub]
	switch {
	case kind == SignalKeyword && add:
		return rules.AddKeyword(value), nil
	case kind == SignalKeyword:
		return rules.RemoveKeyword(value), nil
	case kind == SignalCategory && add:
		return rules.AddCategory(value), nil
	case kind == SignalCategory:
		return rules.RemoveCategory(value), nil
	case kind == SignalRole && add:
		return rules.AddRole(value), nil
	case kind == SignalRole:
		return rules.RemoveRole(value), nil
	}
	return false, apperrors.NewValidationError(fmt.Sprintf("unknown signal kind %q", kind))
}

// Snapshot returns a copy of the current rules
func (c *Classifier) Snapshot() map[domain.Subsidiary]RuleConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rules.Snapshot()
}

// Reset restores the rules the classifier was created with
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules = c.defaults.Clone()
}
