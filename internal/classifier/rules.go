package classifier

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// SignalKind names one of the three rule lists kept per subsidiary
type SignalKind string

const (
	SignalKeyword  SignalKind = "keyword"
	SignalCategory SignalKind = "category"
	SignalRole     SignalKind = "role"
)

// ParseSignalKind resolves user input to a signal kind
func ParseSignalKind(s string) (SignalKind, bool) {
	switch SignalKind(strings.ToLower(strings.TrimSpace(s))) {
	case SignalKeyword, "keywords":
		return SignalKeyword, true
	case SignalCategory, "categories":
		return SignalCategory, true
	case SignalRole, "roles":
		return SignalRole, true
	}
	return "", false
}

type set map[string]struct{}

func newSet(values []string) set {
	s := make(set, len(values))
	for _, v := range values {
		s.add(v)
	}
	return s
}

func (s set) add(v string) bool {
	v = canonical(v)
	if v == "" {
		return false
	}
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}
	return true
}

func (s set) remove(v string) bool {
	v = canonical(v)
	if _, ok := s[v]; !ok {
		return false
	}
	delete(s, v)
	return true
}

func (s set) has(v string) bool {
	_, ok := s[canonical(v)]
	return ok
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func canonical(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Rules holds the signals that score a record towards one subsidiary.
// Values are stored lower-cased and trimmed.
type Rules struct {
	keywords   set
	categories set
	roles      set
}

// NewRules builds a rule set from plain lists
func NewRules(cfg RuleConfig) *Rules {
	return &Rules{
		keywords:   newSet(cfg.Keywords),
		categories: newSet(cfg.Categories),
		roles:      newSet(cfg.Roles),
	}
}

func (r *Rules) AddKeyword(v string) bool     { return r.keywords.add(v) }
func (r *Rules) RemoveKeyword(v string) bool  { return r.keywords.remove(v) }
func (r *Rules) AddCategory(v string) bool    { return r.categories.add(v) }
func (r *Rules) RemoveCategory(v string) bool { return r.categories.remove(v) }
func (r *Rules) AddRole(v string) bool        { return r.roles.add(v) }
func (r *Rules) RemoveRole(v string) bool     { return r.roles.remove(v) }

// Config returns the rules as sorted lists
func (r *Rules) Config() RuleConfig {
	return RuleConfig{
		Keywords:   r.keywords.sorted(),
		Categories: r.categories.sorted(),
		Roles:      r.roles.sorted(),
	}
}

func (r *Rules) clone() *Rules {
	return NewRules(r.Config())
}

// RuleConfig is the serialized form of Rules
type RuleConfig struct {
	Keywords   []string `yaml:"keywords" json:"keywords"`
	Categories []string `yaml:"categories" json:"categories"`
	Roles      []string `yaml:"roles" json:"roles"`
}

// RuleSet maps each subsidiary to its rules
type RuleSet map[domain.Subsidiary]*Rules

// Clone deep-copies the rule set
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for sub, rules := range rs {
		out[sub] = rules.clone()
	}
	return out
}

// Snapshot returns the serialized form of every subsidiary's rules
func (rs RuleSet) Snapshot() map[domain.Subsidiary]RuleConfig {
	out := make(map[domain.Subsidiary]RuleConfig, len(rs))
	for sub, rules := range rs {
		out[sub] = rules.Config()
	}
	return out
}

// DefaultRuleSet returns the built-in rules
func DefaultRuleSet() RuleSet {
	return RuleSet{
		domain.SubsidiaryKintsugi: NewRules(RuleConfig{
			Keywords: []string{
				"kintsugi", "repair", "engine", "mechanic", "garage", "tow",
				"brake", "transmission", "tune", "car", "vehicle",
			},
			Categories: []string{
				string(domain.CategoryStandardRepair),
				string(domain.CategoryEngineReplacement),
				string(domain.CategorySpecialWork),
			},
			Roles: []string{"mechanic", "technician", "tow driver", "service advisor"},
		}),
		domain.SubsidiaryTakosuya: NewRules(RuleConfig{
			Keywords: []string{
				"takosuya", "tako", "food", "taco", "takoyaki", "kitchen",
				"chef", "drink", "beverage", "catering", "meal",
			},
			Categories: []string{
				string(domain.CategoryFoodOrder),
				string(domain.CategoryBeverage),
			},
			Roles: []string{"chef", "cook", "server", "cashier", "kitchen staff"},
		}),
	}
}

type rulesFile struct {
	Subsidiaries map[string]RuleConfig `yaml:"subsidiaries"`
}

// LoadRuleSet reads the subsidiaries section of a rules file. Subsidiaries named
// in the file replace the built-in rules; the others keep their defaults.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to read rules file %s", path), err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet is LoadRuleSet over raw YAML
func ParseRuleSet(data []byte) (RuleSet, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.NewConfigError("failed to parse rules", err)
	}

	rs := DefaultRuleSet()
	for name, cfg := range file.Subsidiaries {
		sub, ok := domain.ParseSubsidiary(name)
		if !ok {
			return nil, apperrors.NewConfigError(fmt.Sprintf("unknown subsidiary %q in rules", name), nil)
		}
		rs[sub] = NewRules(cfg)
	}
	return rs, nil
}
