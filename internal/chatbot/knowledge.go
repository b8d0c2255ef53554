package chatbot

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed knowledge.yaml
var defaultKnowledge []byte

// Rule maps a set of keywords to a canned reply.
type Rule struct {
	Intent      string   `yaml:"intent"`
	Keywords    []string `yaml:"keywords"`
	Response    string   `yaml:"response"`
	Suggestions []string `yaml:"suggestions"`
}

type Fallback struct {
	Response    string   `yaml:"response"`
	Suggestions []string `yaml:"suggestions"`
}

// Knowledge is an ordered rule table. Earlier rules win ties.
type Knowledge struct {
	Fallback Fallback `yaml:"fallback"`
	Rules    []Rule   `yaml:"rules"`
}

// DefaultKnowledge returns the table compiled into the binary.
func DefaultKnowledge() (*Knowledge, error) {
	return ParseKnowledge(defaultKnowledge)
}

// LoadKnowledge reads a YAML table from path.
func LoadKnowledge(path string) (*Knowledge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge: %w", err)
	}
	kb, err := ParseKnowledge(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return kb, nil
}

func ParseKnowledge(data []byte) (*Knowledge, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var kb Knowledge
	if err := dec.Decode(&kb); err != nil {
		return nil, fmt.Errorf("parse knowledge: %w", err)
	}
	if err := kb.normalize(); err != nil {
		return nil, err
	}
	return &kb, nil
}

func (k *Knowledge) normalize() error {
	k.Fallback.Response = strings.TrimSpace(k.Fallback.Response)
	if k.Fallback.Response == "" {
		return errors.New("fallback.response is required")
	}
	seen := make(map[string]struct{}, len(k.Rules))
	for i := range k.Rules {
		rule := &k.Rules[i]
		rule.Intent = strings.TrimSpace(rule.Intent)
		rule.Response = strings.TrimSpace(rule.Response)
		if rule.Intent == "" {
			return fmt.Errorf("rules[%d].intent is required", i)
		}
		if _, ok := seen[rule.Intent]; ok {
			return fmt.Errorf("rules[%d]: duplicate intent %q", i, rule.Intent)
		}
		seen[rule.Intent] = struct{}{}
		if rule.Response == "" {
			return fmt.Errorf("rules[%d].response is required", i)
		}
		keywords := make([]string, 0, len(rule.Keywords))
		dedup := make(map[string]struct{}, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.Join(tokenize(kw), " ")
			if kw == "" {
				continue
			}
			if _, ok := dedup[kw]; ok {
				continue
			}
			dedup[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
		if len(keywords) == 0 {
			return fmt.Errorf("rules[%d].keywords must be non-empty", i)
		}
		rule.Keywords = keywords
	}
	return nil
}
