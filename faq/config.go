package faq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrConfigNotFound  = errors.New("faq config not found")
	ErrConfigMalformed = errors.New("faq config malformed")
)

// File is the on-disk layout of the FAQ configuration.
type File struct {
	Structured *Structured `json:"faq_structured" yaml:"faq_structured"`
}

// Structured holds the list of categories. Entries are decoded one by one in
// Build so a badly typed entry only costs that category.
type Structured struct {
	Categories []RawCategory `json:"categorii" yaml:"categorii"`
}

// RawCategory is an undecoded entry of the categorii list.
type RawCategory struct {
	data json.RawMessage
	node *yaml.Node
}

func (r *RawCategory) UnmarshalJSON(data []byte) error {
	r.data = append(json.RawMessage(nil), data...)
	return nil
}

func (r *RawCategory) UnmarshalYAML(node *yaml.Node) error {
	r.node = node
	return nil
}

// Decode turns the entry into a CategoryConfig.
func (r RawCategory) Decode() (CategoryConfig, error) {
	var cfg CategoryConfig
	var err error
	if r.node != nil {
		err = r.node.Decode(&cfg)
	} else {
		err = json.Unmarshal(r.data, &cfg)
	}
	return cfg, err
}

// id recovers the category id of an entry that failed to decode, if any.
func (r RawCategory) id() string {
	var head struct {
		ID interface{} `json:"id" yaml:"id"`
	}
	if r.node != nil {
		_ = r.node.Decode(&head)
	} else {
		_ = json.Unmarshal(r.data, &head)
	}
	id, _ := head.ID.(string)
	return id
}

// Build decodes and validates every entry, keeping the usable categories in
// configuration order.
func (s *Structured) Build() ([]*Category, []ValidationError) {
	configs := make([]CategoryConfig, 0, len(s.Categories))
	indexes := make([]int, 0, len(s.Categories))
	var skipped []ValidationError

	for i, raw := range s.Categories {
		cfg, err := raw.Decode()
		if err != nil {
			skipped = append(skipped, ValidationError{
				Index:  i,
				ID:     raw.id(),
				Reason: fmt.Sprintf("invalid entry: %v", err),
			})
			continue
		}
		configs = append(configs, cfg)
		indexes = append(indexes, i)
	}

	categories := make([]*Category, 0, len(configs))
	for j, cfg := range configs {
		cat, err := cfg.Build(indexes[j])
		if err != nil {
			var verr ValidationError
			if errors.As(err, &verr) {
				skipped = append(skipped, verr)
			}
			continue
		}
		categories = append(categories, cat)
	}

	sort.SliceStable(skipped, func(a, b int) bool { return skipped[a].Index < skipped[b].Index })
	return categories, skipped
}

// CategoryConfig is a category exactly as written in the configuration file.
type CategoryConfig struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"nume" yaml:"nume"`
	Emoji     string      `json:"emoji,omitempty" yaml:"emoji,omitempty"`
	Keywords  []string    `json:"keywords" yaml:"keywords"`
	Responses ResponseSet `json:"responses" yaml:"responses"`
}

// ResponseSet maps tier names to response texts and remembers the order in
// which the tiers were written.
type ResponseSet struct {
	Texts map[string]string
	Order []string
}

func (r *ResponseSet) set(tier, text string) {
	if r.Texts == nil {
		r.Texts = make(map[string]string)
	}
	if _, exists := r.Texts[tier]; !exists {
		r.Order = append(r.Order, tier)
	}
	r.Texts[tier] = text
}

// UnmarshalJSON decodes the responses object token by token to keep key order.
func (r *ResponseSet) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("responses must be an object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		tier, _ := keyTok.(string)

		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("responses.%s: %w", tier, err)
		}
		r.set(tier, text)
	}

	_, err = dec.Token()
	return err
}

// UnmarshalYAML walks the mapping node so tier order follows the document.
func (r *ResponseSet) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("responses must be a mapping (line %d)", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		tier := node.Content[i].Value
		var text string
		if err := node.Content[i+1].Decode(&text); err != nil {
			return fmt.Errorf("responses.%s: %w", tier, err)
		}
		r.set(tier, text)
	}
	return nil
}

// MarshalJSON writes the tiers back in file order.
func (r ResponseSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tier := range r.Order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(tier)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Texts[tier])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Category is a validated category ready for matching.
type Category struct {
	ID        string
	Name      string
	Emoji     string
	Keywords  []string
	Responses map[string]string
	TierOrder []string

	// normalized keywords, empty ones already dropped
	normalized []string
}

// ValidationError describes why a category was skipped.
type ValidationError struct {
	Index  int
	ID     string
	Reason string
}

func (e ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("category #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("category #%d (%s): %s", e.Index, e.ID, e.Reason)
}

// Build validates a category and pre-normalizes its keywords.
func (c CategoryConfig) Build(index int) (*Category, error) {
	if c.ID == "" {
		return nil, ValidationError{Index: index, Reason: "missing id"}
	}
	if len(c.Keywords) == 0 {
		return nil, ValidationError{Index: index, ID: c.ID, Reason: "no keywords"}
	}
	if len(c.Responses.Texts) == 0 {
		return nil, ValidationError{Index: index, ID: c.ID, Reason: "no responses"}
	}

	normalized := make([]string, 0, len(c.Keywords))
	for _, kw := range c.Keywords {
		if n := Normalize(kw); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return nil, ValidationError{Index: index, ID: c.ID, Reason: "all keywords are empty after normalization"}
	}

	name := c.Name
	if name == "" {
		name = c.ID
	}

	responses := make(map[string]string, len(c.Responses.Texts))
	for tier, text := range c.Responses.Texts {
		responses[tier] = text
	}

	return &Category{
		ID:         c.ID,
		Name:       name,
		Emoji:      c.Emoji,
		Keywords:   append([]string(nil), c.Keywords...),
		Responses:  responses,
		TierOrder:  append([]string(nil), c.Responses.Order...),
		normalized: normalized,
	}, nil
}

// BuildCategories validates every configured category, keeping the usable
// ones in configuration order.
func BuildCategories(configs []CategoryConfig) ([]*Category, []ValidationError) {
	categories := make([]*Category, 0, len(configs))
	var skipped []ValidationError

	for i, cfg := range configs {
		cat, err := cfg.Build(i)
		if err != nil {
			var verr ValidationError
			if errors.As(err, &verr) {
				skipped = append(skipped, verr)
			}
			continue
		}
		categories = append(categories, cat)
	}

	return categories, skipped
}
