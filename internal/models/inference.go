package models

import (
	"errors"
	"fmt"
	"strings"
)

// InferenceRecord is a single (head, relation, tails) result returned by the
// inference service.
type InferenceRecord struct {
	Head     string   `json:"head" doc:"Head phrase"`
	Relation string   `json:"relation" doc:"Relation linking the head to the tails"`
	Tails    []string `json:"tails" doc:"Generated tails (empty for dry runs)"`
}

// InferenceRecords is the flat result list of one generation.
type InferenceRecords []InferenceRecord

// Normalize replaces nil tail lists with empty ones, so that the records
// serialize the same way the inference service sent them.
func (rs InferenceRecords) Normalize() InferenceRecords {
	if rs == nil {
		return InferenceRecords{}
	}
	for i := range rs {
		if rs[i].Tails == nil {
			rs[i].Tails = []string{}
		}
	}
	return rs
}

// InferenceResponse is the success body of the inference service.
type InferenceResponse struct {
	Graph InferenceRecords `json:"graph" doc:"Inference results"`
	Text  []string         `json:"text" doc:"Lower-cased tokens of the source text"`
}

// ContextKeyMode selects how the filtering context is keyed in the request
// body sent to the inference service.
type ContextKeyMode string

const (
	// ContextKeyLegacy keys the context entry by the context text itself.
	// This is what the deployed playground has always sent.
	ContextKeyLegacy ContextKeyMode = "legacy"
	// ContextKeyField keys the context entry by the fixed name "context".
	ContextKeyField ContextKeyMode = "field"
)

// ParseContextKeyMode maps an option value to a ContextKeyMode.
func ParseContextKeyMode(s string) (ContextKeyMode, error) {
	switch ContextKeyMode(s) {
	case "", ContextKeyLegacy:
		return ContextKeyLegacy, nil
	case ContextKeyField:
		return ContextKeyField, nil
	}
	return "", fmt.Errorf("unknown context key mode %q", s)
}

var (
	ErrNothingToInfer  = errors.New("either text or at least one non-blank head is required")
	ErrUnknownRelation = errors.New("unknown relation")
)

// RequestConfig holds the options of one generation request.
type RequestConfig struct {
	Text               string   `json:"text" required:"false" maxLength:"10000" example:"PersonX becomes a great basketball player" doc:"Main text input to extract heads from if enabled, otherwise used as is for knowledge generation"`
	Model              string   `json:"model" required:"false" enum:"comet-bart,comet-gpt2,gpt2" default:"comet-bart" doc:"Model to use for knowledge generation"`
	Heads              []string `json:"heads" required:"false" doc:"Custom head inputs that will be processed as is"`
	Relations          []string `json:"relations" required:"false" doc:"Subset of relations to match from. By default, all relations are eligible to be matched"`
	ExtractHeads       bool     `json:"extractHeads" required:"false" default:"true" doc:"Extract knowledge heads from the text using the head processors"`
	MatchRelations     bool     `json:"matchRelations" required:"false" default:"true" doc:"Match relations with heads using the relation processors; otherwise heads are paired with all given relations"`
	DryRun             bool     `json:"dryRun" required:"false" default:"false" doc:"Skip generation and return the input graph that would be sent to the model"`
	HeadProcs          []string `json:"headProcs" required:"false" enum:"sentence_extractor,noun_phrase_extractor,verb_phrase_extractor" doc:"Strategies to use for extracting heads from the text"`
	RelProcs           []string `json:"relProcs" required:"false" enum:"simple_relation_matcher,swem_relation_matcher,distilbert_relation_matcher,bert_relation_matcher" doc:"Strategy to use for matching relations with heads"`
	InferenceFiltering bool     `json:"inferenceFiltering" required:"false" default:"false" doc:"Filter out generations that are irrelevant to the context"`
	Context            string   `json:"context,omitempty" required:"false" maxLength:"10000" doc:"Custom context used for filtering. Defaults to the text"`
	Threshold          float64  `json:"threshold" required:"false" minimum:"0" maximum:"1" default:"0.5" doc:"Relevancy threshold used for filtering"`
}

// DefaultRequestConfig returns the initial state of the playground form.
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{
		Model:          ModelCometBART,
		Heads:          []string{},
		Relations:      []string{},
		ExtractHeads:   true,
		MatchRelations: true,
		HeadProcs:      []string{"sentence_extractor", "noun_phrase_extractor", "verb_phrase_extractor"},
		RelProcs:       []string{"simple_relation_matcher"},
		Threshold:      0.5,
	}
}

// WithDefaults fills in the list fields a client left out. An explicitly
// empty list is kept.
func (c RequestConfig) WithDefaults() RequestConfig {
	defaults := DefaultRequestConfig()
	if c.Model == "" {
		c.Model = defaults.Model
	}
	if c.Heads == nil {
		c.Heads = defaults.Heads
	}
	if c.Relations == nil {
		c.Relations = defaults.Relations
	}
	if c.HeadProcs == nil {
		c.HeadProcs = defaults.HeadProcs
	}
	if c.RelProcs == nil {
		c.RelProcs = defaults.RelProcs
	}
	return c
}

// NonBlankHeads returns the explicit heads that contain more than whitespace.
// The heads are returned untrimmed.
func (c RequestConfig) NonBlankHeads() []string {
	heads := []string{}
	for _, h := range c.Heads {
		if strings.TrimSpace(h) != "" {
			heads = append(heads, h)
		}
	}
	return heads
}

// Validate checks whether the config can be submitted.
func (c RequestConfig) Validate() error {
	if strings.TrimSpace(c.Text) == "" && len(c.NonBlankHeads()) == 0 {
		return ErrNothingToInfer
	}
	for _, r := range c.Relations {
		if !IsRelation(r) {
			return fmt.Errorf("%w: %s", ErrUnknownRelation, r)
		}
	}
	return nil
}

// Payload builds the request body sent to the inference service.
func (c RequestConfig) Payload(mode ContextKeyMode) map[string]any {
	data := map[string]any{
		"text":           c.Text,
		"model":          c.Model,
		"heads":          c.NonBlankHeads(),
		"relations":      orEmpty(c.Relations),
		"extractHeads":   c.ExtractHeads,
		"matchRelations": c.MatchRelations,
		"dryRun":         c.DryRun,
		"headProcs":      orEmpty(c.HeadProcs),
		"relProcs":       orEmpty(c.RelProcs),
		"threshold":      c.Threshold,
	}

	if c.InferenceFiltering {
		context := c.Context
		if context == "" {
			context = c.Text
		}
		if mode == ContextKeyField {
			data["context"] = context
		} else {
			data[c.Context] = context
		}
	}

	return data
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
