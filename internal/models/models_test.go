package models

import (
	"errors"
	"reflect"
	"testing"
)

// TestNonBlankHeads tests the head filter of RequestConfig
func TestNonBlankHeads(t *testing.T) {
	tests := []struct {
		name     string
		heads    []string
		expected []string
	}{
		{
			name:     "Nil list",
			heads:    nil,
			expected: []string{},
		},
		{
			name:     "Only blanks",
			heads:    []string{"", " ", "\t\n"},
			expected: []string{},
		},
		{
			name:     "Mixed, untrimmed",
			heads:    []string{"", " basketball ", "  ", "PersonX"},
			expected: []string{" basketball ", "PersonX"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RequestConfig{Heads: tt.heads}.NonBlankHeads()
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("NonBlankHeads() = %q, want %q", result, tt.expected)
			}
		})
	}
}

// TestValidate tests the submit gate of RequestConfig
func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		config   RequestConfig
		expected error
	}{
		{
			name:     "Empty",
			config:   RequestConfig{},
			expected: ErrNothingToInfer,
		},
		{
			name:     "Whitespace text and blank heads",
			config:   RequestConfig{Text: "  \n", Heads: []string{"", " "}},
			expected: ErrNothingToInfer,
		},
		{
			name:     "Text only",
			config:   RequestConfig{Text: "PersonX becomes a great basketball player"},
			expected: nil,
		},
		{
			name:     "Head only",
			config:   RequestConfig{Heads: []string{"", "basketball"}},
			expected: nil,
		},
		{
			name:     "Unknown relation",
			config:   RequestConfig{Text: "PersonX", Relations: []string{"xWant", "IsFriendOf"}},
			expected: ErrUnknownRelation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !errors.Is(err, tt.expected) {
				t.Errorf("Validate() = %v, want %v", err, tt.expected)
			}
		})
	}
}

// TestPayload tests the request body sent to the inference service
func TestPayload(t *testing.T) {
	base := DefaultRequestConfig()
	base.Text = "PersonX becomes a great basketball player"
	base.Heads = []string{"", "basketball"}

	t.Run("Without filtering", func(t *testing.T) {
		payload := base.Payload(ContextKeyLegacy)
		expected := map[string]any{
			"text":           "PersonX becomes a great basketball player",
			"model":          "comet-bart",
			"heads":          []string{"basketball"},
			"relations":      []string{},
			"extractHeads":   true,
			"matchRelations": true,
			"dryRun":         false,
			"headProcs":      []string{"sentence_extractor", "noun_phrase_extractor", "verb_phrase_extractor"},
			"relProcs":       []string{"simple_relation_matcher"},
			"threshold":      0.5,
		}
		if !reflect.DeepEqual(payload, expected) {
			t.Errorf("Payload() = %v, want %v", payload, expected)
		}
	})

	t.Run("Nil lists are sent as arrays", func(t *testing.T) {
		payload := RequestConfig{Text: "PersonX"}.Payload(ContextKeyLegacy)
		for _, key := range []string{"heads", "relations", "headProcs", "relProcs"} {
			if v, ok := payload[key].([]string); !ok || v == nil {
				t.Errorf("Payload()[%q] = %#v, want empty list", key, payload[key])
			}
		}
	})

	tests := []struct {
		name     string
		mode     ContextKeyMode
		context  string
		expected map[string]string
	}{
		{
			name:     "Legacy key with context",
			mode:     ContextKeyLegacy,
			context:  "sports",
			expected: map[string]string{"sports": "sports"},
		},
		{
			name:     "Legacy key falls back to text under the empty key",
			mode:     ContextKeyLegacy,
			context:  "",
			expected: map[string]string{"": "PersonX becomes a great basketball player"},
		},
		{
			name:     "Field key with context",
			mode:     ContextKeyField,
			context:  "sports",
			expected: map[string]string{"context": "sports"},
		},
		{
			name:     "Field key falls back to text",
			mode:     ContextKeyField,
			context:  "",
			expected: map[string]string{"context": "PersonX becomes a great basketball player"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := base
			config.InferenceFiltering = true
			config.Context = tt.context
			payload := config.Payload(tt.mode)
			if len(payload) != 11 {
				t.Errorf("Payload() has %d entries, want 11", len(payload))
			}
			for k, v := range tt.expected {
				if payload[k] != v {
					t.Errorf("Payload()[%q] = %v, want %v", k, payload[k], v)
				}
			}
		})
	}
}

// TestWithDefaults tests that omitted lists are defaulted but empty ones kept
func TestWithDefaults(t *testing.T) {
	config := RequestConfig{Text: "PersonX", RelProcs: []string{}}.WithDefaults()
	defaults := DefaultRequestConfig()

	if config.Model != defaults.Model {
		t.Errorf("Model = %q, want %q", config.Model, defaults.Model)
	}
	if !reflect.DeepEqual(config.HeadProcs, defaults.HeadProcs) {
		t.Errorf("HeadProcs = %v, want %v", config.HeadProcs, defaults.HeadProcs)
	}
	if config.RelProcs == nil || len(config.RelProcs) != 0 {
		t.Errorf("RelProcs = %#v, want explicit empty list", config.RelProcs)
	}
	if config.Heads == nil || config.Relations == nil {
		t.Errorf("Heads and Relations must not be nil")
	}
	if config.Text != "PersonX" {
		t.Errorf("Text = %q, want %q", config.Text, "PersonX")
	}
}

// TestParseContextKeyMode tests the option parser
func TestParseContextKeyMode(t *testing.T) {
	tests := []struct {
		in       string
		expected ContextKeyMode
		wantErr  bool
	}{
		{in: "", expected: ContextKeyLegacy},
		{in: "legacy", expected: ContextKeyLegacy},
		{in: "field", expected: ContextKeyField},
		{in: "dynamic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			mode, err := ParseContextKeyMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseContextKeyMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if mode != tt.expected {
				t.Errorf("ParseContextKeyMode(%q) = %q, want %q", tt.in, mode, tt.expected)
			}
		})
	}
}

// TestNormalize tests that records always carry a tails list
func TestNormalize(t *testing.T) {
	var nilRecords InferenceRecords
	if got := nilRecords.Normalize(); got == nil || len(got) != 0 {
		t.Errorf("Normalize() of nil = %#v, want empty list", got)
	}

	records := InferenceRecords{
		{Head: "personx", Relation: "xWant", Tails: nil},
		{Head: "personx", Relation: "xIntent", Tails: []string{"to win"}},
	}.Normalize()
	if records[0].Tails == nil {
		t.Errorf("Normalize() left nil tails")
	}
	if !reflect.DeepEqual(records[1].Tails, []string{"to win"}) {
		t.Errorf("Normalize() changed tails: %v", records[1].Tails)
	}
}

// TestVocabulary tests the relation and option lookups
func TestVocabulary(t *testing.T) {
	if len(Relations) != 49 {
		t.Errorf("len(Relations) = %d, want 49", len(Relations))
	}
	for _, r := range []string{"AtLocation", "xWant", "UsedFor", "HasSubEvent"} {
		if !IsRelation(r) {
			t.Errorf("IsRelation(%q) = false, want true", r)
		}
	}
	if IsRelation("xwant") {
		t.Errorf("IsRelation is case sensitive")
	}

	if !IsEnabledChoice(ModelChoices, ModelCometBART) {
		t.Errorf("comet-bart should be enabled")
	}
	if IsEnabledChoice(ModelChoices, ModelGPT2) || IsEnabledChoice(RelationProcessorChoices, "bert_relation_matcher") {
		t.Errorf("disabled choices reported as enabled")
	}
	if IsEnabledChoice(HeadProcessorChoices, "unknown") {
		t.Errorf("unknown choice reported as enabled")
	}

	if !IsSlowModel(ModelCometGPT2) || !IsSlowModel(ModelGPT2) || IsSlowModel(ModelCometBART) {
		t.Errorf("IsSlowModel misclassifies models")
	}
}

// TestGroupedResult tests the helpers of GroupedResult
func TestGroupedResult(t *testing.T) {
	g := GroupedResult{
		{Head: "personx", Entries: []RelationEntry{{Relation: "xWant"}, {Relation: "xIntent"}}},
		{Head: "basketball player", Entries: []RelationEntry{{Relation: "CapableOf"}}},
	}
	if g.Count() != 3 {
		t.Errorf("Count() = %d, want 3", g.Count())
	}
	if !reflect.DeepEqual(g.Heads(), []string{"personx", "basketball player"}) {
		t.Errorf("Heads() = %v", g.Heads())
	}
	if len(GroupedResult{}.Heads()) != 0 {
		t.Errorf("Heads() of empty result not empty")
	}
}
