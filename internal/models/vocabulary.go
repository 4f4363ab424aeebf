package models

import "slices"

// Relations is the relation vocabulary offered by the playground.
var Relations = []string{
	"AtLocation",
	"CapableOf",
	"Causes",
	"CausesDesire",
	"Desires",
	"HasProperty",
	"HasSubEvent",
	"HinderedBy",
	"MadeUpOf",
	"NotDesires",
	"ObjectUse",
	"IsAfter",
	"IsBefore",
	"oEffect",
	"oReact",
	"oWant",
	"xAttr",
	"xEffect",
	"xIntent",
	"xNeed",
	"xReact",
	"xReason",
	"xWant",
	"CreatedBy",
	"DefinedAs",
	"DesireOf",
	"HasA",
	"HasFirstSubevent",
	"HasLastSubevent",
	"HasPainCharacter",
	"HasPainIntensity",
	"HasPrerequisite",
	"InheritsFrom",
	"InstanceOf",
	"IsA",
	"LocatedNear",
	"LocationOfAction",
	"MadeOf",
	"NotHasA",
	"NotHasProperty",
	"NotIsA",
	"NotMadeOf",
	"MotivatedByGoal",
	"NotCapableOf",
	"PartOf",
	"ReceivesAction",
	"RelatedTo",
	"SymbolOf",
	"UsedFor",
}

// Choice is a selectable option of the playground form.
type Choice struct {
	Key     string `json:"key" doc:"Value sent to the inference service"`
	Text    string `json:"text" doc:"Display text"`
	Enabled bool   `json:"enabled" doc:"Whether the option can currently be selected"`
}

// Model identifiers
const (
	ModelCometBART = "comet-bart"
	ModelCometGPT2 = "comet-gpt2"
	ModelGPT2      = "gpt2"
)

// ModelChoices lists the knowledge models known to the playground.
// GPT-2 based models are too slow for the demo deployment and stay disabled.
var ModelChoices = []Choice{
	{Key: ModelCometGPT2, Text: "COMET-GPT2", Enabled: false},
	{Key: ModelCometBART, Text: "COMET-BART", Enabled: true},
	{Key: ModelGPT2, Text: "GPT-2", Enabled: false},
}

// HeadProcessorChoices lists the head extraction strategies.
var HeadProcessorChoices = []Choice{
	{Key: "sentence_extractor", Text: "Sentence Extractor", Enabled: true},
	{Key: "noun_phrase_extractor", Text: "Noun Phrase Extractor", Enabled: true},
	{Key: "verb_phrase_extractor", Text: "Verb Phrase Extractor", Enabled: true},
}

// RelationProcessorChoices lists the relation matching strategies.
var RelationProcessorChoices = []Choice{
	{Key: "simple_relation_matcher", Text: "Heuristic Matcher", Enabled: true},
	{Key: "swem_relation_matcher", Text: "GloVe-based Matcher", Enabled: false},
	{Key: "distilbert_relation_matcher", Text: "DistilBERT-based Matcher", Enabled: true},
	{Key: "bert_relation_matcher", Text: "BERT-based Matcher", Enabled: false},
}

// IsRelation reports whether r is part of the relation vocabulary.
func IsRelation(r string) bool {
	return slices.Contains(Relations, r)
}

// IsEnabledChoice reports whether key names an enabled entry of choices.
func IsEnabledChoice(choices []Choice, key string) bool {
	for _, c := range choices {
		if c.Key == key {
			return c.Enabled
		}
	}
	return false
}

// IsSlowModel reports whether generation with the model is known to take
// noticeably longer (GPT-2 based models).
func IsSlowModel(model string) bool {
	return model == ModelCometGPT2 || model == ModelGPT2
}

// SlowModelNote is shown while or after generating with a slow model.
const SlowModelNote = "GPT-2 based models are slower than the others. Generation may take a while."

// ResultWarning is the disclaimer shown above generated results.
const ResultWarning = "Please note that this tool might produce a biased or toxic output which can sometimes be mitigated using inference filtering."
