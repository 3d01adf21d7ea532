// Package nlp wraps the language collaborators the decomposer depends on:
// a sentiment scorer, a sentence-boundary model and a lemmatizing keyword
// extractor. All three are pure functions of their input text.
package nlp

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/grassmudhorses/vader-go/lexicon"
	"github.com/grassmudhorses/vader-go/sentitext"
	"github.com/jdkato/prose/v2"

	"github.com/codariq/sentidoc/internal/models"
)

// nounTags are the Penn Treebank tags kept as keyword sources: common and
// proper nouns, singular and plural.
var nounTags = map[string]bool{
	"NN":   true,
	"NNS":  true,
	"NNP":  true,
	"NNPS": true,
}

// Engine bundles the loaded models. Safe for concurrent use; the lemmatizer
// dictionary and the sentiment lexicon are read-only after construction.
type Engine struct {
	lemmatizer *golem.Lemmatizer
}

// NewEngine loads the English lemmatizer dictionary.
func NewEngine() (*Engine, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load lemmatizer: %w", err)
	}
	return &Engine{lemmatizer: lem}, nil
}

// Sentiment scores text and maps the polarity to the ternary label. Blank
// text scores zero and is neutral.
func (e *Engine) Sentiment(text string) models.SentimentLabel {
	if strings.TrimSpace(text) == "" {
		return models.SentimentNeutral
	}
	parsed := sentitext.Parse(text, lexicon.DefaultLexicon)
	score := sentitext.PolarityScore(parsed)
	return models.LabelForScore(score.Compound)
}

// Sentences splits a paragraph into sentences in order. Blank input yields
// no sentences.
func (e *Engine) Sentences(paragraph string) ([]string, error) {
	if strings.TrimSpace(paragraph) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(paragraph,
		prose.WithExtraction(false),
		prose.WithTagging(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to segment sentences: %w", err)
	}

	sents := doc.Sentences()
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	return out, nil
}

// Keywords returns the lemmas of every noun and proper-noun token of the
// sentence, in token order, duplicates included.
func (e *Engine) Keywords(sentence string) ([]string, error) {
	if strings.TrimSpace(sentence) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(sentence,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to tag tokens: %w", err)
	}

	var words []string
	for _, tok := range doc.Tokens() {
		if nounTags[tok.Tag] {
			words = append(words, e.lemmatizer.Lemma(tok.Text))
		}
	}
	return words, nil
}
