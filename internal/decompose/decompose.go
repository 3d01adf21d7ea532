// Package decompose builds the document -> paragraph -> sentence -> keyword
// tree that the persistence gateway commits as one unit.
package decompose

import (
	"fmt"
	"strings"

	"github.com/codariq/sentidoc/internal/models"
)

// paragraphDelimiter is the literal blank-line split. This is not a semantic
// paragraph detector: empty segments in the input stay empty paragraphs.
const paragraphDelimiter = "\n\n"

// Analyzer is the language-collaborator contract the decomposer depends on.
type Analyzer interface {
	Sentiment(text string) models.SentimentLabel
	Sentences(paragraph string) ([]string, error)
	Keywords(sentence string) ([]string, error)
}

// Decomposer turns raw text into an unsaved document tree with a sentiment
// label at every level. Each level is scored from its own text span; child
// sentiment never propagates into the parent.
type Decomposer struct {
	nlp Analyzer
}

func New(nlp Analyzer) *Decomposer {
	return &Decomposer{nlp: nlp}
}

// SplitParagraphs splits text on the blank-line delimiter. Splitting and
// rejoining with the same delimiter round-trips the input.
func SplitParagraphs(text string) []string {
	return strings.Split(text, paragraphDelimiter)
}

// Decompose builds the tree. A sentence-splitting or keyword-extraction
// failure aborts the whole decomposition; no partial tree is returned.
func (d *Decomposer) Decompose(text string) (*models.Document, error) {
	doc := &models.Document{
		Content:   text,
		Sentiment: d.nlp.Sentiment(text),
	}

	for _, paragraphText := range SplitParagraphs(text) {
		paragraph := models.Paragraph{
			Content:   paragraphText,
			Sentiment: d.nlp.Sentiment(paragraphText),
		}

		sentences, err := d.nlp.Sentences(paragraphText)
		if err != nil {
			return nil, fmt.Errorf("failed to split sentences: %w", err)
		}

		for _, sentenceText := range sentences {
			sentence := models.Sentence{
				Content:   sentenceText,
				Sentiment: d.nlp.Sentiment(sentenceText),
			}

			words, err := d.nlp.Keywords(sentenceText)
			if err != nil {
				return nil, fmt.Errorf("failed to extract keywords: %w", err)
			}
			for _, word := range words {
				sentence.Keywords = append(sentence.Keywords, models.Keyword{Word: word})
			}

			paragraph.Sentences = append(paragraph.Sentences, sentence)
		}

		doc.Paragraphs = append(doc.Paragraphs, paragraph)
	}

	return doc, nil
}
