package models

// SentimentLabel is the ternary sentiment classification applied at every
// level of a decomposed document.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// LabelForScore maps a polarity score to its label: strictly positive scores
// are positive, strictly negative scores negative, zero is neutral.
func LabelForScore(score float64) SentimentLabel {
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ValidLabel reports whether s is one of the three sentiment labels.
func ValidLabel(s string) bool {
	switch SentimentLabel(s) {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Document is the root of a decomposed document tree. The tree is built in
// memory by the decomposer and committed as a single unit; it is never
// mutated after commit.
type Document struct {
	ID        int64          `json:"documentId"`
	OwnerID   string         `json:"ownerId"`
	Filename  string         `json:"filename"`
	Content   string         `json:"content"`
	Sentiment SentimentLabel `json:"sentiment"`

	Paragraphs []Paragraph `json:"paragraphs,omitempty"`
}

// Paragraph is one blank-line-delimited segment of a document.
type Paragraph struct {
	ID         int64          `json:"paragraphId"`
	DocumentID int64          `json:"documentId"`
	Content    string         `json:"content"`
	Sentiment  SentimentLabel `json:"sentiment"`

	Sentences []Sentence `json:"sentences,omitempty"`
}

// Sentence is one sentence of a paragraph.
type Sentence struct {
	ID          int64          `json:"sentenceId"`
	ParagraphID int64          `json:"paragraphId"`
	Content     string         `json:"content"`
	Sentiment   SentimentLabel `json:"sentiment"`

	Keywords []Keyword `json:"keywords,omitempty"`
}

// Keyword is the lemma of a noun or proper noun found in a sentence.
// Duplicates within a sentence are kept.
type Keyword struct {
	ID         int64  `json:"keywordId"`
	SentenceID int64  `json:"sentenceId"`
	Word       string `json:"word"`
}

// DocumentSummary is the listing shape returned by the owner-scoped query
// boundary; it carries no tree.
type DocumentSummary struct {
	ID        int64          `json:"documentId"`
	Filename  string         `json:"filename"`
	Sentiment SentimentLabel `json:"sentiment"`
}

// SentimentSlice is a paragraph or sentence matched by a sentiment filter.
type SentimentSlice struct {
	ID        int64          `json:"id"`
	Content   string         `json:"content"`
	Sentiment SentimentLabel `json:"sentiment"`
}
