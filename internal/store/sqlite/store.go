// Package sqlite is the persistence gateway and query boundary. A document
// tree is committed in one transaction; readers can never observe a document
// row without its full decomposition attached.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/codariq/sentidoc/internal/models"
)

// ErrNotFound is returned when a filename has no committed document.
var ErrNotFound = errors.New("store: document not found")

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path with WAL mode and
// foreign keys enabled. The pragmas ride on the DSN so they apply to every
// pooled connection, not just the one a plain PRAGMA statement happens to
// run on; without the per-connection busy timeout, concurrent commits of
// distinct documents fail spuriously with SQLITE_BUSY.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" && !strings.HasPrefix(path, "file:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	owner_id TEXT NOT NULL,
	filename TEXT UNIQUE NOT NULL,
	content TEXT NOT NULL,
	sentiment TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS paragraphs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	FOREIGN KEY(document_id) REFERENCES documents(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sentences (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	paragraph_id INTEGER NOT NULL,
	content TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	FOREIGN KEY(paragraph_id) REFERENCES paragraphs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS keywords (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sentence_id INTEGER NOT NULL,
	word TEXT NOT NULL,
	FOREIGN KEY(sentence_id) REFERENCES sentences(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);
CREATE INDEX IF NOT EXISTS idx_paragraphs_document ON paragraphs(document_id);
CREATE INDEX IF NOT EXISTS idx_paragraphs_sentiment ON paragraphs(sentiment);
CREATE INDEX IF NOT EXISTS idx_sentences_paragraph ON sentences(paragraph_id);
CREATE INDEX IF NOT EXISTS idx_sentences_sentiment ON sentences(sentiment);
CREATE INDEX IF NOT EXISTS idx_keywords_sentence ON keywords(sentence_id);
CREATE INDEX IF NOT EXISTS idx_keywords_word ON keywords(word);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Commit inserts a whole document tree in one transaction. Any insert
// failure (including a UNIQUE filename violation) rolls everything back;
// on success the generated row IDs are written back into the tree.
func (s *Store) Commit(ctx context.Context, doc *models.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO documents (owner_id, filename, content, sentiment) VALUES (?, ?, ?, ?)`,
		doc.OwnerID, doc.Filename, doc.Content, string(doc.Sentiment),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	doc.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read document id: %w", err)
	}

	for pi := range doc.Paragraphs {
		paragraph := &doc.Paragraphs[pi]
		paragraph.DocumentID = doc.ID

		res, err := tx.ExecContext(ctx,
			`INSERT INTO paragraphs (document_id, content, sentiment) VALUES (?, ?, ?)`,
			paragraph.DocumentID, paragraph.Content, string(paragraph.Sentiment),
		)
		if err != nil {
			return fmt.Errorf("failed to insert paragraph: %w", err)
		}
		if paragraph.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read paragraph id: %w", err)
		}

		for si := range paragraph.Sentences {
			sentence := &paragraph.Sentences[si]
			sentence.ParagraphID = paragraph.ID

			res, err := tx.ExecContext(ctx,
				`INSERT INTO sentences (paragraph_id, content, sentiment) VALUES (?, ?, ?)`,
				sentence.ParagraphID, sentence.Content, string(sentence.Sentiment),
			)
			if err != nil {
				return fmt.Errorf("failed to insert sentence: %w", err)
			}
			if sentence.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("failed to read sentence id: %w", err)
			}

			for ki := range sentence.Keywords {
				keyword := &sentence.Keywords[ki]
				keyword.SentenceID = sentence.ID

				res, err := tx.ExecContext(ctx,
					`INSERT INTO keywords (sentence_id, word) VALUES (?, ?)`,
					keyword.SentenceID, keyword.Word,
				)
				if err != nil {
					return fmt.Errorf("failed to insert keyword: %w", err)
				}
				if keyword.ID, err = res.LastInsertId(); err != nil {
					return fmt.Errorf("failed to read keyword id: %w", err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit document tree: %w", err)
	}
	return nil
}

// DocumentsByOwner lists an owner's committed documents, newest last.
func (s *Store) DocumentsByOwner(ctx context.Context, ownerID string) ([]models.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, sentiment FROM documents WHERE owner_id = ? ORDER BY id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []models.DocumentSummary
	for rows.Next() {
		var d models.DocumentSummary
		var sentiment string
		if err := rows.Scan(&d.ID, &d.Filename, &sentiment); err != nil {
			return nil, err
		}
		d.Sentiment = models.SentimentLabel(sentiment)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DocumentByFilename fetches one document row without its tree.
func (s *Store) DocumentByFilename(ctx context.Context, filename string) (*models.Document, error) {
	var doc models.Document
	var sentiment string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, filename, content, sentiment FROM documents WHERE filename = ?`,
		filename,
	).Scan(&doc.ID, &doc.OwnerID, &doc.Filename, &doc.Content, &sentiment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	doc.Sentiment = models.SentimentLabel(sentiment)
	return &doc, nil
}

// KeywordsByFilename walks the full join chain document -> paragraph ->
// sentence -> keyword for one filename, in insertion order.
func (s *Store) KeywordsByFilename(ctx context.Context, filename string) ([]string, error) {
	if _, err := s.DocumentByFilename(ctx, filename); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT k.word
FROM keywords k
JOIN sentences s ON s.id = k.sentence_id
JOIN paragraphs p ON p.id = s.paragraph_id
JOIN documents d ON d.id = p.document_id
WHERE d.filename = ?
ORDER BY k.id`,
		filename,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// FilterBySentiment returns the paragraphs and sentences carrying the label.
func (s *Store) FilterBySentiment(ctx context.Context, label models.SentimentLabel) (paragraphs, sentences []models.SentimentSlice, err error) {
	paragraphs, err = s.querySlices(ctx,
		`SELECT id, content, sentiment FROM paragraphs WHERE sentiment = ? ORDER BY id`,
		string(label),
	)
	if err != nil {
		return nil, nil, err
	}
	sentences, err = s.querySlices(ctx,
		`SELECT id, content, sentiment FROM sentences WHERE sentiment = ? ORDER BY id`,
		string(label),
	)
	if err != nil {
		return nil, nil, err
	}
	return paragraphs, sentences, nil
}

// SearchByKeyword returns the sentences containing the keyword and the
// paragraphs those sentences belong to.
func (s *Store) SearchByKeyword(ctx context.Context, word string) (sentences, paragraphs []models.SentimentSlice, err error) {
	sentences, err = s.querySlices(ctx, `
SELECT DISTINCT s.id, s.content, s.sentiment
FROM sentences s
JOIN keywords k ON k.sentence_id = s.id
WHERE k.word = ?
ORDER BY s.id`,
		word,
	)
	if err != nil {
		return nil, nil, err
	}

	paragraphs, err = s.querySlices(ctx, `
SELECT DISTINCT p.id, p.content, p.sentiment
FROM paragraphs p
JOIN sentences s ON s.paragraph_id = p.id
JOIN keywords k ON k.sentence_id = s.id
WHERE k.word = ?
ORDER BY p.id`,
		word,
	)
	if err != nil {
		return nil, nil, err
	}
	return sentences, paragraphs, nil
}

func (s *Store) querySlices(ctx context.Context, query string, args ...interface{}) ([]models.SentimentSlice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var out []models.SentimentSlice
	for rows.Next() {
		var sl models.SentimentSlice
		var sentiment string
		if err := rows.Scan(&sl.ID, &sl.Content, &sentiment); err != nil {
			return nil, err
		}
		sl.Sentiment = models.SentimentLabel(sentiment)
		out = append(out, sl)
	}
	return out, rows.Err()
}
