package ingest

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codariq/sentidoc/internal/decompose"
	"github.com/codariq/sentidoc/internal/extract"
	"github.com/codariq/sentidoc/internal/models"
	"github.com/codariq/sentidoc/internal/status"
	"github.com/codariq/sentidoc/pkg/logger"
	"github.com/codariq/sentidoc/pkg/queue"
	"github.com/codariq/sentidoc/pkg/storage/local"
)

type fakeGateway struct {
	mu   sync.Mutex
	docs []*models.Document
	err  error
}

func (f *fakeGateway) Commit(_ context.Context, doc *models.Document) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, doc)
	return nil
}

type stubAnalyzer struct{}

func (stubAnalyzer) Sentiment(text string) models.SentimentLabel {
	if strings.Contains(text, "good") {
		return models.SentimentPositive
	}
	return models.SentimentNeutral
}

func (stubAnalyzer) Sentences(paragraph string) ([]string, error) {
	if strings.TrimSpace(paragraph) == "" {
		return nil, nil
	}
	return []string{paragraph}, nil
}

func (stubAnalyzer) Keywords(sentence string) ([]string, error) {
	return strings.Fields(sentence), nil
}

type noopImageEngine struct{}

func (noopImageEngine) Recognize(context.Context, []byte) (string, error) { return "", nil }

type fixture struct {
	svc     *Service
	queue   *queue.FIFO
	gateway *fakeGateway
	tracker *status.MemoryTracker
}

func newFixture(t *testing.T, queueOpts ...queue.Option) *fixture {
	t.Helper()

	log := logger.NewTestLogger()
	blobs, err := local.New(t.TempDir(), log)
	require.NoError(t, err)

	q := queue.New(queueOpts...)
	gw := &fakeGateway{}
	tr := status.NewMemoryTracker()

	svc := New(q, blobs, gw,
		extract.New(noopImageEngine{}, log),
		decompose.New(stubAnalyzer{}),
		tr, log, Config{})

	return &fixture{svc: svc, queue: q, gateway: gw, tracker: tr}
}

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["files"][0]
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"notes.txt":           "notes.txt",
		"my report.pdf":       "my_report.pdf",
		"../../etc/passwd":    "passwd",
		`..\..\evil.txt`:      "evil.txt",
		".hidden.txt":         "hidden.txt",
		"weird$chars%(1).txt": "weirdchars1.txt",
		"  spaced.txt  ":      "spaced.txt",
		"...":                 "",
	}
	for in, want := range cases {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestAcceptQueuesTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	taskID, err := f.svc.Accept(ctx, fileHeader(t, "notes.txt", "good news"), "42")
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)
	assert.Equal(t, 1, f.queue.Len())

	st, err := f.tracker.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.StatePending, st.State)
	assert.Equal(t, "notes.txt", st.Filename)
	assert.Equal(t, "42", st.OwnerID)
}

func TestAcceptRejectsUnsupportedType(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Accept(context.Background(), fileHeader(t, "malware.exe", "data"), "42")
	assert.Error(t, err)
	assert.Equal(t, 0, f.queue.Len())
}

func TestAcceptRejectsEmptyFilename(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Accept(context.Background(), fileHeader(t, "...", "data"), "42")
	assert.Error(t, err)
	assert.Equal(t, 0, f.queue.Len())
}

func TestAcceptFullQueueSurfacesErrFull(t *testing.T) {
	f := newFixture(t, queue.WithCapacity(1), queue.WithFullPolicy(queue.Reject))
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, fileHeader(t, "first.txt", "a"), "42")
	require.NoError(t, err)

	_, err = f.svc.Accept(ctx, fileHeader(t, "second.txt", "b"), "42")
	assert.ErrorIs(t, err, queue.ErrFull)
	assert.Equal(t, 1, f.queue.Len())
}

func TestAcceptBatchAllOrNothing(t *testing.T) {
	f := newFixture(t)

	headers := []*multipart.FileHeader{
		fileHeader(t, "fine.txt", "a"),
		fileHeader(t, "bad.exe", "b"),
	}
	_, err := f.svc.AcceptBatch(context.Background(), headers, "42")
	assert.Error(t, err)
	assert.Equal(t, 0, f.queue.Len(), "a bad file must reject the batch before anything is enqueued")
}

func TestAcceptBatchQueuesEveryFile(t *testing.T) {
	f := newFixture(t)

	headers := []*multipart.FileHeader{
		fileHeader(t, "one.txt", "a"),
		fileHeader(t, "two.txt", "b"),
		fileHeader(t, "three.txt", "c"),
	}
	ids, err := f.svc.AcceptBatch(context.Background(), headers, "42")
	require.NoError(t, err)
	assert.Len(t, ids, 3)
	assert.Equal(t, 3, f.queue.Len())
}

func TestAcceptSameFilenameKeepsBothBlobs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, fileHeader(t, "dup.txt", "first body"), "alice")
	require.NoError(t, err)
	_, err = f.svc.Accept(ctx, fileHeader(t, "dup.txt", "second body"), "bob")
	require.NoError(t, err)

	first, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	second, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.StoredPath, second.StoredPath,
		"re-uploading a filename must not reuse the stored key")

	// Each worker still reads its own upload's bytes.
	require.NoError(t, f.svc.Process(ctx, first))
	require.NoError(t, f.svc.Process(ctx, second))
	require.Len(t, f.gateway.docs, 2)
	assert.Equal(t, "first body", f.gateway.docs[0].Content)
	assert.Equal(t, "second body", f.gateway.docs[1].Content)
}

func TestProcessCommitsDecomposedTree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	taskID, err := f.svc.Accept(ctx, fileHeader(t, "notes.txt", "good news\n\nplain facts"), "42")
	require.NoError(t, err)

	task, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	require.NoError(t, f.svc.Process(ctx, task))

	require.Len(t, f.gateway.docs, 1)
	doc := f.gateway.docs[0]
	assert.Equal(t, "42", doc.OwnerID)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, models.SentimentPositive, doc.Sentiment)
	require.Len(t, doc.Paragraphs, 2)
	assert.Equal(t, "good news", doc.Paragraphs[0].Content)

	st, err := f.tracker.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.StateCompleted, st.State)
	assert.False(t, st.FinishedAt.IsZero())
}

func TestProcessCommitFailureMarksTaskFailed(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = errors.New("filename already taken")
	ctx := context.Background()

	taskID, err := f.svc.Accept(ctx, fileHeader(t, "dup.txt", "text"), "42")
	require.NoError(t, err)

	task, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	assert.Error(t, f.svc.Process(ctx, task))

	st, err := f.tracker.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.StateFailed, st.State)
	assert.Contains(t, st.Error, "filename already taken")
}

func TestProcessMissingStoredFileFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	task := &queue.Task{ID: "ghost", StoredPath: "never-stored.txt", Filename: "never-stored.txt"}
	assert.Error(t, f.svc.Process(ctx, task))

	st, err := f.tracker.Get(ctx, "ghost")
	require.NoError(t, err)
	assert.Equal(t, models.StateFailed, st.State)
}

type panickyGateway struct{}

func (panickyGateway) Commit(context.Context, *models.Document) error { panic("index corrupted") }

func TestProcessRecoversPanic(t *testing.T) {
	f := newFixture(t)
	log := logger.NewTestLogger()
	blobs, err := local.New(t.TempDir(), log)
	require.NoError(t, err)

	svc := New(f.queue, blobs, panickyGateway{},
		extract.New(noopImageEngine{}, log),
		decompose.New(stubAnalyzer{}),
		f.tracker, log, Config{})
	ctx := context.Background()

	taskID, err := svc.Accept(ctx, fileHeader(t, "boom.txt", "text"), "42")
	require.NoError(t, err)

	task, err := f.queue.Dequeue(ctx)
	require.NoError(t, err)
	err = svc.Process(ctx, task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	st, err := f.tracker.Get(ctx, taskID)
	require.NoError(t, err)
	assert.Equal(t, models.StateFailed, st.State)
}
