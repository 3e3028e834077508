package upload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ashureev/apsfd-portal/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitterFunc func(ctx context.Context, files []domain.PendingFile) error

func (f submitterFunc) SubmitFiles(ctx context.Context, files []domain.PendingFile) error {
	return f(ctx, files)
}

func sampleFiles() []domain.PendingFile {
	return []domain.PendingFile{
		domain.NewPendingFile("bilan.pdf", "application/pdf", []byte("%PDF-1.4")),
		domain.NewPendingFile("encours.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []byte("PK")),
		domain.NewPendingFile("clients.csv", "text/csv", []byte("id,name\n")),
	}
}

func names(files []domain.PendingFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

func TestAddAppends(t *testing.T) {
	q := NewQueue()
	files := sampleFiles()
	require.NoError(t, q.Add(files[0]))
	require.NoError(t, q.Add(files[1:]...))
	assert.Equal(t, []string{"bilan.pdf", "encours.xlsx", "clients.csv"}, names(q.Files()))
}

func TestAddRefusesBatchOverSizeCap(t *testing.T) {
	q := NewQueue(WithMaxBytes(10))
	small := domain.NewPendingFile("a.csv", "text/csv", []byte("123456"))
	big := domain.NewPendingFile("b.csv", "text/csv", []byte("12345"))

	require.NoError(t, q.Add(small))
	assert.ErrorIs(t, q.Add(big), ErrQueueFull)
	assert.ErrorIs(t, q.Add(small, small), ErrQueueFull)
	assert.Equal(t, []string{"a.csv"}, names(q.Files()))
	assert.Equal(t, int64(6), q.Size())

	require.NoError(t, q.Remove(0))
	require.NoError(t, q.Add(big))
	assert.Equal(t, int64(5), q.Size())
}

func TestAddWithoutSizeCap(t *testing.T) {
	q := NewQueue(WithMaxBytes(0))
	require.NoError(t, q.Add(domain.NewPendingFile("a.csv", "text/csv", make([]byte, 1<<10))))
	assert.Equal(t, 1, q.Len())
}

func TestRemovePreservesOrder(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Add(sampleFiles()...))

	require.NoError(t, q.Remove(1))
	assert.Equal(t, []string{"bilan.pdf", "clients.csv"}, names(q.Files()))

	assert.ErrorIs(t, q.Remove(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, q.Remove(-1), ErrIndexOutOfRange)
	assert.Equal(t, 2, q.Len())
}

func TestSubmitFailureLeavesQueueUnchanged(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	q := NewQueue(WithClock(func() time.Time { return now }))
	require.NoError(t, q.Add(sampleFiles()...))
	before := q.Files()

	notice, err := q.Submit(context.Background(), submitterFunc(func(context.Context, []domain.PendingFile) error {
		return errors.New("HTTP 500")
	}))
	require.Error(t, err)
	require.NotNil(t, notice)
	assert.Equal(t, NoticeError, notice.Kind)

	if diff := cmp.Diff(before, q.Files()); diff != "" {
		t.Errorf("queue changed after failed submit (-before +after):\n%s", diff)
	}
	assert.False(t, q.Snapshot().Uploading)
}

func TestSubmitSuccessClearsQueueAndNoticeExpires(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	q := NewQueue(WithClock(func() time.Time { return now }))
	require.NoError(t, q.Add(sampleFiles()...))

	var got []string
	notice, err := q.Submit(context.Background(), submitterFunc(func(_ context.Context, files []domain.PendingFile) error {
		got = names(files)
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"bilan.pdf", "encours.xlsx", "clients.csv"}, got)
	assert.Equal(t, 0, q.Len())
	require.NotNil(t, notice)
	assert.Equal(t, MsgSubmitted, notice.Text)

	now = now.Add(4 * time.Second)
	assert.NotNil(t, q.Notice())

	now = now.Add(time.Second)
	assert.Nil(t, q.Notice())
}

func TestSubmitEmptyIsNoop(t *testing.T) {
	q := NewQueue()
	called := false
	notice, err := q.Submit(context.Background(), submitterFunc(func(context.Context, []domain.PendingFile) error {
		called = true
		return nil
	}))
	require.NoError(t, err)
	assert.Nil(t, notice)
	assert.False(t, called)
}

func TestDragState(t *testing.T) {
	q := NewQueue()
	require.NoError(t, q.Drag(DragEnter))
	assert.True(t, q.Snapshot().DragActive)
	require.NoError(t, q.Drag(DragOver))
	assert.True(t, q.Snapshot().DragActive)
	require.NoError(t, q.Drag(DragLeave))
	assert.False(t, q.Snapshot().DragActive)
	require.NoError(t, q.Drag(DragEnter))
	require.NoError(t, q.Drag(DragDrop))
	assert.False(t, q.Snapshot().DragActive)
	assert.Error(t, q.Drag("hover"))
}

func TestDetectMimeType(t *testing.T) {
	assert.Equal(t, "text/csv", DetectMimeType("a.csv", "text/csv; charset=utf-8", nil))
	assert.Equal(t, "application/pdf", DetectMimeType("scan.bin", "", []byte("%PDF-1.7\n%âãÏÓ\n")))
	assert.Equal(t, "application/pdf", DetectMimeType("report.pdf", "application/octet-stream", []byte{0x00, 0x01}))
}

func TestPendingFileWarnings(t *testing.T) {
	ok := domain.NewPendingFile("a.xls", "application/vnd.ms-excel", []byte("x"))
	assert.Empty(t, ok.Warnings())
	assert.Equal(t, "0.00 MB", ok.SizeLabel)

	big := domain.PendingFile{Name: "photo.PNG", Size: domain.MaxUploadFileSize + 1}
	assert.Len(t, big.Warnings(), 2)
}
