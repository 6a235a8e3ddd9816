package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knodemy/lecture-server/internal/domain"
	"github.com/knodemy/lecture-server/internal/store/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()

	w, err := New(dir, testLogger(), Options{SettleDelay: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })
	return w
}

func waitForEvent(t *testing.T, w *Watcher) Event {
	t.Helper()

	select {
	case event := <-w.Events():
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}

func TestWatcher_DetectsDroppedPDF(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	path := filepath.Join(dir, "photosynthesis.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 lesson"), 0o644))

	event := waitForEvent(t, w)
	assert.Equal(t, path, event.Path)
	assert.Equal(t, int64(15), event.Size)
}

func TestWatcher_WaitsForFileToSettle(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Write in bursts so size keeps changing across settle checks.
	path := filepath.Join(dir, "slow-copy.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	for range 4 {
		_, err := f.Write(make([]byte, 1024))
		require.NoError(t, err)
		time.Sleep(30 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	event := waitForEvent(t, w)
	assert.Equal(t, int64(4096), event.Size, "event must carry the final size")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a pdf"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.pdf"), []byte("%PDF"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lesson.pdf.tmp"), []byte("%PDF"), 0o644))

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event for %s", event.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_RemovedBeforeSettleIsDropped(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	path := filepath.Join(dir, "oops.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	require.NoError(t, os.Remove(path))

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event for %s", event.Path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_RejectsMissingDirectory(t *testing.T) {
	_, err := New("/nonexistent/inbox", testLogger(), Options{})
	require.Error(t, err)
}

func TestInbox_RegistersLesson(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.CreateTeacher(ctx, &domain.Teacher{ID: "teacher-1", Name: "Dana"}))
	require.NoError(t, db.CreateCourse(ctx, &domain.Course{
		ID:        "course-1",
		Title:     "Biology",
		TeacherID: "teacher-1",
		StartDate: "2025-03-10",
	}))

	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	inbox, err := NewInbox(ctx, w, db, "course-1", testLogger())
	require.NoError(t, err)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go inbox.Run(runCtx)

	path := filepath.Join(dir, "cell_structure-part-2.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 lesson"), 0o644))

	require.Eventually(t, func() bool {
		lessons, err := db.LessonsForCourse(ctx, "course-1")
		return err == nil && len(lessons) == 1
	}, 5*time.Second, 50*time.Millisecond)

	lessons, err := db.LessonsForCourse(ctx, "course-1")
	require.NoError(t, err)
	assert.Equal(t, "cell structure part 2", lessons[0].Title)
	require.Len(t, lessons[0].PDFURLs, 1)
	assert.Equal(t, "file://"+path, lessons[0].PDFURLs[0])
}

func TestInbox_RequiresExistingCourse(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	_, err = NewInbox(context.Background(), w, db, "course-missing", testLogger())
	require.Error(t, err)

	_, err = NewInbox(context.Background(), w, db, "", testLogger())
	require.Error(t, err)
}

func TestLessonTitle(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/inbox/photosynthesis.pdf", "photosynthesis"},
		{"/inbox/cell_structure-week-3.pdf", "cell structure week 3"},
		{"/inbox/Intro to Fractions.pdf", "Intro to Fractions"},
		{"/inbox/double__underscore.pdf", "double underscore"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, lessonTitle(tt.path))
	}
}
