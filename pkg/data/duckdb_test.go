package data

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	repo, err := OpenRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	return repo
}

func seedComic(t *testing.T, repo *Repository, pathWord string, chapterUUIDs ...string) {
	t.Helper()
	ctx := context.Background()

	if err := repo.AddComic(ctx, &Comic{PathWord: pathWord, Name: pathWord + " name"}); err != nil {
		t.Fatalf("Failed to save comic: %v", err)
	}

	chapters := make([]*Chapter, len(chapterUUIDs))
	for i, id := range chapterUUIDs {
		chapters[i] = &Chapter{
			UUID:          id,
			ComicPathWord: pathWord,
			GroupPathWord: "default",
			Name:          fmt.Sprintf("Chapter %d", i+1),
			Index:         i,
		}
	}
	if _, err := repo.AddChapters(ctx, chapters); err != nil {
		t.Fatalf("Failed to save chapters: %v", err)
	}
}

func makePages(chapterUUID string, n int) []*Page {
	pages := make([]*Page, n)
	for i := range pages {
		pages[i] = &Page{
			ChapterUUID: chapterUUID,
			ImageIndex:  i,
			URL:         fmt.Sprintf("https://img.example.com/%s/%d.jpg?t=1", chapterUUID, i),
			CacheKey:    fmt.Sprintf("/%s/%d.jpg", chapterUUID, i),
		}
	}
	return pages
}

func TestNextComicInsertionOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	comic, err := repo.NextComic(ctx, StatusInit)
	if err != nil {
		t.Fatalf("NextComic failed: %v", err)
	}
	if comic != nil {
		t.Fatalf("Expected no comic in empty backlog, got %+v", comic)
	}

	seedComic(t, repo, "zeta")
	seedComic(t, repo, "alpha")

	comic, err = repo.NextComic(ctx, StatusInit)
	if err != nil {
		t.Fatalf("NextComic failed: %v", err)
	}
	if comic == nil || comic.PathWord != "zeta" {
		t.Fatalf("Expected first inserted comic 'zeta', got %+v", comic)
	}
}

func TestAddChaptersKeepsExistingStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedComic(t, repo, "comic", "ch-1", "ch-2")
	if err := repo.ChapterFetchFailed(ctx, "ch-1"); err != nil {
		t.Fatalf("ChapterFetchFailed failed: %v", err)
	}

	added, err := repo.AddChapters(ctx, []*Chapter{
		{UUID: "ch-1", ComicPathWord: "comic"},
		{UUID: "ch-3", ComicPathWord: "comic"},
	})
	if err != nil {
		t.Fatalf("AddChapters failed: %v", err)
	}
	if added != 1 {
		t.Errorf("Expected 1 new chapter, got %d", added)
	}

	chapters, err := repo.Chapters(ctx, "comic")
	if err != nil {
		t.Fatalf("Chapters failed: %v", err)
	}
	if len(chapters) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(chapters))
	}
	if chapters[0].Status != StatusFailed {
		t.Errorf("Expected ch-1 to stay failed, got %s", chapters[0].Status)
	}
}

func TestListChaptersFiltersByStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedComic(t, repo, "comic", "ch-1", "ch-2", "ch-3")
	if err := repo.SaveChapterPages(ctx, "comic", "ch-2", makePages("ch-2", 2)); err != nil {
		t.Fatalf("SaveChapterPages failed: %v", err)
	}

	chapters, err := repo.ListChapters(ctx, "comic", StatusInit)
	if err != nil {
		t.Fatalf("ListChapters failed: %v", err)
	}
	if len(chapters) != 2 {
		t.Fatalf("Expected 2 init chapters, got %d", len(chapters))
	}
	if chapters[0].UUID != "ch-1" || chapters[1].UUID != "ch-3" {
		t.Errorf("Unexpected chapter order: %s, %s", chapters[0].UUID, chapters[1].UUID)
	}
	if chapters[0].GroupPathWord != "default" {
		t.Errorf("Expected group 'default', got %q", chapters[0].GroupPathWord)
	}
}

func TestSaveChapterPagesOwnedByComic(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedComic(t, repo, "comic", "ch-1")
	pages := makePages("ch-1", 3)
	for _, p := range pages {
		p.ComicPathWord = "other"
	}
	if err := repo.SaveChapterPages(ctx, "comic", "ch-1", pages); err != nil {
		t.Fatalf("SaveChapterPages failed: %v", err)
	}

	stored, err := repo.FetchPages(ctx, "comic", StatusInit, MaxPageBatch)
	if err != nil {
		t.Fatalf("FetchPages failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(stored))
	}
	for i, p := range stored {
		if p.ComicPathWord != "comic" {
			t.Errorf("page %d: expected owner 'comic', got %q", i, p.ComicPathWord)
		}
		if p.ImageIndex != i {
			t.Errorf("page %d: got index %d", i, p.ImageIndex)
		}
		if p.Status != StatusInit {
			t.Errorf("page %d: expected init, got %s", i, p.Status)
		}
	}
}

func TestFetchPagesLimit(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedComic(t, repo, "comic", "ch-1", "ch-2")
	if err := repo.SaveChapterPages(ctx, "comic", "ch-1", makePages("ch-1", 80)); err != nil {
		t.Fatalf("SaveChapterPages failed: %v", err)
	}
	if err := repo.SaveChapterPages(ctx, "comic", "ch-2", makePages("ch-2", 80)); err != nil {
		t.Fatalf("SaveChapterPages failed: %v", err)
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"small limit", 5, 5},
		{"capped at batch size", 500, MaxPageBatch},
		{"zero means batch size", 0, MaxPageBatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, err := repo.FetchPages(ctx, "comic", StatusInit, tt.limit)
			if err != nil {
				t.Fatalf("FetchPages failed: %v", err)
			}
			if len(pages) != tt.want {
				t.Errorf("Expected %d pages, got %d", tt.want, len(pages))
			}
		})
	}

	pages, _ := repo.FetchPages(ctx, "comic", StatusInit, MaxPageBatch)
	if pages[0].ChapterUUID != "ch-1" || pages[0].ImageIndex != 0 {
		t.Errorf("Expected ch-1/0 first, got %s/%d", pages[0].ChapterUUID, pages[0].ImageIndex)
	}
	if pages[99].ChapterUUID != "ch-2" || pages[99].ImageIndex != 19 {
		t.Errorf("Expected ch-2/19 last, got %s/%d", pages[99].ChapterUUID, pages[99].ImageIndex)
	}
}

func TestPageSuccessAndFailed(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedComic(t, repo, "comic", "ch-1")
	if err := repo.SaveChapterPages(ctx, "comic", "ch-1", makePages("ch-1", 2)); err != nil {
		t.Fatalf("SaveChapterPages failed: %v", err)
	}

	if err := repo.PageSuccess(ctx, "comic", "ch-1", 0, 800, 1200, "jpg"); err != nil {
		t.Fatalf("PageSuccess failed: %v", err)
	}
	if err := repo.PageFailed(ctx, "ch-1", 1); err != nil {
		t.Fatalf("PageFailed failed: %v", err)
	}

	done, err := repo.Pages(ctx, "ch-1", StatusSuccess)
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if len(done) != 1 {
		t.Fatalf("Expected 1 successful page, got %d", len(done))
	}
	if done[0].Width != 800 || done[0].Height != 1200 || done[0].Format != "jpg" {
		t.Errorf("Unexpected metadata: %+v", done[0])
	}

	failed, _ := repo.Pages(ctx, "ch-1", StatusFailed)
	if len(failed) != 1 || failed[0].ImageIndex != 1 {
		t.Fatalf("Expected page 1 failed, got %+v", failed)
	}
	if failed[0].Width != 0 || failed[0].Format != "" {
		t.Errorf("Failed page should carry no media metadata: %+v", failed[0])
	}

	pending, _ := repo.FetchPages(ctx, "comic", StatusInit, MaxPageBatch)
	if len(pending) != 0 {
		t.Errorf("Expected no pending pages, got %d", len(pending))
	}
}

func TestFinishComic(t *testing.T) {
	ctx := context.Background()

	t.Run("pending work keeps comic init", func(t *testing.T) {
		repo := setupTestDB(t)
		seedComic(t, repo, "comic", "ch-1")

		status, err := repo.FinishComic(ctx, "comic")
		if err != nil {
			t.Fatalf("FinishComic failed: %v", err)
		}
		if status != StatusInit {
			t.Errorf("Expected init, got %s", status)
		}
	})

	t.Run("all pages downloaded", func(t *testing.T) {
		repo := setupTestDB(t)
		seedComic(t, repo, "comic", "ch-1")
		repo.SaveChapterPages(ctx, "comic", "ch-1", makePages("ch-1", 1))
		repo.PageSuccess(ctx, "comic", "ch-1", 0, 1, 1, "png")

		status, err := repo.FinishComic(ctx, "comic")
		if err != nil {
			t.Fatalf("FinishComic failed: %v", err)
		}
		if status != StatusSuccess {
			t.Errorf("Expected success, got %s", status)
		}

		comic, _ := repo.GetComic(ctx, "comic")
		if comic.Status != StatusSuccess {
			t.Errorf("Expected stored status success, got %s", comic.Status)
		}
		next, _ := repo.NextComic(ctx, StatusInit)
		if next != nil {
			t.Errorf("Finished comic should not be scheduled again, got %+v", next)
		}
	})

	t.Run("failed chapter fails comic", func(t *testing.T) {
		repo := setupTestDB(t)
		seedComic(t, repo, "comic", "ch-1")
		repo.ChapterFetchFailed(ctx, "ch-1")

		status, err := repo.FinishComic(ctx, "comic")
		if err != nil {
			t.Fatalf("FinishComic failed: %v", err)
		}
		if status != StatusFailed {
			t.Errorf("Expected failed, got %s", status)
		}
	})
}

func TestResetFailed(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedComic(t, repo, "comic", "ch-1", "ch-2")
	repo.SaveChapterPages(ctx, "comic", "ch-1", makePages("ch-1", 2))
	repo.ChapterFetchFailed(ctx, "ch-2")
	repo.PageSuccess(ctx, "comic", "ch-1", 0, 1, 1, "png")
	repo.PageFailed(ctx, "ch-1", 1)
	repo.FinishComic(ctx, "comic")

	if err := repo.ResetFailed(ctx, "comic"); err != nil {
		t.Fatalf("ResetFailed failed: %v", err)
	}

	comic, _ := repo.NextComic(ctx, StatusInit)
	if comic == nil || comic.PathWord != "comic" {
		t.Fatalf("Expected comic to be re-queued, got %+v", comic)
	}

	chapters, _ := repo.ListChapters(ctx, "comic", StatusInit)
	if len(chapters) != 1 || chapters[0].UUID != "ch-2" {
		t.Errorf("Expected ch-2 back to init, got %+v", chapters)
	}

	pending, _ := repo.FetchPages(ctx, "comic", StatusInit, MaxPageBatch)
	if len(pending) != 1 || pending[0].ImageIndex != 1 {
		t.Errorf("Expected page 1 back to init, got %+v", pending)
	}

	done, _ := repo.Pages(ctx, "ch-1", StatusSuccess)
	if len(done) != 1 {
		t.Errorf("Successful pages must stay successful, got %d", len(done))
	}
}

func TestListComicsCounters(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedComic(t, repo, "first", "a-1")
	seedComic(t, repo, "second")
	repo.SaveChapterPages(ctx, "first", "a-1", makePages("a-1", 4))
	repo.PageSuccess(ctx, "first", "a-1", 0, 1, 1, "png")
	repo.PageSuccess(ctx, "first", "a-1", 1, 1, 1, "png")
	repo.PageFailed(ctx, "a-1", 2)

	comics, err := repo.ListComics(ctx)
	if err != nil {
		t.Fatalf("ListComics failed: %v", err)
	}
	if len(comics) != 2 {
		t.Fatalf("Expected 2 comics, got %d", len(comics))
	}

	first := comics[0]
	if first.PathWord != "first" {
		t.Fatalf("Expected 'first' listed first, got %q", first.PathWord)
	}
	if first.Chapters != 1 || first.TotalPages != 4 || first.SuccessPages != 2 || first.FailedPages != 1 {
		t.Errorf("Unexpected counters: %+v", first)
	}
	if comics[1].TotalPages != 0 {
		t.Errorf("Expected no pages for 'second', got %d", comics[1].TotalPages)
	}
}

func TestDeleteComic(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	seedComic(t, repo, "comic", "ch-1")
	repo.SaveChapterPages(ctx, "comic", "ch-1", makePages("ch-1", 2))

	if err := repo.DeleteComic(ctx, "comic"); err != nil {
		t.Fatalf("DeleteComic failed: %v", err)
	}

	comic, err := repo.GetComic(ctx, "comic")
	if err != nil {
		t.Fatalf("GetComic failed: %v", err)
	}
	if comic != nil {
		t.Error("Expected comic to be deleted")
	}

	chapters, _ := repo.Chapters(ctx, "comic")
	if len(chapters) != 0 {
		t.Errorf("Expected 0 chapters, got %d", len(chapters))
	}
	pages, _ := repo.Pages(ctx, "ch-1", StatusInit)
	if len(pages) != 0 {
		t.Errorf("Expected 0 pages, got %d", len(pages))
	}
}
