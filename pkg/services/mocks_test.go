package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/sources"
)

// Mock implementations for testing

type mockSource struct {
	comicFunc           func(ctx context.Context, pathWord string) (*data.Comic, error)
	chaptersFunc        func(ctx context.Context, pathWord, groupPathWord string) ([]*data.Chapter, error)
	chapterContentsFunc func(ctx context.Context, comicPathWord, chapterUUID string) ([]sources.Content, error)
	fetchImageFunc      func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockSource) Comic(ctx context.Context, pathWord string) (*data.Comic, error) {
	if m.comicFunc != nil {
		return m.comicFunc(ctx, pathWord)
	}
	return &data.Comic{PathWord: pathWord, Name: pathWord}, nil
}

func (m *mockSource) Chapters(ctx context.Context, pathWord, groupPathWord string) ([]*data.Chapter, error) {
	if m.chaptersFunc != nil {
		return m.chaptersFunc(ctx, pathWord, groupPathWord)
	}
	return nil, nil
}

func (m *mockSource) ChapterContents(ctx context.Context, comicPathWord, chapterUUID string) ([]sources.Content, error) {
	if m.chapterContentsFunc != nil {
		return m.chapterContentsFunc(ctx, comicPathWord, chapterUUID)
	}
	return nil, nil
}

func (m *mockSource) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if m.fetchImageFunc != nil {
		return m.fetchImageFunc(ctx, url)
	}
	return nil, fmt.Errorf("no image for %s", url)
}

// memStore is an in-memory Store that follows the same ordering rules as the
// DuckDB repository: comics and chapters in insertion order, pages by chapter
// then index.
type memStore struct {
	mu       sync.Mutex
	comics   []*data.Comic
	chapters []*data.Chapter
	pages    []*data.Page

	fetchLimits []int
	finished    []string

	nextComicErr   error
	pageSuccessErr error
}

func (s *memStore) addComic(pathWord string, chapterUUIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comics = append(s.comics, &data.Comic{PathWord: pathWord, Name: pathWord, Status: data.StatusInit})
	for i, id := range chapterUUIDs {
		s.chapters = append(s.chapters, &data.Chapter{
			UUID:          id,
			ComicPathWord: pathWord,
			GroupPathWord: "default",
			Name:          fmt.Sprintf("Chapter %d", i+1),
			Index:         i,
			Status:        data.StatusInit,
		})
	}
}

func (s *memStore) NextComic(ctx context.Context, status data.Status) (*data.Comic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nextComicErr != nil {
		return nil, s.nextComicErr
	}
	for _, c := range s.comics {
		if c.Status == status {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memStore) ListChapters(ctx context.Context, comicPathWord string, status data.Status) ([]*data.Chapter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*data.Chapter
	for _, ch := range s.chapters {
		if ch.ComicPathWord == comicPathWord && ch.Status == status {
			cp := *ch
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memStore) SaveChapterPages(ctx context.Context, comicPathWord, chapterUUID string, pages []*data.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range pages {
		cp := *p
		cp.ComicPathWord = comicPathWord
		cp.ChapterUUID = chapterUUID
		cp.Status = data.StatusInit
		s.pages = append(s.pages, &cp)
	}
	s.setChapterStatus(chapterUUID, data.StatusSuccess)
	return nil
}

func (s *memStore) ChapterFetchFailed(ctx context.Context, chapterUUID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setChapterStatus(chapterUUID, data.StatusFailed)
	return nil
}

func (s *memStore) setChapterStatus(chapterUUID string, status data.Status) {
	for _, ch := range s.chapters {
		if ch.UUID == chapterUUID {
			ch.Status = status
		}
	}
}

func (s *memStore) chapterOrder(chapterUUID string) int {
	for i, ch := range s.chapters {
		if ch.UUID == chapterUUID {
			return i
		}
	}
	return len(s.chapters)
}

func (s *memStore) FetchPages(ctx context.Context, comicPathWord string, status data.Status, limit int) ([]*data.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetchLimits = append(s.fetchLimits, limit)

	var out []*data.Page
	for _, p := range s.pages {
		if p.ComicPathWord == comicPathWord && p.Status == status {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := s.chapterOrder(out[i].ChapterUUID), s.chapterOrder(out[j].ChapterUUID)
		if oi != oj {
			return oi < oj
		}
		return out[i].ImageIndex < out[j].ImageIndex
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) PageSuccess(ctx context.Context, comicPathWord, chapterUUID string, index, width, height int, format string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pageSuccessErr != nil {
		return s.pageSuccessErr
	}
	if p := s.page(chapterUUID, index); p != nil {
		p.Status = data.StatusSuccess
		p.Width, p.Height, p.Format = width, height, format
	}
	return nil
}

func (s *memStore) PageFailed(ctx context.Context, chapterUUID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p := s.page(chapterUUID, index); p != nil {
		p.Status = data.StatusFailed
	}
	return nil
}

func (s *memStore) page(chapterUUID string, index int) *data.Page {
	for _, p := range s.pages {
		if p.ChapterUUID == chapterUUID && p.ImageIndex == index {
			return p
		}
	}
	return nil
}

func (s *memStore) FinishComic(ctx context.Context, comicPathWord string) (data.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.finished = append(s.finished, comicPathWord)

	status := data.StatusSuccess
	check := func(st data.Status) bool {
		switch st {
		case data.StatusInit:
			return true
		case data.StatusFailed:
			status = data.StatusFailed
		}
		return false
	}
	for _, ch := range s.chapters {
		if ch.ComicPathWord == comicPathWord && check(ch.Status) {
			return data.StatusInit, nil
		}
	}
	for _, p := range s.pages {
		if p.ComicPathWord == comicPathWord && check(p.Status) {
			return data.StatusInit, nil
		}
	}
	for _, c := range s.comics {
		if c.PathWord == comicPathWord {
			c.Status = status
		}
	}
	return status, nil
}

func (s *memStore) pagesIn(status data.Status) []*data.Page {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*data.Page
	for _, p := range s.pages {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

func (s *memStore) chapterStatus(chapterUUID string) data.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.chapters {
		if ch.UUID == chapterUUID {
			return ch.Status
		}
	}
	return -1
}

// Test helpers

func createTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

func pageURLs(chapterUUID string, n int) []sources.Content {
	contents := make([]sources.Content, n)
	for i := range contents {
		contents[i] = sources.Content{URL: fmt.Sprintf("https://img.example.com/%s/%d.png?v=%d", chapterUUID, i, i)}
	}
	return contents
}

func newTestDownloader(t *testing.T, source sources.Source, store Store) (*Downloader, *Control) {
	t.Helper()

	control := NewControl(10 * time.Millisecond)
	downloader := NewDownloader(source, store, control, DownloaderConfig{
		DownloadDir: t.TempDir(),
		Cadence:     time.Millisecond,
	})
	return downloader, control
}
