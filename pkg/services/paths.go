package services

import (
	"fmt"
	"net/url"
	"path/filepath"
)

func ComicDir(downloadDir, comicPathWord string) string {
	return filepath.Join(downloadDir, comicPathWord)
}

func ChapterDir(downloadDir, comicPathWord, chapterUUID string) string {
	return filepath.Join(downloadDir, comicPathWord, chapterUUID)
}

// ImagePath is where a page's raw bytes are stored. It depends only on its
// arguments; the file carries no extension since the format is known only
// after download and is recorded in the store instead.
func ImagePath(downloadDir, comicPathWord, chapterUUID string, index int) string {
	return filepath.Join(ChapterDir(downloadDir, comicPathWord, chapterUUID), fmt.Sprintf("%04d", index))
}

// CacheKey is the path portion of a page URL, without query or fragment.
func CacheKey(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid page url %q: %w", rawURL, err)
	}
	return u.EscapedPath(), nil
}
