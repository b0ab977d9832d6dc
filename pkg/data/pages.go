package data

import (
	"context"
	"database/sql"
	"fmt"
)

// SaveChapterPages stores the chapter's page list as Init pages owned by
// comicPathWord and marks the chapter as fetched, in a single transaction.
func (r *Repository) SaveChapterPages(ctx context.Context, comicPathWord, chapterUUID string, pages []*Page) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO pages (comic_path_word, chapter_uuid, image_index, url, cache_key, status)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (chapter_uuid, image_index) DO NOTHING`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range pages {
			if _, err := stmt.ExecContext(ctx, comicPathWord, chapterUUID, p.ImageIndex, p.URL, p.CacheKey, int(StatusInit)); err != nil {
				return fmt.Errorf("page %d: %w", p.ImageIndex, err)
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE chapters SET status = ? WHERE uuid = ?`, int(StatusSuccess), chapterUUID)
		return err
	})
}

// FetchPages returns up to limit pages of the comic in the given status,
// ordered by chapter insertion order then image index. limit is clamped to
// [1, MaxPageBatch].
func (r *Repository) FetchPages(ctx context.Context, comicPathWord string, status Status, limit int) ([]*Page, error) {
	if limit <= 0 || limit > MaxPageBatch {
		limit = MaxPageBatch
	}
	return r.queryPages(ctx, `
		SELECT p.comic_path_word, p.chapter_uuid, p.image_index, p.url, p.cache_key,
			p.status, p.width, p.height, p.format
		FROM pages p
		LEFT JOIN chapters c ON c.uuid = p.chapter_uuid
		WHERE p.comic_path_word = ? AND p.status = ?
		ORDER BY c.seq, p.chapter_uuid, p.image_index
		LIMIT ?`, comicPathWord, int(status), limit)
}

// Pages returns the chapter's pages in the given status ordered by index.
func (r *Repository) Pages(ctx context.Context, chapterUUID string, status Status) ([]*Page, error) {
	return r.queryPages(ctx, `
		SELECT comic_path_word, chapter_uuid, image_index, url, cache_key,
			status, width, height, format
		FROM pages WHERE chapter_uuid = ? AND status = ?
		ORDER BY image_index`, chapterUUID, int(status))
}

func (r *Repository) queryPages(ctx context.Context, query string, args ...any) ([]*Page, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*Page
	for rows.Next() {
		var (
			p      Page
			status int
		)
		if err := rows.Scan(&p.ComicPathWord, &p.ChapterUUID, &p.ImageIndex, &p.URL, &p.CacheKey,
			&status, &p.Width, &p.Height, &p.Format); err != nil {
			return nil, err
		}
		p.Status = Status(status)
		pages = append(pages, &p)
	}
	return pages, rows.Err()
}

// PageSuccess records a downloaded page with its image metadata.
func (r *Repository) PageSuccess(ctx context.Context, comicPathWord, chapterUUID string, index, width, height int, format string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pages SET status = ?, width = ?, height = ?, format = ?
		WHERE comic_path_word = ? AND chapter_uuid = ? AND image_index = ?`,
		int(StatusSuccess), width, height, format, comicPathWord, chapterUUID, index)
	return err
}

// PageFailed records a page that could not be downloaded or decoded.
func (r *Repository) PageFailed(ctx context.Context, chapterUUID string, index int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE pages SET status = ? WHERE chapter_uuid = ? AND image_index = ?`,
		int(StatusFailed), chapterUUID, index)
	return err
}
