package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// AddComic inserts the comic or refreshes its metadata. Either way the comic
// goes back to Init so the scheduler picks up newly added chapters.
func (r *Repository) AddComic(ctx context.Context, comic *Comic) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO comics (path_word, name, cover, status) VALUES (?, ?, ?, ?)
		ON CONFLICT (path_word) DO UPDATE SET
			name = excluded.name,
			cover = excluded.cover,
			status = excluded.status`,
		comic.PathWord, comic.Name, comic.Cover, int(StatusInit))
	if err != nil {
		return fmt.Errorf("failed to save comic %s: %w", comic.PathWord, err)
	}
	return nil
}

// AddChapters inserts chapters that are not known yet. Existing rows keep
// their status.
func (r *Repository) AddChapters(ctx context.Context, chapters []*Chapter) (int, error) {
	added := 0
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO chapters (uuid, comic_path_word, group_path_word, name, chapter_index, status)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (uuid) DO NOTHING`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, ch := range chapters {
			res, err := stmt.ExecContext(ctx, ch.UUID, ch.ComicPathWord, ch.GroupPathWord, ch.Name, ch.Index, int(StatusInit))
			if err != nil {
				return fmt.Errorf("chapter %s: %w", ch.UUID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				added += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save chapters: %w", err)
	}
	return added, nil
}

func (r *Repository) GetComic(ctx context.Context, pathWord string) (*Comic, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT path_word, name, cover, status FROM comics WHERE path_word = ?`, pathWord)
	comic, err := scanComic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return comic, err
}

// NextComic returns the oldest comic in the given status, or nil.
func (r *Repository) NextComic(ctx context.Context, status Status) (*Comic, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT path_word, name, cover, status FROM comics
		WHERE status = ? ORDER BY seq LIMIT 1`, int(status))
	comic, err := scanComic(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return comic, err
}

// ListChapters returns the comic's chapters in the given status, in insertion order.
func (r *Repository) ListChapters(ctx context.Context, comicPathWord string, status Status) ([]*Chapter, error) {
	return r.queryChapters(ctx, `
		SELECT uuid, comic_path_word, group_path_word, name, chapter_index, status
		FROM chapters WHERE comic_path_word = ? AND status = ? ORDER BY seq`,
		comicPathWord, int(status))
}

// Chapters returns every chapter of the comic regardless of status.
func (r *Repository) Chapters(ctx context.Context, comicPathWord string) ([]*Chapter, error) {
	return r.queryChapters(ctx, `
		SELECT uuid, comic_path_word, group_path_word, name, chapter_index, status
		FROM chapters WHERE comic_path_word = ? ORDER BY seq`,
		comicPathWord)
}

func (r *Repository) queryChapters(ctx context.Context, query string, args ...any) ([]*Chapter, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		var (
			ch     Chapter
			status int
		)
		if err := rows.Scan(&ch.UUID, &ch.ComicPathWord, &ch.GroupPathWord, &ch.Name, &ch.Index, &status); err != nil {
			return nil, err
		}
		ch.Status = Status(status)
		chapters = append(chapters, &ch)
	}
	return chapters, rows.Err()
}

// ChapterFetchFailed marks a chapter whose page list could not be fetched.
func (r *Repository) ChapterFetchFailed(ctx context.Context, chapterUUID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE chapters SET status = ? WHERE uuid = ?`, int(StatusFailed), chapterUUID)
	return err
}

// FinishComic settles the comic status once nothing is pending: Failed if any
// chapter or page failed, Success otherwise. A comic with pending work stays Init.
func (r *Repository) FinishComic(ctx context.Context, pathWord string) (Status, error) {
	var pending, failed int64
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM chapters WHERE comic_path_word = ? AND status = ?) +
			(SELECT count(*) FROM pages WHERE comic_path_word = ? AND status = ?),
			(SELECT count(*) FROM chapters WHERE comic_path_word = ? AND status = ?) +
			(SELECT count(*) FROM pages WHERE comic_path_word = ? AND status = ?)`,
		pathWord, int(StatusInit), pathWord, int(StatusInit),
		pathWord, int(StatusFailed), pathWord, int(StatusFailed),
	).Scan(&pending, &failed)
	if err != nil {
		return StatusInit, err
	}

	status := StatusSuccess
	switch {
	case pending > 0:
		return StatusInit, nil
	case failed > 0:
		status = StatusFailed
	}

	if _, err := r.db.ExecContext(ctx,
		`UPDATE comics SET status = ? WHERE path_word = ?`, int(status), pathWord); err != nil {
		return StatusInit, err
	}
	return status, nil
}

// ResetFailed puts every failed chapter and page of the comic back to Init and
// re-queues the comic.
func (r *Repository) ResetFailed(ctx context.Context, pathWord string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			`UPDATE pages SET status = ? WHERE comic_path_word = ? AND status = ?`,
			`UPDATE chapters SET status = ? WHERE comic_path_word = ? AND status = ?`,
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt, int(StatusInit), pathWord, int(StatusFailed)); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE comics SET status = ? WHERE path_word = ?`, int(StatusInit), pathWord)
		return err
	})
}

// DeleteComic removes the comic with its chapters and pages.
func (r *Repository) DeleteComic(ctx context.Context, pathWord string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM pages WHERE comic_path_word = ?`,
			`DELETE FROM chapters WHERE comic_path_word = ?`,
			`DELETE FROM comics WHERE path_word = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, pathWord); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListComics returns every comic with page counters, in insertion order.
func (r *Repository) ListComics(ctx context.Context) ([]*ComicProgress, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.path_word, c.name, c.cover, c.status,
			(SELECT count(*) FROM chapters ch WHERE ch.comic_path_word = c.path_word),
			count(p.image_index),
			count(p.image_index) FILTER (WHERE p.status = ?),
			count(p.image_index) FILTER (WHERE p.status = ?)
		FROM comics c
		LEFT JOIN pages p ON p.comic_path_word = c.path_word
		GROUP BY c.path_word, c.name, c.cover, c.status, c.seq
		ORDER BY c.seq`, int(StatusSuccess), int(StatusFailed))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ComicProgress
	for rows.Next() {
		var (
			p                                ComicProgress
			status                           int
			chapters, total, success, failed int64
		)
		if err := rows.Scan(&p.PathWord, &p.Name, &p.Cover, &status, &chapters, &total, &success, &failed); err != nil {
			return nil, err
		}
		p.Status = Status(status)
		p.Chapters = int(chapters)
		p.TotalPages = int(total)
		p.SuccessPages = int(success)
		p.FailedPages = int(failed)
		out = append(out, &p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComic(row rowScanner) (*Comic, error) {
	var (
		c      Comic
		status int
	)
	if err := row.Scan(&c.PathWord, &c.Name, &c.Cover, &status); err != nil {
		return nil, err
	}
	c.Status = Status(status)
	return &c, nil
}
