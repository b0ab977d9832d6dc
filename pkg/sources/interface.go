package sources

import (
	"context"

	"github.com/kerbaras/comics/pkg/data"
)

// Content is one entry of a chapter's ordered image list.
type Content struct {
	URL string
}

type Source interface {
	Comic(ctx context.Context, pathWord string) (*data.Comic, error)
	Chapters(ctx context.Context, pathWord, groupPathWord string) ([]*data.Chapter, error)
	ChapterContents(ctx context.Context, comicPathWord, chapterUUID string) ([]Content, error)
	FetchImage(ctx context.Context, url string) ([]byte, error)
}
