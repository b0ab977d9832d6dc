package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kerbaras/comics/pkg/data"
	"github.com/kerbaras/comics/pkg/utils"
)

const chaptersPageSize = 100

// response is the envelope every CopyManga endpoint wraps its results in.
type response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results"`
}

type Comic struct {
	Name     string `json:"name"`
	PathWord string `json:"path_word"`
	Cover    string `json:"cover"`
}

func (c *Comic) ToComic() *data.Comic {
	return &data.Comic{
		PathWord: c.PathWord,
		Name:     c.Name,
		Cover:    c.Cover,
	}
}

type Chapter struct {
	UUID          string `json:"uuid"`
	Name          string `json:"name"`
	Index         int    `json:"index"`
	ComicPathWord string `json:"comic_path_word"`
	GroupPathWord string `json:"group_path_word"`
}

func (c *Chapter) ToChapter() *data.Chapter {
	return &data.Chapter{
		UUID:          c.UUID,
		ComicPathWord: c.ComicPathWord,
		GroupPathWord: c.GroupPathWord,
		Name:          c.Name,
		Index:         c.Index,
	}
}

type CopyManga struct {
	api *utils.API
}

func NewCopyManga(baseURL, userAgent string, timeout time.Duration) *CopyManga {
	return &CopyManga{api: utils.NewAPIWithTimeout(baseURL, userAgent, timeout)}
}

func (m *CopyManga) get(ctx context.Context, path string, params url.Values, results any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("platform", "3")

	env := response{Results: results}
	if err := m.api.Get(ctx, path, params, &env); err != nil {
		return err
	}
	if env.Code != 200 {
		return fmt.Errorf("api error %d: %s", env.Code, env.Message)
	}
	return nil
}

func (m *CopyManga) Comic(ctx context.Context, pathWord string) (*data.Comic, error) {
	var results struct {
		Comic Comic `json:"comic"`
	}
	if err := m.get(ctx, fmt.Sprintf("/api/v3/comic2/%s", url.PathEscape(pathWord)), nil, &results); err != nil {
		return nil, fmt.Errorf("failed to get comic %s: %w", pathWord, err)
	}
	comic := results.Comic.ToComic()
	if comic.PathWord == "" {
		comic.PathWord = pathWord
	}
	return comic, nil
}

// Chapters pages through the group's chapter list until total is reached.
func (m *CopyManga) Chapters(ctx context.Context, pathWord, groupPathWord string) ([]*data.Chapter, error) {
	path := fmt.Sprintf("/api/v3/comic/%s/group/%s/chapters", url.PathEscape(pathWord), url.PathEscape(groupPathWord))

	var out []*data.Chapter
	for offset := 0; ; {
		var results struct {
			List   []Chapter `json:"list"`
			Total  int       `json:"total"`
			Limit  int       `json:"limit"`
			Offset int       `json:"offset"`
		}
		params := url.Values{
			"limit":  {strconv.Itoa(chaptersPageSize)},
			"offset": {strconv.Itoa(offset)},
		}
		if err := m.get(ctx, path, params, &results); err != nil {
			return nil, fmt.Errorf("failed to get chapters of %s: %w", pathWord, err)
		}

		for i := range results.List {
			ch := results.List[i].ToChapter()
			if ch.ComicPathWord == "" {
				ch.ComicPathWord = pathWord
			}
			if ch.GroupPathWord == "" {
				ch.GroupPathWord = groupPathWord
			}
			out = append(out, ch)
		}

		offset += len(results.List)
		if len(results.List) == 0 || offset >= results.Total {
			return out, nil
		}
	}
}

// ChapterContents returns the chapter's images in the order the API lists them.
func (m *CopyManga) ChapterContents(ctx context.Context, comicPathWord, chapterUUID string) ([]Content, error) {
	var results struct {
		Chapter struct {
			UUID     string `json:"uuid"`
			Contents []struct {
				URL string `json:"url"`
			} `json:"contents"`
		} `json:"chapter"`
	}
	path := fmt.Sprintf("/api/v3/comic/%s/chapter2/%s", url.PathEscape(comicPathWord), url.PathEscape(chapterUUID))
	if err := m.get(ctx, path, nil, &results); err != nil {
		return nil, fmt.Errorf("failed to get contents of chapter %s: %w", chapterUUID, err)
	}

	contents := make([]Content, len(results.Chapter.Contents))
	for i, c := range results.Chapter.Contents {
		contents[i] = Content{URL: c.URL}
	}
	return contents, nil
}

func (m *CopyManga) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	content, err := m.api.Download(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	return content, nil
}
