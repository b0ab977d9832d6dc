package services

import (
	"sync"

	"github.com/kerbaras/comics/pkg/data"
)

// pageQueue is a batch of pages shared by the workers. Pop takes from the
// end, so the last page loaded is the first handed out.
type pageQueue struct {
	mu    sync.Mutex
	pages []*data.Page
}

func newPageQueue(pages []*data.Page) *pageQueue {
	q := &pageQueue{pages: make([]*data.Page, len(pages))}
	copy(q.pages, pages)
	return q
}

func (q *pageQueue) Pop() (*data.Page, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.pages)
	if n == 0 {
		return nil, false
	}
	page := q.pages[n-1]
	q.pages[n-1] = nil
	q.pages = q.pages[:n-1]
	return page, true
}

func (q *pageQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pages)
}
