package data

import "fmt"

type Status int

const (
	StatusInit Status = iota
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

type Comic struct {
	PathWord string
	Name     string
	Cover    string
	Status   Status
}

type Chapter struct {
	UUID          string
	ComicPathWord string
	GroupPathWord string // page ownership group, "default" for the main run
	Name          string
	Index         int
	Status        Status
}

// Page is a single image download task, keyed by (chapter uuid, image index).
type Page struct {
	ComicPathWord string
	ChapterUUID   string
	ImageIndex    int
	URL           string
	CacheKey      string // URL path without query, used for local addressing
	Status        Status
	Width         int
	Height        int
	Format        string
}

// ComicProgress is a comic row with page counters for listings.
type ComicProgress struct {
	Comic
	Chapters     int
	TotalPages   int
	SuccessPages int
	FailedPages  int
}

func (p ComicProgress) PendingPages() int {
	return p.TotalPages - p.SuccessPages - p.FailedPages
}
