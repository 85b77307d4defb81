package dto

import "time"

// OpenInput names a book by catalog slug, by direct URL, or both; URL wins
// over the catalog's PDF link.
type OpenInput struct {
	BookSlug string
	URL      string
	Page     int
}

type ResolveOutput struct {
	BookID    string `json:"book_id"`
	Title     string `json:"title"`
	SourceURL string `json:"source_url"`
	URL       string `json:"url"`
}

type ReadPageInput struct {
	BookSlug string
	URL      string
	Page     int
}

type PageOutput struct {
	BookID    string
	Title     string
	Page      int
	PageCount int
	Text      string
}

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

// PointerInput is one raw pointer event in page coordinates. OnControl marks
// toolbar and button regions; NoToggle marks regions where a tap must not
// hide the chrome.
type PointerInput struct {
	Kind      PointerKind
	PointerID int
	X, Y      float64
	OnControl bool
	NoToggle  bool
	At        time.Time
}

type Phase string

const (
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
	PhaseEmpty   Phase = "empty"
	PhaseClosed  Phase = "closed"
)

// ViewState is a read-only snapshot of an open reader.
type ViewState struct {
	BookID    string
	Title     string
	Phase     Phase
	Progress  int
	Page      int
	PageCount int
	Scale     float64
	Rotation  int
	UIHidden  bool
	ScrollX   float64
	ScrollY   float64
	Error     string
	ErrorKind string
}
