package in

import (
	"context"

	"granth/internal/modules/viewer/dto"
	viewerout "granth/internal/modules/viewer/port/out"
)

type Usecase interface {
	Open(ctx context.Context, input dto.OpenInput) (Reader, error)
	Resolve(ctx context.Context, input dto.OpenInput) (dto.ResolveOutput, error)
	ReadPage(ctx context.Context, input dto.ReadPageInput) (dto.PageOutput, error)
}

// LoadResult carries a finished load from the loading goroutine back to the
// UI goroutine.
type LoadResult struct {
	Document viewerout.Document
	Err      error
}

// Reader is one open document. Load is the only method safe to call off the
// UI goroutine; everything else must be called from a single goroutine.
type Reader interface {
	Load(ctx context.Context, progress func(percent int)) LoadResult
	ReportProgress(percent int)
	FinishLoad(result LoadResult) dto.ViewState
	Retry() bool
	DismissError()

	Pointer(ev dto.PointerInput) dto.ViewState
	NextPage() bool
	PreviousPage() bool
	GoToPage(page int) bool
	ZoomIn()
	ZoomOut()
	ToggleZoom()
	Rotate()
	ToggleUI()
	ScrollBy(dx, dy float64)

	State() dto.ViewState
	PageText() (string, error)
	Close()
}
