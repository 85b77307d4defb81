package domain

import "math"

const (
	MinScale  = 0.5
	MaxScale  = 3.0
	ZoomStep  = 0.2
	zoomPivot = 1.2
	zoomedIn  = 2.0
)

// ViewerState is the visual state of one open document.
// PageCount 0 means the page count is not known yet.
type ViewerState struct {
	PageNumber int
	PageCount  int
	Scale      float64
	Rotation   int
	UIHidden   bool
	ScrollX    float64
	ScrollY    float64
}

// Viewport owns a ViewerState and is the only thing that mutates it.
// Navigation methods report whether the page actually changed so the caller
// can run the reading-progress side effect exactly once per change.
type Viewport struct {
	state ViewerState
}

func NewViewport(startPage int) *Viewport {
	if startPage < 1 {
		startPage = 1
	}
	return &Viewport{state: ViewerState{PageNumber: startPage, Scale: 1}}
}

func (v *Viewport) State() ViewerState { return v.state }

// SetPageCount records the loaded document's page count and pulls the
// current page back inside it.
func (v *Viewport) SetPageCount(n int) {
	if n < 0 {
		n = 0
	}
	v.state.PageCount = n
	if n > 0 && v.state.PageNumber > n {
		v.state.PageNumber = n
	}
}

func (v *Viewport) GoToPage(n int) bool {
	if n < 1 || n == v.state.PageNumber {
		return false
	}
	if v.state.PageCount > 0 && n > v.state.PageCount {
		return false
	}
	v.state.PageNumber = n
	v.state.ScrollX, v.state.ScrollY = 0, 0
	return true
}

func (v *Viewport) NextPage() bool     { return v.GoToPage(v.state.PageNumber + 1) }
func (v *Viewport) PreviousPage() bool { return v.GoToPage(v.state.PageNumber - 1) }

func (v *Viewport) SetScale(s float64) { v.state.Scale = ClampScale(s) }
func (v *Viewport) ZoomIn()            { v.SetScale(v.state.Scale + ZoomStep) }
func (v *Viewport) ZoomOut()           { v.SetScale(v.state.Scale - ZoomStep) }

// ToggleZoom is the double-tap behaviour: zoom in from near-fit, otherwise reset.
func (v *Viewport) ToggleZoom() {
	if v.state.Scale < zoomPivot {
		v.SetScale(zoomedIn)
		return
	}
	v.SetScale(1)
}

func (v *Viewport) Rotate() { v.state.Rotation = (v.state.Rotation + 90) % 360 }

func (v *Viewport) ToggleUI() { v.state.UIHidden = !v.state.UIHidden }

func (v *Viewport) ScrollTo(x, y float64) {
	v.state.ScrollX = math.Max(0, finite(x))
	v.state.ScrollY = math.Max(0, finite(y))
}

// ClampScale bounds s to [MinScale, MaxScale]; NaN maps to 1.
func ClampScale(s float64) float64 {
	if math.IsNaN(s) {
		return 1
	}
	return math.Max(MinScale, math.Min(MaxScale, s))
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
