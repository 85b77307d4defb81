package domain

import (
	"math"
	"time"
)

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

// Target flags mark overlay regions (toolbars, buttons) layered over the page.
type Target uint8

const (
	TargetPage     Target = 0
	TargetNoSwipe  Target = 1 << 0
	TargetNoToggle Target = 1 << 1
	TargetControl         = TargetNoSwipe | TargetNoToggle
)

func (t Target) Has(flag Target) bool { return t&flag != 0 }

type Point struct{ X, Y float64 }

type PointerEvent struct {
	Kind      PointerKind
	PointerID int
	X, Y      float64
	Target    Target
	At        time.Time
}

// ViewSnapshot is the viewport state a gesture starts from.
type ViewSnapshot struct {
	Scale            float64
	ScrollX, ScrollY float64
}

type ActionKind int

const (
	ActionSetScale ActionKind = iota + 1
	ActionScroll
	ActionNextPage
	ActionPreviousPage
	ActionToggleUI
	ActionZoomToggle
)

func (k ActionKind) String() string {
	switch k {
	case ActionSetScale:
		return "set-scale"
	case ActionScroll:
		return "scroll"
	case ActionNextPage:
		return "next-page"
	case ActionPreviousPage:
		return "previous-page"
	case ActionToggleUI:
		return "toggle-ui"
	case ActionZoomToggle:
		return "zoom-toggle"
	default:
		return "unknown"
	}
}

// Action is a semantic outcome of pointer input. Scale and Center are set
// for ActionSetScale; DX/DY (inverted drag delta) and ScrollX/ScrollY
// (absolute target) for ActionScroll.
type Action struct {
	Kind             ActionKind
	Scale            float64
	Center           Point
	DX, DY           float64
	ScrollX, ScrollY float64
}

type GestureConfig struct {
	SwipeThreshold  float64
	TapSlop         float64
	DoubleTapWindow time.Duration
	DoubleTapSlop   float64
}

func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		SwipeThreshold:  50,
		TapSlop:         10,
		DoubleTapWindow: 300 * time.Millisecond,
		DoubleTapSlop:   25,
	}
}

type pinchState struct {
	initialDistance float64
	initialScale    float64
	center          Point
}

type panState struct {
	startX, startY                 float64
	initialScrollX, initialScrollY float64
}

type lastTap struct {
	at    time.Time
	point Point
}

// Recognizer turns raw pointer events into Actions. Its pointer track and
// pinch/pan state are private; nothing outside reads or writes them.
type Recognizer struct {
	cfg GestureConfig

	pointers map[int]Point
	order    []int
	pinch    *pinchState
	pan      *panState

	origin      *Point
	originTgt   Target
	multiTouch  bool
	previousTap *lastTap
}

func NewRecognizer(cfg GestureConfig) *Recognizer {
	def := DefaultGestureConfig()
	if cfg.SwipeThreshold <= 0 {
		cfg.SwipeThreshold = def.SwipeThreshold
	}
	if cfg.TapSlop < 0 {
		cfg.TapSlop = def.TapSlop
	}
	if cfg.DoubleTapWindow <= 0 {
		cfg.DoubleTapWindow = def.DoubleTapWindow
	}
	if cfg.DoubleTapSlop <= 0 {
		cfg.DoubleTapSlop = def.DoubleTapSlop
	}
	return &Recognizer{cfg: cfg, pointers: map[int]Point{}}
}

// Active reports how many pointers are currently tracked.
func (r *Recognizer) Active() int { return len(r.pointers) }

func (r *Recognizer) Handle(ev PointerEvent, view ViewSnapshot) []Action {
	switch ev.Kind {
	case PointerDown:
		return r.down(ev, view)
	case PointerMove:
		return r.move(ev)
	case PointerUp:
		return r.up(ev)
	case PointerCancel:
		r.Reset()
		return nil
	}
	return nil
}

// Reset drops every in-progress gesture without emitting anything.
func (r *Recognizer) Reset() {
	r.pointers = map[int]Point{}
	r.order = nil
	r.pinch = nil
	r.pan = nil
	r.origin = nil
	r.originTgt = TargetPage
	r.multiTouch = false
	r.previousTap = nil
}

func (r *Recognizer) down(ev PointerEvent, view ViewSnapshot) []Action {
	if ev.Target.Has(TargetNoSwipe) {
		return nil
	}
	if _, known := r.pointers[ev.PointerID]; !known {
		r.order = append(r.order, ev.PointerID)
	}
	r.pointers[ev.PointerID] = Point{X: ev.X, Y: ev.Y}

	switch len(r.pointers) {
	case 1:
		r.origin = &Point{X: ev.X, Y: ev.Y}
		r.originTgt = ev.Target
		r.multiTouch = false
		r.pan = &panState{
			startX:         ev.X,
			startY:         ev.Y,
			initialScrollX: view.ScrollX,
			initialScrollY: view.ScrollY,
		}
	case 2:
		a, b := r.pair()
		r.pan = nil
		r.multiTouch = true
		r.pinch = &pinchState{
			initialDistance: distance(a, b),
			initialScale:    ClampScale(view.Scale),
			center:          Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2},
		}
	default:
		r.pan = nil
		r.pinch = nil
		r.multiTouch = true
	}
	return nil
}

func (r *Recognizer) move(ev PointerEvent) []Action {
	if _, known := r.pointers[ev.PointerID]; !known {
		return nil
	}
	r.pointers[ev.PointerID] = Point{X: ev.X, Y: ev.Y}

	switch {
	case len(r.pointers) == 2 && r.pinch != nil:
		if r.pinch.initialDistance == 0 {
			return nil
		}
		a, b := r.pair()
		scale := ClampScale(r.pinch.initialScale * distance(a, b) / r.pinch.initialDistance)
		return []Action{{Kind: ActionSetScale, Scale: scale, Center: r.pinch.center}}
	case len(r.pointers) == 1 && r.pan != nil:
		dx := -(ev.X - r.pan.startX)
		dy := -(ev.Y - r.pan.startY)
		return []Action{{
			Kind:    ActionScroll,
			DX:      dx,
			DY:      dy,
			ScrollX: r.pan.initialScrollX + dx,
			ScrollY: r.pan.initialScrollY + dy,
		}}
	}
	return nil
}

func (r *Recognizer) up(ev PointerEvent) []Action {
	if _, known := r.pointers[ev.PointerID]; !known {
		return nil
	}
	delete(r.pointers, ev.PointerID)
	r.forget(ev.PointerID)
	if len(r.pointers) < 2 {
		r.pinch = nil
	}
	if len(r.pointers) > 0 {
		return nil
	}

	var actions []Action
	if r.origin != nil && r.pan != nil && !r.multiTouch {
		dx := ev.X - r.origin.X
		dy := ev.Y - r.origin.Y
		dist := math.Hypot(dx, dy)
		switch {
		case dist > r.cfg.SwipeThreshold && math.Abs(dx) > math.Abs(dy):
			if dx < 0 {
				actions = append(actions, Action{Kind: ActionNextPage})
			} else {
				actions = append(actions, Action{Kind: ActionPreviousPage})
			}
			r.previousTap = nil
		case dist <= r.cfg.TapSlop:
			actions = r.tap(ev)
		}
	}
	r.pan = nil
	r.origin = nil
	r.multiTouch = false
	return actions
}

func (r *Recognizer) tap(ev PointerEvent) []Action {
	if r.originTgt.Has(TargetNoToggle) || ev.Target.Has(TargetNoToggle) {
		return nil
	}
	here := Point{X: ev.X, Y: ev.Y}
	prev := r.previousTap
	if prev != nil && !ev.At.IsZero() &&
		ev.At.Sub(prev.at) <= r.cfg.DoubleTapWindow &&
		distance(prev.point, here) <= r.cfg.DoubleTapSlop {
		r.previousTap = nil
		return []Action{{Kind: ActionToggleUI}, {Kind: ActionZoomToggle}}
	}
	r.previousTap = &lastTap{at: ev.At, point: here}
	return []Action{{Kind: ActionToggleUI}}
}

// pair returns the two oldest active pointers in arrival order.
func (r *Recognizer) pair() (Point, Point) {
	return r.pointers[r.order[0]], r.pointers[r.order[1]]
}

func (r *Recognizer) forget(id int) {
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
