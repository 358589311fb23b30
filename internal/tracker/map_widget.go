package tracker

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/mapty/internal/events"
	"github.com/lowaak/mapty/internal/geo"
	"github.com/lowaak/mapty/internal/workout"
)

// A terminal cell covers this many map pixels
const (
	cellWidthPx  = 8
	cellHeightPx = 16
)

// Background dots every gridColumns x gridRows world cells
const (
	gridColumns = 6
	gridRows    = 3
)

var popupColors = map[string]tcell.Color{
	"running-popup": tcell.ColorGreen,
	"cycling-popup": tcell.ColorOrange,
}

type mapMarker struct {
	at      workout.Coordinates
	glyph   rune
	content string
	opts    PopupOptions
}

// MapWidget is a tview primitive showing a Web Mercator viewport with workout
// markers. The cursor sits at the center of the view; moving it pans the map.
type MapWidget struct {
	*tview.Box
	center      workout.Coordinates
	zoom        int
	ready       bool
	markers     []mapMarker
	clickEvent  *events.Event[workout.Coordinates]
	attribution string
}

// NewMapWidget creates an empty map. Nothing but a placeholder is drawn until SetView.
func NewMapWidget(attribution string) *MapWidget {
	m := &MapWidget{
		Box:         tview.NewBox(),
		zoom:        DefaultZoom,
		clickEvent:  events.NewEvent[workout.Coordinates](false),
		attribution: attribution,
	}
	m.SetBorder(true).SetTitle(" Map ")
	return m
}

// SetView centers the map on center at the given zoom level
func (m *MapWidget) SetView(center workout.Coordinates, zoom int) {
	m.center = center
	m.zoom = geo.ClampZoom(zoom)
	m.ready = true
}

// OnClick registers a callback invoked with the clicked position
func (m *MapWidget) OnClick(callback func(workout.Coordinates)) func() {
	return m.clickEvent.Listen(callback)
}

// AddMarker places a marker with an open popup
func (m *MapWidget) AddMarker(at workout.Coordinates, content string, opts PopupOptions) {
	glyph := '*'
	for _, info := range AllKindInfos {
		if info.PopupClass == opts.ClassName {
			glyph = info.MarkerGlyph
		}
	}
	m.markers = append(m.markers, mapMarker{at: at, glyph: glyph, content: content, opts: opts})
}

// Center returns the position under the cursor
func (m *MapWidget) Center() workout.Coordinates {
	return m.center
}

// Zoom returns the current zoom level
func (m *MapWidget) Zoom() int {
	return m.zoom
}

// Pan moves the view by whole cells
func (m *MapWidget) Pan(dx, dy int) {
	if !m.ready {
		return
	}
	p := geo.Project(m.center, m.zoom)
	p.X += float64(dx * cellWidthPx)
	p.Y += float64(dy * cellHeightPx)
	m.center = geo.Unproject(p, m.zoom)
}

// ZoomBy changes the zoom level keeping the center in place
func (m *MapWidget) ZoomBy(delta int) {
	m.zoom = geo.ClampZoom(m.zoom + delta)
}

// Click emits a click at the cursor
func (m *MapWidget) Click() {
	if !m.ready {
		return
	}
	m.clickEvent.Notify(m.center)
}

// CoordinatesAt returns the position shown in the screen cell (x, y)
func (m *MapWidget) CoordinatesAt(x, y int) (workout.Coordinates, bool) {
	if !m.ready || !m.InInnerRect(x, y) {
		return workout.Coordinates{}, false
	}
	cx, cy := m.cursorCell()
	p := geo.Project(m.center, m.zoom)
	p.X += float64((x - cx) * cellWidthPx)
	p.Y += float64((y - cy) * cellHeightPx)
	return geo.Unproject(p, m.zoom), true
}

// cellOf returns the screen cell a position falls into
func (m *MapWidget) cellOf(c workout.Coordinates) (int, int) {
	cx, cy := m.cursorCell()
	center := geo.Project(m.center, m.zoom)
	p := geo.Project(c, m.zoom)
	return cx + int(math.Round((p.X-center.X)/cellWidthPx)), cy + int(math.Round((p.Y-center.Y)/cellHeightPx))
}

func (m *MapWidget) cursorCell() (int, int) {
	x, y, width, height := m.GetInnerRect()
	return x + width/2, y + height/2
}

// Draw draws the map
func (m *MapWidget) Draw(screen tcell.Screen) {
	m.DrawForSubclass(screen, m)
	x, y, width, height := m.GetInnerRect()
	if width <= 0 || height <= 0 {
		return
	}

	if !m.ready {
		tview.Print(screen, "Locating...", x, y+height/2, width, tview.AlignCenter, tcell.ColorGray)
		return
	}

	m.drawGrid(screen, x, y, width, height)

	cx, cy := m.cursorCell()
	screen.SetContent(cx, cy, '+', nil, tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true))

	for _, marker := range m.markers {
		m.drawMarker(screen, marker, x, y, width, height)
	}

	status := fmt.Sprintf("%s  z%d", m.center, m.zoom)
	tview.Print(screen, status, x, y, width, tview.AlignLeft, tcell.ColorYellow)
	tview.Print(screen, tview.Escape(m.attribution), x, y+height-1, width, tview.AlignRight, tcell.ColorGray)
}

func (m *MapWidget) drawGrid(screen tcell.Screen, x, y, width, height int) {
	cx, cy := m.cursorCell()
	center := geo.Project(m.center, m.zoom)
	style := tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	for row := y; row < y+height; row++ {
		wy := int(math.Floor(center.Y/cellHeightPx)) + row - cy
		if wy%gridRows != 0 {
			continue
		}
		for col := x; col < x+width; col++ {
			wx := int(math.Floor(center.X/cellWidthPx)) + col - cx
			if wx%gridColumns == 0 {
				screen.SetContent(col, row, '·', nil, style)
			}
		}
	}
}

func (m *MapWidget) drawMarker(screen tcell.Screen, marker mapMarker, x, y, width, height int) {
	col, row := m.cellOf(marker.at)
	if col < x || col >= x+width || row < y || row >= y+height {
		return
	}

	color, ok := popupColors[marker.opts.ClassName]
	if !ok {
		color = tcell.ColorWhite
	}
	screen.SetContent(col, row, marker.glyph, nil, tcell.StyleDefault.Foreground(color).Bold(true))

	maxCells, minCells := popupWidthCells(marker.opts)
	available := x + width - (col + 2)
	if available < minCells {
		return
	}
	if maxCells > available {
		maxCells = available
	}
	label := tview.Escape(marker.content)
	for tview.TaggedStringWidth(label) < minCells {
		label += " "
	}
	tview.Print(screen, fmt.Sprintf("[black:%s]%s", color.Name(), label), col+2, row, maxCells, tview.AlignLeft, tcell.ColorBlack)
}

// popupWidthCells converts popup pixel widths to terminal cells
func popupWidthCells(opts PopupOptions) (maxCells, minCells int) {
	maxCells = opts.MaxWidth / cellWidthPx
	minCells = (opts.MinWidth + cellWidthPx - 1) / cellWidthPx
	return maxCells, minCells
}

// InputHandler moves the cursor, zooms and clicks
func (m *MapWidget) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return m.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyUp:
			m.Pan(0, -1)
		case tcell.KeyDown:
			m.Pan(0, 1)
		case tcell.KeyLeft:
			m.Pan(-1, 0)
		case tcell.KeyRight:
			m.Pan(1, 0)
		case tcell.KeyEnter:
			m.Click()
		case tcell.KeyRune:
			switch event.Rune() {
			case 'k':
				m.Pan(0, -1)
			case 'j':
				m.Pan(0, 1)
			case 'h':
				m.Pan(-1, 0)
			case 'l':
				m.Pan(1, 0)
			case '+', '=':
				m.ZoomBy(1)
			case '-':
				m.ZoomBy(-1)
			}
		}
	})
}

// MouseHandler turns a left click into a map click; the wheel zooms
func (m *MapWidget) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return m.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		x, y := event.Position()
		if !m.InRect(x, y) {
			return false, nil
		}

		switch action {
		case tview.MouseLeftClick:
			setFocus(m)
			if coords, ok := m.CoordinatesAt(x, y); ok {
				m.clickEvent.Notify(coords)
			}
			return true, nil
		case tview.MouseScrollUp:
			m.ZoomBy(1)
			return true, nil
		case tview.MouseScrollDown:
			m.ZoomBy(-1)
			return true, nil
		}
		return false, nil
	})
}
