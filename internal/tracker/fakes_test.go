package tracker

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/lowaak/mapty/internal/workout"
)

func newTestLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type fakeLocator struct {
	position workout.Coordinates
	err      error
	calls    int
}

func (l *fakeLocator) Locate(ctx context.Context) (workout.Coordinates, error) {
	l.calls++
	return l.position, l.err
}

type marker struct {
	at      workout.Coordinates
	content string
	opts    PopupOptions
}

type fakeMap struct {
	center    workout.Coordinates
	zoom      int
	viewCalls int
	onClick   func(workout.Coordinates)
	markers   []marker
}

func (m *fakeMap) SetView(center workout.Coordinates, zoom int) {
	m.center = center
	m.zoom = zoom
	m.viewCalls++
}

func (m *fakeMap) OnClick(callback func(workout.Coordinates)) func() {
	m.onClick = callback
	return func() { m.onClick = nil }
}

func (m *fakeMap) AddMarker(at workout.Coordinates, content string, opts PopupOptions) {
	m.markers = append(m.markers, marker{at: at, content: content, opts: opts})
}

func (m *fakeMap) click(coords workout.Coordinates) {
	if m.onClick != nil {
		m.onClick(coords)
	}
}

type fakeForm struct {
	values      FormValues
	visible     bool
	shows       int
	hides       int
	toggles     int
	elevationOn bool
}

func (f *fakeForm) Show() {
	f.visible = true
	f.shows++
}

func (f *fakeForm) Hide() {
	f.visible = false
	f.values = FormValues{Kind: f.values.Kind}
	f.hides++
}

func (f *fakeForm) Values() FormValues { return f.values }

func (f *fakeForm) ToggleElevationField() {
	f.elevationOn = !f.elevationOn
	f.toggles++
}

type fakeList struct {
	entries []ListEntry
}

func (l *fakeList) AddWorkoutEntry(entry ListEntry) {
	l.entries = append([]ListEntry{entry}, l.entries...)
}

type fakeAlerter struct {
	messages []string
}

func (a *fakeAlerter) Alert(message string) {
	a.messages = append(a.messages, message)
}

// queueScheduler collects posted work so tests decide when the event loop runs
type queueScheduler struct {
	posted chan func()
}

func newQueueScheduler() *queueScheduler {
	return &queueScheduler{posted: make(chan func(), 16)}
}

func (s *queueScheduler) Post(fn func()) {
	s.posted <- fn
}

func (s *queueScheduler) runNext(t *testing.T) {
	t.Helper()
	select {
	case fn := <-s.posted:
		fn()
	case <-time.After(time.Second):
		t.Fatal("nothing was posted to the event loop")
	}
}
