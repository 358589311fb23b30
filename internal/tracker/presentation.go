package tracker

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/lowaak/mapty/internal/workout"
)

// Detail is one labelled value of a list entry
type Detail struct {
	Icon  string
	Value string
	Unit  string
}

// ListEntry is the display projection of a workout. It is never read back
// into the model.
type ListEntry struct {
	ID      string
	Kind    workout.Kind
	Icon    string
	Title   string
	Details []Detail
}

// NewListEntry projects w for the workout list. Stored values are shown as
// entered; derived values are rounded to one decimal.
func NewListEntry(w workout.Workout) ListEntry {
	info := GetKindInfo(w.Kind())
	entry := ListEntry{
		ID:    w.ID(),
		Kind:  w.Kind(),
		Icon:  info.Icon,
		Title: workout.Describe(w),
		Details: []Detail{
			{Icon: info.Icon, Value: formatStored(w.DistanceKm()), Unit: "km"},
			{Icon: "⏱", Value: formatStored(w.DurationMin()), Unit: "min"},
		},
	}

	metric := w.DerivedMetric()
	switch w.Kind() {
	case workout.KindRunning:
		cadence, _ := w.Cadence()
		entry.Details = append(entry.Details,
			Detail{Icon: "🦶🏼", Value: formatStored(cadence), Unit: "spm"},
			Detail{Icon: "⚡️", Value: formatDerived(metric.Value), Unit: metric.Unit},
		)
	case workout.KindCycling:
		gain, _ := w.ElevationGain()
		entry.Details = append(entry.Details,
			Detail{Icon: "⛰", Value: formatStored(gain), Unit: "m"},
			Detail{Icon: "⚡️", Value: formatDerived(metric.Value), Unit: metric.Unit},
		)
	}
	return entry
}

// PopupContent is the marker popup text: kind icon followed by the label
func PopupContent(w workout.Workout) string {
	return GetKindInfo(w.Kind()).Icon + workout.Describe(w)
}

var entryTemplate = template.Must(template.New("workout").Parse(
	`<li class="workout workout--{{.KindName}}" data-id="{{.ID}}">
  <h2 class="workout__title">{{.Title}}</h2>
{{- range .Details}}
  <div class="workout__details">
    <span class="workout__icon">{{.Icon}}</span>
    <span class="workout__value">{{.Value}}</span>
    <span class="workout__unit">{{.Unit}}</span>
  </div>
{{- end}}
</li>
`))

// RenderHTML renders the list entry as an HTML fragment
func RenderHTML(entry ListEntry) (string, error) {
	var sb strings.Builder
	err := entryTemplate.Execute(&sb, struct {
		ListEntry
		KindName string
	}{entry, entry.Kind.String()})
	if err != nil {
		return "", fmt.Errorf("render workout %s: %w", entry.ID, err)
	}
	return sb.String(), nil
}

func formatStored(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDerived(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
