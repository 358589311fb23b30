package workout

import (
	"fmt"
	"strings"
)

// Describe renders the workout label, e.g. "Running on July 3 ".
//
// The number is the day of the week of CreatedAt (Sunday is 0), not the day
// of the month, and the label keeps its trailing space.
func Describe(w Workout) string {
	name := w.kind.String()
	return fmt.Sprintf("%s%s on %s %d ",
		strings.ToUpper(name[:1]), name[1:],
		w.createdAt.Month(),
		int(w.createdAt.Weekday()))
}
