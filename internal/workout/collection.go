package workout

// Collection is the ordered, append-only list of a session's workouts.
// It is not safe for concurrent use; its owner serializes access.
type Collection struct {
	items []Workout
}

func NewCollection() *Collection {
	return &Collection{items: make([]Workout, 0)}
}

// Append adds w at the end.
func (c *Collection) Append(w Workout) {
	c.items = append(c.items, w)
}

// All returns the workouts in creation order. The slice is a copy.
func (c *Collection) All() []Workout {
	result := make([]Workout, len(c.items))
	copy(result, c.items)
	return result
}

// FindByID scans for the workout with the given id.
func (c *Collection) FindByID(id string) (Workout, bool) {
	for _, w := range c.items {
		if w.id == id {
			return w, true
		}
	}
	return Workout{}, false
}

func (c *Collection) Len() int {
	return len(c.items)
}
