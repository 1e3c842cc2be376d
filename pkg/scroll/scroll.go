// Package scroll decides when an infinite-scroll sentinel should trigger
// the next page load. The browser reports raw sentinel observations
// (vertical offset and visibility); the observer turns them into advance
// edges, firing only on a transition into visible while the page is
// scrolling downward. Upward re-intersections never fire, so scrolling back
// up past the sentinel cannot re-trigger pagination.
package scroll

// Observer tracks one sentinel element across observations. The zero value
// is ready to use. Not safe for concurrent use; the session loop owns it.
type Observer struct {
	prevTop float64
	visible bool
	primed  bool
}

// Observe records one sentinel report and reports whether it constitutes an
// advance edge. Direction is derived by comparing the sentinel's vertical
// offset against the previous observation: a shrinking offset means the
// page moved down. The first observation only primes the direction
// tracking.
func (o *Observer) Observe(top float64, visible bool) bool {
	down := o.primed && top < o.prevTop
	fire := visible && !o.visible && down

	o.prevTop = top
	o.visible = visible
	o.primed = true
	return fire
}

// Reset forgets all tracked state, for when the sentinel element is
// removed or replaced.
func (o *Observer) Reset() {
	*o = Observer{}
}
