package display

const (
	// SentinelMargin extends the viewport downwards when checking whether
	// the sentinel below the last card is in view.
	SentinelMargin = 3
	// ProximityRows is how close to the end of the list the viewport
	// bottom has to be for the proximity trigger to fire.
	ProximityRows = 4
)

// Viewport locates the visible window of a rendered list, in rows.
type Viewport struct {
	Offset int // first row on screen
	Height int // rows on screen
	Total  int // rows in the rendered list
}

// SentinelInView reports whether the sentinel row, which sits right after
// the last rendered row, intersects the viewport grown by SentinelMargin.
func (v Viewport) SentinelInView() bool {
	if v.Height <= 0 {
		return false
	}
	return v.Total < v.Offset+v.Height+SentinelMargin
}

// NearBottom reports whether at most ProximityRows rows remain below the
// viewport.
func (v Viewport) NearBottom() bool {
	if v.Height <= 0 {
		return false
	}
	return v.Total-(v.Offset+v.Height) <= ProximityRows
}
