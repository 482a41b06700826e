package model

// BoundingBox is a rectangle in PDF coordinate space.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Source is the query-time view of a retrieved chunk: a human-readable
// preview plus whatever position information could be recovered. It is
// rebuilt on every query and never persisted.
type Source struct {
	ChunkID    uint         `json:"chunk_id"`
	Preview    string       `json:"preview"`
	Location   string       `json:"location,omitempty"`
	PageNumber int          `json:"page_number,omitempty"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
}

// HasCoordinates reports whether the source carries a located bounding box.
func (s Source) HasCoordinates() bool { return s.BBox != nil }
