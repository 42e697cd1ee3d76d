package mask

// Box is the minimal rectangle enclosing every pixel of one instance.
//
// X1,Y1 and X2,Y2 are inclusive pixel coordinates of the extreme pixels, so a
// single-pixel instance has X1 == X2 and Y1 == Y2.
type Box struct {
	ID uint32 `json:"id"`
	X1 int    `json:"x1"`
	Y1 int    `json:"y1"`
	X2 int    `json:"x2"`
	Y2 int    `json:"y2"`
}

// FlipY converts b to a bottom-left origin for an image of the given height,
// the convention of tesseract box files.
func (b Box) FlipY(height int) Box {
	return Box{ID: b.ID, X1: b.X1, Y1: height - b.Y2, X2: b.X2, Y2: height - b.Y1}
}

// Decode recovers one Box per expected ID, in the order of ids.
//
// IDs with no pixel left on m produce no box; distortion can push a thin glyph
// entirely out of frame and callers must cope with a shorter result. The mask
// is scanned once regardless of the number of IDs.
func Decode(m *Mask, ids []uint32) []Box {
	found := make(map[uint32]*Box, len(ids))
	for _, id := range ids {
		if id != 0 {
			found[id] = nil
		}
	}

	for y := 0; y < m.Height; y++ {
		row := m.IDs[y*m.Width : (y+1)*m.Width]
		for x, id := range row {
			if id == 0 {
				continue
			}
			b, want := found[id]
			if !want {
				continue
			}
			if b == nil {
				found[id] = &Box{ID: id, X1: x, Y1: y, X2: x, Y2: y}
				continue
			}
			if x < b.X1 {
				b.X1 = x
			}
			if x > b.X2 {
				b.X2 = x
			}
			// Rows are visited top to bottom.
			b.Y2 = y
		}
	}

	boxes := make([]Box, 0, len(ids))
	for _, id := range ids {
		if b := found[id]; b != nil {
			boxes = append(boxes, *b)
		}
	}
	return boxes
}
