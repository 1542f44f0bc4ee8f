package codec

// Field is one named segment of a payload.
type Field struct {
	Name  string
	Width int
}

// Layout is the ordered, contiguous field partition of a payload. Widths are
// part of the wire format: changing one breaks every code already issued.
type Layout []Field

// Width returns the total width in bits.
func (l Layout) Width() int {
	w := 0
	for _, f := range l {
		w += f.Width
	}
	return w
}

// Offset returns the bit offset of the named field, or -1.
func (l Layout) Offset(name string) int {
	off := 0
	for _, f := range l {
		if f.Name == name {
			return off
		}
		off += f.Width
	}
	return -1
}
