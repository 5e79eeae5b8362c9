package locale

import "golang.org/x/text/width"

// DisplayWidth measures the terminal cell width of s, counting East
// Asian wide and fullwidth runes as two cells.
func DisplayWidth(s string) int {
	n := 0

	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}

	return n
}
