package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const bannerDefaultWidth = 60

// printBanner renders a box-drawing banner around title. The banner grows
// when title does not fit in width.
func printBanner(w io.Writer, title string, width int) {
	if width < 10 {
		width = bannerDefaultWidth
	}

	inner := max(width-2, utf8.RuneCountInString(title)+2)
	edge := strings.Repeat("═", inner)

	fmt.Fprintf(w, "╔%s╗\n", edge)
	fmt.Fprintf(w, "║%s║\n", padCenter(title, inner))
	fmt.Fprintf(w, "╚%s╝\n", edge)
}

func padCenter(text string, width int) string {
	n := utf8.RuneCountInString(text)
	if n >= width {
		return text
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", width-n-left)
}
