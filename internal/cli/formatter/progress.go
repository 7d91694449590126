package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a goal progress value (0..100) as [████░░░░]  45%.
func RenderProgress(progress int, width int) string {
	progress = clampProgress(progress)
	bar := ProgressStyle(progress).Render(blocks(progress, width))
	return fmt.Sprintf("[%s] %3d%%", bar, progress)
}

// RenderCompactBar renders only the blocks, for table cells. Dimmed bars skip
// the color so completed goals read as inactive.
func RenderCompactBar(progress int, width int, dim bool) string {
	progress = clampProgress(progress)
	bar := blocks(progress, width)
	if dim {
		return StyleDim.Render(bar)
	}
	return ProgressStyle(progress).Render(bar)
}

func blocks(progress, width int) string {
	if width < 2 {
		width = 2
	}
	filled := progress * width / 100
	return strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
