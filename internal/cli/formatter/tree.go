package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one node in a phase/route tree.
type TreeItem struct {
	Title  string
	Seq    int // 1-based position shown as #n; 0 hides it
	Level  int
	IsLast bool
	Done   bool
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders items as an indented tree. Done items get a green ✔ and
// a dimmed title; details are right-aligned in a badge column.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	badges := make([]string, len(items))
	widest := 0

	for i, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		mark := ""
		if item.Level > 0 {
			mark = DoneMark(item.Done) + " "
			if item.Done {
				title = Dim(title)
			}
		} else {
			title = StyleBold.Render(title)
		}
		if item.Seq > 0 {
			title = StyleDim.Render(fmt.Sprintf("#%d ", item.Seq)) + title
		}

		contents[i] = prefix + mark + title
		if item.Detail != "" {
			badges[i] = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		widest = max(widest, lipgloss.Width(contents[i]))
	}

	var b strings.Builder
	for i, content := range contents {
		b.WriteString(content)
		if badges[i] != "" {
			b.WriteString(strings.Repeat(" ", widest-lipgloss.Width(content)) + "  " + badges[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}
