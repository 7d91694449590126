package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
)

// FormatGoalList renders the active goals table inside a bordered box.
func FormatGoalList(goals []domain.Goal, now time.Time) string {
	if len(goals) == 0 {
		return RenderBox("Goals", Dim("No goals yet. Run `coach plan generate` to draft one."))
	}

	headers := []string{"ID", "GOAL", "PROGRESS", "ROUTES", "UPDATED"}
	rows := make([][]string, 0, len(goals))
	for i := range goals {
		g := &goals[i]
		total, done := g.RouteCount()
		progress := g.Progress()
		rows = append(rows, []string{
			Dim(g.ID.String()),
			Bold(Truncate(domain.CoalesceStr(g.Summary(), "(untitled)"), 40)),
			RenderCompactBar(progress, 10, progress == 100) + fmt.Sprintf(" %3d%%", progress),
			fmt.Sprintf("%d/%d", done, total),
			Dim(updatedLabel(g, now)),
		})
	}
	return RenderBox("Goals", RenderTable(headers, rows))
}

// FormatGoalDetail renders one goal with its phase/route tree.
func FormatGoalDetail(g domain.Goal, now time.Time) string {
	var b strings.Builder
	b.WriteString(StyleBold.Render(domain.CoalesceStr(g.Summary(), "(untitled)")) + "\n")
	b.WriteString(Dim(fmt.Sprintf("goal %s · updated %s", g.ID, updatedLabel(&g, now))) + "\n\n")
	b.WriteString(RenderProgress(g.Progress(), 24) + "\n\n")
	b.WriteString(RenderTree(goalTree(g.Metadata)))
	if next := nextDeadline(g); next != nil {
		b.WriteString("\n" + Dim("next") + " " + next.SmallTitle + "  " + DeadlineStyled(next.Deadline, now))
	}
	return RenderBox("", b.String())
}

// nextDeadline is the open route with the earliest deadline, or nil.
func nextDeadline(g domain.Goal) *domain.Route {
	var next *domain.Route
	for pi := range g.Metadata {
		for ri := range g.Metadata[pi].Routes {
			r := &g.Metadata[pi].Routes[ri]
			if r.Done || r.Deadline == "" {
				continue
			}
			if next == nil || r.Deadline < next.Deadline {
				next = r
			}
		}
	}
	return next
}

// FormatHistory renders each goal restricted to its completed routes.
func FormatHistory(goals []domain.Goal, now time.Time) string {
	if len(goals) == 0 {
		return RenderBox("History", Dim("Nothing here yet."))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", StyleGreen.Render(fmt.Sprint(domain.CompletedRouteCount(goals))), Dim("routes completed"))
	for i := range goals {
		g := goals[i]
		view := domain.CompletedView(g)
		b.WriteString("\n" + StyleBold.Render(domain.CoalesceStr(g.Summary(), "(untitled)")))
		b.WriteString(" " + Dim(fmt.Sprintf("%d%% · %s", g.Progress(), updatedLabel(&g, now))) + "\n")
		if len(view.Metadata) == 0 {
			b.WriteString(Dim("  no completed routes") + "\n")
			continue
		}
		b.WriteString(RenderTree(goalTree(view.Metadata)))
	}
	return RenderBox("History", b.String())
}

// FormatRoute renders a single route for confirmation prompts.
func FormatRoute(r domain.Route) string {
	return fmt.Sprintf("%s (%s%%)", domain.CoalesceStr(r.SmallTitle, "(untitled route)"), domain.FormatPercentage(float64(r.Percentage)))
}

func goalTree(phases []domain.Phase) []TreeItem {
	var items []TreeItem
	for pi, p := range phases {
		items = append(items, TreeItem{Title: domain.CoalesceStr(p.BigTitle, "(untitled phase)"), Seq: pi + 1})
		for ri, r := range p.Routes {
			detail := domain.FormatPercentage(float64(r.Percentage)) + "%"
			if r.Deadline != "" {
				detail += " · " + r.Deadline
			}
			items = append(items, TreeItem{
				Title:  domain.CoalesceStr(r.SmallTitle, "(untitled route)"),
				Seq:    ri + 1,
				Level:  1,
				IsLast: ri == len(p.Routes)-1,
				Done:   r.Done,
				Detail: detail,
			})
		}
	}
	return items
}

func updatedLabel(g *domain.Goal, now time.Time) string {
	last := g.LastActivity()
	if last.IsZero() {
		return "--"
	}
	return HumanDate(last, now)
}
