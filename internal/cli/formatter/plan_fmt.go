package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
)

// FormatDraftList renders locally stored plan drafts.
func FormatDraftList(drafts []*domain.PlanDraft, now time.Time) string {
	if len(drafts) == 0 {
		return RenderBox("Plan drafts", Dim("No drafts. Run `coach plan generate --target ... --deadline ...`."))
	}
	headers := []string{"ID", "TARGET", "DEADLINE", "TOTAL", "EDITED"}
	rows := make([][]string, 0, len(drafts))
	for _, d := range drafts {
		rows = append(rows, []string{
			TruncID(d.ID),
			Bold(Truncate(d.Target, 40)),
			d.Deadline.Format("2006-01-02"),
			totalLabel(d.Editor().Total()),
			Dim(HumanDate(d.UpdatedAt, now)),
		})
	}
	return RenderBox("Plan drafts", RenderTable(headers, rows))
}

// FormatPlanDraft renders a draft for review before saving.
func FormatPlanDraft(d *domain.PlanDraft) string {
	e := d.Editor()
	var b strings.Builder
	b.WriteString(StyleBold.Render(d.Target) + "\n")
	if summary := e.Summary(); summary != "" {
		b.WriteString(StyleFg.Render(summary) + "\n")
	}
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n\n",
		Dim("draft"), TruncID(d.ID),
		Dim("deadline"), d.Deadline.Format("2006-01-02"),
		Dim("total"), totalLabel(e.Total()))

	phases := e.Phases()
	b.WriteString(RenderTree(goalTree(phases)))

	if descs := routeDescriptions(phases); descs != "" {
		b.WriteString("\n" + descs)
	}
	return RenderBox("Plan draft", b.String())
}

// totalLabel shows the running route total, green only when it is exactly 100%.
func totalLabel(total float64) string {
	text := domain.FormatPercentage(total) + "%"
	if total == domain.PercentageTotal {
		return StyleGreen.Render(text)
	}
	return StyleRed.Render(text)
}

func routeDescriptions(phases []domain.Phase) string {
	var b strings.Builder
	for pi, p := range phases {
		for ri, r := range p.Routes {
			if strings.TrimSpace(r.Description) == "" {
				continue
			}
			fmt.Fprintf(&b, "%s %s\n", Dim(fmt.Sprintf("%d.%d", pi+1, ri+1)), r.Description)
		}
	}
	return b.String()
}
