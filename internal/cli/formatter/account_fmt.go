package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/coach/internal/domain"
)

// DashboardData is everything the dashboard screen shows.
type DashboardData struct {
	User      *domain.User
	Active    []domain.Goal
	History   []domain.Goal
	Feedback  domain.Feedback
	Completed int
}

func FormatUser(u *domain.User) string {
	rows := [][2]string{
		{"Username", u.Username},
		{"Name", strings.TrimSpace(u.FirstName + " " + u.LastName)},
		{"Email", u.Email},
		{"Born", u.DoB},
		{"ID", u.ID.String()},
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "%s  %s\n", StyleDim.Render(fmt.Sprintf("%-8s", r[0])), domain.CoalesceStr(r[1], "--"))
	}
	if u.Metadata.Empty() {
		b.WriteString("\n" + Dim("No CV analysis yet."))
	} else {
		b.WriteString("\n" + StyleGreen.Render("CV analysis on file"))
	}
	return RenderBox(u.DisplayName(), strings.TrimRight(b.String(), "\n"))
}

// FormatCV renders the known sections of a CV analysis. Empty sections are skipped.
func FormatCV(s domain.CVSummary) string {
	var sections []string

	info := s.BasicInfo
	if lines := nonEmpty(info.Name, info.Email, info.Phone, info.Address); len(lines) > 0 {
		sections = append(sections, Header("Basic information")+"\n"+strings.Join(lines, "\n"))
	}
	if len(s.Education) > 0 {
		var lines []string
		for _, e := range s.Education {
			lines = append(lines, fmt.Sprintf("%s %s %s", Bold(e.School), e.Certificate, Dim(e.Year)))
		}
		sections = append(sections, Header("Education")+"\n"+strings.Join(lines, "\n"))
	}
	if len(s.Experience) > 0 {
		var lines []string
		for _, e := range s.Experience {
			lines = append(lines, fmt.Sprintf("%s %s", Bold(e.Company), Dim(e.Period)))
			for _, r := range e.Role {
				lines = append(lines, "  - "+r)
			}
		}
		sections = append(sections, Header("Experience")+"\n"+strings.Join(lines, "\n"))
	}
	if len(s.Skill.Technical)+len(s.Skill.Soft) > 0 {
		var lines []string
		if len(s.Skill.Technical) > 0 {
			lines = append(lines, Dim("technical ")+strings.Join(s.Skill.Technical, ", "))
		}
		if len(s.Skill.Soft) > 0 {
			lines = append(lines, Dim("soft      ")+strings.Join(s.Skill.Soft, ", "))
		}
		sections = append(sections, Header("Skills")+"\n"+strings.Join(lines, "\n"))
	}
	if lines := domain.TextLines(s.Summary); len(lines) > 0 {
		sections = append(sections, Header("Summary")+"\n"+strings.Join(lines, "\n"))
	}
	if lines := domain.TextLines(s.CareerPath); len(lines) > 0 {
		for i := range lines {
			lines[i] = StylePurple.Render("→ ") + lines[i]
		}
		sections = append(sections, Header("Career path")+"\n"+strings.Join(lines, "\n"))
	}

	if len(sections) == 0 {
		return RenderBox("CV analysis", Dim("The analysis is empty."))
	}
	return RenderBox("CV analysis", strings.Join(sections, "\n\n"))
}

func FormatFeedback(fb domain.Feedback) string {
	body := StyleFg.Render(domain.CoalesceStr(fb.Feedback, "No feedback yet."))
	if fb.MotivationQuote != "" {
		body += "\n\n" + StylePurple.Render("“"+fb.MotivationQuote+"”")
	}
	return RenderBox("Coach feedback", body)
}

// FormatDashboard renders the home screen: greeting, active goals, totals and feedback.
func FormatDashboard(d DashboardData, now time.Time) string {
	var b strings.Builder
	name := "there"
	if d.User != nil {
		name = d.User.DisplayName()
	}
	b.WriteString(StyleHeader.Render("Hi, "+name) + "\n")
	fmt.Fprintf(&b, "%s %s   %s %s   %s %s\n",
		Bold(fmt.Sprint(len(d.Active))), Dim("active goals"),
		Bold(fmt.Sprint(len(d.History))), Dim("in history"),
		StyleGreen.Render(fmt.Sprint(d.Completed)), Dim("routes done"))

	if len(d.Active) > 0 {
		b.WriteString("\n")
		for i := range d.Active {
			g := &d.Active[i]
			fmt.Fprintf(&b, "%s %s\n", RenderProgress(g.Progress(), 12), Truncate(domain.CoalesceStr(g.Summary(), "(untitled)"), 50))
		}
	}

	if fb := d.Feedback.Feedback; fb != "" {
		b.WriteString("\n" + StyleFg.Render(fb) + "\n")
		if q := d.Feedback.MotivationQuote; q != "" {
			b.WriteString(StylePurple.Render("“"+q+"”") + "\n")
		}
	}
	return RenderBox("Dashboard", strings.TrimRight(b.String(), "\n"))
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
