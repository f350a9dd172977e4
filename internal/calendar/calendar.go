// Package calendar renders the month grid for the calendar page: one
// cell per day with up to two task snippets, holiday names, and a
// highlight on today.
package calendar

import (
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"todoapp/internal/model"
)

// Weeks start on Monday.
var dayClasses = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}
var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const maxSnippetsPerDay = 2
const snippetRunes = 7

// Renderer builds the HTML month grid for one viewer.
type Renderer struct {
	tasksByDay map[int][]model.Task
	holidays   map[int]string
	viewer     *model.User
	now        time.Time
}

// New groups tasks by due day for quick lookup. The task slice should
// already be scoped to the month being rendered.
func New(tasks []model.Task, holidays map[int]string, viewer *model.User, now time.Time) *Renderer {
	byDay := make(map[int][]model.Task)
	for _, t := range tasks {
		day := t.DueDate.Day()
		byDay[day] = append(byDay[day], t)
	}
	if holidays == nil {
		holidays = map[int]string{}
	}
	return &Renderer{tasksByDay: byDay, holidays: holidays, viewer: viewer, now: now}
}

// FormatMonth renders the full month table.
func (r *Renderer) FormatMonth(year int, month time.Month) template.HTML {
	var sb strings.Builder

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	// Offset of day 1 in a Monday-first week.
	offset := (int(first.Weekday()) + 6) % 7

	sb.WriteString(`<table border="0" cellpadding="0" cellspacing="0" class="month">` + "\n")
	fmt.Fprintf(&sb, `<tr><th colspan="7" class="month">%s %d</th></tr>`+"\n", month.String(), year)

	sb.WriteString("<tr>")
	for i := range dayNames {
		fmt.Fprintf(&sb, `<th class="%s">%s</th>`, dayClasses[i], dayNames[i])
	}
	sb.WriteString("</tr>\n")

	day := 1
	for day <= daysInMonth {
		sb.WriteString("<tr>")
		for weekday := 0; weekday < 7; weekday++ {
			if (day == 1 && weekday < offset) || day > daysInMonth {
				sb.WriteString(`<td class="noday">&nbsp;</td>`)
				continue
			}
			sb.WriteString(r.formatDay(day, weekday, year, month))
			day++
		}
		sb.WriteString("</tr>\n")
	}

	sb.WriteString("</table>\n")
	return template.HTML(sb.String())
}

// formatDay returns the <td> for one day, with up to two task snippets
// and any holiday.
func (r *Renderer) formatDay(day, weekday int, year int, month time.Month) string {
	cssClass := dayClasses[weekday]
	if day == r.now.Day() && month == r.now.Month() && year == r.now.Year() {
		cssClass += " today"
	}

	var snippets strings.Builder
	dayTasks := r.tasksByDay[day]
	for i, t := range dayTasks {
		if i == maxSnippetsPerDay {
			snippets.WriteString(`<div class="task more">…</div>`)
			break
		}
		var flags []string
		if t.IsArchived {
			flags = append(flags, "archived")
		} else if r.viewer == nil || t.CreatorID != r.viewer.ID {
			flags = append(flags, "shared")
		}
		cls := ""
		if len(flags) > 0 {
			cls = " " + strings.Join(flags, " ")
		}
		fmt.Fprintf(&snippets, `<div class="task%s">%s</div>`, cls, html.EscapeString(truncate(t.Name, snippetRunes)))
	}

	holiday := ""
	if name, ok := r.holidays[day]; ok {
		holiday = fmt.Sprintf(`<div class="holiday">%s</div>`, html.EscapeString(name))
	}

	return fmt.Sprintf(`<td class="%s"><span class="date">%d</span><br>%s%s</td>`,
		cssClass, day, snippets.String(), holiday)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
