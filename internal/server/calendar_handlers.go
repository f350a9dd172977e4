package server

import (
	"html/template"
	"net/http"
	"strconv"
	"time"

	"todoapp/internal/calendar"
	"todoapp/internal/model"
)

// handleCalendar renders the month view: the grid with tasks and
// holidays, a sidebar of active tasks, and the quote of the day.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	ctx := r.Context()
	q := r.URL.Query()
	now := time.Now()

	year, month := now.Year(), now.Month()
	if y, err := strconv.Atoi(q.Get("year")); err == nil {
		if m, err := strconv.Atoi(q.Get("month")); err == nil && m >= 1 && m <= 12 {
			year, month = y, time.Month(m)
		}
	}

	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	monthEnd := monthStart.AddDate(0, 1, 0)

	monthlyTasks, err := s.tasks.ListDueBetween(ctx, user, monthStart, monthEnd)
	if err != nil {
		s.logger.Error("load month tasks", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	sidebarTasks, err := s.tasks.ListActive(ctx, user)
	if err != nil {
		s.logger.Error("load sidebar tasks", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if day, err := strconv.Atoi(q.Get("day")); err == nil {
		filtered := make([]model.Task, 0, len(sidebarTasks))
		for _, t := range sidebarTasks {
			if t.DueDate.Day() == day {
				filtered = append(filtered, t)
			}
		}
		sidebarTasks = filtered
	}

	filter := parseFilter(q)
	monthlyTasks = s.filter.Apply(monthlyTasks, filter)
	sidebarTasks = s.filter.Apply(sidebarTasks, filter)

	holidays := s.holidays.MonthHolidays(year, month)
	grid := calendar.New(monthlyTasks, holidays, user, now).FormatMonth(year, month)

	prevYear, prevMonth := year, month-1
	if month == time.January {
		prevYear, prevMonth = year-1, time.December
	}
	nextYear, nextMonth := year, month+1
	if month == time.December {
		nextYear, nextMonth = year+1, time.January
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		s.logger.Error("load categories", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "home.html", map[string]any{
		"User":       user,
		"Calendar":   grid,
		"Year":       year,
		"Month":      int(month),
		"MonthName":  month.String(),
		"PrevYear":   prevYear,
		"PrevMonth":  int(prevMonth),
		"NextYear":   nextYear,
		"NextMonth":  int(nextMonth),
		"AllTasks":   sidebarTasks,
		"Holidays":   holidays,
		// The quote API returns pre-formatted HTML.
		"TodayQuote": template.HTML(s.quotes.TodayQuote(ctx)),
		"Categories": categories,
	})
}
