package service

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// HolidayService looks up US holidays for the calendar view.
type HolidayService struct {
	holidays []*cal.Holiday
}

func NewHolidayService() *HolidayService {
	return &HolidayService{holidays: us.Holidays}
}

// MonthHolidays maps day-of-month to holiday name for the given month.
// When two holidays land on the same day the later-defined one wins,
// which mirrors a plain dict build.
func (s *HolidayService) MonthHolidays(year int, month time.Month) map[int]string {
	out := make(map[int]string)
	for _, h := range s.holidays {
		actual, _ := h.Calc(year)
		if actual.IsZero() || actual.Month() != month {
			continue
		}
		out[actual.Day()] = h.Name
	}
	return out
}
