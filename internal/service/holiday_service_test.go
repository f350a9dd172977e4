package service

import (
	"testing"
	"time"
)

func TestMonthHolidays(t *testing.T) {
	svc := NewHolidayService()

	july := svc.MonthHolidays(2026, time.July)
	if name, ok := july[4]; !ok || name != "Independence Day" {
		t.Errorf("July 2026: want Independence Day on the 4th, got %v", july)
	}

	jan := svc.MonthHolidays(2026, time.January)
	if name, ok := jan[1]; !ok || name != "New Year's Day" {
		t.Errorf("January 2026: want New Year's Day on the 1st, got %v", jan)
	}

	// No federal or common observance falls in the first week of March.
	march := svc.MonthHolidays(2026, time.March)
	for day := 1; day <= 7; day++ {
		if name, ok := march[day]; ok {
			t.Errorf("March %d 2026: unexpected holiday %q", day, name)
		}
	}
}
