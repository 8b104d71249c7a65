package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	SlotLayout = "15:04"
)

// Default grid for the booking calendar: 08:00 through 18:00 in 30 minute steps.
const (
	DefaultSlotStartHour = 8
	DefaultSlotEndHour   = 18
	DefaultSlotInterval  = 30
)

// cancelCutoff is how far ahead of the appointment a patient may still cancel.
const cancelCutoff = 2 * time.Hour

// IsDoctorAvailableOnDate reports whether the doctor's declared weekly
// availability covers the weekday of date. Dates are interpreted in local time.
func IsDoctorAvailableOnDate(d Doctor, date string) bool {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return false
	}
	dayName := t.Weekday().String()
	for _, day := range d.AvailableDays {
		if day == dayName {
			return true
		}
	}
	return false
}

// AvailableTimeSlots returns the doctor's declared hours minus booked, in the
// doctor's declared order. A doctor whose weekly availability does not cover
// the date has no slots that day, whatever bookedSlots contains. The caller
// supplies bookedSlots for the exact date; no I/O happens here.
func AvailableTimeSlots(d Doctor, date string, bookedSlots []string) []string {
	if !IsDoctorAvailableOnDate(d, date) {
		return []string{}
	}

	taken := make(map[string]struct{}, len(bookedSlots))
	for _, slot := range bookedSlots {
		taken[slot] = struct{}{}
	}

	out := make([]string, 0, len(d.AvailableHours))
	for _, hour := range d.AvailableHours {
		if _, ok := taken[hour]; !ok {
			out = append(out, hour)
		}
	}
	return out
}

// CanCancelAppointment reports whether a confirmed appointment may still be
// cancelled: the date must not be in the past (date-only comparison) and the
// start must be more than two hours ahead.
func CanCancelAppointment(date, slot string, status AppointmentStatus) bool {
	return canCancelAt(date, slot, status, time.Now())
}

func canCancelAt(date, slot string, status AppointmentStatus, now time.Time) bool {
	if status != AppointmentStatusConfirmed {
		return false
	}

	day, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if day.Before(today) {
		return false
	}

	start, err := time.ParseInLocation(DateLayout+"T"+SlotLayout, date+"T"+slot, time.Local)
	if err != nil {
		return false
	}
	return start.After(now.Add(cancelCutoff))
}

// GenerateTimeSlots produces the canonical HH:MM grid from startHour:00 to
// endHour:00 inclusive. No slot past endHour:00 is emitted.
func GenerateTimeSlots(startHour, endHour, intervalMinutes int) []string {
	if intervalMinutes < 1 {
		intervalMinutes = DefaultSlotInterval
	}

	slots := make([]string, 0, (endHour-startHour+1)*60/intervalMinutes)
	for hour := startHour; hour <= endHour; hour++ {
		for minute := 0; minute < 60; minute += intervalMinutes {
			if hour == endHour && minute > 0 {
				break
			}
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return slots
}

// FormatAppointmentDate renders an ISO date as a long display date,
// e.g. "Monday, January 5, 2026". Malformed input is returned as-is.
func FormatAppointmentDate(date string) string {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

// FormatAppointmentTime renders a 24-hour HH:MM slot as 12-hour display time,
// e.g. "13:30" -> "1:30 PM", "00:15" -> "12:15 AM".
func FormatAppointmentTime(slot string) string {
	hourStr, minutes, ok := strings.Cut(slot, ":")
	if !ok {
		return slot
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return slot
	}

	period := "AM"
	if hour >= 12 {
		period = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d:%s %s", hour12, minutes, period)
}
