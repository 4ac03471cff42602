package event

import "time"

// ClassifyTime places now on the event's general interval. The start
// instant is ONGOING and the end instant is COMPLETED. It reports false
// when the event has no interval yet.
func ClassifyTime(interval *EventIntervalDate, now time.Time) (TimeStatus, bool) {
	if interval == nil {
		return "", false
	}
	switch {
	case interval.GeneralStartDate.After(now):
		return TimeUpcoming, true
	case now.Before(interval.GeneralEndDate):
		return TimeOngoing, true
	default:
		return TimeCompleted, true
	}
}

// IsValid reports whether s is one of the three derived states.
func (s TimeStatus) IsValid() bool {
	switch s {
	case TimeUpcoming, TimeOngoing, TimeCompleted:
		return true
	}
	return false
}
