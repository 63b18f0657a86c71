package service

import (
	"fmt"
	"time"

	"ourtime-api/core/errors"
	"ourtime-api/modules/event/entity"
)

// SlotGenerator expands an event's date range and daily time window into
// fixed-duration slots. Pure: persistence is the caller's concern.
type SlotGenerator struct {
	StepMinutes int
}

func NewSlotGenerator(stepMinutes int) *SlotGenerator {
	return &SlotGenerator{StepMinutes: stepMinutes}
}

// GenerateSlots emits, for every calendar day from dateStart to dateEnd
// inclusive, consecutive slots of StepMinutes duration starting at timeStart
// and ending at or before timeEnd, in the given timezone. The output is
// chronological ascending and is the canonical ordering for every consumer.
func (g *SlotGenerator) GenerateSlots(dateStart, dateEnd string, timeStart, timeEnd string, timezone string) ([]entity.TimeSlot, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, fmt.Sprintf("unknown timezone %q", timezone), err)
	}

	startDay, err := time.ParseInLocation("2006-01-02", dateStart, loc)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "date_start must be YYYY-MM-DD", err)
	}
	endDay, err := time.ParseInLocation("2006-01-02", dateEnd, loc)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "date_end must be YYYY-MM-DD", err)
	}
	if endDay.Before(startDay) {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "date_end is before date_start", nil)
	}

	startH, startM, err := parseClock(timeStart)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "time_start must be HH:MM", err)
	}
	endH, endM, err := parseClock(timeEnd)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "time_end must be HH:MM", err)
	}

	startMinutes := startH*60 + startM
	endMinutes := endH*60 + endM
	if endMinutes <= startMinutes {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "time_end must be after time_start", nil)
	}

	step := g.StepMinutes
	if step <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidRange, "step minutes must be positive", nil)
	}

	var slots []entity.TimeSlot
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, loc)
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, loc)

		for cur := dayStart; ; {
			next := cur.Add(time.Duration(step) * time.Minute)
			if next.After(dayEnd) {
				break
			}
			slots = append(slots, entity.TimeSlot{
				StartDatetime: cur,
				EndDatetime:   next,
			})
			cur = next
		}
	}

	return slots, nil
}

func parseClock(s string) (hour int, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		// Accept HH:MM:SS as well; several clients send seconds.
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return 0, 0, err
		}
	}
	return t.Hour(), t.Minute(), nil
}
