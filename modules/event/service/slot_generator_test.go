package service

import (
	"testing"
	"time"

	"ourtime-api/core/errors"
)

func TestGenerateSlots(t *testing.T) {
	g := NewSlotGenerator(30)

	t.Run("single day two hour window", func(t *testing.T) {
		slots, err := g.GenerateSlots("2025-06-01", "2025-06-01", "14:00", "16:00", "Asia/Seoul")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != 4 {
			t.Fatalf("slot count = %d, want 4", len(slots))
		}

		loc, _ := time.LoadLocation("Asia/Seoul")
		wantFirst := time.Date(2025, 6, 1, 14, 0, 0, 0, loc)
		if !slots[0].StartDatetime.Equal(wantFirst) {
			t.Fatalf("first slot starts %v, want %v", slots[0].StartDatetime, wantFirst)
		}
		wantLast := time.Date(2025, 6, 1, 15, 30, 0, 0, loc)
		if !slots[3].StartDatetime.Equal(wantLast) {
			t.Fatalf("last slot starts %v, want %v", slots[3].StartDatetime, wantLast)
		}
		if !slots[3].EndDatetime.Equal(wantLast.Add(30 * time.Minute)) {
			t.Fatalf("last slot ends %v, want 16:00", slots[3].EndDatetime)
		}
	})

	t.Run("multi day count is days times slots per day", func(t *testing.T) {
		slots, err := g.GenerateSlots("2025-06-01", "2025-06-03", "09:00", "18:00", "UTC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 3 days, 9h window, 18 half-hour slots per day.
		if len(slots) != 54 {
			t.Fatalf("slot count = %d, want 54", len(slots))
		}
	})

	t.Run("chronologically ascending", func(t *testing.T) {
		slots, err := g.GenerateSlots("2025-06-01", "2025-06-02", "10:00", "12:00", "UTC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := 1; i < len(slots); i++ {
			if !slots[i-1].StartDatetime.Before(slots[i].StartDatetime) {
				t.Fatalf("slots out of order at index %d", i)
			}
		}
	})

	t.Run("window not divisible by step truncates", func(t *testing.T) {
		slots, err := g.GenerateSlots("2025-06-01", "2025-06-01", "14:00", "15:45", "UTC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// 105 minute window fits three full half-hour slots.
		if len(slots) != 3 {
			t.Fatalf("slot count = %d, want 3", len(slots))
		}
		last := slots[2]
		if last.EndDatetime.Minute() != 30 || last.EndDatetime.Hour() != 15 {
			t.Fatalf("last slot must end 15:30, got %v", last.EndDatetime)
		}
	})

	t.Run("window shorter than step yields nothing", func(t *testing.T) {
		slots, err := g.GenerateSlots("2025-06-01", "2025-06-01", "14:00", "14:15", "UTC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != 0 {
			t.Fatalf("slot count = %d, want 0", len(slots))
		}
	})

	t.Run("accepts seconds in clock times", func(t *testing.T) {
		slots, err := g.GenerateSlots("2025-06-01", "2025-06-01", "14:00:00", "15:00:00", "UTC")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(slots) != 2 {
			t.Fatalf("slot count = %d, want 2", len(slots))
		}
	})
}

func TestGenerateSlotsInvalidInput(t *testing.T) {
	g := NewSlotGenerator(30)

	cases := []struct {
		name      string
		dateStart string
		dateEnd   string
		timeStart string
		timeEnd   string
		timezone  string
		wantCode  errors.ErrorCode
	}{
		{"end date before start date", "2025-06-02", "2025-06-01", "14:00", "16:00", "UTC", errors.ErrInvalidRange},
		{"end time before start time", "2025-06-01", "2025-06-01", "16:00", "14:00", "UTC", errors.ErrInvalidRange},
		{"equal times", "2025-06-01", "2025-06-01", "14:00", "14:00", "UTC", errors.ErrInvalidRange},
		{"bad date format", "06/01/2025", "2025-06-01", "14:00", "16:00", "UTC", errors.ErrInvalidRange},
		{"bad clock format", "2025-06-01", "2025-06-01", "2pm", "4pm", "UTC", errors.ErrInvalidRange},
		{"unknown timezone", "2025-06-01", "2025-06-01", "14:00", "16:00", "Mars/Olympus", errors.ErrInvalidInput},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.GenerateSlots(tc.dateStart, tc.dateEnd, tc.timeStart, tc.timeEnd, tc.timezone)
			if err == nil {
				t.Fatal("expected an error")
			}
			ae, ok := err.(*errors.AppError)
			if !ok {
				t.Fatalf("expected *AppError, got %T", err)
			}
			if ae.Code != tc.wantCode {
				t.Fatalf("code = %s, want %s", ae.Code, tc.wantCode)
			}
		})
	}
}

func TestGenerateSlotsDeterministic(t *testing.T) {
	g := NewSlotGenerator(30)

	a, err := g.GenerateSlots("2025-06-01", "2025-06-02", "09:00", "12:00", "Asia/Seoul")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := g.GenerateSlots("2025-06-01", "2025-06-02", "09:00", "12:00", "Asia/Seoul")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if !a[i].StartDatetime.Equal(b[i].StartDatetime) || !a[i].EndDatetime.Equal(b[i].EndDatetime) {
			t.Fatalf("slot %d differs between runs", i)
		}
	}
}
