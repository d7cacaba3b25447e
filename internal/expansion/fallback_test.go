package expansion

import (
	"context"
	"testing"
	"time"
)

func TestFallbackExpand(t *testing.T) {
	fixedNow := func() time.Time {
		return time.Date(2025, 12, 26, 15, 30, 0, 0, time.UTC)
	}
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
		wantNil   bool
	}{
		{
			name:      "date marker anchors last week",
			query:     "(date: 2025-12-26) What happened last week?",
			wantStart: date(2025, 12, 19),
			wantEnd:   date(2025, 12, 26),
		},
		{
			name:      "yesterday is a single day",
			query:     "what did I do yesterday",
			wantStart: date(2025, 12, 25),
			wantEnd:   date(2025, 12, 25),
		},
		{
			name:      "past week without marker uses clock",
			query:     "how was the past week",
			wantStart: date(2025, 12, 19),
			wantEnd:   date(2025, 12, 26),
		},
		{
			name:      "last month is thirty days",
			query:     "summary of last month",
			wantStart: date(2025, 11, 26),
			wantEnd:   date(2025, 12, 26),
		},
		{
			name:      "today is a single day",
			query:     "what's on today",
			wantStart: date(2025, 12, 26),
			wantEnd:   date(2025, 12, 26),
		},
		{
			name:      "marker overrides clock",
			query:     "(date: 2025-06-01) yesterday",
			wantStart: date(2025, 5, 31),
			wantEnd:   date(2025, 5, 31),
		},
		{
			name:    "unparseable marker date yields no filter",
			query:   "(date: 2025-13-45) what happened last week",
			wantNil: true,
		},
		{
			name:    "non-marker parenthetical is ignored",
			query:   "(date: not-a-date) tell me things",
			wantNil: true,
		},
		{
			name:    "no temporal phrase",
			query:   "what do I like to eat",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Fallback{Now: fixedNow}
			got, err := f.Expand(context.Background(), tt.query, "UTC")
			if err != nil {
				t.Fatalf("Expand() error = %v", err)
			}
			if got.OriginalQuery != tt.query || got.SemanticQuery != tt.query {
				t.Errorf("query fields not preserved: %+v", got)
			}
			if tt.wantNil {
				if got.DateRange != nil {
					t.Fatalf("DateRange = %+v, want nil", got.DateRange)
				}
				return
			}
			if got.DateRange == nil {
				t.Fatal("DateRange = nil, want a range")
			}
			if !got.DateRange.Start.Equal(tt.wantStart) || !got.DateRange.End.Equal(tt.wantEnd) {
				t.Errorf("DateRange = [%s, %s], want [%s, %s]",
					got.DateRange.Start.Format("2006-01-02"), got.DateRange.End.Format("2006-01-02"),
					tt.wantStart.Format("2006-01-02"), tt.wantEnd.Format("2006-01-02"))
			}
		})
	}
}

func TestFallbackNeverErrors(t *testing.T) {
	f := &Fallback{}
	exp, err := f.Expand(context.Background(), "", "")
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if exp == nil {
		t.Fatal("Expand() returned nil expansion")
	}
}
