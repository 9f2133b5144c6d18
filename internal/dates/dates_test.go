package dates

import (
	"errors"
	"testing"
	"time"

	"github.com/IshaanNene/BeritaKepri/internal/types"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseISO(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2025-09-16T19:11:00+07:00", day(2025, time.September, 16)},
		{"2025-08-01", day(2025, time.August, 1)},
		{"2025-08-31 23:59:00", day(2025, time.August, 31)},
		{"  2024-02-29T00:00:00Z ", day(2024, time.February, 29)},
		{"2025-8-5T10:00:00", day(2025, time.August, 5)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.raw, ISO)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseLocalized(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"16 September 2025 7:11 PM", day(2025, time.September, 16)},
		{"Senin, 15 September 2025 | 10:30 WIB", day(2025, time.September, 15)},
		{"1 Agustus 2025", day(2025, time.August, 1)},
		{"31 Desember 2024, 23:00", day(2024, time.December, 31)},
		{"3 Mei 2025", day(2025, time.May, 3)},
		{"Jumat, 5 Okt. 2025", day(2025, time.October, 5)},
		{"12 August 2025", day(2025, time.August, 12)},
		{"16\u00a0September\u00a02025", day(2025, time.September, 16)},
		{"Selasa,\u00a016 Sept 2025", day(2025, time.September, 16)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.raw, Localized)
		if err != nil {
			t.Errorf("Parse(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Parse(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		raw    string
		format Format
	}{
		{"", ISO},
		{"kemarin", ISO},
		{"2025/09/16", ISO},
		{"16 Sept", Localized},
		{"16 Foo 2025", Localized},
		{"31 Februari 2025", Localized},
		{"xx September 2025", Localized},
		{"16 September 25", Localized},
		{"2025-09-16", Format("rfc")},
	}
	for _, tt := range tests {
		_, err := Parse(tt.raw, tt.format)
		if err == nil {
			t.Errorf("Parse(%q, %s): expected error", tt.raw, tt.format)
			continue
		}
		if !errors.Is(err, types.ErrDateParse) {
			t.Errorf("Parse(%q, %s): error %v does not wrap ErrDateParse", tt.raw, tt.format, err)
		}
	}
}

func TestInRangeInclusive(t *testing.T) {
	start := day(2025, time.August, 1)
	end := day(2025, time.August, 31)

	if !InRange(start, start, end) {
		t.Error("start date should be in range")
	}
	if !InRange(end, start, end) {
		t.Error("end date should be in range")
	}
	if !InRange(time.Date(2025, time.August, 31, 23, 59, 0, 0, time.UTC), start, end) {
		t.Error("time of day must not push the end date out of range")
	}
	if InRange(day(2025, time.July, 31), start, end) {
		t.Error("day before start should be out of range")
	}
	if InRange(day(2025, time.September, 1), start, end) {
		t.Error("day after end should be out of range")
	}
}
