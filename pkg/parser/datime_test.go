package parser

import (
	"testing"
	"time"
)

func TestParseDatime(t *testing.T) {
	tests := []struct {
		name    string
		tuple   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "full tuple",
			tuple: "datime(2024, 1, 15, 10, 0, 0, 0)",
			want:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "no spaces",
			tuple: "datime(2024,1,15,10,30,45,7)",
			want:  time.Date(2024, 1, 15, 10, 30, 45, 0, time.UTC),
		},
		{
			name:  "date only",
			tuple: "datime(2024, 1, 15, 0)",
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "microseconds",
			tuple: "datime(2024, 1, 15, 10, 30, 15, 250000, 0)",
			want:  time.Date(2024, 1, 15, 10, 30, 15, 250000000, time.UTC),
		},
		{
			name:  "leap day",
			tuple: "datime(2024, 2, 29, 12, 0)",
			want:  time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "non-numeric component",
			tuple:   "datime(2024, x, 15, 0)",
			wantErr: true,
		},
		{
			name:    "too few components",
			tuple:   "datime(2024, 1)",
			wantErr: true,
		},
		{
			name:    "too many components",
			tuple:   "datime(2024, 1, 1, 0, 0, 0, 0, 0, 0)",
			wantErr: true,
		},
		{
			name:    "month out of range",
			tuple:   "datime(2024, 13, 1, 0)",
			wantErr: true,
		},
		{
			name:    "day out of range",
			tuple:   "datime(2023, 2, 29, 0, 0)",
			wantErr: true,
		},
		{
			name:    "hour out of range",
			tuple:   "datime(2024, 1, 1, 24, 0)",
			wantErr: true,
		},
		{
			name:    "not a tuple",
			tuple:   "2024-01-15",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDatime(tt.tuple, time.UTC)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDatime() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseDatime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDatime_Location(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err := ParseDatime("datime(2024, 1, 15, 10, 0, 0, 0)", loc)
	if err != nil {
		t.Fatalf("ParseDatime() error = %v", err)
	}
	want := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDatime() = %v, want %v", got.UTC(), want)
	}
}

func TestParseDatime_NilLocationIsUTC(t *testing.T) {
	got, err := ParseDatime("datime(2024, 1, 15, 10, 0)", nil)
	if err != nil {
		t.Fatalf("ParseDatime() error = %v", err)
	}
	if got.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", got.Location())
	}
}

func TestFindDatimes(t *testing.T) {
	line := "output(hla, a, b, datime(2024, 1, 1, 0), datime(2024, 1, 2, 0), datime(2024, 1, 3, 0))"
	got := FindDatimes(line)
	if len(got) != 3 {
		t.Fatalf("FindDatimes() returned %d tuples, want 3", len(got))
	}
	if got[0] != "datime(2024, 1, 1, 0)" {
		t.Errorf("FindDatimes()[0] = %q", got[0])
	}
}
