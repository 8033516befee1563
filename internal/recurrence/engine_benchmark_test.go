package recurrence

import (
	"testing"
	"time"
)

func BenchmarkEngine_Dates(b *testing.B) {
	engine := NewEngine(0)
	first := date(2020, time.January, 1)
	from := date(2024, time.January, 1)
	to := date(2024, time.December, 31)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, _, err := engine.Dates("FREQ=WEEKLY;BYDAY=MO,WE,FR", first, from, to); err != nil {
			b.Fatalf("Dates: %v", err)
		}
	}
}
