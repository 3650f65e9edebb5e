package report

import (
	"fmt"
	"time"
)

// Granularity is the size of a trend bucket
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// GranularityFor picks day buckets up to 31 days, ISO weeks up to 365 days and months beyond
func GranularityFor(days int) Granularity {
	switch {
	case days <= 31:
		return GranularityDay
	case days <= 365:
		return GranularityWeek
	default:
		return GranularityMonth
	}
}

// Bucket is one trend period
type Bucket struct {
	Key   string
	Label string
	Start time.Time
	End   time.Time // exclusive
}

// Contains reports whether t lies in the bucket
func (b Bucket) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Buckets enumerates every bucket touching [from, until], so empty periods still get a row
func Buckets(from, until time.Time, g Granularity) []Bucket {
	start := bucketStart(from, g)
	last := truncateDay(until)
	out := make([]Bucket, 0)
	for !start.After(last) {
		end := nextBucket(start, g)
		out = append(out, Bucket{
			Key:   bucketKey(start, g),
			Label: bucketLabel(start, end, g),
			Start: start,
			End:   end,
		})
		start = end
	}
	return out
}

func bucketStart(t time.Time, g Granularity) time.Time {
	day := truncateDay(t)
	switch g {
	case GranularityWeek:
		offset := (int(day.Weekday()) + 6) % 7 // Monday is 0
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return startOfMonth(day)
	}
	return day
}

func nextBucket(start time.Time, g Granularity) time.Time {
	switch g {
	case GranularityWeek:
		return start.AddDate(0, 0, 7)
	case GranularityMonth:
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 1)
}

func bucketKey(start time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GranularityMonth:
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}

func bucketLabel(start, end time.Time, g Granularity) string {
	switch g {
	case GranularityWeek:
		return start.Format("02 Jan") + " - " + end.AddDate(0, 0, -1).Format("02 Jan 2006")
	case GranularityMonth:
		return start.Format("Jan 2006")
	}
	return start.Format("02 Jan 2006")
}
