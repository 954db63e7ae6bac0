package models

import "time"

// ISO8601Millis wire format for timezone-aware instants. The offset portion
// renders as "Z" for UTC.
const ISO8601Millis = "2006-01-02T15:04:05.000Z07:00"

/*
SplitTimestamp decompose a timezone-aware instant into a naive wall-clock
timestamp and a signed UTC-offset-in-minutes.

The pair keeps the offset the client originally submitted, which a single
absolute-instant column would discard.

	@param t time.Time - timezone-aware instant
	@return naive wall-clock timestamp, UTC offset in minutes
*/
func SplitTimestamp(t time.Time) (time.Time, int) {
	_, offsetSeconds := t.Zone()
	naive := time.Date(
		t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC,
	)
	return naive, offsetSeconds / 60
}

/*
JoinTimestamp recombine a naive wall-clock timestamp and a UTC-offset-in-minutes
into a timezone-aware instant.

Invariant: JoinTimestamp(SplitTimestamp(t)) matches t in wall-clock value and
offset.

	@param naive time.Time - naive wall-clock timestamp
	@param offsetMinutes int - UTC offset in minutes
	@return timezone-aware instant
*/
func JoinTimestamp(naive time.Time, offsetMinutes int) time.Time {
	return time.Date(
		naive.Year(),
		naive.Month(),
		naive.Day(),
		naive.Hour(),
		naive.Minute(),
		naive.Second(),
		naive.Nanosecond(),
		time.FixedZone("", offsetMinutes*60),
	)
}
