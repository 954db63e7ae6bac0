package models_test

import (
	"testing"
	"time"

	"github.com/polarishealth/telemetry/models"
	"github.com/stretchr/testify/assert"
)

// TestSplitJoinTimestamp verifies the split-storage round trip keeps both the
// wall-clock value and the submitted UTC offset.
func TestSplitJoinTimestamp(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		instant       string
		offsetMinutes int
	}{
		{"2024-03-14T09:26:53.123+05:30", 330},
		{"2024-03-14T09:26:53.000-07:00", -420},
		{"2024-03-14T09:26:53.000Z", 0},
	}

	for _, oneCase := range cases {
		instant, err := time.Parse(models.ISO8601Millis, oneCase.instant)
		assert.Nil(err)

		naive, offset := models.SplitTimestamp(instant)
		assert.Equal(oneCase.offsetMinutes, offset)
		// Naive half keeps the wall-clock reading
		assert.Equal(instant.Hour(), naive.Hour())
		assert.Equal(instant.Minute(), naive.Minute())
		assert.Equal(time.UTC, naive.Location())

		rejoined := models.JoinTimestamp(naive, offset)
		assert.Equal(oneCase.instant, rejoined.Format(models.ISO8601Millis))
		assert.True(instant.Equal(rejoined))
	}
}

// TestMobileMarshalEmitsJoinedInstant verifies the JSON rendering emits the
// recombined instant rather than the storage pair.
func TestMobileMarshalEmitsJoinedInstant(t *testing.T) {
	assert := assert.New(t)

	instant, err := time.Parse(models.ISO8601Millis, "2024-03-14T09:26:53.000+05:30")
	assert.Nil(err)

	entry := models.Mobile{}
	entry.SetDateFirstLaunched(instant)

	serialized, err := entry.MarshalJSON()
	assert.Nil(err)
	assert.Contains(string(serialized), `"date_first_launched":"2024-03-14T09:26:53.000+05:30"`)
}
