package socketrpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinytelemetry/logscope/internal/model"
)

func TestWireRecordRoundtrip(t *testing.T) {
	t.Parallel()
	records := []model.Record{
		{Timestamp: time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC), Level: "INFO", Message: "start", Source: "api"},
		{Level: "UNKNOWN", Message: "no time"},
	}

	wire := ToWireRecords(records)
	require.Len(t, wire, 2)
	require.NotNil(t, wire[0].Timestamp)
	assert.Equal(t, "2023-12-01T10:00:00Z", *wire[0].Timestamp)
	assert.Nil(t, wire[1].Timestamp)
	assert.Nil(t, wire[1].Source)

	assert.Equal(t, records, FromWireRecords(wire))
}

func TestFromWireRecordsAcceptsOffsetlessTimes(t *testing.T) {
	t.Parallel()
	ts := "2023-12-01T10:00:00"
	bad := "yesterday"
	got := FromWireRecords([]WireRecord{{Timestamp: &ts, Level: "INFO"}, {Timestamp: &bad, Level: "INFO"}})
	assert.True(t, got[0].Timestamp.Equal(time.Date(2023, 12, 1, 10, 0, 0, 0, time.UTC)))
	assert.False(t, got[1].HasTimestamp())
}
