package eventlog

import (
	"fmt"
	"testing"
	"time"

	"chatwarden/internal/constants"
	"chatwarden/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeEvent(i int, eventType string) database.SecurityEvent {
	return database.SecurityEvent{
		EventID:     fmt.Sprintf("ev-%d", i),
		Timestamp:   time.Unix(int64(1700000000+i), 0),
		UserName:    "alice",
		EventType:   eventType,
		Description: fmt.Sprintf("event %d", i),
		Level:       constants.LevelLow,
	}
}

func TestLog_AppendEvictsOldest(t *testing.T) {
	l := New(constants.EventLogCapacity)

	for i := 0; i < constants.EventLogCapacity+1; i++ {
		l.Append(makeEvent(i, constants.EventSpam))
	}

	assert.Equal(t, constants.EventLogCapacity, l.Len())

	events := l.Query("", 25)
	require.NotEmpty(t, events)
	// 第 1001 条仍在，最旧的第 0 条已被淘汰
	assert.Equal(t, "ev-1000", events[len(events)-1].EventID)

	all := l.Query(constants.EventSpam, 1)
	assert.Equal(t, "ev-1000", all[0].EventID)
}

func TestLog_SmallCapacityFIFO(t *testing.T) {
	l := New(3)

	for i := 0; i < 5; i++ {
		l.Append(makeEvent(i, constants.EventSpam))
	}

	events := l.Query("", 25)
	require.Len(t, events, 3)
	assert.Equal(t, "ev-2", events[0].EventID)
	assert.Equal(t, "ev-4", events[2].EventID)
}

func TestLog_QueryLimitClamped(t *testing.T) {
	l := New(constants.EventLogCapacity)
	for i := 0; i < 100; i++ {
		l.Append(makeEvent(i, constants.EventSpam))
	}

	assert.Len(t, l.Query("", 100), 25)
	assert.Len(t, l.Query("", 0), 25)
	assert.Len(t, l.Query("", -1), 25)
	assert.Len(t, l.Query("", 10), 10)
}

func TestLog_QueryByType_ChronologicalNewestLast(t *testing.T) {
	l := New(constants.EventLogCapacity)
	l.Append(makeEvent(1, constants.EventSpam))
	l.Append(makeEvent(2, constants.EventSuspiciousContent))
	l.Append(makeEvent(3, constants.EventSpam))
	l.Append(makeEvent(4, constants.EventManualBan))

	spam := l.Query(constants.EventSpam, 25)
	require.Len(t, spam, 2)
	assert.Equal(t, "ev-1", spam[0].EventID)
	assert.Equal(t, "ev-3", spam[1].EventID)

	assert.Empty(t, l.Query(constants.EventNewAccount, 25))
}

func TestLog_QueryReturnsCopy(t *testing.T) {
	l := New(constants.EventLogCapacity)
	l.Append(makeEvent(1, constants.EventSpam))

	out := l.Query("", 25)
	out[0].Description = "mutated"

	again := l.Query("", 25)
	assert.Equal(t, "event 1", again[0].Description)
}

func TestLog_CountByType_FirstSeenOrder(t *testing.T) {
	l := New(constants.EventLogCapacity)
	l.Append(makeEvent(1, constants.EventSpam))
	l.Append(makeEvent(2, constants.EventSuspiciousContent))
	l.Append(makeEvent(3, constants.EventSpam))
	l.Append(makeEvent(4, constants.EventManualBan))
	l.Append(makeEvent(5, constants.EventSuspiciousContent))

	counts := l.CountByType()
	require.Len(t, counts, 3)
	assert.Equal(t, TypeCount{constants.EventSpam, 2}, counts[0])
	assert.Equal(t, TypeCount{constants.EventSuspiciousContent, 2}, counts[1])
	assert.Equal(t, TypeCount{constants.EventManualBan, 1}, counts[2])
}
