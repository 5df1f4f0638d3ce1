package notify

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Durations(t *testing.T) {
	q := NewQueue()
	q.Success("ok")
	q.Error("boom")

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, Notification{Level: LevelSuccess, Message: "ok", DurationMs: 4000}, items[0])
	assert.Equal(t, Notification{Level: LevelError, Message: "boom", DurationMs: 5000}, items[1])
}

func TestQueue_MarshalJSON(t *testing.T) {
	q := NewQueue()
	b, err := json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(b))

	q.Error("x")
	b, err = json.Marshal(q)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"level":"error","message":"x","duration_ms":5000}]`, string(b))
}

func TestQueue_Concurrent(t *testing.T) {
	q := NewQueue()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Success("s")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, q.Len())
}
