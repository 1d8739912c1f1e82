package eventbus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// NewEvent
// ---------------------------------------------------------------------------

func TestNewEvent_Success(t *testing.T) {
	data := map[string]string{"match_id": "abc"}

	event, err := NewEvent(SubjectMatchCompleted, "matching-service", data)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, SubjectMatchCompleted, event.Type)
	assert.Equal(t, "matching-service", event.Source)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())

	// ID should be a valid UUID
	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)

	// Data should be valid JSON
	var decoded map[string]string
	err = json.Unmarshal(event.Data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "abc", decoded["match_id"])
}

func TestNewEvent_NilData(t *testing.T) {
	event, err := NewEvent("test.event", "test-source", nil)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), event.Data)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("test.event", "test-source", make(chan int))
	assert.Error(t, err)
}

func TestNewEvent_WithProfileChangedData(t *testing.T) {
	data := ProfileChangedData{
		ProfileID: uuid.New(),
		Name:      "weekend-events",
		IsDefault: true,
		ChangedAt: time.Now().UTC(),
	}

	event, err := NewEvent(SubjectProfileUpdated, "matching-service", data)
	require.NoError(t, err)
	assert.Equal(t, SubjectProfileUpdated, event.Type)

	var decoded ProfileChangedData
	err = json.Unmarshal(event.Data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, data.ProfileID, decoded.ProfileID)
	assert.Equal(t, "weekend-events", decoded.Name)
	assert.True(t, decoded.IsDefault)
}

// ---------------------------------------------------------------------------
// Event round trip
// ---------------------------------------------------------------------------

func TestEvent_JSONRoundTrip(t *testing.T) {
	event, err := NewEvent(SubjectMatchFailed, "matching-service", map[string]string{"reason": "missing start time"})
	require.NoError(t, err)

	b, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, event.Type, decoded.Type)
	assert.JSONEq(t, string(event.Data), string(decoded.Data))
}

// ---------------------------------------------------------------------------
// Bus struct – nil-safety
// ---------------------------------------------------------------------------

func TestBus_Connected_NilConn(t *testing.T) {
	bus := &Bus{}
	assert.False(t, bus.Connected())
}

func TestBus_Close_NoSubs(t *testing.T) {
	bus := &Bus{}
	// Should not panic
	bus.Close()
}

func TestEvent_ZeroValue(t *testing.T) {
	var event Event
	assert.Empty(t, event.ID)
	assert.Empty(t, event.Type)
	assert.Empty(t, event.Source)
	assert.True(t, event.Timestamp.IsZero())
	assert.Nil(t, event.Data)
}
