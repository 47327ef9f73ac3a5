package domain

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "campuspass/pkg/domain-errors"
)

func TestParseEventID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseEventID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseEventID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects the nil UUID", func(t *testing.T) {
		_, err := ParseEventID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("accepts a valid UUID", func(t *testing.T) {
		want := uuid.New()
		id, err := ParseEventID(want.String())
		require.NoError(t, err)
		assert.Equal(t, EventID(want), id)
	})
}

func TestIDJSONEncoding(t *testing.T) {
	t.Run("marshals as the canonical UUID string", func(t *testing.T) {
		eventID := NewEventID()
		payload := struct {
			EventID EventID `json:"event_id"`
		}{EventID: eventID}

		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		assert.JSONEq(t, fmt.Sprintf(`{"event_id":%q}`, eventID.String()), string(raw))
	})

	t.Run("unmarshals from the string form", func(t *testing.T) {
		want := NewRegistrationID()
		var got struct {
			ID RegistrationID `json:"id"`
		}
		err := json.Unmarshal([]byte(fmt.Sprintf(`{"id":%q}`, want.String())), &got)
		require.NoError(t, err)
		assert.Equal(t, want, got.ID)
	})

	t.Run("rejects a non-UUID string", func(t *testing.T) {
		var got struct {
			ID UserID `json:"id"`
		}
		err := json.Unmarshal([]byte(`{"id":"nope"}`), &got)
		require.Error(t, err)
	})
}

func TestIDRoundTrip(t *testing.T) {
	userID := NewUserID()
	parsed, err := ParseUserID(userID.String())
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)

	regID := NewRegistrationID()
	parsedReg, err := ParseRegistrationID(regID.String())
	require.NoError(t, err)
	assert.Equal(t, regID, parsedReg)
}
