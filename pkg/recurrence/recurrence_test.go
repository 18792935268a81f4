package recurrence

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Run("should accept a weekly rule", func(t *testing.T) {
		assert.NoError(t, Validate("FREQ=WEEKLY;BYDAY=WE"))
	})

	t.Run("should accept the empty rule", func(t *testing.T) {
		assert.NoError(t, Validate(""))
	})

	t.Run("should reject garbage", func(t *testing.T) {
		err := Validate("EVERY=FULLMOON")

		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRule))
	})
}

func TestPreview(t *testing.T) {
	start := time.Date(2024, 4, 10, 10, 30, 0, 0, time.UTC)

	t.Run("should return the first occurrences including the start", func(t *testing.T) {
		occurrences, err := Preview("FREQ=DAILY", start, 3)

		require.NoError(t, err)
		require.Len(t, occurrences, 3)
		assert.True(t, occurrences[0].Equal(start))
		assert.True(t, occurrences[1].Equal(start.AddDate(0, 0, 1)))
		assert.True(t, occurrences[2].Equal(start.AddDate(0, 0, 2)))
	})

	t.Run("should preview the empty rule as no occurrences", func(t *testing.T) {
		occurrences, err := Preview("", start, 3)

		require.NoError(t, err)
		assert.Empty(t, occurrences)
	})

	t.Run("should stop at the rule's own end", func(t *testing.T) {
		occurrences, err := Preview("FREQ=DAILY;COUNT=2", start, 5)

		require.NoError(t, err)
		assert.Len(t, occurrences, 2)
	})

	t.Run("should reject an unparseable rule", func(t *testing.T) {
		_, err := Preview("EVERY=FULLMOON", start, 3)

		assert.True(t, errors.Is(err, ErrInvalidRule))
	})
}

func TestPreviewRule(t *testing.T) {
	handler := NewHandler()

	t.Run("should return occurrences", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/recurrence/preview?rule=FREQ=DAILY&start=2024-04-10T10:30:00Z&count=2", nil)
		resp := httptest.NewRecorder()

		handler.PreviewRule(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var occurrences []time.Time
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&occurrences))
		assert.Len(t, occurrences, 2)
	})

	t.Run("should return no occurrences without a rule", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/recurrence/preview?start=2024-04-10T10:30:00Z", nil)
		resp := httptest.NewRecorder()

		handler.PreviewRule(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var occurrences []time.Time
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&occurrences))
		assert.Empty(t, occurrences)
	})

	t.Run("should reject a bad start date", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/recurrence/preview?rule=FREQ=DAILY&start=tomorrow", nil)
		resp := httptest.NewRecorder()

		handler.PreviewRule(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("should reject a bad rule", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/recurrence/preview?rule=EVERY=FULLMOON&start=2024-04-10T10:30:00Z", nil)
		resp := httptest.NewRecorder()

		handler.PreviewRule(resp, req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}
