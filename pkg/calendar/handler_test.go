package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerFixture() (calendarFixture, *Handler) {
	f := newCalendarFixture()
	return f, NewHandler(f.service)
}

func withEventUID(req *http.Request, uid string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"eventUid": uid})
}

func TestGetEventsHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the events in the window", func(t *testing.T) {
		f, handler := newHandlerFixture()
		require.NoError(t, f.store.Put(ctx, timedEvent("day-10", time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC))))
		require.NoError(t, f.store.Put(ctx, timedEvent("day-11", time.Date(2024, 4, 11, 8, 0, 0, 0, time.UTC))))

		req := httptest.NewRequest("GET", "/api/calendar/event?from=2024-04-11T00:00:00Z", nil)
		resp := httptest.NewRecorder()

		handler.GetEvents(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var dtos []EventDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&dtos))
		require.Len(t, dtos, 1)
		assert.Equal(t, "day-11", dtos[0].UID)
		assert.Equal(t, "2024-04-11T08:00:00Z", dtos[0].Start)
	})

	t.Run("should return everything without filters", func(t *testing.T) {
		f, handler := newHandlerFixture()
		require.NoError(t, f.store.Put(ctx, timedEvent("day-10", time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC))))
		require.NoError(t, f.store.Put(ctx, timedEvent("day-11", time.Date(2024, 4, 11, 8, 0, 0, 0, time.UTC))))

		req := httptest.NewRequest("GET", "/api/calendar/event", nil)
		resp := httptest.NewRecorder()

		handler.GetEvents(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var dtos []EventDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&dtos))
		assert.Len(t, dtos, 2)
	})

	t.Run("should reject a bad from date", func(t *testing.T) {
		_, handler := newHandlerFixture()
		req := httptest.NewRequest("GET", "/api/calendar/event?from=yesterday", nil)
		resp := httptest.NewRecorder()

		handler.GetEvents(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestGetEventHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the event as json", func(t *testing.T) {
		f, handler := newHandlerFixture()
		require.NoError(t, f.store.Put(ctx, timedEvent("abc-123", time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC))))

		req := withEventUID(httptest.NewRequest("GET", "/api/calendar/event/abc-123", nil), "abc-123")
		resp := httptest.NewRecorder()

		handler.GetEvent(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var dto EventDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
		assert.Equal(t, "abc-123", dto.UID)
		assert.Equal(t, "Event abc-123", dto.Summary)
	})

	t.Run("should return raw ics for text/calendar", func(t *testing.T) {
		f, handler := newHandlerFixture()
		require.NoError(t, f.store.Put(ctx, timedEvent("abc-123", time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC))))

		req := withEventUID(httptest.NewRequest("GET", "/api/calendar/event/abc-123", nil), "abc-123")
		req.Header.Set("Accept", "text/calendar")
		resp := httptest.NewRecorder()

		handler.GetEvent(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Header().Get("Content-Type"), "text/calendar")
		body := resp.Body.String()
		assert.Contains(t, body, "BEGIN:VCALENDAR")
		assert.Contains(t, body, "UID:abc-123")
	})

	t.Run("should return 404 for an unknown event", func(t *testing.T) {
		_, handler := newHandlerFixture()
		req := withEventUID(httptest.NewRequest("GET", "/api/calendar/event/nope", nil), "nope")
		resp := httptest.NewRecorder()

		handler.GetEvent(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestDeleteEventHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("should delete and answer no content", func(t *testing.T) {
		f, handler := newHandlerFixture()
		require.NoError(t, f.store.Put(ctx, timedEvent("abc-123", time.Now())))

		req := withEventUID(httptest.NewRequest("DELETE", "/api/calendar/event/abc-123", nil), "abc-123")
		resp := httptest.NewRecorder()

		handler.DeleteEvent(resp, req)

		assert.Equal(t, http.StatusNoContent, resp.Code)
	})

	t.Run("should return 404 for an unknown event", func(t *testing.T) {
		_, handler := newHandlerFixture()
		req := withEventUID(httptest.NewRequest("DELETE", "/api/calendar/event/nope", nil), "nope")
		resp := httptest.NewRecorder()

		handler.DeleteEvent(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestExportCalendarHandler(t *testing.T) {
	t.Run("should report how many events were exported", func(t *testing.T) {
		f, handler := newHandlerFixture()
		f.exporter.files = 1
		target := filepath.Join(t.TempDir(), "backup")
		body, err := json.Marshal(map[string]string{"target": target})
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/calendar/export", strings.NewReader(string(body)))
		resp := httptest.NewRecorder()

		handler.ExportCalendar(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var response struct {
			Exported int `json:"exported"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		assert.Equal(t, 1, response.Exported)
	})

	t.Run("should reject a missing target", func(t *testing.T) {
		_, handler := newHandlerFixture()
		req := httptest.NewRequest("POST", "/api/calendar/export", strings.NewReader(`{}`))
		resp := httptest.NewRecorder()

		handler.ExportCalendar(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
