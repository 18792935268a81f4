package draft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerFixture(t *testing.T) (serviceFixture, *Handler) {
	t.Helper()
	f := newServiceFixture(t)
	return f, NewHandler(f.service)
}

func openDraftDTO(t *testing.T, handler *Handler, body string) DraftDTO {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/draft", strings.NewReader(body))
	resp := httptest.NewRecorder()

	handler.CreateDraft(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	var dto DraftDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	return dto
}

func withDraftID(req *http.Request, draftID string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"draftId": draftID})
}

func TestCreateDraft(t *testing.T) {
	t.Run("should open a draft for a new event", func(t *testing.T) {
		_, handler := newHandlerFixture(t)

		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		assert.True(t, dto.IsNew)
		assert.NotEmpty(t, dto.ID)
		assert.NotEmpty(t, dto.EventUID)
		assert.Equal(t, "09:15", dto.StartTime)
		assert.Equal(t, "10:15", dto.EndTime)
		assert.False(t, dto.Changed)
		assert.True(t, dto.Valid)
	})

	t.Run("should open a draft for a stored event", func(t *testing.T) {
		f, handler := newHandlerFixture(t)
		stored := f.storedTimedEvent(t, context.Background())

		dto := openDraftDTO(t, handler, `{"eventUid": "`+stored.UID+`"}`)

		assert.False(t, dto.IsNew)
		assert.Equal(t, "Dentist", dto.Summary)
		assert.Equal(t, "10.04.2024", dto.StartDate)
		assert.Equal(t, "10:30", dto.StartTime)
		assert.Equal(t, "Europe/Berlin", dto.Timezone)
	})

	t.Run("should return 404 for an unknown event", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		req := httptest.NewRequest("POST", "/api/draft", strings.NewReader(`{"eventUid": "no-such-event"}`))
		resp := httptest.NewRecorder()

		handler.CreateDraft(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		req := httptest.NewRequest("POST", "/api/draft", strings.NewReader(`{`))
		resp := httptest.NewRecorder()

		handler.CreateDraft(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestGetDraft(t *testing.T) {
	t.Run("should return the open draft", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": true}`)

		req := withDraftID(httptest.NewRequest("GET", "/api/draft/"+dto.ID, nil), dto.ID)
		resp := httptest.NewRecorder()

		handler.GetDraft(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var found DraftDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
		assert.Equal(t, dto.ID, found.ID)
		assert.True(t, found.AllDay)
	})

	t.Run("should return 404 for an unknown draft", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		req := withDraftID(httptest.NewRequest("GET", "/api/draft/nope", nil), "nope")
		resp := httptest.NewRecorder()

		handler.GetDraft(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestValidateFieldHandler(t *testing.T) {
	t.Run("should apply valid text to the field", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		req := httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/field/startDate", strings.NewReader(`{"text": "11.04.2024"}`))
		req = mux.SetURLVars(req, map[string]string{"draftId": dto.ID, "field": "startDate"})
		resp := httptest.NewRecorder()

		handler.ValidateField(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var updated DraftDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.Equal(t, "11.04.2024", updated.StartDate)
		assert.True(t, updated.Changed)
	})

	t.Run("should return 422 for text that does not parse", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		req := httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/field/startTime", strings.NewReader(`{"text": "late morning"}`))
		req = mux.SetURLVars(req, map[string]string{"draftId": dto.ID, "field": "startTime"})
		resp := httptest.NewRecorder()

		handler.ValidateField(resp, req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		var errResponse struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResponse))
		assert.Contains(t, errResponse.Error, "format")
	})

	t.Run("should return 400 for an unknown field", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		req := httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/field/startYear", strings.NewReader(`{"text": "2024"}`))
		req = mux.SetURLVars(req, map[string]string{"draftId": dto.ID, "field": "startYear"})
		resp := httptest.NewRecorder()

		handler.ValidateField(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestSetAllDayHandler(t *testing.T) {
	t.Run("should switch the draft to all-day", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		req := withDraftID(httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/allday", strings.NewReader(`{"allDay": true}`)), dto.ID)
		resp := httptest.NewRecorder()

		handler.SetAllDay(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var updated DraftDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.True(t, updated.AllDay)
		assert.Equal(t, dto.StartDate, updated.StartDate)
	})
}

func TestSetTimezoneHandler(t *testing.T) {
	t.Run("should convert the shown times into the chosen zone", func(t *testing.T) {
		f, handler := newHandlerFixture(t)
		stored := f.storedTimedEvent(t, context.Background())
		dto := openDraftDTO(t, handler, `{"eventUid": "`+stored.UID+`"}`)

		req := withDraftID(httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/timezone",
			strings.NewReader(`{"visible": true, "timezone": "America/New_York"}`)), dto.ID)
		resp := httptest.NewRecorder()

		handler.SetTimezone(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var updated DraftDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.True(t, updated.TimezoneVisible)
		assert.Equal(t, "America/New_York", updated.Timezone)
		assert.Equal(t, "04:30", updated.StartTime)
	})

	t.Run("should return 422 for an unknown zone", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		req := withDraftID(httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/timezone",
			strings.NewReader(`{"visible": true, "timezone": "Mars/Olympus_Mons"}`)), dto.ID)
		resp := httptest.NewRecorder()

		handler.SetTimezone(resp, req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

func TestUpdateDetailsHandler(t *testing.T) {
	t.Run("should set the free-text fields", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		body := `{"summary": "Standup", "location": "Room 2", "categories": ["work"]}`
		req := withDraftID(httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/details", strings.NewReader(body)), dto.ID)
		resp := httptest.NewRecorder()

		handler.UpdateDetails(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var updated DraftDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		assert.Equal(t, "Standup", updated.Summary)
		assert.Equal(t, "Room 2", updated.Location)
		assert.Equal(t, []string{"work"}, updated.Categories)
	})
}

func TestSetAlarmsHandler(t *testing.T) {
	t.Run("should keep alarms with ISO triggers", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		body := `{"alarms": [{"trigger": "-PT15M", "description": "Leave now"}]}`
		req := withDraftID(httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/alarms", strings.NewReader(body)), dto.ID)
		resp := httptest.NewRecorder()

		handler.SetAlarms(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var updated DraftDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
		require.Len(t, updated.Alarms, 1)
		assert.Equal(t, "-PT15M", updated.Alarms[0].Trigger)
		assert.Equal(t, "Leave now", updated.Alarms[0].Description)
	})

	t.Run("should return 422 for an unparseable trigger", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		req := withDraftID(httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/alarms",
			strings.NewReader(`{"alarms": [{"trigger": "soon"}]}`)), dto.ID)
		resp := httptest.NewRecorder()

		handler.SetAlarms(resp, req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

func TestSaveDraftHandler(t *testing.T) {
	t.Run("should save and return the stored event", func(t *testing.T) {
		f, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": true}`)

		req := withDraftID(httptest.NewRequest("POST", "/api/draft/"+dto.ID+"/save", nil), dto.ID)
		resp := httptest.NewRecorder()

		handler.SaveDraft(resp, req)

		require.Equal(t, http.StatusOK, resp.Code)
		var saved SavedEventDTO
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
		assert.Equal(t, dto.EventUID, saved.UID)
		assert.True(t, saved.AllDay)
		assert.Equal(t, "2024-04-10", saved.Start)
		assert.Equal(t, "2024-04-11", saved.End)

		_, err := f.store.Get(context.Background(), saved.UID)
		assert.NoError(t, err)
	})

	t.Run("should return 422 when the start is after the end", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		fieldReq := httptest.NewRequest("PUT", "/api/draft/"+dto.ID+"/field/endDate", strings.NewReader(`{"text": "09.04.2024"}`))
		fieldReq = mux.SetURLVars(fieldReq, map[string]string{"draftId": dto.ID, "field": "endDate"})
		fieldResp := httptest.NewRecorder()
		handler.ValidateField(fieldResp, fieldReq)
		require.Equal(t, http.StatusOK, fieldResp.Code)

		req := withDraftID(httptest.NewRequest("POST", "/api/draft/"+dto.ID+"/save", nil), dto.ID)
		resp := httptest.NewRecorder()

		handler.SaveDraft(resp, req)

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("should return 404 for an unknown draft", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		req := withDraftID(httptest.NewRequest("POST", "/api/draft/nope/save", nil), "nope")
		resp := httptest.NewRecorder()

		handler.SaveDraft(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestDiscardDraftHandler(t *testing.T) {
	t.Run("should end the session", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		dto := openDraftDTO(t, handler, `{"allDay": false}`)

		req := withDraftID(httptest.NewRequest("DELETE", "/api/draft/"+dto.ID, nil), dto.ID)
		resp := httptest.NewRecorder()

		handler.DiscardDraft(resp, req)

		assert.Equal(t, http.StatusNoContent, resp.Code)

		getReq := withDraftID(httptest.NewRequest("GET", "/api/draft/"+dto.ID, nil), dto.ID)
		getResp := httptest.NewRecorder()
		handler.GetDraft(getResp, getReq)
		assert.Equal(t, http.StatusNotFound, getResp.Code)
	})

	t.Run("should return 404 for an unknown draft", func(t *testing.T) {
		_, handler := newHandlerFixture(t)
		req := withDraftID(httptest.NewRequest("DELETE", "/api/draft/nope", nil), "nope")
		resp := httptest.NewRecorder()

		handler.DiscardDraft(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
