package workspace

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mao65123/logmee/internal/event_bus"
	"github.com/mao65123/logmee/pkg/localstore"
	"github.com/mao65123/logmee/pkg/state"
	"github.com/mao65123/logmee/pkg/user"
)

func newHandlerFixture(t *testing.T) (*TimerHandler, *WorkspaceServiceImpl) {
	t.Helper()
	repo := localstore.NewStubRepository()
	t.Cleanup(repo.Cleanup)
	service := NewWorkspaceServiceImpl(localstore.NewStore(repo), nil, event_bus.NewEventBus())
	return NewTimerHandler(service), service
}

func doRequest(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(user.WithUserId(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestTimerHandler_StartAndStop(t *testing.T) {
	handler, service := newHandlerFixture(t)
	ctx := userCtx("user-1")
	client := state.Client{ID: "c1", Name: "Acme", ClosingDate: 99,
		TaskPresets: []string{}, Projects: []state.Project{}, Categories: []string{}}
	_, err := service.Dispatch(ctx, state.AddClient{Client: client})
	require.NoError(t, err)

	// when starting a timer
	rec := doRequest(handler.Start, http.MethodPost, "/api/timer/start",
		`{"clientId":"c1","description":"design work"}`)

	// then the response carries the running entry
	require.Equal(t, http.StatusCreated, rec.Code)
	var started TimerDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	assert.Equal(t, "running", started.Status)
	require.NotNil(t, started.Entry)
	assert.Equal(t, "design work", started.Entry.Description)

	// and a second start is rejected
	rec = doRequest(handler.Start, http.MethodPost, "/api/timer/start", `{"clientId":"c1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// and stopping closes the entry
	rec = doRequest(handler.Stop, http.MethodPost, "/api/timer/stop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stopped state.TimeEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stopped))
	assert.NotNil(t, stopped.EndTime)

	// and stopping again conflicts
	rec = doRequest(handler.Stop, http.MethodPost, "/api/timer/stop", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTimerHandler_StartValidatesInput(t *testing.T) {
	handler, _ := newHandlerFixture(t)

	rec := doRequest(handler.Start, http.MethodPost, "/api/timer/start", `{"description":"no client"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(handler.Start, http.MethodPost, "/api/timer/start", `{"clientId":"c1","rateType":"weekly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimerHandler_CurrentWhenIdle(t *testing.T) {
	handler, _ := newHandlerFixture(t)

	rec := doRequest(handler.Current, http.MethodGet, "/api/timer", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var dto TimerDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "idle", dto.Status)
	assert.Nil(t, dto.Entry)
}
