package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	eventapp "github.com/workforce/backend/internal/application/event"
	"github.com/workforce/backend/internal/domain/shared"
	"github.com/workforce/backend/internal/interfaces/http/dto"
)

func newOutboxRouter(svc *MockOutboxUseCases) *gin.Engine {
	h := NewOutboxHandler(svc)
	r := newTestEngine()
	r.GET("/events/stats", h.Stats)
	r.GET("/events/dead", h.ListDead)
	r.POST("/events/:id/requeue", h.Requeue)
	r.POST("/events/requeue", h.RequeueAll)
	return r
}

func TestOutboxHandler_Stats(t *testing.T) {
	svc := new(MockOutboxUseCases)
	r := newOutboxRouter(svc)
	svc.On("Stats", mock.Anything, testTenant).
		Return(&eventapp.OutboxStatsResponse{Pending: 1, Dead: 2, Total: 3}, nil)

	w := doJSON(r, http.MethodGet, "/events/stats", nil, as("admin"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse[eventapp.OutboxStatsResponse](t, w)
	assert.Equal(t, int64(2), resp.Data.Dead)
	assert.Equal(t, int64(3), resp.Data.Total)
}

func TestOutboxHandler_ListDead(t *testing.T) {
	svc := new(MockOutboxUseCases)
	r := newOutboxRouter(svc)
	entryID := uuid.NewString()
	svc.On("ListDead", mock.Anything, testTenant, eventapp.ListDeadRequest{Page: 2, PageSize: 5}).
		Return(&eventapp.ListDeadResponse{
			Items: []eventapp.OutboxEntryResponse{{ID: entryID, Status: "DEAD"}},
			Total: 6,
			Page:  2,
			Size:  5,
		}, nil)

	w := doJSON(r, http.MethodGet, "/events/dead?page=2&page_size=5", nil, as("admin"))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeResponse[[]eventapp.OutboxEntryResponse](t, w)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, entryID, resp.Data[0].ID)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(6), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestOutboxHandler_ListDead_PageSizeTooLarge(t *testing.T) {
	svc := new(MockOutboxUseCases)
	r := newOutboxRouter(svc)

	w := doJSON(r, http.MethodGet, "/events/dead?page_size=1000", nil, as("admin"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, decodeResponse[any](t, w).Error.Code)
	svc.AssertNotCalled(t, "ListDead", mock.Anything, mock.Anything, mock.Anything)
}

func TestOutboxHandler_Requeue(t *testing.T) {
	svc := new(MockOutboxUseCases)
	r := newOutboxRouter(svc)
	entryID := uuid.New()

	t.Run("requeued", func(t *testing.T) {
		svc.On("Requeue", mock.Anything, testTenant, entryID).
			Return(&eventapp.OutboxEntryResponse{ID: entryID.String(), Status: "PENDING"}, nil).Once()

		w := doJSON(r, http.MethodPost, "/events/"+entryID.String()+"/requeue", nil, as("admin"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "PENDING", decodeResponse[eventapp.OutboxEntryResponse](t, w).Data.Status)
	})

	t.Run("not dead", func(t *testing.T) {
		svc.On("Requeue", mock.Anything, testTenant, entryID).
			Return(nil, shared.NewDomainError(shared.CodeInvalidState, "Only dead events can be requeued")).Once()

		w := doJSON(r, http.MethodPost, "/events/"+entryID.String()+"/requeue", nil, as("admin"))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("unknown", func(t *testing.T) {
		svc.On("Requeue", mock.Anything, testTenant, entryID).Return(nil, shared.ErrNotFound).Once()

		w := doJSON(r, http.MethodPost, "/events/"+entryID.String()+"/requeue", nil, as("admin"))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		w := doJSON(r, http.MethodPost, "/events/nope/requeue", nil, as("admin"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	svc.AssertExpectations(t)
}

func TestOutboxHandler_RequeueAll(t *testing.T) {
	svc := new(MockOutboxUseCases)
	r := newOutboxRouter(svc)

	svc.On("RequeueAll", mock.Anything, testTenant).Return(&eventapp.RequeueAllResponse{Requeued: 4}, nil).Once()
	w := doJSON(r, http.MethodPost, "/events/requeue", nil, as("admin"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), decodeResponse[eventapp.RequeueAllResponse](t, w).Data.Requeued)

	svc.On("RequeueAll", mock.Anything, testTenant).Return(nil, errors.New("db down")).Once()
	w = doJSON(r, http.MethodPost, "/events/requeue", nil, as("admin"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestOutboxHandler_RequiresIdentity(t *testing.T) {
	svc := new(MockOutboxUseCases)
	r := newOutboxRouter(svc)

	w := doJSON(r, http.MethodGet, "/events/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
