package adaptor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"tour-booking/internal/data/entity"
	"tour-booking/internal/dto/response"
	"tour-booking/internal/flow"
	"tour-booking/internal/usecase"
	"tour-booking/pkg/utils"
)

// stubBookingService scripts Submit and leaves the rest of the interface
// to the embedded nil, which no test path reaches.
type stubBookingService struct {
	usecase.BookingService
	submitErr error
}

func (s *stubBookingService) Submit(ctx context.Context, userID, flowID uuid.UUID) (*response.FlowResponse, error) {
	return nil, s.submitErr
}

func submitRequest(userID, flowID uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/booking/flow/"+flowID.String()+"/submit", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", flowID.String())

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = utils.SetUserContext(ctx, userID, string(entity.RoleUser))
	return req.WithContext(ctx)
}

func TestSubmitStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		submitErr  error
		wantStatus int
	}{
		{
			"booking store write failed",
			&flow.BookingPersistenceError{Err: errors.New("connection refused")},
			http.StatusBadGateway,
		},
		{
			"submit already in flight",
			flow.ErrSubmitInFlight,
			http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewBookingHandler(&stubBookingService{submitErr: tt.submitErr}, zap.NewNop())

			rec := httptest.NewRecorder()
			handler.Submit(rec, submitRequest(uuid.New(), uuid.New()))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
