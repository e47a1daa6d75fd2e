package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zbd0329/money-distributor/internal/api/middleware"
	"github.com/zbd0329/money-distributor/internal/domain"
	"github.com/zbd0329/money-distributor/internal/service"
)

type fakeDistributionService struct {
	createSprayFn func(ctx context.Context, creatorID uint, roomID string, totalAmount int64, recipientCount int) (string, error)
	submitClaimFn func(ctx context.Context, code string, userID uint, roomID string) (int64, error)
	lookupSprayFn func(ctx context.Context, code string, requesterID uint) (domain.SprayStatus, error)
}

func (f *fakeDistributionService) CreateSpray(ctx context.Context, creatorID uint, roomID string, totalAmount int64, recipientCount int) (string, error) {
	return f.createSprayFn(ctx, creatorID, roomID, totalAmount, recipientCount)
}

func (f *fakeDistributionService) SubmitClaim(ctx context.Context, code string, userID uint, roomID string) (int64, error) {
	return f.submitClaimFn(ctx, code, userID, roomID)
}

func (f *fakeDistributionService) LookupSpray(ctx context.Context, code string, requesterID uint) (domain.SprayStatus, error) {
	return f.lookupSprayFn(ctx, code, requesterID)
}

func newDistributionRouter(svc DistributionService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewDistributionHandler(svc)
	router := gin.New()
	group := router.Group("/api/v1", middleware.RequireUserID())
	group.POST("/spray", h.HandleCreateSpray)
	group.POST("/receive", h.HandleReceive)
	group.GET("/spray/:token", h.HandleGetSprayStatus)

	return router
}

func performRequest(router *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestHandleCreateSpray(t *testing.T) {
	svc := &fakeDistributionService{
		createSprayFn: func(_ context.Context, creatorID uint, roomID string, totalAmount int64, recipientCount int) (string, error) {
			assert.Equal(t, uint(1), creatorID)
			assert.Equal(t, "room-1", roomID)
			assert.Equal(t, int64(5000), totalAmount)
			assert.Equal(t, 3, recipientCount)
			return "AB3", nil
		},
	}
	router := newDistributionRouter(svc)

	w := performRequest(router, http.MethodPost, "/api/v1/spray",
		`{"total_amount": 5000, "recipient_count": 3}`,
		map[string]string{"X-USER-ID": "1", "X-ROOM-ID": "room-1"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"token":"AB3"}`, w.Body.String())
}

func TestHandleCreateSpray_BadInput(t *testing.T) {
	svc := &fakeDistributionService{
		createSprayFn: func(_ context.Context, _ uint, _ string, _ int64, _ int) (string, error) {
			t.Fatal("service should not be reached")
			return "", nil
		},
	}
	router := newDistributionRouter(svc)

	tests := []struct {
		name    string
		body    string
		headers map[string]string
	}{
		{"missing user header", `{"total_amount": 100, "recipient_count": 2}`, map[string]string{"X-ROOM-ID": "room-1"}},
		{"malformed user header", `{"total_amount": 100, "recipient_count": 2}`, map[string]string{"X-USER-ID": "abc", "X-ROOM-ID": "room-1"}},
		{"missing room header", `{"total_amount": 100, "recipient_count": 2}`, map[string]string{"X-USER-ID": "1"}},
		{"malformed body", `{"total_amount":`, map[string]string{"X-USER-ID": "1", "X-ROOM-ID": "room-1"}},
		{"zero amount", `{"total_amount": 0, "recipient_count": 2}`, map[string]string{"X-USER-ID": "1", "X-ROOM-ID": "room-1"}},
		{"count above amount", `{"total_amount": 2, "recipient_count": 3}`, map[string]string{"X-USER-ID": "1", "X-ROOM-ID": "room-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/v1/spray", tt.body, tt.headers)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHandleCreateSpray_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"not a room member", service.ErrNotRoomMember, http.StatusForbidden},
		{"no wallet", service.ErrWalletNotFound, http.StatusNotFound},
		{"insufficient balance", service.ErrInsufficientBalance, http.StatusBadRequest},
		{"invalid spray", service.ErrInvalidSpray, http.StatusBadRequest},
		{"token store down", service.ErrTokenStoreDown, http.StatusServiceUnavailable},
		{"creation failed", service.ErrDistributionCreation, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeDistributionService{
				createSprayFn: func(_ context.Context, _ uint, _ string, _ int64, _ int) (string, error) {
					return "", tt.svcErr
				},
			}
			router := newDistributionRouter(svc)

			w := performRequest(router, http.MethodPost, "/api/v1/spray",
				`{"total_amount": 5000, "recipient_count": 3}`,
				map[string]string{"X-USER-ID": "1", "X-ROOM-ID": "room-1"})

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandleReceive(t *testing.T) {
	svc := &fakeDistributionService{
		submitClaimFn: func(_ context.Context, code string, userID uint, roomID string) (int64, error) {
			assert.Equal(t, "AB3", code)
			assert.Equal(t, uint(2), userID)
			assert.Equal(t, "room-1", roomID)
			return 1667, nil
		},
	}
	router := newDistributionRouter(svc)

	w := performRequest(router, http.MethodPost, "/api/v1/receive",
		`{"token": "AB3"}`,
		map[string]string{"X-USER-ID": "2", "X-ROOM-ID": "room-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"received_amount":1667}`, w.Body.String())
}

func TestHandleReceive_MalformedToken(t *testing.T) {
	svc := &fakeDistributionService{
		submitClaimFn: func(_ context.Context, _ string, _ uint, _ string) (int64, error) {
			t.Fatal("service should not be reached")
			return 0, nil
		},
	}
	router := newDistributionRouter(svc)

	for _, token := range []string{"ab3", "ABCD", "A1", "A-1", ""} {
		w := performRequest(router, http.MethodPost, "/api/v1/receive",
			`{"token": "`+token+`"}`,
			map[string]string{"X-USER-ID": "2", "X-ROOM-ID": "room-1"})
		assert.Equal(t, http.StatusBadRequest, w.Code, "token %q", token)
	}
}

func TestHandleReceive_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"not a room member", service.ErrNotRoomMember, http.StatusForbidden},
		{"self claim", service.ErrSelfClaim, http.StatusForbidden},
		{"invalid token", service.ErrInvalidToken, http.StatusBadRequest},
		{"window expired", service.ErrClaimWindowExpired, http.StatusBadRequest},
		{"already claimed", service.ErrAlreadyClaimed, http.StatusBadRequest},
		{"no shares left", service.ErrNoSharesLeft, http.StatusBadRequest},
		{"claim timeout", service.ErrClaimTimeout, http.StatusGatewayTimeout},
		{"queue full", service.ErrClaimQueueFull, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeDistributionService{
				submitClaimFn: func(_ context.Context, _ string, _ uint, _ string) (int64, error) {
					return 0, tt.svcErr
				},
			}
			router := newDistributionRouter(svc)

			w := performRequest(router, http.MethodPost, "/api/v1/receive",
				`{"token": "AB3"}`,
				map[string]string{"X-USER-ID": "2", "X-ROOM-ID": "room-1"})

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandleGetSprayStatus(t *testing.T) {
	sprayTime := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := &fakeDistributionService{
		lookupSprayFn: func(_ context.Context, code string, requesterID uint) (domain.SprayStatus, error) {
			assert.Equal(t, "AB3", code)
			assert.Equal(t, uint(1), requesterID)
			return domain.SprayStatus{
				SprayTime:      sprayTime,
				SprayAmount:    5000,
				ReceivedAmount: 1667,
				ReceivedList:   []domain.ReceivedShare{{UserID: 2, Amount: 1667}},
			}, nil
		},
	}
	router := newDistributionRouter(svc)

	w := performRequest(router, http.MethodGet, "/api/v1/spray/AB3", "",
		map[string]string{"X-USER-ID": "1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"spray_time": "2026-01-02T03:04:05Z",
		"spray_amount": 5000,
		"received_amount": 1667,
		"received_list": [{"user_id": 2, "amount": 1667}]
	}`, w.Body.String())
}

func TestHandleGetSprayStatus_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		svcErr     error
		wantStatus int
	}{
		{"invalid token", service.ErrInvalidToken, http.StatusBadRequest},
		{"not the creator", service.ErrNotCreator, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeDistributionService{
				lookupSprayFn: func(_ context.Context, _ string, _ uint) (domain.SprayStatus, error) {
					return domain.SprayStatus{}, tt.svcErr
				},
			}
			router := newDistributionRouter(svc)

			w := performRequest(router, http.MethodGet, "/api/v1/spray/AB3", "",
				map[string]string{"X-USER-ID": "2"})

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
