package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/suite"

	"github.com/vastahq/vasta/internal/api/dto"
	"github.com/vastahq/vasta/internal/config"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/rest/middleware"
	"github.com/vastahq/vasta/internal/types"
	"github.com/vastahq/vasta/internal/validator"
)

const testAuthSecret = "test-secret"

type stubBillingService struct {
	downgradeResp *dto.DowngradeResponse
	downgradeErr  error
	statusResp    *dto.BillingStatusResponse
	statusErr     error

	downgradeCalls int
	gotAccountID   string
	gotReq         dto.DowngradeRequest
}

func (s *stubBillingService) Downgrade(ctx context.Context, accountID string, req dto.DowngradeRequest) (*dto.DowngradeResponse, error) {
	s.downgradeCalls++
	s.gotAccountID = accountID
	s.gotReq = req
	if s.downgradeErr != nil {
		return nil, s.downgradeErr
	}
	return s.downgradeResp, nil
}

func (s *stubBillingService) GetBillingStatus(ctx context.Context, accountID string) (*dto.BillingStatusResponse, error) {
	s.gotAccountID = accountID
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.statusResp, nil
}

func (s *stubBillingService) SyncSubscription(ctx context.Context, subscriptionID string, priceID string, status types.SubscriptionStatus, cancelAtPeriodEnd bool) error {
	return nil
}

func (s *stubBillingService) SyncPaymentStatus(ctx context.Context, subscriptionID string, status types.SubscriptionStatus) error {
	return nil
}

func (s *stubBillingService) HandleSubscriptionDeleted(ctx context.Context, subscriptionID string) error {
	return nil
}

type BillingHandlerSuite struct {
	suite.Suite
	router  *gin.Engine
	service *stubBillingService
}

func TestBillingHandler(t *testing.T) {
	suite.Run(t, new(BillingHandlerSuite))
}

func (s *BillingHandlerSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	validator.NewValidator()
}

func (s *BillingHandlerSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	cfg.Auth.Secret = testAuthSecret

	log, err := logger.NewLogger(cfg)
	s.Require().NoError(err)

	s.service = &stubBillingService{
		downgradeResp: &dto.DowngradeResponse{
			Message:       "Downgrade scheduled successfully",
			EffectiveDate: time.Now().UTC().Add(14 * 24 * time.Hour),
		},
		statusResp: &dto.BillingStatusResponse{
			PlanCode:        types.PlanCodePro,
			PlanName:        "Pro",
			HasSubscription: true,
		},
	}
	handler := NewBillingHandler(s.service, log)

	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler())
	private := s.router.Group("/v1", middleware.AuthenticateMiddleware(cfg, log))
	private.GET("/billing", handler.GetBillingStatus)
	private.POST("/billing/downgrade", handler.Downgrade)
}

func (s *BillingHandlerSuite) signToken(accountID string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": accountID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testAuthSecret))
	s.Require().NoError(err)
	return signed
}

func (s *BillingHandlerSuite) doDowngrade(token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/billing/downgrade", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *BillingHandlerSuite) TestDowngradeWithoutTokenIsRejected() {
	w := s.doDowngrade("", []byte(`{"target_plan_code": "starter"}`))

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Zero(s.service.downgradeCalls)
}

func (s *BillingHandlerSuite) TestDowngradeWithForgedTokenIsRejected() {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "acc_1"})
	forged, err := token.SignedString([]byte("wrong-secret"))
	s.Require().NoError(err)

	w := s.doDowngrade(forged, []byte(`{"target_plan_code": "starter"}`))

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Zero(s.service.downgradeCalls)
}

func (s *BillingHandlerSuite) TestDowngradeSuccess() {
	w := s.doDowngrade(s.signToken("acc_1"), []byte(`{"target_plan_code": "pro"}`))

	s.Equal(http.StatusOK, w.Code)
	s.Equal("acc_1", s.service.gotAccountID)
	s.Equal(types.PlanCodePro, s.service.gotReq.TargetPlanCode)

	var resp dto.DowngradeResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("Downgrade scheduled successfully", resp.Message)
	s.False(resp.EffectiveDate.IsZero())
}

func (s *BillingHandlerSuite) TestDowngradeMalformedBody() {
	w := s.doDowngrade(s.signToken("acc_1"), []byte(`{"target_plan_code": 42`))

	s.Equal(http.StatusBadRequest, w.Code)
	s.Zero(s.service.downgradeCalls)
}

func (s *BillingHandlerSuite) TestDowngradeServiceErrorsMapToStatus() {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation",
			err: ierr.NewError("invalid plan code").
				WithHint("Invalid plan code").
				Mark(ierr.ErrValidation),
			want: http.StatusBadRequest,
		},
		{
			name: "no active subscription",
			err: ierr.NewError("no active subscription").
				WithHint("No active subscription to change; contact support.").
				Mark(ierr.ErrInvalidOperation),
			want: http.StatusBadRequest,
		},
		{
			name: "price configuration gap",
			err: ierr.NewError("price configuration missing for target plan").
				WithHint("Price configuration missing for target plan").
				Mark(ierr.ErrPriceConfig),
			want: http.StatusInternalServerError,
		},
		{
			name: "provider failure",
			err: ierr.NewError("stripe unavailable").
				WithHint("stripe unavailable").
				Mark(ierr.ErrProvider),
			want: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.service.downgradeErr = tt.err

			w := s.doDowngrade(s.signToken("acc_1"), []byte(`{"target_plan_code": "starter"}`))
			s.Equal(tt.want, w.Code)

			var resp ierr.ErrorResponse
			s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
			s.False(resp.Success)
			s.NotEmpty(resp.Error.Display)
		})
	}
}

func (s *BillingHandlerSuite) TestGetBillingStatus() {
	req := httptest.NewRequest(http.MethodGet, "/v1/billing", nil)
	req.Header.Set(types.HeaderAuthorization, "Bearer "+s.signToken("acc_1"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)

	var resp dto.BillingStatusResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.PlanCodePro, resp.PlanCode)
	s.True(resp.HasSubscription)
}
