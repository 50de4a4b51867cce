package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"intent-chat/auth"
	"intent-chat/errors"
	"intent-chat/mocks"
	"intent-chat/observability"
	"intent-chat/services"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerFixture struct {
	authService *mocks.MockIAuthService
	chatService *mocks.MockIChatService
	users       *mocks.MockIUserRepository
	ledger      *mocks.MockILedgerRepository
	monitoring  *observability.MonitoringManager
	router      http.Handler
}

func newHandlerFixture(ctrl *gomock.Controller) handlerFixture {
	f := handlerFixture{
		authService: mocks.NewMockIAuthService(ctrl),
		chatService: mocks.NewMockIChatService(ctrl),
		users:       mocks.NewMockIUserRepository(ctrl),
		ledger:      mocks.NewMockILedgerRepository(ctrl),
		monitoring:  observability.NewMonitoringManager(slog.Default()),
	}
	handler := NewHandler(f.authService, f.chatService, f.users, f.ledger, f.monitoring, slog.Default())
	f.router = NewRouter(handler)
	return f
}

func (f handlerFixture) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	r := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, r)
	return w
}

func authToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []string{"user"}, time.Hour)
	require.NoError(t, err)
	return token
}

func TestHandler_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("should return 201 with a token", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)

		f.authService.EXPECT().
			Register("alice42", "ComplexPass123!").
			Return(services.Token("signed-token"), nil).
			Times(1)

		w := f.request(t, http.MethodPost, "/api/register", "", map[string]string{
			"username": "alice42",
			"password": "ComplexPass123!",
		})

		req.Equal(http.StatusCreated, w.Code)
		var resp map[string]string
		req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		req.Equal("signed-token", resp["token"])
		req.EqualValues(1, f.monitoring.Snapshot().Registrations)
	})

	t.Run("should map a duplicate user to 400", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)

		f.authService.EXPECT().
			Register(gomock.Any(), gomock.Any()).
			Return(services.Token(""), errors.ErrUserAlreadyExists).
			Times(1)

		w := f.request(t, http.MethodPost, "/api/register", "", map[string]string{
			"username": "alice42",
			"password": "ComplexPass123!",
		})

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should reject an empty body without calling the service", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)

		f.authService.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

		w := f.request(t, http.MethodPost, "/api/register", "", map[string]string{})

		req.Equal(http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("should map invalid credentials to 401", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)

		f.authService.EXPECT().
			Login("alice42", "wrong").
			Return(services.Token(""), errors.ErrInvalidCredentials).
			Times(1)

		w := f.request(t, http.MethodPost, "/api/login", "", map[string]string{
			"username": "alice42",
			"password": "wrong",
		})

		req.Equal(http.StatusUnauthorized, w.Code)
		req.EqualValues(0, f.monitoring.Snapshot().Logins)
	})
}

func TestHandler_SendMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("should return the exchange payload", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)
		token := authToken(t, "user-1")

		f.chatService.EXPECT().
			SendMessage(gomock.Any(), "user-1", "hello").
			Return(services.Exchange{
				Message:         "hello",
				Response:        "Predicted intent: greeting",
				Intent:          "greeting",
				Lang:            "en",
				RemainingTokens: 3900,
			}, nil).
			Times(1)

		w := f.request(t, http.MethodPost, "/api/chat/send_message", token, map[string]string{
			"message": "hello",
		})

		req.Equal(http.StatusOK, w.Code)
		var resp sendMessageResponse
		req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
		req.Equal("greeting", resp.PredictedIntent)
		req.EqualValues(3900, resp.RemainingTokens)
		req.EqualValues(1, f.monitoring.Snapshot().MessagesProcessed)
	})

	t.Run("should count validation rejections", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)
		token := authToken(t, "user-1")

		f.chatService.EXPECT().
			SendMessage(gomock.Any(), "user-1", "").
			Return(services.Exchange{}, errors.ErrMessageRequired).
			Times(1)

		w := f.request(t, http.MethodPost, "/api/chat/send_message", token, map[string]string{
			"message": "",
		})

		req.Equal(http.StatusBadRequest, w.Code)
		req.EqualValues(1, f.monitoring.Snapshot().RejectedValidation)
	})

	t.Run("should count insufficient credit rejections", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)
		token := authToken(t, "user-1")

		f.chatService.EXPECT().
			SendMessage(gomock.Any(), "user-1", "hello").
			Return(services.Exchange{}, errors.ErrInsufficientCredit).
			Times(1)

		w := f.request(t, http.MethodPost, "/api/chat/send_message", token, map[string]string{
			"message": "hello",
		})

		req.Equal(http.StatusBadRequest, w.Code)
		req.EqualValues(1, f.monitoring.Snapshot().RejectedInsufficient)
	})

	t.Run("should reject unauthenticated requests", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)

		f.chatService.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		w := f.request(t, http.MethodPost, "/api/chat/send_message", "", map[string]string{
			"message": "hello",
		})

		req.Equal(http.StatusUnauthorized, w.Code)
	})
}

func TestHandler_Search(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	t.Run("should require the q parameter", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)
		token := authToken(t, "user-1")

		f.chatService.EXPECT().
			Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Times(0)

		w := f.request(t, http.MethodGet, "/api/chat/search", token, nil)

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should clamp the limit to the maximum", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(ctrl)
		token := authToken(t, "user-1")

		f.chatService.EXPECT().
			Search(gomock.Any(), "user-1", "hello", maxSearchLimit).
			Return(nil, nil).
			Times(1)

		w := f.request(t, http.MethodGet, "/api/chat/search?q=hello&limit=500", token, nil)

		req.Equal(http.StatusOK, w.Code)
	})
}

func TestHandler_TokenBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	req := require.New(t)
	f := newHandlerFixture(ctrl)
	token := authToken(t, "user-1")

	f.ledger.EXPECT().Balance("user-1").Return(int64(3700), nil).Times(1)

	w := f.request(t, http.MethodGet, "/api/user/balance", token, nil)

	req.Equal(http.StatusOK, w.Code)
	var resp map[string]int64
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.EqualValues(3700, resp["tokens"])
}

