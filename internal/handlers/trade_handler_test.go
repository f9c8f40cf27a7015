package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fxstream/trade-consumer/internal/handlers"
	"github.com/fxstream/trade-consumer/internal/services"
	"github.com/fxstream/trade-consumer/pkg"
	"github.com/fxstream/trade-consumer/pkg/models"
	"github.com/fxstream/trade-consumer/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRepo struct {
	err     error
	created []*models.TradeMessage
}

func (s *stubRepo) Create(_ context.Context, m *models.TradeMessage) error {
	if s.err != nil {
		return s.err
	}
	m.ID = int64(len(s.created) + 1)
	m.CreatedAt = time.Now()
	s.created = append(s.created, m)
	return nil
}

func newRouter(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	svc := services.NewTradeService(logger, validation.New(), repo, services.NoopPublisher{})
	tradeHandler := handlers.NewTradeHandler(logger, svc)

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{
			"message": fmt.Sprintf("Status code: %d", http.StatusMethodNotAllowed),
		})
	})

	api := r.Group("/")
	api.Use(func(c *gin.Context) { // trace seam; middleware tested separately
		c.Set(pkg.TraceId, "test-trace")
		c.Next()
	})
	tradeHandler.RegisterRoutes(api)
	return r
}

func postJSON(r *gin.Engine, body string, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/trade/message/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out.Message
}

func validPayload() map[string]any {
	return map[string]any{
		"userId":             "134256",
		"currencyFrom":       "EUR",
		"currencyTo":         "GBP",
		"amountSell":         1000,
		"amountBuy":          747.10,
		"rate":               0.7471,
		"timePlaced":         "24-JAN-15 10:27:44",
		"originatingCountry": "FR",
	}
}

func marshal(t *testing.T, payload map[string]any) string {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(b)
}

func TestConsumeMessage_Success(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	w := postJSON(r, marshal(t, validPayload()), "application/json")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Your request was created!", decodeMessage(t, w))
	assert.Len(t, repo.created, 1)
}

func TestConsumeMessage_ContentTypeWithCharset(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	w := postJSON(r, marshal(t, validPayload()), "application/json; charset=utf-8")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestConsumeMessage_WrongContentType(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	w := postJSON(r, marshal(t, validPayload()), "text/plain")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Content-Type must be application/json", decodeMessage(t, w))
	assert.Empty(t, repo.created)
}

func TestConsumeMessage_WrongContentTypeBeatsMalformedBody(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	// The gate runs before the parser: a broken body still yields the
	// content-type error, never a parse error.
	w := postJSON(r, `{"broken`, "text/plain")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Content-Type must be application/json", decodeMessage(t, w))
}

func TestConsumeMessage_MalformedJSON(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	w := postJSON(r, `{"userId": "134256",`, "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(decodeMessage(t, w), "JSON parse error ("))
	assert.Empty(t, repo.created)
}

func TestConsumeMessage_MissingRequiredKeys(t *testing.T) {
	keys := []string{
		"userId",
		"currencyFrom",
		"currencyTo",
		"amountSell",
		"amountBuy",
		"rate",
		"timePlaced",
		"originatingCountry",
	}

	for _, key := range keys {
		repo := &stubRepo{}
		r := newRouter(repo)

		payload := validPayload()
		delete(payload, key)

		w := postJSON(r, marshal(t, payload), "application/json")
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "missing %s", key)
		assert.Empty(t, repo.created, "missing %s", key)
	}
}

func TestConsumeMessage_InvalidTimestamp(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	payload := validPayload()
	payload["timePlaced"] = "2015-01-24 10:27:44"

	w := postJSON(r, marshal(t, payload), "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid datetime provided (2015-01-24 10:27:44)", decodeMessage(t, w))
}

func TestConsumeMessage_ValidationErrors(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	payload := validPayload()
	payload["currencyTo"] = "EUR"
	payload["amountBuy"] = 999.10

	w := postJSON(r, marshal(t, payload), "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	msg := decodeMessage(t, w)
	assert.True(t, strings.HasPrefix(msg, "JSON validation error ("))
	assert.Contains(t, msg, "Values currencyFrom and currencyTo should not match")
	assert.Contains(t, msg, "Values validate rate, amountSell and amountBuy do not appear to match")
	assert.Empty(t, repo.created)
}

func TestConsumeMessage_FutureTimestamp(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	payload := validPayload()
	future := time.Now().Add(24 * time.Hour)
	payload["timePlaced"] = strings.ToUpper(future.Format(models.TimePlacedLayout))
	// Keep the amounts consistent so only the temporal rule fires.

	w := postJSON(r, marshal(t, payload), "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeMessage(t, w), "Value timePlaced is not valid")
}

func TestConsumeMessage_StoreFailure(t *testing.T) {
	repo := &stubRepo{err: errors.New("dial tcp: connection refused")}
	r := newRouter(repo)

	w := postJSON(r, marshal(t, validPayload()), "application/json")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Service Unavailable. Your request could not be processed at this time.", decodeMessage(t, w))
}

func TestConsumeMessage_MethodNotAllowed(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/trade/message/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Status code: 405", decodeMessage(t, w))
}

func TestConsumeMessage_EmptyBody(t *testing.T) {
	repo := &stubRepo{}
	r := newRouter(repo)

	w := postJSON(r, "", "application/json")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeMessage(t, w), "Invalid datetime provided")
}
