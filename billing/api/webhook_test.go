package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion-chat/backend/billing/models"
	"companion-chat/backend/billing/repository"
	"companion-chat/backend/billing/service"
	apperrors "companion-chat/backend/pkg/errors"
	"companion-chat/backend/pkg/logger"
)

const testSecret = "whsec_test"

func sign(t *testing.T, secret string, ts int64, body string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newTestHandler(t *testing.T) (*WebhookHandler, repository.SubscriptionRepository) {
	t.Helper()
	repo := newMemorySubscriptionRepo()
	log := logger.New(logger.Config{Level: "error"})
	entitlements := service.NewEntitlementService(repo, nil, time.Minute, log)
	return NewWebhookHandler(entitlements, testSecret, log), repo
}

func performWebhook(h *WebhookHandler, body, signature string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(apperrors.ErrorHandler())
	h.RegisterRoutes(router.Group("/api"))

	req := httptest.NewRequest(http.MethodPost, "/api/billing/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestWebhookCheckoutCompleted(t *testing.T) {
	h, repo := newTestHandler(t)
	body := `{"type":"checkout.session.completed","data":{"user_id":7,"customer_id":"cus_1","subscription_id":"sub_1","status":"incomplete","current_period_end":1893456000}}`
	ts := time.Now().Unix()

	w := performWebhook(h, body, sign(t, testSecret, ts, body))
	require.Equal(t, http.StatusOK, w.Code)

	sub, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, sub.Status)
	assert.Equal(t, "sub_1", sub.ProviderSubID)
}

func TestWebhookSubscriptionDeleted(t *testing.T) {
	h, repo := newTestHandler(t)
	require.NoError(t, repo.Upsert(context.Background(), &models.Subscription{UserID: 7, Status: models.StatusActive}))

	body := `{"type":"customer.subscription.deleted","data":{"user_id":7,"status":"active"}}`
	w := performWebhook(h, body, sign(t, testSecret, time.Now().Unix(), body))
	require.Equal(t, http.StatusOK, w.Code)

	sub, err := repo.GetByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCanceled, sub.Status)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h, repo := newTestHandler(t)
	body := `{"type":"checkout.session.completed","data":{"user_id":7}}`

	w := performWebhook(h, body, sign(t, "wrong-secret", time.Now().Unix(), body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, err := repo.GetByUserID(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrSubscriptionNotFound)
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	h, _ := newTestHandler(t)
	w := performWebhook(h, `{"type":"checkout.session.completed","data":{"user_id":7}}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookRejectsStaleTimestamp(t *testing.T) {
	h, _ := newTestHandler(t)
	body := `{"type":"checkout.session.completed","data":{"user_id":7}}`
	stale := time.Now().Add(-time.Hour).Unix()

	w := performWebhook(h, body, sign(t, testSecret, stale, body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	h, repo := newTestHandler(t)
	body := `{"type":"invoice.paid","data":{"user_id":7}}`

	w := performWebhook(h, body, sign(t, testSecret, time.Now().Unix(), body))
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := repo.GetByUserID(context.Background(), 7)
	assert.ErrorIs(t, err, repository.ErrSubscriptionNotFound)
}
