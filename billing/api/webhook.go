package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"companion-chat/backend/billing/models"
	"companion-chat/backend/billing/service"
	apperrors "companion-chat/backend/pkg/errors"
	"companion-chat/backend/pkg/logger"
)

const (
	signatureHeader  = "X-Billing-Signature"
	signatureMaxSkew = 5 * time.Minute
)

// Webhook event types mirrored from the payment provider.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

type webhookEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type subscriptionPayload struct {
	UserID           uint   `json:"user_id"`
	CustomerID       string `json:"customer_id"`
	SubscriptionID   string `json:"subscription_id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
}

// WebhookHandler receives subscription lifecycle events from the payment
// provider and mirrors them into the local subscription table.
type WebhookHandler struct {
	entitlements *service.EntitlementService
	secret       []byte
	now          func() time.Time
	log          *logger.Logger
}

func NewWebhookHandler(entitlements *service.EntitlementService, secret string, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		entitlements: entitlements,
		secret:       []byte(secret),
		now:          time.Now,
		log:          log.WithComponent("billing-webhook"),
	}
}

// RegisterRoutes mounts the webhook endpoint
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/billing/webhook", h.HandleWebhook)
}

// HandleWebhook verifies the event signature and applies the update.
// Unknown event types are acknowledged and ignored so the provider
// does not retry them.
func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "failed to read request body"))
		return
	}

	if err := h.verifySignature(c.GetHeader(signatureHeader), body); err != nil {
		h.log.Warn("webhook signature rejected", "error", err)
		c.Error(apperrors.NewError(http.StatusUnauthorized, apperrors.CodeInvalidSignature, "webhook signature verification failed"))
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "malformed webhook payload"))
		return
	}

	switch event.Type {
	case EventCheckoutCompleted, EventSubscriptionUpdated, EventSubscriptionDeleted:
	default:
		h.log.Debug("ignoring webhook event", "type", event.Type)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var payload subscriptionPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil || payload.UserID == 0 {
		c.Error(apperrors.NewBadRequestError(apperrors.CodeValidation, "malformed subscription payload"))
		return
	}

	sub := &models.Subscription{
		UserID:             payload.UserID,
		ProviderCustomerID: payload.CustomerID,
		ProviderSubID:      payload.SubscriptionID,
		Status:             payload.Status,
		CurrentPeriodEnd:   time.Unix(payload.CurrentPeriodEnd, 0),
	}

	switch event.Type {
	case EventCheckoutCompleted:
		sub.Status = models.StatusActive
	case EventSubscriptionDeleted:
		sub.Status = models.StatusCanceled
	}

	if err := h.entitlements.ApplyUpdate(c.Request.Context(), sub); err != nil {
		c.Error(apperrors.NewInternalServerError(apperrors.CodeStoreWrite, "failed to apply subscription update"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// verifySignature checks the "t=<unix>,v1=<hex>" header: v1 is the
// HMAC-SHA256 of "<t>.<body>" under the shared webhook secret.
func (h *WebhookHandler) verifySignature(header string, body []byte) error {
	if header == "" {
		return fmt.Errorf("missing signature header")
	}

	var timestamp int64
	var provided string
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %w", err)
			}
			timestamp = ts
		case "v1":
			provided = value
		}
	}
	if timestamp == 0 || provided == "" {
		return fmt.Errorf("incomplete signature header")
	}

	skew := h.now().Sub(time.Unix(timestamp, 0))
	if skew > signatureMaxSkew || skew < -signatureMaxSkew {
		return fmt.Errorf("timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, h.secret)
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
