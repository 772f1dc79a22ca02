package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/talentum-hr/payops-backend-go/internal/domain/incentive"
	"github.com/talentum-hr/payops-backend-go/internal/handler/http/response"
	"github.com/talentum-hr/payops-backend-go/internal/pkg/webhook"
	incentiveservice "github.com/talentum-hr/payops-backend-go/internal/service/incentive"
)

type WebhookHandler interface {
	SalesClosed(w http.ResponseWriter, r *http.Request)
	ReturnsRemakes(w http.ResponseWriter, r *http.Request)
}

type WebhookHandlerImpl struct {
	verifier  *webhook.Verifier
	clawbacks *incentiveservice.ClawbackService
}

func NewWebhookHandler(verifier *webhook.Verifier, clawbacks *incentiveservice.ClawbackService) WebhookHandler {
	return &WebhookHandlerImpl{
		verifier:  verifier,
		clawbacks: clawbacks,
	}
}

// verifiedBody authenticates the delivery and returns the raw payload.
// The POS sends the shared token on every call and an HMAC-SHA256
// signature over the body when configured to sign.
func (h *WebhookHandlerImpl) verifiedBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if !h.verifier.VerifyToken(r.Header.Get("X-Callback-Token")) {
		response.Unauthorized(w, "Invalid webhook token")
		return nil, false
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return nil, false
	}

	if signature := r.Header.Get("X-Signature"); signature != "" {
		if !h.verifier.VerifyHMACSignature(body, signature) {
			response.Unauthorized(w, "Invalid webhook signature")
			return nil, false
		}
	}
	return body, true
}

// SalesClosed handles POST /webhooks/sales-closed. Delivery is
// at-least-once; a redelivered invoice acknowledges without recording.
func (h *WebhookHandlerImpl) SalesClosed(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifiedBody(w, r)
	if !ok {
		return
	}

	var payload incentive.SalesClosedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	created, err := h.clawbacks.IngestSalesClosed(r.Context(), payload)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]bool{"created": created})
}

// ReturnsRemakes handles POST /webhooks/returns-remakes
func (h *WebhookHandlerImpl) ReturnsRemakes(w http.ResponseWriter, r *http.Request) {
	body, ok := h.verifiedBody(w, r)
	if !ok {
		return
	}

	var payload incentive.ReturnsRemakesPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	created, err := h.clawbacks.IngestReturn(r.Context(), payload)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]bool{"created": created})
}
