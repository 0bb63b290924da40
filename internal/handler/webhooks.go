package handler

import (
	"net/http"

	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

// WebhooksHandler receives storefront and Treble callbacks. Both routes sit
// behind the shared-secret middleware, not JWT.
type WebhooksHandler struct{ svc service.IngestaService }

func NewWebhooksHandler(svc service.IngestaService) *WebhooksHandler {
	return &WebhooksHandler{svc: svc}
}

// Tienda godoc
// @Summary      Linea de pedido de la tienda online
// @Description  Una linea por llamada. Idempotente por external_id: un reenvio responde 200 con duplicada=true.
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Token header string                   true "Secreto compartido"
// @Param        body            body   dto.TiendaWebhookRequest true "Linea"
// @Success      201             {object} dto.WebhookResponse
// @Success      200             {object} dto.WebhookResponse
// @Failure      401             {object} apierror.APIError
// @Router       /v1/webhooks/tienda [post]
func (h *WebhooksHandler) Tienda(c *gin.Context) {
	var req dto.TiendaWebhookRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecibirTienda(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if resp.Duplicada {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// Treble godoc
// @Summary      Correccion de direccion desde Treble
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        X-Webhook-Token header string                   true "Secreto compartido"
// @Param        body            body   dto.TrebleWebhookRequest true "Direccion"
// @Success      200             {object} dto.WebhookResponse
// @Failure      404             {object} apierror.APIError
// @Router       /v1/webhooks/treble [post]
func (h *WebhooksHandler) Treble(c *gin.Context) {
	var req dto.TrebleWebhookRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecibirTreble(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
