package handler

import (
	"net/http"
	"strconv"

	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

type CorreosHandler struct{ svc service.CorreoService }

func NewCorreosHandler(svc service.CorreoService) *CorreosHandler { return &CorreosHandler{svc: svc} }

// Fallidos godoc
// @Summary      Correos que agotaron sus reintentos
// @Tags         correos
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Maximo de filas (default 50)"
// @Success      200   {array} dto.CorreoFallidoResponse
// @Router       /v1/correos/fallidos [get]
func (h *CorreosHandler) Fallidos(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.Fallidos(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Reencolar godoc
// @Summary  Reenviar correos fallidos
// @Tags     correos
// @Produce  json
// @Security BearerAuth
// @Param    limit query int false "Maximo a reencolar (default 500)"
// @Success  200   {object} dto.ReencolarResponse
// @Router   /v1/correos/fallidos/reencolar [post]
func (h *CorreosHandler) Reencolar(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	resp, err := h.svc.Reencolar(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
