package handler

import (
	"net/http"

	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

type ProspectosHandler struct{ svc service.ProspectoService }

func NewProspectosHandler(svc service.ProspectoService) *ProspectosHandler {
	return &ProspectosHandler{svc: svc}
}

// Crear godoc
// @Summary      Registrar un prospecto
// @Description  Las fechas de seguimiento vacias se calculan desde la fecha de creacion.
// @Tags         prospectos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearProspectoRequest true "Prospecto"
// @Success      201  {object} dto.ProspectoResponse
// @Router       /v1/prospectos [post]
func (h *ProspectosHandler) Crear(c *gin.Context) {
	var req dto.CrearProspectoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ProspectosHandler) Listar(c *gin.Context) {
	var filter dto.ProspectoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProspectosHandler) Obtener(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProspectosHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProspectoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProspectosHandler) Eliminar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
