package handler

import (
	"net/http"

	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

type EgresosHandler struct{ svc service.EgresoService }

func NewEgresosHandler(svc service.EgresoService) *EgresosHandler { return &EgresosHandler{svc: svc} }

// Crear godoc
// @Summary      Registrar un egreso
// @Description  Con es_recurrente abre una serie; las ocurrencias siguientes las genera la tarea diaria.
// @Tags         egresos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearEgresoRequest true "Egreso"
// @Success      201  {object} dto.EgresoResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/egresos [post]
func (h *EgresosHandler) Crear(c *gin.Context) {
	var req dto.CrearEgresoRequest
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

// Listar godoc
// @Summary  Listar egresos
// @Tags     egresos
// @Produce  json
// @Security BearerAuth
// @Param    desde  query string false "Fecha compromiso desde"
// @Param    hasta  query string false "Fecha compromiso hasta"
// @Param    estado query string false "registrado | aprobado | pagado | anulado"
// @Param    serie  query string false "UUID de la serie recurrente"
// @Success  200    {object} dto.EgresoListResponse
// @Router   /v1/egresos [get]
func (h *EgresosHandler) Listar(c *gin.Context) {
	var filter dto.EgresoFilter
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

func (h *EgresosHandler) Obtener(c *gin.Context) {
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

func (h *EgresosHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarEgresoRequest
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

// CambiarEstado godoc
// @Summary  Cambiar estado de un egreso
// @Tags     egresos
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path string                         true "UUID del egreso"
// @Param    body body dto.CambiarEstadoEgresoRequest true "Estado destino"
// @Success  200  {object} dto.EgresoResponse
// @Failure  422  {object} apierror.APIError
// @Router   /v1/egresos/{id}/estado [patch]
func (h *EgresosHandler) CambiarEstado(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarEstadoEgresoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CambiarEstado(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *EgresosHandler) Eliminar(c *gin.Context) {
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
