package handler

import (
	"net/http"

	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

type CuotasHandler struct{ svc service.CuotaService }

func NewCuotasHandler(svc service.CuotaService) *CuotasHandler { return &CuotasHandler{svc: svc} }

// Crear godoc
// @Summary      Registrar una cuota
// @Description  Sin numero_cuota se asigna el siguiente. Un numero repetido en la orden es conflicto.
// @Tags         cuotas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orden path string                true "Numero de orden"
// @Param        body  body dto.CrearCuotaRequest true "Cuota"
// @Success      201   {object} dto.PagoRegistradoResponse
// @Failure      409   {object} apierror.APIError
// @Router       /v1/ordenes/{orden}/cuotas [post]
func (h *CuotasHandler) Crear(c *gin.Context) {
	var req dto.CrearCuotaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), c.Param("orden"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary  Cuotas de una orden
// @Tags     cuotas
// @Produce  json
// @Security BearerAuth
// @Param    orden path  string true "Numero de orden"
// @Success  200   {array} dto.CuotaResponse
// @Router   /v1/ordenes/{orden}/cuotas [get]
func (h *CuotasHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Param("orden"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CuotasHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarCuotaRequest
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

func (h *CuotasHandler) Eliminar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Eliminar(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
