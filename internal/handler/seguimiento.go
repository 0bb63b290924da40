package handler

import (
	"net/http"

	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

type SeguimientoHandler struct {
	svc    service.SeguimientoService
	config service.ConfiguracionService
}

func NewSeguimientoHandler(svc service.SeguimientoService, config service.ConfiguracionService) *SeguimientoHandler {
	return &SeguimientoHandler{svc: svc, config: config}
}

// Calcular godoc
// @Summary      Calcular fechas de seguimiento
// @Description  Sin estado: el cliente reenvia las fechas y las marcas de fijada de la sesion.
// @Tags         seguimiento
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CalcularSeguimientoRequest true "Base, dias y fases"
// @Success      200  {object} dto.CalcularSeguimientoResponse
// @Router       /v1/seguimiento/calcular [post]
func (h *SeguimientoHandler) Calcular(c *gin.Context) {
	var req dto.CalcularSeguimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Calcular(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Configuracion ────────────────────────────────────────────────────────────

func (h *SeguimientoHandler) ObtenerConfiguracion(c *gin.Context) {
	resp, err := h.config.ObtenerSeguimiento(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GuardarConfiguracion godoc
// @Summary      Guardar dias de seguimiento y correo general
// @Description  Solo afecta calculos futuros; las fechas ya guardadas no se recalculan.
// @Tags         configuracion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ConfiguracionSeguimientoRequest true "Configuracion"
// @Success      200  {object} dto.ConfiguracionSeguimientoResponse
// @Router       /v1/configuracion/seguimiento [put]
func (h *SeguimientoHandler) GuardarConfiguracion(c *gin.Context) {
	var req dto.ConfiguracionSeguimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.config.GuardarSeguimiento(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SeguimientoHandler) ObtenerCashea(c *gin.Context) {
	resp, err := h.config.ObtenerCashea(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GuardarCashea godoc
// @Summary      Configurar la sincronizacion con Cashea
// @Description  Reprograma la tarea periodica con el nuevo intervalo.
// @Tags         configuracion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ConfiguracionCasheaRequest true "Configuracion"
// @Success      200  {object} dto.ConfiguracionCasheaResponse
// @Router       /v1/configuracion/cashea [put]
func (h *SeguimientoHandler) GuardarCashea(c *gin.Context) {
	var req dto.ConfiguracionCasheaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.config.GuardarCashea(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
