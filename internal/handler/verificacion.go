package handler

import (
	"net/http"

	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

type VerificacionHandler struct{ svc service.VerificacionService }

func NewVerificacionHandler(svc service.VerificacionService) *VerificacionHandler {
	return &VerificacionHandler{svc: svc}
}

// Listar godoc
// @Summary      Pagos por conciliar
// @Description  Une pago inicial, flete, cuotas y egresos en una sola vista.
// @Tags         verificacion
// @Produce      json
// @Security     BearerAuth
// @Param        banco     query string false "Banco"
// @Param        tipo_pago query string false "pago_inicial | flete | cuota | egreso"
// @Param        estado    query string false "Por verificar | Verificado | Rechazado"
// @Param        orden     query string false "Numero de orden"
// @Param        desde     query string false "YYYY-MM-DD"
// @Param        hasta     query string false "YYYY-MM-DD"
// @Success      200       {object} dto.VerificacionListResponse
// @Router       /v1/verificacion [get]
func (h *VerificacionHandler) Listar(c *gin.Context) {
	var filter dto.VerificacionFilter
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

// Actualizar godoc
// @Summary      Verificar o rechazar un pago
// @Description  Solo se admite Por verificar -> Verificado | Rechazado.
// @Tags         verificacion
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tipo path string                            true "pago_inicial | flete | cuota | egreso"
// @Param        id   path string                            true "UUID del registro"
// @Param        body body dto.ActualizarVerificacionRequest true "Nuevo estado"
// @Success      200  {object} dto.VerificacionItem
// @Failure      422  {object} apierror.APIError
// @Router       /v1/verificacion/{tipo}/{id} [patch]
func (h *VerificacionHandler) Actualizar(c *gin.Context) {
	var req dto.ActualizarVerificacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), c.Param("tipo"), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
