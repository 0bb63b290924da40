package handler

import (
	"net/http"

	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Crear godoc
// @Summary      Registrar una orden manual
// @Description  Crea todas las lineas de la orden en una transaccion. Sin numero de orden se genera MAN-NNNNNN.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearVentaRequest true "Orden con sus lineas"
// @Success      201  {object} dto.OrdenResumenResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Crear(c *gin.Context) {
	var req dto.CrearVentaRequest
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
// @Summary      Listar lineas de venta
// @Description  Lista paginada. Por defecto oculta Entregado, Devuelto, Cancelada y Perdida.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        orden            query string false "Numero de orden"
// @Param        canal            query string false "Cashea | Tienda | Manual"
// @Param        marca            query string false "BoxiSleep | Mompox"
// @Param        estado           query string false "Estado de entrega"
// @Param        asesor_id        query string false "UUID del asesor"
// @Param        desde            query string false "YYYY-MM-DD"
// @Param        hasta            query string false "YYYY-MM-DD"
// @Param        q                query string false "Cliente, cedula o producto"
// @Param        incluir_cerradas query bool   false "Incluir estados terminales"
// @Param        page             query int    false "Pagina (default 1)"
// @Param        limit            query int    false "Registros por pagina (default 50)"
// @Success      200 {object} dto.VentaListResponse
// @Router       /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
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

// Obtener godoc
// @Summary  Obtener una linea de venta
// @Tags     ventas
// @Produce  json
// @Security BearerAuth
// @Param    id  path     string true "UUID de la linea"
// @Success  200 {object} dto.VentaResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/ventas/{id} [get]
func (h *VentasHandler) Obtener(c *gin.Context) {
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

// Actualizar godoc
// @Summary      Actualizar una linea de venta
// @Description  Las fechas de seguimiento guardadas quedan fijas; las vacias se recalculan en cascada.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                     true "UUID de la linea"
// @Param        body body dto.ActualizarVentaRequest true "Campos a modificar"
// @Success      200  {object} dto.VentaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ventas/{id} [put]
func (h *VentasHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarVentaRequest
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

// Eliminar godoc
// @Summary  Eliminar una linea de venta
// @Tags     ventas
// @Security BearerAuth
// @Param    id path string true "UUID de la linea"
// @Success  204
// @Failure  404 {object} apierror.APIError
// @Router   /v1/ventas/{id} [delete]
func (h *VentasHandler) Eliminar(c *gin.Context) {
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

// CambiarEstado godoc
// @Summary      Cambiar estado de entrega
// @Description  Aplica la maquina de estados. Cancelada y Devuelto exigen confirmar=true. Devuelve advertencias no bloqueantes.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "UUID de la linea"
// @Param        body body dto.CambiarEstadoRequest true "Estado destino"
// @Success      200  {object} dto.CambiarEstadoResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas/{id}/estado [patch]
func (h *VentasHandler) CambiarEstado(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CambiarEstadoRequest
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

// ── Ordenes ──────────────────────────────────────────────────────────────────
// Order-level endpoints are keyed by the order number, not a line ID.

// Resumen godoc
// @Summary  Resumen de pagos de una orden
// @Tags     ordenes
// @Produce  json
// @Security BearerAuth
// @Param    orden path     string true "Numero de orden"
// @Success  200   {object} dto.OrdenResumenResponse
// @Failure  404   {object} apierror.APIError
// @Router   /v1/ordenes/{orden}/resumen [get]
func (h *VentasHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.ResumenOrden(c.Request.Context(), c.Param("orden"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResumenPDF godoc
// @Summary  Resumen de la orden en PDF
// @Tags     ordenes
// @Produce  application/pdf
// @Security BearerAuth
// @Param    orden path string true "Numero de orden"
// @Success  200
// @Failure  404 {object} apierror.APIError
// @Router   /v1/ordenes/{orden}/pdf [get]
func (h *VentasHandler) ResumenPDF(c *gin.Context) {
	orden := c.Param("orden")
	pdf, err := h.svc.ResumenPDF(c.Request.Context(), orden)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="orden-`+orden+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// PagoInicial godoc
// @Summary      Registrar o reescribir el pago inicial
// @Description  Se guarda en la linea principal. Un monto nuevo reabre la verificacion. Puede despachar la orden.
// @Tags         ordenes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orden path string          true "Numero de orden"
// @Param        body  body dto.PagoRequest true "Pago"
// @Success      200   {object} dto.PagoRegistradoResponse
// @Router       /v1/ordenes/{orden}/pago-inicial [put]
func (h *VentasHandler) PagoInicial(c *gin.Context) {
	var req dto.PagoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarPagoInicial(c.Request.Context(), c.Param("orden"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Flete godoc
// @Summary  Registrar el flete de la orden
// @Tags     ordenes
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    orden path string           true "Numero de orden"
// @Param    body  body dto.FleteRequest true "Flete"
// @Success  200   {object} dto.PagoRegistradoResponse
// @Router   /v1/ordenes/{orden}/flete [put]
func (h *VentasHandler) Flete(c *gin.Context) {
	var req dto.FleteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarFlete(c.Request.Context(), c.Param("orden"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
