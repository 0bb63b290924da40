package handler

import (
	"mime/multipart"
	"net/http"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	maxArchivo = 10 << 20
	mimeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ImportacionesHandler struct{ svc service.ImportacionService }

func NewImportacionesHandler(svc service.ImportacionService) *ImportacionesHandler {
	return &ImportacionesHandler{svc: svc}
}

// ImportarVentas godoc
// @Summary      Importar lineas de venta desde .xlsx
// @Description  Valida todas las filas antes de escribir. aditivo omite ordenes existentes; reemplazo las sustituye. Guarda un punto de deshacer.
// @Tags         importaciones
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        archivo formData file   true  "Libro .xlsx"
// @Param        modo    query    string false "aditivo (default) | reemplazo"
// @Success      201     {object} dto.ImportacionResponse
// @Failure      422     {object} apierror.ValidationError
// @Router       /v1/importaciones/ventas [post]
func (h *ImportacionesHandler) ImportarVentas(c *gin.Context) {
	archivo, ok := abrirArchivo(c)
	if !ok {
		return
	}
	defer archivo.Close()

	resp, err := h.svc.ImportarVentas(c.Request.Context(), archivo, c.Query("modo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ImportarEgresos godoc
// @Summary  Importar egresos desde .xlsx
// @Tags     importaciones
// @Accept   multipart/form-data
// @Produce  json
// @Security BearerAuth
// @Param    archivo formData file true "Libro .xlsx"
// @Success  201     {object} dto.ImportacionResponse
// @Router   /v1/importaciones/egresos [post]
func (h *ImportacionesHandler) ImportarEgresos(c *gin.Context) {
	archivo, ok := abrirArchivo(c)
	if !ok {
		return
	}
	defer archivo.Close()

	resp, err := h.svc.ImportarEgresos(c.Request.Context(), archivo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Deshacer godoc
// @Summary      Deshacer la ultima importacion
// @Description  Un solo nivel: borra lo insertado y restaura lo reemplazado.
// @Tags         importaciones
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DeshacerResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/importaciones/deshacer [post]
func (h *ImportacionesHandler) Deshacer(c *gin.Context) {
	resp, err := h.svc.Deshacer(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ExportarVentas godoc
// @Summary  Exportar lineas de venta a .xlsx
// @Tags     importaciones
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success  200
// @Router   /v1/ventas/exportar [get]
func (h *ImportacionesHandler) ExportarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	raw, err := h.svc.ExportarVentas(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	enviarXLSX(c, "ventas", raw)
}

// ExportarEgresos godoc
// @Summary  Exportar egresos a .xlsx
// @Tags     importaciones
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success  200
// @Router   /v1/egresos/exportar [get]
func (h *ImportacionesHandler) ExportarEgresos(c *gin.Context) {
	var filter dto.EgresoFilter
	if !bindQuery(c, &filter) {
		return
	}
	raw, err := h.svc.ExportarEgresos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	enviarXLSX(c, "egresos", raw)
}

func abrirArchivo(c *gin.Context) (multipart.File, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxArchivo)
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("falta el archivo .xlsx en el campo 'archivo'"))
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("no se pudo leer el archivo"))
		return nil, false
	}
	return f, true
}

func enviarXLSX(c *gin.Context, nombre string, raw []byte) {
	archivo := nombre + "-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+archivo+`"`)
	c.Data(http.StatusOK, mimeXLSX, raw)
}
