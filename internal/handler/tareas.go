package handler

import (
	"net/http"
	"strconv"

	"colchones/internal/service"

	"github.com/gin-gonic/gin"
)

type TareasHandler struct{ svc service.TareaService }

func NewTareasHandler(svc service.TareaService) *TareasHandler { return &TareasHandler{svc: svc} }

// Ejecutar godoc
// @Summary      Ejecutar una tarea programada ahora
// @Description  Respeta el candado distribuido: si ya hay una corrida en curso queda como omitida.
// @Tags         tareas
// @Produce      json
// @Security     BearerAuth
// @Param        tarea path string true "cashea | recordatorios | recurrencias"
// @Success      200   {object} dto.EjecucionResponse
// @Failure      404   {object} apierror.APIError
// @Router       /v1/tareas/{tarea}/ejecutar [post]
func (h *TareasHandler) Ejecutar(c *gin.Context) {
	resp, err := h.svc.Ejecutar(c.Request.Context(), c.Param("tarea"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary  Historial de corridas
// @Tags     tareas
// @Produce  json
// @Security BearerAuth
// @Param    tarea query string false "Filtrar por tarea"
// @Param    limit query int    false "Maximo de filas (default 50)"
// @Success  200   {array} dto.EjecucionResponse
// @Router   /v1/tareas/ejecuciones [get]
func (h *TareasHandler) Historial(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.Historial(c.Request.Context(), c.Query("tarea"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
