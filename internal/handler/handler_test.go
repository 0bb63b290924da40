package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Fakes ─────────────────────────────────────────────────────────────────────
// Each fake embeds the service interface; calling a method a test did not
// stub panics, which fails the test loudly.

type fakeVentas struct {
	service.VentaService
	crear         func(dto.CrearVentaRequest) (*dto.OrdenResumenResponse, error)
	cambiarEstado func(uuid.UUID, dto.CambiarEstadoRequest) (*dto.CambiarEstadoResponse, error)
	resumenPDF    func(string) ([]byte, error)
}

func (f *fakeVentas) Crear(_ context.Context, req dto.CrearVentaRequest) (*dto.OrdenResumenResponse, error) {
	return f.crear(req)
}

func (f *fakeVentas) CambiarEstado(_ context.Context, id uuid.UUID, req dto.CambiarEstadoRequest) (*dto.CambiarEstadoResponse, error) {
	return f.cambiarEstado(id, req)
}

func (f *fakeVentas) ResumenPDF(_ context.Context, orden string) ([]byte, error) {
	return f.resumenPDF(orden)
}

type fakeIngesta struct {
	service.IngestaService
	tienda func(dto.TiendaWebhookRequest) (*dto.WebhookResponse, error)
}

func (f *fakeIngesta) RecibirTienda(_ context.Context, req dto.TiendaWebhookRequest) (*dto.WebhookResponse, error) {
	return f.tienda(req)
}

type fakeImportacion struct {
	service.ImportacionService
	modo      string
	contenido []byte
}

func (f *fakeImportacion) ImportarVentas(_ context.Context, r io.Reader, modo string) (*dto.ImportacionResponse, error) {
	f.modo = modo
	f.contenido, _ = io.ReadAll(r)
	return &dto.ImportacionResponse{Entidad: "ventas", Modo: modo, Insertadas: 3}, nil
}

func (f *fakeImportacion) ExportarEgresos(_ context.Context, _ dto.EgresoFilter) ([]byte, error) {
	return []byte("PK"), nil
}

type fakeAuth struct {
	service.AuthService
	err error
}

func (f *fakeAuth) Login(_ context.Context, _ dto.LoginRequest) (*dto.LoginResponse, error) {
	return nil, f.err
}

type fakeTareas struct {
	service.TareaService
	tarea string
	limit int
}

func (f *fakeTareas) Historial(_ context.Context, tarea string, limit int) ([]dto.EjecucionResponse, error) {
	f.tarea, f.limit = tarea, limit
	return []dto.EjecucionResponse{}, nil
}

func (f *fakeTareas) Ejecutar(_ context.Context, nombre string) (*dto.EjecucionResponse, error) {
	return nil, apierror.NoEncontrado("tarea", nombre)
}

type fakeSeguimiento struct {
	service.SeguimientoService
	llamadas int
}

func (f *fakeSeguimiento) Calcular(_ context.Context, req dto.CalcularSeguimientoRequest) (*dto.CalcularSeguimientoResponse, error) {
	f.llamadas++
	return &dto.CalcularSeguimientoResponse{Dias: *req.Dias}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func serve(r *gin.Engine, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func ordenValida() map[string]any {
	return map[string]any{
		"canal":          "Manual",
		"marca":          "BoxiSleep",
		"nombre_cliente": "Maria Perez",
		"lineas":         []map[string]any{{"producto": "Colchon Queen", "cantidad": 1, "precio_unitario_usd": "600"}},
	}
}

// ── Ventas ────────────────────────────────────────────────────────────────────

func TestVentasCrear_Creada(t *testing.T) {
	h := NewVentasHandler(&fakeVentas{crear: func(req dto.CrearVentaRequest) (*dto.OrdenResumenResponse, error) {
		assert.Equal(t, "Maria Perez", req.NombreCliente)
		return &dto.OrdenResumenResponse{Orden: "MAN-000001"}, nil
	}})
	r := gin.New()
	r.POST("/v1/ventas", h.Crear)

	w := serve(r, http.MethodPost, "/v1/ventas", jsonBody(t, ordenValida()), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "MAN-000001")
}

func TestVentasCrear_ValidacionDeTags(t *testing.T) {
	h := NewVentasHandler(&fakeVentas{})
	r := gin.New()
	r.POST("/v1/ventas", h.Crear)

	body := ordenValida()
	body["marca"] = "Sealy"
	body["lineas"] = []map[string]any{}
	w := serve(r, http.MethodPost, "/v1/ventas", jsonBody(t, body), "application/json")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp apierror.ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "oneof", resp.Fields["Marca"])
	assert.Contains(t, resp.Fields, "Lineas")
}

func TestVentasCrear_JSONInvalido(t *testing.T) {
	h := NewVentasHandler(&fakeVentas{})
	r := gin.New()
	r.POST("/v1/ventas", h.Crear)

	w := serve(r, http.MethodPost, "/v1/ventas", bytes.NewBufferString("{"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVentasCrear_ErroresDeServicio(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"conflicto", apierror.ErrConflicto, http.StatusConflict},
		{"validacion", apierror.Validacion("telefono", "numero invalido"), http.StatusUnprocessableEntity},
		{"interno", io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewVentasHandler(&fakeVentas{crear: func(dto.CrearVentaRequest) (*dto.OrdenResumenResponse, error) {
				return nil, tc.err
			}})
			r := gin.New()
			r.POST("/v1/ventas", h.Crear)

			w := serve(r, http.MethodPost, "/v1/ventas", jsonBody(t, ordenValida()), "application/json")
			assert.Equal(t, tc.status, w.Code)
			assert.NotContains(t, w.Body.String(), "unexpected EOF")
		})
	}
}

func TestVentasCambiarEstado(t *testing.T) {
	id := uuid.New()
	h := NewVentasHandler(&fakeVentas{cambiarEstado: func(got uuid.UUID, req dto.CambiarEstadoRequest) (*dto.CambiarEstadoResponse, error) {
		assert.Equal(t, id, got)
		if req.Estado == "Pendiente" {
			return nil, apierror.Transicion("Entregado", "Pendiente")
		}
		return &dto.CambiarEstadoResponse{Advertencias: []string{"sin direccion de despacho"}}, nil
	}})
	r := gin.New()
	r.PATCH("/v1/ventas/:id/estado", h.CambiarEstado)

	w := serve(r, http.MethodPatch, "/v1/ventas/"+id.String()+"/estado", jsonBody(t, map[string]any{"estado": "A despachar"}), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sin direccion de despacho")

	w = serve(r, http.MethodPatch, "/v1/ventas/"+id.String()+"/estado", jsonBody(t, map[string]any{"estado": "Pendiente"}), "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = serve(r, http.MethodPatch, "/v1/ventas/no-es-uuid/estado", jsonBody(t, map[string]any{"estado": "Pendiente"}), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResumenPDF(t *testing.T) {
	h := NewVentasHandler(&fakeVentas{resumenPDF: func(orden string) ([]byte, error) {
		if orden == "NOPE" {
			return nil, apierror.NoEncontrado("orden", orden)
		}
		return []byte("%PDF-1.3"), nil
	}})
	r := gin.New()
	r.GET("/v1/ordenes/:orden/pdf", h.ResumenPDF)

	w := serve(r, http.MethodGet, "/v1/ordenes/SH-1/pdf", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "orden-SH-1.pdf")

	w = serve(r, http.MethodGet, "/v1/ordenes/NOPE/pdf", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Webhooks ──────────────────────────────────────────────────────────────────

func TestWebhookTienda_CreadaYDuplicada(t *testing.T) {
	vistos := map[string]bool{}
	h := NewWebhooksHandler(&fakeIngesta{tienda: func(req dto.TiendaWebhookRequest) (*dto.WebhookResponse, error) {
		dup := vistos[req.ExternalID]
		vistos[req.ExternalID] = true
		return &dto.WebhookResponse{Orden: req.Orden, Duplicada: dup}, nil
	}})
	r := gin.New()
	r.POST("/v1/webhooks/tienda", h.Tienda)

	linea := map[string]any{
		"external_id":         "gid-1",
		"orden":               "SH-1",
		"marca":               "Mompox",
		"nombre_cliente":      "Rosa",
		"producto":            "Colchon",
		"cantidad":            1,
		"precio_unitario_usd": "500",
	}
	w := serve(r, http.MethodPost, "/v1/webhooks/tienda", jsonBody(t, linea), "application/json")
	assert.Equal(t, http.StatusCreated, w.Code)
	w = serve(r, http.MethodPost, "/v1/webhooks/tienda", jsonBody(t, linea), "application/json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"duplicada":true`)
}

// ── Importaciones ─────────────────────────────────────────────────────────────

func TestImportarVentas_Multipart(t *testing.T) {
	fake := &fakeImportacion{}
	h := NewImportacionesHandler(fake)
	r := gin.New()
	r.POST("/v1/importaciones/ventas", h.ImportarVentas)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("archivo", "ventas.xlsx")
	require.NoError(t, err)
	_, _ = part.Write([]byte("contenido"))
	require.NoError(t, mw.Close())

	w := serve(r, http.MethodPost, "/v1/importaciones/ventas?modo=reemplazo", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "reemplazo", fake.modo)
	assert.Equal(t, "contenido", string(fake.contenido))
}

func TestImportarVentas_SinArchivo(t *testing.T) {
	h := NewImportacionesHandler(&fakeImportacion{})
	r := gin.New()
	r.POST("/v1/importaciones/ventas", h.ImportarVentas)

	w := serve(r, http.MethodPost, "/v1/importaciones/ventas", bytes.NewBufferString("{}"), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportarEgresos_Adjunto(t *testing.T) {
	h := NewImportacionesHandler(&fakeImportacion{})
	r := gin.New()
	r.GET("/v1/egresos/exportar", h.ExportarEgresos)

	w := serve(r, http.MethodGet, "/v1/egresos/exportar", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mimeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="egresos-`)
}

// ── Auth & tareas ─────────────────────────────────────────────────────────────

func TestLogin_CredencialesSon401(t *testing.T) {
	h := NewAuthHandler(&fakeAuth{err: service.ErrCredenciales})
	r := gin.New()
	r.POST("/v1/auth/login", h.Login)

	w := serve(r, http.MethodPost, "/v1/auth/login", jsonBody(t, map[string]string{"username": "carla", "password": "mala-clave"}), "application/json")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTareas_HistorialYDesconocida(t *testing.T) {
	fake := &fakeTareas{}
	h := NewTareasHandler(fake)
	r := gin.New()
	r.GET("/v1/tareas/ejecuciones", h.Historial)
	r.POST("/v1/tareas/:tarea/ejecutar", h.Ejecutar)

	w := serve(r, http.MethodGet, "/v1/tareas/ejecuciones?tarea=cashea&limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cashea", fake.tarea)
	assert.Equal(t, 5, fake.limit)

	w = serve(r, http.MethodPost, "/v1/tareas/nada/ejecutar", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ── Seguimiento ───────────────────────────────────────────────────────────────

func TestSeguimientoCalcular_DiasFueraDeRango(t *testing.T) {
	fake := &fakeSeguimiento{}
	h := NewSeguimientoHandler(fake, nil)
	r := gin.New()
	r.POST("/v1/seguimiento/calcular", h.Calcular)

	for _, dias := range [][3]int{{-1, 4, 7}, {2, 4, 400}} {
		w := serve(r, http.MethodPost, "/v1/seguimiento/calcular",
			jsonBody(t, map[string]any{"base": "2026-03-02", "dias": dias}), "application/json")
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, "dias %v", dias)
	}
	assert.Zero(t, fake.llamadas)

	w := serve(r, http.MethodPost, "/v1/seguimiento/calcular",
		jsonBody(t, map[string]any{"base": "2026-03-02", "dias": [3]int{0, 4, 365}}), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, fake.llamadas)
}
