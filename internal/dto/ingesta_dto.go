package dto

import "github.com/shopspring/decimal"

// TiendaWebhookRequest is one order line pushed by the storefront. Lines of a
// multi-line order arrive as repeated calls sharing Orden.
type TiendaWebhookRequest struct {
	ExternalID               string          `json:"external_id"    validate:"required,max=80"`
	Orden                    string          `json:"orden"          validate:"required,max=40"`
	Canal                    string          `json:"canal"          validate:"omitempty,oneof=Shopify Tienda"`
	Marca                    string          `json:"marca"          validate:"required,oneof=BoxiSleep Mompox"`
	Fecha                    string          `json:"fecha"          validate:"omitempty,datetime=2006-01-02"`
	NombreCliente            string          `json:"nombre_cliente" validate:"required,max=150"`
	Cedula                   string          `json:"cedula"         validate:"max=20"`
	Telefono                 string          `json:"telefono"       validate:"max=30"`
	EmailCliente             string          `json:"email_cliente"  validate:"omitempty,email"`
	Producto                 string          `json:"producto"       validate:"required,max=200"`
	SKU                      string          `json:"sku"            validate:"max=60"`
	Cantidad                 int             `json:"cantidad"       validate:"required,min=1"`
	PrecioUnitarioUsd        decimal.Decimal `json:"precio_unitario_usd" validate:"min=0"`
	Facturacion              DireccionDTO    `json:"facturacion"`
	Despacho                 DireccionDTO    `json:"despacho"`
	DespachoIgualFacturacion bool            `json:"despacho_igual_facturacion"`
	PagoInicial              *PagoRequest    `json:"pago_inicial"`
}

// TrebleWebhookRequest corrects the shipping address of every line of Orden.
type TrebleWebhookRequest struct {
	Orden    string       `json:"orden"    validate:"required,max=40"`
	Despacho DireccionDTO `json:"despacho" validate:"required"`
	Telefono string       `json:"telefono" validate:"max=30"`
}

type WebhookResponse struct {
	ID        string `json:"id,omitempty"`
	Orden     string `json:"orden"`
	Duplicada bool   `json:"duplicada"`
	Lineas    int    `json:"lineas,omitempty"`
}

// ─── Spreadsheet import ──────────────────────────────────────────────────────

type ImportacionResponse struct {
	SnapshotID string   `json:"snapshot_id"`
	Entidad    string   `json:"entidad"`
	Modo       string   `json:"modo"`
	Insertadas int      `json:"insertadas"`
	Eliminadas int      `json:"eliminadas"`
	Duplicadas int      `json:"duplicadas"`
	Ordenes    []string `json:"ordenes_duplicadas,omitempty"`
}

type DeshacerResponse struct {
	SnapshotID  string `json:"snapshot_id"`
	Entidad     string `json:"entidad"`
	Eliminadas  int    `json:"eliminadas"`
	Restauradas int    `json:"restauradas"`
}

// ─── Scheduled jobs ──────────────────────────────────────────────────────────

type EjecucionResponse struct {
	ID           string  `json:"id"`
	Tarea        string  `json:"tarea"`
	Estado       string  `json:"estado"`
	Mensaje      string  `json:"mensaje"`
	Insertadas   int     `json:"insertadas"`
	Duplicadas   int     `json:"duplicadas"`
	IniciadaEn   string  `json:"iniciada_en"`
	FinalizadaEn *string `json:"finalizada_en"`
}

// ─── Outbound e-mail ─────────────────────────────────────────────────────────

type CorreoFallidoResponse struct {
	Marca     string   `json:"marca,omitempty"`
	Para      []string `json:"para"`
	Asunto    string   `json:"asunto"`
	Motivo    string   `json:"motivo"`
	FallidoEn string   `json:"fallido_en"`
	Intentos  int      `json:"intentos"`
}

type ReencolarResponse struct {
	Reencolados int `json:"reencolados"`
}
