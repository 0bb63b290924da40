package infra

// pdf.go: order summary PDF using go-pdf/fpdf.
// One page per order with:
//   - Brand header and order number
//   - Customer and shipping address
//   - Line table (product, quantity, total)
//   - Payment breakdown (initial, freight, installments) and pending balance
//
// The document is returned as bytes so it can be attached to an e-mail or
// streamed from the HTTP handler.

import (
	"bytes"
	"fmt"

	"colchones/internal/model"
	"colchones/internal/pagos"

	"github.com/go-pdf/fpdf"
)

// ResumenOrdenPDF renders the summary of one order. lineas must belong to the
// same order; the first element is used for customer data.
func ResumenOrdenPDF(lineas []model.Venta, cuotas []model.Cuota, r pagos.Resumen) ([]byte, error) {
	if len(lineas) == 0 {
		return nil, fmt.Errorf("pdf: orden sin lineas")
	}
	principal := pagos.LineaPrincipal(lineas)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, string(principal.Marca), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, tr(fmt.Sprintf("Orden %s  ·  %s", principal.Orden, principal.Fecha.Format("02/01/2006"))), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Customer ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Cliente", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(principal.NombreCliente), "", 1, "L", false, 0, "")
	if principal.Cedula != "" {
		pdf.CellFormat(contentW, 5, tr("C.I. "+principal.Cedula), "", 1, "L", false, 0, "")
	}
	if principal.Telefono != "" {
		pdf.CellFormat(contentW, 5, principal.Telefono, "", 1, "L", false, 0, "")
	}
	if dir := principal.DireccionEnvio(); !dir.Vacia() {
		pdf.MultiCell(contentW, 5, tr(fmt.Sprintf("%s, %s, %s", dir.Direccion, dir.Ciudad, dir.Estado)), "", "L", false)
	}
	pdf.Ln(3)

	// ── Lines ────────────────────────────────────────────────────────────────
	col1 := contentW * 0.60
	col2 := contentW * 0.15
	col3 := contentW * 0.25

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Total USD", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, l := range lineas {
		pdf.CellFormat(col1, 6, tr(l.Producto), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", l.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+l.TotalUsd.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	// ── Payments ─────────────────────────────────────────────────────────────
	fila := func(label, monto string) {
		pdf.CellFormat(col1+col2, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, monto, "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Pagos", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if principal.PagoInicialUsd != nil {
		fila(fmt.Sprintf("Pago inicial (%s)", principal.EstadoVerificacionInicial.Normalizar()), "$"+principal.PagoInicialUsd.StringFixed(2))
	}
	if principal.PagoFleteUsd != nil {
		fila(fmt.Sprintf("Flete (%s)", principal.EstadoVerificacionFlete.Normalizar()), "$"+principal.PagoFleteUsd.StringFixed(2))
	} else if principal.FleteGratis {
		fila("Flete", "Gratis")
	}
	for _, c := range cuotas {
		fila(fmt.Sprintf("Cuota %d · %s (%s)", c.NumeroCuota, c.FechaPago.Format("02/01/2006"), c.EstadoVerificacion.Normalizar()), "$"+c.PagoCuotaUsd.StringFixed(2))
	}
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	fila("Total orden", "$"+r.TotalOrden.StringFixed(2))
	fila("Total pagado", "$"+r.TotalPagado.StringFixed(2))
	fila("Saldo pendiente", "$"+r.SaldoPendiente.StringFixed(2))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
