package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/infra"
	"colchones/internal/model"
	"colchones/internal/pagos"
	"colchones/internal/repository"
	"colchones/internal/seguimiento"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FuenteCashea lists the BNPL provider's order lines for a date window.
type FuenteCashea interface {
	Ordenes(ctx context.Context, desde, hasta time.Time) ([]map[string]json.RawMessage, error)
}

// ResultadoSincronizacion summarises one Cashea poll.
type ResultadoSincronizacion struct {
	Insertadas int
	Duplicadas int
	Rechazadas int
}

// IngestaService receives orders from the external channels.
type IngestaService interface {
	RecibirTienda(ctx context.Context, req dto.TiendaWebhookRequest) (*dto.WebhookResponse, error)
	RecibirTreble(ctx context.Context, req dto.TrebleWebhookRequest) (*dto.WebhookResponse, error)
	SincronizarCashea(ctx context.Context) (ResultadoSincronizacion, error)
}

type ingestaService struct {
	ventas repository.VentaRepository
	cuotas repository.CuotaRepository
	config repository.ConfiguracionRepository
	cashea FuenteCashea
	loc    *time.Location
	region string
	ahora  func() time.Time
}

func NewIngestaService(
	ventas repository.VentaRepository,
	cuotas repository.CuotaRepository,
	config repository.ConfiguracionRepository,
	cashea FuenteCashea,
	loc *time.Location,
	region string,
) IngestaService {
	if loc == nil {
		loc = time.UTC
	}
	return &ingestaService{
		ventas: ventas,
		cuotas: cuotas,
		config: config,
		cashea: cashea,
		loc:    loc,
		region: region,
		ahora:  time.Now,
	}
}

// ── Tienda ───────────────────────────────────────────────────────────────────
// One call per order line. Replays with a known external_id return the stored
// line without writing.

func (s *ingestaService) RecibirTienda(ctx context.Context, req dto.TiendaWebhookRequest) (*dto.WebhookResponse, error) {
	if v, err := s.ventas.FindByExternalID(ctx, req.ExternalID); err == nil {
		return &dto.WebhookResponse{ID: v.ID.String(), Orden: v.Orden, Duplicada: true}, nil
	} else if !errors.Is(err, apierror.ErrNoEncontrado) {
		return nil, err
	}

	canal := model.CanalTienda
	if req.Canal != "" {
		canal = model.Canal(req.Canal)
	}
	marca := model.Marca(req.Marca)
	if !canal.Valido() || !marca.Valida() {
		return nil, apierror.Validacion("canal", "canal o marca desconocidos")
	}
	fecha, _ := hoyEn(s.ahora(), s.loc)
	if req.Fecha != "" {
		f, err := parseFecha("fecha", req.Fecha, s.loc)
		if err != nil {
			return nil, err
		}
		fecha = f
	}
	tel, err := infra.NormalizarTelefono(req.Telefono, s.region)
	if err != nil {
		// Storefront data is not rejected for a bad phone.
		log.Warn().Err(err).Str("external_id", req.ExternalID).Msg("tienda: telefono no normalizado")
		tel = strings.TrimSpace(req.Telefono)
	}

	externalID := req.ExternalID
	v := model.Venta{
		ID:                        uuid.New(),
		Orden:                     req.Orden,
		Canal:                     canal,
		Marca:                     marca,
		Tipo:                      model.TipoInmediato,
		Fecha:                     fecha,
		ExternalID:                &externalID,
		NombreCliente:             strings.TrimSpace(req.NombreCliente),
		Cedula:                    req.Cedula,
		Telefono:                  tel,
		EmailCliente:              req.EmailCliente,
		Producto:                  req.Producto,
		SKU:                       req.SKU,
		Cantidad:                  req.Cantidad,
		PrecioUnitarioUsd:         req.PrecioUnitarioUsd,
		TotalUsd:                  req.PrecioUnitarioUsd.Mul(decimal.NewFromInt(int64(req.Cantidad))),
		EstadoEntrega:             canal.EstadoInicial(),
		Facturacion:               direccionDesdeDTO(req.Facturacion),
		Despacho:                  direccionDesdeDTO(req.Despacho),
		DespachoIgualFacturacion:  req.DespachoIgualFacturacion,
		EstadoVerificacionInicial: model.VerificacionPendiente,
		EstadoVerificacionFlete:   model.VerificacionPendiente,
		CreatedAt:                 s.ahora(),
	}
	if v.EstadoEntrega == model.EntregaPendiente {
		f := seguimiento.Calcular(fecha, diasSeguimiento(ctx, s.config)).Punteros()
		v.FechaSeguimiento1, v.FechaSeguimiento2, v.FechaSeguimiento3 = f[0], f[1], f[2]
	}

	fechaPago := fecha
	if req.PagoInicial != nil && req.PagoInicial.Fecha != "" {
		f, err := parseFecha("pago_inicial.fecha", req.PagoInicial.Fecha, s.loc)
		if err != nil {
			return nil, err
		}
		fechaPago = f
	}

	var lineas int
	txErr := runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		if err := s.ventas.CreateLineas(ctx, tx, []model.Venta{v}); err != nil {
			return err
		}
		todas, err := s.ventas.FindByOrdenTx(ctx, tx, req.Orden)
		if err != nil {
			return err
		}
		lineas = len(todas)
		if req.PagoInicial != nil && req.PagoInicial.MontoUsd.IsPositive() {
			principal := pagos.LineaPrincipal(todas)
			monto := req.PagoInicial.MontoUsd
			principal.PagoInicialUsd = &monto
			principal.MetodoPagoInicial = req.PagoInicial.Metodo
			principal.BancoPagoInicial = req.PagoInicial.Banco
			principal.ReferenciaPagoInicial = req.PagoInicial.Referencia
			principal.FechaPagoInicial = &fechaPago
			principal.EstadoVerificacionInicial = model.VerificacionPendiente
			if err := s.ventas.Update(ctx, tx, principal); err != nil {
				return err
			}
		}
		_, _, _, _, err = despacharSiPagada(ctx, tx, s.ventas, s.cuotas, req.Orden)
		return err
	})
	if errors.Is(txErr, apierror.ErrConflicto) {
		// Lost a race against a replay of the same line.
		if prev, err := s.ventas.FindByExternalID(ctx, req.ExternalID); err == nil {
			return &dto.WebhookResponse{ID: prev.ID.String(), Orden: prev.Orden, Duplicada: true}, nil
		}
	}
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("orden", v.Orden).Str("external_id", req.ExternalID).Str("canal", string(canal)).Msg("tienda: linea recibida")
	return &dto.WebhookResponse{ID: v.ID.String(), Orden: v.Orden, Lineas: lineas}, nil
}

// ── Treble ───────────────────────────────────────────────────────────────────

// RecibirTreble replaces the shipping address of every line of the order.
func (s *ingestaService) RecibirTreble(ctx context.Context, req dto.TrebleWebhookRequest) (*dto.WebhookResponse, error) {
	despacho := direccionDesdeDTO(req.Despacho)
	if despacho.Vacia() {
		return nil, apierror.Validacion("despacho.direccion", "requerida")
	}
	tel := ""
	if strings.TrimSpace(req.Telefono) != "" {
		var err error
		if tel, err = infra.NormalizarTelefono(req.Telefono, s.region); err != nil {
			return nil, apierror.Validacion("telefono", err.Error())
		}
	}

	var n int
	txErr := runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		lineas, err := s.ventas.FindByOrdenTx(ctx, tx, req.Orden)
		if err != nil {
			return err
		}
		if len(lineas) == 0 {
			return apierror.NoEncontrado("orden", req.Orden)
		}
		for i := range lineas {
			lineas[i].Despacho = despacho
			lineas[i].DespachoIgualFacturacion = false
			if tel != "" {
				lineas[i].Telefono = tel
			}
			if err := s.ventas.Update(ctx, tx, &lineas[i]); err != nil {
				return err
			}
		}
		n = len(lineas)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	log.Info().Str("orden", req.Orden).Int("lineas", n).Msg("treble: direccion actualizada")
	return &dto.WebhookResponse{Orden: req.Orden, Lineas: n}, nil
}

// ── Cashea ───────────────────────────────────────────────────────────────────
// Polls the provider for the configured window. Orders already present are
// skipped as a whole; the rest are inserted in one transaction.

func (s *ingestaService) SincronizarCashea(ctx context.Context) (ResultadoSincronizacion, error) {
	var res ResultadoSincronizacion
	if s.cashea == nil {
		return res, fmt.Errorf("cashea: cliente no configurado: %w", apierror.ErrServicioExterno)
	}
	cfg, err := s.config.GetCashea(ctx)
	if err != nil {
		return res, err
	}
	if !cfg.Activo {
		log.Info().Msg("cashea: sincronizacion desactivada")
		return res, nil
	}

	hasta, _ := hoyEn(s.ahora(), s.loc)
	desde := hasta.AddDate(0, 0, -cfg.DiasVentana)
	filas, err := s.cashea.Ordenes(ctx, desde, hasta)
	if err != nil {
		return res, fmt.Errorf("cashea: %w: %v", apierror.ErrServicioExterno, err)
	}

	// An order is ingested whole or not at all: one bad row holds back every
	// line of its order until the provider fixes it.
	var (
		validas    []model.Venta
		rechazadas = map[string]bool{}
	)
	for i, fila := range filas {
		v, err := s.lineaCashea(fila, i)
		if err != nil {
			res.Rechazadas++
			orden := texto(fila, "orden", "order_id")
			if orden != "" {
				rechazadas[orden] = true
			}
			log.Warn().Err(err).Int("fila", i).Str("orden", orden).Msg("cashea: fila rechazada")
			continue
		}
		validas = append(validas, v)
	}

	var (
		lineas  []model.Venta
		ordenes []string
		vistas  = map[string]bool{}
	)
	for _, v := range validas {
		if rechazadas[v.Orden] {
			res.Rechazadas++
			continue
		}
		lineas = append(lineas, v)
		if !vistas[v.Orden] {
			vistas[v.Orden] = true
			ordenes = append(ordenes, v.Orden)
		}
	}
	if len(rechazadas) > 0 {
		log.Warn().Int("ordenes", len(rechazadas)).Msg("cashea: ordenes retenidas por filas invalidas")
	}

	existentes, err := s.ventas.OrdenesExistentes(ctx, ordenes)
	if err != nil {
		return res, err
	}
	nuevas := lineas[:0]
	for _, v := range lineas {
		if existentes[v.Orden] {
			res.Duplicadas++
			continue
		}
		nuevas = append(nuevas, v)
	}
	if len(nuevas) == 0 {
		return res, nil
	}

	err = runTx(ctx, s.ventas.DB(), func(tx *gorm.DB) error {
		return s.ventas.CreateLineas(ctx, tx, nuevas)
	})
	if err != nil {
		return res, err
	}
	res.Insertadas = len(nuevas)
	log.Info().Int("insertadas", res.Insertadas).Int("duplicadas", res.Duplicadas).Int("rechazadas", res.Rechazadas).Msg("cashea: sincronizacion completa")
	return res, nil
}

func (s *ingestaService) lineaCashea(fila map[string]json.RawMessage, idx int) (model.Venta, error) {
	orden := texto(fila, "orden", "order_id")
	if orden == "" {
		return model.Venta{}, errors.New("sin numero de orden")
	}
	producto := texto(fila, "producto", "product")
	if producto == "" {
		return model.Venta{}, errors.New("sin producto")
	}
	marca := model.Marca(texto(fila, "marca", "brand"))
	if marca == "" {
		marca = model.MarcaBoxiSleep
	}
	if !marca.Valida() {
		return model.Venta{}, fmt.Errorf("marca %q desconocida", marca)
	}
	cantidad := 1
	if c := texto(fila, "cantidad", "quantity"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 1 {
			return model.Venta{}, fmt.Errorf("cantidad %q invalida", c)
		}
		cantidad = n
	}
	precio, err := numero(fila, "precio_usd", "precio_unitario_usd", "unit_price")
	if err != nil {
		return model.Venta{}, err
	}
	total, err := numero(fila, "total_usd", "total")
	if err != nil {
		return model.Venta{}, err
	}
	if total.IsZero() {
		total = precio.Mul(decimal.NewFromInt(int64(cantidad)))
	}
	if precio.IsZero() && cantidad > 0 {
		precio = total.Div(decimal.NewFromInt(int64(cantidad))).Round(2)
	}

	fecha, _ := hoyEn(s.ahora(), s.loc)
	if f := texto(fila, "fecha", "created_at"); len(f) >= 10 {
		if t, err := time.ParseInLocation(formatoFecha, f[:10], s.loc); err == nil {
			fecha = t
		}
	}
	tel, err := infra.NormalizarTelefono(texto(fila, "telefono", "phone"), s.region)
	if err != nil {
		tel = texto(fila, "telefono", "phone")
	}

	dir := model.Direccion{
		Direccion: texto(fila, "direccion", "address"),
		Ciudad:    texto(fila, "ciudad", "city"),
		Estado:    texto(fila, "estado", "state"),
	}
	return model.Venta{
		ID:                        uuid.New(),
		Orden:                     orden,
		Canal:                     model.CanalCashea,
		Marca:                     marca,
		Tipo:                      model.TipoInmediato,
		Fecha:                     fecha,
		NombreCliente:             texto(fila, "cliente", "nombre_cliente", "customer"),
		Cedula:                    texto(fila, "cedula", "document"),
		Telefono:                  tel,
		EmailCliente:              texto(fila, "email", "email_cliente"),
		Producto:                  producto,
		SKU:                       texto(fila, "sku"),
		Cantidad:                  cantidad,
		PrecioUnitarioUsd:         precio,
		TotalUsd:                  total,
		EstadoEntrega:             model.CanalCashea.EstadoInicial(),
		Facturacion:               dir,
		DespachoIgualFacturacion:  true,
		EstadoVerificacionInicial: model.VerificacionPendiente,
		EstadoVerificacionFlete:   model.VerificacionPendiente,
		CreatedAt:                 s.ahora().Add(time.Duration(idx) * time.Microsecond),
	}, nil
}

// texto reads the first present key as a string. Numbers are kept verbatim.
func texto(fila map[string]json.RawMessage, claves ...string) string {
	for _, k := range claves {
		raw, ok := fila[k]
		if !ok || string(raw) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s)
		}
		return strings.TrimSpace(string(raw))
	}
	return ""
}

func numero(fila map[string]json.RawMessage, claves ...string) (decimal.Decimal, error) {
	for _, k := range claves {
		raw, ok := fila[k]
		if !ok || string(raw) == "null" {
			continue
		}
		var d decimal.Decimal
		if err := json.Unmarshal(raw, &d); err != nil {
			return decimal.Zero, fmt.Errorf("%s: importe invalido", k)
		}
		return d, nil
	}
	return decimal.Zero, nil
}
