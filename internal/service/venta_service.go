package service

import (
	"context"
	"errors"
	"fmt"
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

type VentaService interface {
	Crear(ctx context.Context, req dto.CrearVentaRequest) (*dto.OrdenResumenResponse, error)
	Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ResumenOrden(ctx context.Context, orden string) (*dto.OrdenResumenResponse, error)
	ResumenPDF(ctx context.Context, orden string) ([]byte, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarVentaRequest) (*dto.VentaResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	CambiarEstado(ctx context.Context, id uuid.UUID, req dto.CambiarEstadoRequest) (*dto.CambiarEstadoResponse, error)
	RegistrarPagoInicial(ctx context.Context, orden string, req dto.PagoRequest) (*dto.PagoRegistradoResponse, error)
	RegistrarFlete(ctx context.Context, orden string, req dto.FleteRequest) (*dto.PagoRegistradoResponse, error)
}

type ventaService struct {
	repo   repository.VentaRepository
	cuotas repository.CuotaRepository
	config repository.ConfiguracionRepository
	cola   ColaCorreo
	loc    *time.Location
	region string
	ahora  func() time.Time
}

func NewVentaService(
	repo repository.VentaRepository,
	cuotas repository.CuotaRepository,
	config repository.ConfiguracionRepository,
	cola ColaCorreo,
	loc *time.Location,
	region string,
) VentaService {
	if loc == nil {
		loc = time.UTC
	}
	return &ventaService{
		repo:   repo,
		cuotas: cuotas,
		config: config,
		cola:   cola,
		loc:    loc,
		region: region,
		ahora:  time.Now,
	}
}

// ── Crear ────────────────────────────────────────────────────────────────────
// Manual order entry:
//   1. Validate enums, dates, phone and advisor
//   2. BEGIN TX: resolve order number (sequence when empty), insert lines
//   3. Apply initial payment and freight to the primary line
//   4. Auto-dispatch if the initial payment covers the order
//   5. COMMIT, then (async) payment receipt e-mail

func (s *ventaService) Crear(ctx context.Context, req dto.CrearVentaRequest) (*dto.OrdenResumenResponse, error) {
	canal := model.Canal(req.Canal)
	if !canal.Valido() {
		return nil, apierror.Validacion("canal", "canal desconocido")
	}
	marca := model.Marca(req.Marca)
	if !marca.Valida() {
		return nil, apierror.Validacion("marca", "marca desconocida")
	}
	tipo := model.TipoInmediato
	if req.Tipo != "" {
		tipo = model.TipoVenta(req.Tipo)
		if !tipo.Valido() {
			return nil, apierror.Validacion("tipo", "tipo desconocido")
		}
	}
	fecha, _ := hoyEn(s.ahora(), s.loc)
	if req.Fecha != "" {
		f, err := parseFecha("fecha", req.Fecha, s.loc)
		if err != nil {
			return nil, err
		}
		fecha = f
	}
	asesorID, err := parseUUIDOpcional("asesor_id", req.AsesorID)
	if err != nil {
		return nil, err
	}
	telefono, err := infra.NormalizarTelefono(req.Telefono, s.region)
	if err != nil {
		return nil, apierror.Validacion("telefono", err.Error())
	}

	orden := strings.TrimSpace(req.Orden)
	if orden != "" {
		existentes, err := s.repo.OrdenesExistentes(ctx, []string{orden})
		if err != nil {
			return nil, err
		}
		if existentes[orden] {
			return nil, fmt.Errorf("orden %s: %w", orden, apierror.ErrConflicto)
		}
	}

	estadoInicial := canal.EstadoInicial()
	var fases [3]*time.Time
	if estadoInicial == model.EntregaPendiente {
		fases = seguimiento.Calcular(fecha, diasSeguimiento(ctx, s.config)).Punteros()
	}

	creado := s.ahora()
	lineas := make([]model.Venta, len(req.Lineas))
	for i, l := range req.Lineas {
		lineas[i] = model.Venta{
			ID:                        uuid.New(),
			Canal:                     canal,
			Marca:                     marca,
			Tipo:                      tipo,
			Fecha:                     fecha,
			NombreCliente:             strings.TrimSpace(req.NombreCliente),
			Cedula:                    strings.TrimSpace(req.Cedula),
			Telefono:                  telefono,
			EmailCliente:              strings.TrimSpace(req.EmailCliente),
			Producto:                  strings.TrimSpace(l.Producto),
			SKU:                       l.SKU,
			Cantidad:                  l.Cantidad,
			PrecioUnitarioUsd:         l.PrecioUnitarioUsd,
			TotalUsd:                  l.PrecioUnitarioUsd.Mul(decimal.NewFromInt(int64(l.Cantidad))),
			AsesorID:                  asesorID,
			EstadoEntrega:             estadoInicial,
			Facturacion:               direccionDesdeDTO(req.Facturacion),
			Despacho:                  direccionDesdeDTO(req.Despacho),
			DespachoIgualFacturacion:  req.DespachoIgualFacturacion,
			Notas:                     req.Notas,
			FechaSeguimiento1:         fases[0],
			FechaSeguimiento2:         fases[1],
			FechaSeguimiento3:         fases[2],
			EstadoVerificacionInicial: model.VerificacionPendiente,
			EstadoVerificacionFlete:   model.VerificacionPendiente,
			// Line order is the insertion order; the first line carries the payments.
			CreatedAt: creado.Add(time.Duration(i) * time.Microsecond),
		}
	}
	if req.PagoInicial != nil {
		if err := s.aplicarPagoInicial(&lineas[0], *req.PagoInicial); err != nil {
			return nil, err
		}
	}
	if req.Flete != nil {
		if err := s.aplicarFlete(&lineas[0], *req.Flete); err != nil {
			return nil, err
		}
	}

	var (
		resumen pagos.Resumen
		cuotas  []model.Cuota
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if orden == "" {
			n, err := s.repo.NextNumeroOrden(ctx, tx)
			if err != nil {
				return err
			}
			orden = fmt.Sprintf("MAN-%06d", n)
		}
		for i := range lineas {
			lineas[i].Orden = orden
		}
		if err := s.repo.CreateLineas(ctx, tx, lineas); err != nil {
			return err
		}
		var err error
		resumen, lineas, cuotas, _, err = despacharSiPagada(ctx, tx, s.repo, s.cuotas, orden)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("orden", orden).Int("lineas", len(lineas)).Str("canal", string(canal)).Msg("orden creada")
	if req.PagoInicial != nil {
		notificarPago(ctx, s.cola, lineas, cuotas, resumen, "pago inicial")
	}

	return &dto.OrdenResumenResponse{
		Orden:   orden,
		Resumen: resumen,
		Lineas:  ventasToResponse(lineas, s.loc),
		Cuotas:  cuotasToResponse(cuotas, s.loc),
	}, nil
}

// ── Consultas ────────────────────────────────────────────────────────────────

func (s *ventaService) Listar(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Estado != "" && !model.EstadoEntrega(filter.Estado).Valido() {
		return nil, apierror.Validacion("estado", "estado de entrega desconocido")
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.VentaListResponse{
		Data:  ventasToResponse(ventas, s.loc),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ventaService) Obtener(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ventaToResponse(v, s.loc)
	return &resp, nil
}

func (s *ventaService) cargarOrden(ctx context.Context, orden string) ([]model.Venta, []model.Cuota, error) {
	lineas, err := s.repo.FindByOrden(ctx, orden)
	if err != nil {
		return nil, nil, err
	}
	if len(lineas) == 0 {
		return nil, nil, apierror.NoEncontrado("orden", orden)
	}
	cuotas, err := s.cuotas.ListByOrden(ctx, orden)
	if err != nil {
		return nil, nil, err
	}
	return lineas, cuotas, nil
}

func (s *ventaService) ResumenOrden(ctx context.Context, orden string) (*dto.OrdenResumenResponse, error) {
	lineas, cuotas, err := s.cargarOrden(ctx, orden)
	if err != nil {
		return nil, err
	}
	return &dto.OrdenResumenResponse{
		Orden:   orden,
		Resumen: pagos.Resumir(lineas, cuotas),
		Lineas:  ventasToResponse(lineas, s.loc),
		Cuotas:  cuotasToResponse(cuotas, s.loc),
	}, nil
}

func (s *ventaService) ResumenPDF(ctx context.Context, orden string) ([]byte, error) {
	lineas, cuotas, err := s.cargarOrden(ctx, orden)
	if err != nil {
		return nil, err
	}
	return infra.ResumenOrdenPDF(lineas, cuotas, pagos.Resumir(lineas, cuotas))
}

// ── Actualizar ───────────────────────────────────────────────────────────────

func (s *ventaService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarVentaRequest) (*dto.VentaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Tipo != nil {
		t := model.TipoVenta(*req.Tipo)
		if !t.Valido() {
			return nil, apierror.Validacion("tipo", "tipo desconocido")
		}
		v.Tipo = t
	}
	if req.NombreCliente != nil {
		v.NombreCliente = strings.TrimSpace(*req.NombreCliente)
	}
	if req.Cedula != nil {
		v.Cedula = strings.TrimSpace(*req.Cedula)
	}
	if req.Telefono != nil {
		tel, err := infra.NormalizarTelefono(*req.Telefono, s.region)
		if err != nil {
			return nil, apierror.Validacion("telefono", err.Error())
		}
		v.Telefono = tel
	}
	if req.EmailCliente != nil {
		v.EmailCliente = strings.TrimSpace(*req.EmailCliente)
	}
	if req.AsesorID != nil {
		a, err := parseUUIDOpcional("asesor_id", req.AsesorID)
		if err != nil {
			return nil, err
		}
		v.AsesorID = a
		v.Asesor = nil
	}
	if req.Facturacion != nil {
		v.Facturacion = direccionDesdeDTO(*req.Facturacion)
	}
	if req.Despacho != nil {
		v.Despacho = direccionDesdeDTO(*req.Despacho)
	}
	if req.DespachoIgualFacturacion != nil {
		v.DespachoIgualFacturacion = *req.DespachoIgualFacturacion
	}
	if req.FechaEntrega != nil {
		if v.FechaEntrega, err = parseFechaOpcional("fecha_entrega", req.FechaEntrega, s.loc); err != nil {
			return nil, err
		}
	}
	if req.Notas != nil {
		v.Notas = *req.Notas
	}

	editadas := [3]*string{req.FechaSeguimiento1, req.FechaSeguimiento2, req.FechaSeguimiento3}
	guardadas := [3]**time.Time{&v.FechaSeguimiento1, &v.FechaSeguimiento2, &v.FechaSeguimiento3}
	for i, e := range editadas {
		if e == nil {
			continue
		}
		f, err := parseFechaOpcional(fmt.Sprintf("fecha_seguimiento_%d", i+1), e, s.loc)
		if err != nil {
			return nil, err
		}
		*guardadas[i] = f
	}
	if req.RespuestaSeguimiento1 != nil {
		v.RespuestaSeguimiento1 = *req.RespuestaSeguimiento1
	}
	if req.RespuestaSeguimiento2 != nil {
		v.RespuestaSeguimiento2 = *req.RespuestaSeguimiento2
	}
	if req.RespuestaSeguimiento3 != nil {
		v.RespuestaSeguimiento3 = *req.RespuestaSeguimiento3
	}
	if v.EstadoEntrega == model.EntregaPendiente {
		s.completarSeguimiento(ctx, v)
	}

	if err := s.repo.Update(ctx, nil, v); err != nil {
		return nil, err
	}
	resp := ventaToResponse(v, s.loc)
	return &resp, nil
}

// completarSeguimiento fills empty follow-up dates from the cascade. Stored
// dates are pinned and never recomputed.
func (s *ventaService) completarSeguimiento(ctx context.Context, v *model.Venta) {
	guardadas := [3]*time.Time{v.FechaSeguimiento1, v.FechaSeguimiento2, v.FechaSeguimiento3}
	f := seguimiento.DesdePersistido(v.Fecha, diasSeguimiento(ctx, s.config), guardadas).Punteros()
	v.FechaSeguimiento1, v.FechaSeguimiento2, v.FechaSeguimiento3 = f[0], f[1], f[2]
}

// Eliminar removes one line. When it is the primary line of a multi-line
// order the order-level payments and the cuotas move to the next line first,
// so the cascade on cuotas.venta_id never fires.
func (s *ventaService) Eliminar(ctx context.Context, id uuid.UUID) error {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		lineas, err := s.repo.FindByOrdenTx(ctx, tx, v.Orden)
		if err != nil {
			return err
		}
		principal := pagos.LineaPrincipal(lineas)
		if principal != nil && principal.ID == id && len(lineas) > 1 {
			resto := make([]model.Venta, 0, len(lineas)-1)
			for _, l := range lineas {
				if l.ID != id {
					resto = append(resto, l)
				}
			}
			sucesora := pagos.LineaPrincipal(resto)
			traspasarPagos(principal, sucesora)
			if err := s.repo.Update(ctx, tx, sucesora); err != nil {
				return err
			}
			cuotas, err := s.cuotas.ListByOrdenTx(ctx, tx, v.Orden)
			if err != nil {
				return err
			}
			for i := range cuotas {
				if cuotas[i].VentaID != id {
					continue
				}
				cuotas[i].VentaID = sucesora.ID
				if err := s.cuotas.Update(ctx, tx, &cuotas[i]); err != nil {
					return err
				}
			}
			log.Info().Str("orden", v.Orden).Str("sucesora", sucesora.ID.String()).Msg("venta: pagos de la orden movidos a la siguiente linea")
		}
		n, err := s.repo.DeleteByIDs(ctx, tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if n == 0 {
			return apierror.NoEncontrado("venta", id)
		}
		return nil
	})
}

// traspasarPagos copies the order-level payment and freight fields.
func traspasarPagos(desde, hacia *model.Venta) {
	hacia.PagoInicialUsd = desde.PagoInicialUsd
	hacia.MetodoPagoInicial = desde.MetodoPagoInicial
	hacia.BancoPagoInicial = desde.BancoPagoInicial
	hacia.ReferenciaPagoInicial = desde.ReferenciaPagoInicial
	hacia.FechaPagoInicial = desde.FechaPagoInicial
	hacia.EstadoVerificacionInicial = desde.EstadoVerificacionInicial
	hacia.NotasVerificacionInicial = desde.NotasVerificacionInicial
	hacia.FechaVerificacionInicial = desde.FechaVerificacionInicial

	hacia.MontoFleteUsd = desde.MontoFleteUsd
	hacia.PagoFleteUsd = desde.PagoFleteUsd
	hacia.BancoFlete = desde.BancoFlete
	hacia.ReferenciaFlete = desde.ReferenciaFlete
	hacia.FechaPagoFlete = desde.FechaPagoFlete
	hacia.FleteGratis = desde.FleteGratis
	hacia.EstadoVerificacionFlete = desde.EstadoVerificacionFlete
	hacia.NotasVerificacionFlete = desde.NotasVerificacionFlete
	hacia.FechaVerificacionFlete = desde.FechaVerificacionFlete
}

// ── CambiarEstado ────────────────────────────────────────────────────────────

func (s *ventaService) CambiarEstado(ctx context.Context, id uuid.UUID, req dto.CambiarEstadoRequest) (*dto.CambiarEstadoResponse, error) {
	destino := model.EstadoEntrega(req.Estado)
	if !destino.Valido() {
		return nil, apierror.Validacion("estado", "estado de entrega desconocido")
	}
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if v.EstadoEntrega == destino {
		return &dto.CambiarEstadoResponse{Venta: ventaToResponse(v, s.loc), SinCambios: true, Advertencias: []string{}}, nil
	}
	if !v.EstadoEntrega.PuedeTransicionarA(destino) {
		return nil, apierror.Transicion(string(v.EstadoEntrega), string(destino))
	}
	if destino.RequiereConfirmacion() && !req.Confirmar {
		return nil, apierror.Validacion("confirmar", fmt.Sprintf("pasar a %s requiere confirmacion", destino))
	}

	fechaEntrega, err := parseFechaOpcional("fecha_entrega", req.FechaEntrega, s.loc)
	if err != nil {
		return nil, err
	}
	fechaDevolucion, err := parseFechaOpcional("fecha_devolucion", req.FechaDevolucion, s.loc)
	if err != nil {
		return nil, err
	}
	if fechaEntrega != nil {
		v.FechaEntrega = fechaEntrega
	}
	if fechaDevolucion != nil {
		v.FechaDevolucion = fechaDevolucion
	}
	if destino == model.EntregaDevuelto && v.FechaDevolucion == nil {
		return nil, apierror.Validacion("fecha_devolucion", "requerida para marcar la orden como devuelta")
	}
	if destino == model.EntregaCancelada && req.MotivoCancelacion != "" {
		v.MotivoCancelacion = req.MotivoCancelacion
	}

	advertencias := []string{}
	switch destino {
	case model.EntregaADespachar:
		if v.DireccionEnvio().Vacia() {
			advertencias = append(advertencias, "la orden no tiene direccion de despacho")
		}
	case model.EntregaEntregado:
		if v.FechaEntrega == nil {
			advertencias = append(advertencias, "no se registro la fecha de entrega")
		}
	}

	desde := v.EstadoEntrega
	v.EstadoEntrega = destino
	if err := s.repo.Update(ctx, nil, v); err != nil {
		return nil, err
	}
	log.Info().
		Str("orden", v.Orden).
		Str("venta_id", v.ID.String()).
		Str("desde", string(desde)).
		Str("hacia", string(destino)).
		Msg("estado de entrega actualizado")

	return &dto.CambiarEstadoResponse{Venta: ventaToResponse(v, s.loc), Advertencias: advertencias}, nil
}

// ── Pagos de la orden ────────────────────────────────────────────────────────

func (s *ventaService) aplicarPagoInicial(v *model.Venta, req dto.PagoRequest) error {
	if !req.MontoUsd.IsPositive() {
		return apierror.Validacion("monto_usd", "debe ser mayor a cero")
	}
	fecha, _ := hoyEn(s.ahora(), s.loc)
	if req.Fecha != "" {
		f, err := parseFecha("fecha", req.Fecha, s.loc)
		if err != nil {
			return err
		}
		fecha = f
	}
	monto := req.MontoUsd
	v.PagoInicialUsd = &monto
	v.MetodoPagoInicial = req.Metodo
	v.BancoPagoInicial = req.Banco
	v.ReferenciaPagoInicial = req.Referencia
	v.FechaPagoInicial = &fecha
	// A rewritten payment has to be matched against the bank again.
	v.EstadoVerificacionInicial = model.VerificacionPendiente
	v.NotasVerificacionInicial = ""
	v.FechaVerificacionInicial = nil
	return nil
}

func (s *ventaService) aplicarFlete(v *model.Venta, req dto.FleteRequest) error {
	if req.MontoFleteUsd != nil && req.MontoFleteUsd.IsNegative() {
		return apierror.Validacion("monto_flete_usd", "no puede ser negativo")
	}
	if req.PagoFleteUsd != nil && req.PagoFleteUsd.IsNegative() {
		return apierror.Validacion("pago_flete_usd", "no puede ser negativo")
	}
	v.FleteGratis = req.FleteGratis
	if req.FleteGratis {
		cero := decimal.Zero
		v.MontoFleteUsd = &cero
		v.PagoFleteUsd = nil
		v.FechaPagoFlete = nil
		return nil
	}
	v.MontoFleteUsd = req.MontoFleteUsd
	v.PagoFleteUsd = req.PagoFleteUsd
	v.BancoFlete = req.Banco
	v.ReferenciaFlete = req.Referencia
	if req.PagoFleteUsd != nil {
		fecha, _ := hoyEn(s.ahora(), s.loc)
		if req.Fecha != "" {
			f, err := parseFecha("fecha", req.Fecha, s.loc)
			if err != nil {
				return err
			}
			fecha = f
		}
		v.FechaPagoFlete = &fecha
	}
	v.EstadoVerificacionFlete = model.VerificacionPendiente
	v.NotasVerificacionFlete = ""
	v.FechaVerificacionFlete = nil
	return nil
}

func (s *ventaService) RegistrarPagoInicial(ctx context.Context, orden string, req dto.PagoRequest) (*dto.PagoRegistradoResponse, error) {
	return s.registrarPago(ctx, orden, "pago inicial", func(v *model.Venta) error {
		return s.aplicarPagoInicial(v, req)
	})
}

func (s *ventaService) RegistrarFlete(ctx context.Context, orden string, req dto.FleteRequest) (*dto.PagoRegistradoResponse, error) {
	return s.registrarPago(ctx, orden, "pago de flete", func(v *model.Venta) error {
		return s.aplicarFlete(v, req)
	})
}

// registrarPago writes an order-level payment on the primary line and runs
// the auto-dispatch check in the same transaction.
func (s *ventaService) registrarPago(ctx context.Context, orden, concepto string, aplicar func(v *model.Venta) error) (*dto.PagoRegistradoResponse, error) {
	var (
		resumen     pagos.Resumen
		lineas      []model.Venta
		cuotas      []model.Cuota
		despachadas []uuid.UUID
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		actuales, err := s.repo.FindByOrdenTx(ctx, tx, orden)
		if err != nil {
			return err
		}
		principal := pagos.LineaPrincipal(actuales)
		if principal == nil {
			return apierror.NoEncontrado("orden", orden)
		}
		if err := aplicar(principal); err != nil {
			return err
		}
		if err := s.repo.Update(ctx, tx, principal); err != nil {
			return err
		}
		resumen, lineas, cuotas, despachadas, err = despacharSiPagada(ctx, tx, s.repo, s.cuotas, orden)
		return err
	})
	if txErr != nil {
		var verr *apierror.ErrValidacion
		if !errors.As(txErr, &verr) && !errors.Is(txErr, apierror.ErrNoEncontrado) {
			log.Error().Err(txErr).Str("orden", orden).Msg("no se pudo registrar el pago")
		}
		return nil, txErr
	}

	notificarPago(ctx, s.cola, lineas, cuotas, resumen, concepto)
	return &dto.PagoRegistradoResponse{
		Orden:       orden,
		Resumen:     resumen,
		Despachadas: idsToStrings(despachadas),
	}, nil
}
