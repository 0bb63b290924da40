package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/dto"
	"colchones/internal/infra"
	"colchones/internal/repository"
	"colchones/internal/seguimiento"

	"github.com/rs/zerolog/log"
)

// SeguimientoService owns the follow-up cascade helper and the daily digest.
type SeguimientoService interface {
	Calcular(ctx context.Context, req dto.CalcularSeguimientoRequest) (*dto.CalcularSeguimientoResponse, error)
	EnviarRecordatorios(ctx context.Context) (ResultadoRecordatorios, error)
}

// ResultadoRecordatorios counts digest e-mails queued and reminders dropped
// for lack of a recipient.
type ResultadoRecordatorios struct {
	Correos       int
	Recordatorios int
	Descartados   int
}

type seguimientoService struct {
	ventas     repository.VentaRepository
	prospectos repository.ProspectoRepository
	config     repository.ConfiguracionRepository
	cola       ColaCorreo
	loc        *time.Location
	ahora      func() time.Time
}

func NewSeguimientoService(
	ventas repository.VentaRepository,
	prospectos repository.ProspectoRepository,
	config repository.ConfiguracionRepository,
	cola ColaCorreo,
	loc *time.Location,
) SeguimientoService {
	if loc == nil {
		loc = time.UTC
	}
	return &seguimientoService{
		ventas:     ventas,
		prospectos: prospectos,
		config:     config,
		cola:       cola,
		loc:        loc,
		ahora:      time.Now,
	}
}

// Calcular replays one step of the follow-up dialog: rebuild the session
// state, apply the optional edit, recompute unpinned phases.
func (s *seguimientoService) Calcular(ctx context.Context, req dto.CalcularSeguimientoRequest) (*dto.CalcularSeguimientoResponse, error) {
	base, err := parseFecha("base", req.Base, s.loc)
	if err != nil {
		return nil, err
	}
	dias := diasSeguimiento(ctx, s.config)
	if req.Dias != nil {
		for i, d := range req.Dias {
			if d < 0 || d > 365 {
				return nil, apierror.Validacion(fmt.Sprintf("dias[%d]", i), "debe estar entre 0 y 365")
			}
		}
		dias = *req.Dias
	}

	f := seguimiento.Fases{Base: base, Dias: dias}
	for i := 0; i < seguimiento.NumFases; i++ {
		if !req.Fijadas[i] {
			continue
		}
		fecha, err := parseFechaOpcional(fmt.Sprintf("fechas[%d]", i), req.Fechas[i], s.loc)
		if err != nil {
			return nil, err
		}
		if fecha != nil {
			f.Fechas[i] = *fecha
			f.Fijadas[i] = true
		}
	}
	f.Recalcular()

	if req.EditarFase != nil {
		if req.Fecha == nil {
			return nil, apierror.Validacion("editar_fase", "se requiere una fecha valida para la fase")
		}
		fecha, err := parseFecha("fecha", *req.Fecha, s.loc)
		if err != nil {
			return nil, err
		}
		if err := f.Editar(*req.EditarFase-1, fecha); err != nil {
			return nil, apierror.Validacion("editar_fase", "se requiere una fecha valida para la fase")
		}
	}

	resp := &dto.CalcularSeguimientoResponse{Fijadas: f.Fijadas, Dias: f.Dias}
	for i := range f.Fechas {
		resp.Fechas[i] = formatFecha(f.Fechas[i], s.loc)
	}
	return resp, nil
}

// ── Recordatorios ────────────────────────────────────────────────────────────

type recordatorio struct {
	Tipo     string
	Ref      string
	Cliente  string
	Telefono string
	Detalle  string
	Fase     int
	Asesor   string
}

var plantillaDigest = template.Must(template.New("digest").Parse(`<p>Seguimientos pendientes para hoy {{.Fecha}}:</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Tipo</th><th>Referencia</th><th>Cliente</th><th>Teléfono</th><th>Detalle</th><th>Fase</th><th>Asesor</th></tr>
{{range .Items}}<tr><td>{{.Tipo}}</td><td>{{.Ref}}</td><td>{{.Cliente}}</td><td>{{.Telefono}}</td><td>{{.Detalle}}</td><td>{{.Fase}}</td><td>{{.Asesor}}</td></tr>
{{end}}</table>`))

// EnviarRecordatorios builds one digest per recipient with every lead and
// pending order that has a follow-up phase due today. Reminders go to the
// assigned rep; without a rep e-mail they go to the general address; without
// either they are logged and dropped.
func (s *seguimientoService) EnviarRecordatorios(ctx context.Context) (ResultadoRecordatorios, error) {
	var res ResultadoRecordatorios
	ahora := s.ahora()
	desde, hasta := hoyEn(ahora, s.loc)

	general := ""
	if cfg, err := s.config.GetSeguimiento(ctx); err == nil {
		general = strings.TrimSpace(cfg.EmailGeneral)
	} else {
		log.Warn().Err(err).Msg("recordatorios: configuracion no disponible")
	}

	ventas, err := s.ventas.ListSeguimientoVence(ctx, desde, hasta)
	if err != nil {
		return res, err
	}
	prospectos, err := s.prospectos.ListSeguimientoVence(ctx, desde, hasta)
	if err != nil {
		return res, err
	}

	porDestino := map[string][]recordatorio{}
	agregar := func(r recordatorio, email *string) {
		destino := general
		if email != nil && strings.TrimSpace(*email) != "" {
			destino = strings.TrimSpace(*email)
		}
		if destino == "" {
			res.Descartados++
			log.Error().Str("tipo", r.Tipo).Str("ref", r.Ref).Int("fase", r.Fase).
				Msg("recordatorios: sin destinatario, recordatorio descartado")
			return
		}
		porDestino[destino] = append(porDestino[destino], r)
		res.Recordatorios++
	}

	vistas := map[string]bool{}
	for i := range ventas {
		v := &ventas[i]
		fase := seguimiento.FaseQueVence([3]*time.Time{v.FechaSeguimiento1, v.FechaSeguimiento2, v.FechaSeguimiento3}, ahora, s.loc)
		if fase == 0 || vistas[v.Orden] {
			continue
		}
		vistas[v.Orden] = true
		r := recordatorio{Tipo: "Orden", Ref: v.Orden, Cliente: v.NombreCliente, Telefono: v.Telefono, Detalle: v.Producto, Fase: fase}
		var email *string
		if v.Asesor != nil {
			r.Asesor = v.Asesor.Nombre
			email = v.Asesor.Email
		}
		agregar(r, email)
	}
	for i := range prospectos {
		p := &prospectos[i]
		if !p.Estado.Activo() {
			continue
		}
		fase := seguimiento.FaseQueVence([3]*time.Time{p.FechaSeguimiento1, p.FechaSeguimiento2, p.FechaSeguimiento3}, ahora, s.loc)
		if fase == 0 {
			continue
		}
		r := recordatorio{Tipo: "Prospecto", Ref: p.ID.String()[:8], Cliente: p.Nombre, Telefono: p.Telefono, Detalle: p.ProductoInteres, Fase: fase}
		var email *string
		if p.Asesor != nil {
			r.Asesor = p.Asesor.Nombre
			email = p.Asesor.Email
		}
		agregar(r, email)
	}

	destinos := make([]string, 0, len(porDestino))
	for d := range porDestino {
		destinos = append(destinos, d)
	}
	sort.Strings(destinos)

	fecha := formatFecha(ahora, s.loc)
	for _, d := range destinos {
		var buf bytes.Buffer
		if err := plantillaDigest.Execute(&buf, map[string]any{"Fecha": fecha, "Items": porDestino[d]}); err != nil {
			return res, err
		}
		c := infra.Correo{
			Para:   []string{d},
			Asunto: fmt.Sprintf("Seguimientos del %s (%d)", fecha, len(porDestino[d])),
			HTML:   buf.String(),
		}
		if s.cola == nil {
			continue
		}
		if err := s.cola.EncolarCorreo(ctx, "", c); err != nil {
			log.Error().Err(err).Str("destino", d).Msg("recordatorios: no se pudo encolar el digest")
			continue
		}
		res.Correos++
	}

	log.Info().
		Int("correos", res.Correos).
		Int("recordatorios", res.Recordatorios).
		Int("descartados", res.Descartados).
		Msg("recordatorios enviados")
	return res, nil
}
