package model

// Closed-set string types shared by every layer. Each type validates itself
// once at the boundary; the database enforces the same sets with CHECK
// constraints (see infra.applySchemaPatches).

// Canal is the sales channel an order line came from.
type Canal string

const (
	CanalShopify Canal = "Shopify"
	CanalCashea  Canal = "Cashea"
	CanalTreble  Canal = "Treble"
	CanalManual  Canal = "Manual"
	CanalTienda  Canal = "Tienda"
)

func (c Canal) Valido() bool {
	switch c {
	case CanalShopify, CanalCashea, CanalTreble, CanalManual, CanalTienda:
		return true
	}
	return false
}

// EstadoInicial returns the delivery state a new line starts in.
// BNPL orders arrive already paid by the provider.
func (c Canal) EstadoInicial() EstadoEntrega {
	if c == CanalCashea {
		return EntregaEnProceso
	}
	return EntregaPendiente
}

// Marca selects branding and the outbound e-mail path.
type Marca string

const (
	MarcaBoxiSleep Marca = "BoxiSleep"
	MarcaMompox    Marca = "Mompox"
)

func (m Marca) Valida() bool {
	return m == MarcaBoxiSleep || m == MarcaMompox
}

// TipoVenta distinguishes immediate sales from future-dated reservations.
type TipoVenta string

const (
	TipoInmediato TipoVenta = "Inmediato"
	TipoReserva   TipoVenta = "Reserva"
)

func (t TipoVenta) Valido() bool {
	return t == TipoInmediato || t == TipoReserva
}

// EstadoVerificacion tracks the manual bank-statement check of one payment.
type EstadoVerificacion string

const (
	VerificacionPendiente  EstadoVerificacion = "Por verificar"
	VerificacionVerificado EstadoVerificacion = "Verificado"
	VerificacionRechazado  EstadoVerificacion = "Rechazado"
)

func (e EstadoVerificacion) Valido() bool {
	switch e {
	case VerificacionPendiente, VerificacionVerificado, VerificacionRechazado:
		return true
	}
	return false
}

// PuedeCambiarA allows only the one-way fan-out from Por verificar.
func (e EstadoVerificacion) PuedeCambiarA(destino EstadoVerificacion) bool {
	return e == VerificacionPendiente &&
		(destino == VerificacionVerificado || destino == VerificacionRechazado)
}

// Normalizar maps the empty value written by older rows to Por verificar.
func (e EstadoVerificacion) Normalizar() EstadoVerificacion {
	if e == "" {
		return VerificacionPendiente
	}
	return e
}
