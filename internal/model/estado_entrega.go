package model

// EstadoEntrega is the per-line delivery lifecycle.
type EstadoEntrega string

const (
	EntregaPendiente  EstadoEntrega = "Pendiente"
	EntregaPerdida    EstadoEntrega = "Perdida"
	EntregaEnProceso  EstadoEntrega = "En proceso"
	EntregaADespachar EstadoEntrega = "A despachar"
	EntregaEnTransito EstadoEntrega = "En tránsito"
	EntregaEntregado  EstadoEntrega = "Entregado"
	EntregaADevolver  EstadoEntrega = "A devolver"
	EntregaDevuelto   EstadoEntrega = "Devuelto"
	EntregaCancelada  EstadoEntrega = "Cancelada"
)

// EstadosEntrega lists the closed set in display order.
var EstadosEntrega = []EstadoEntrega{
	EntregaPendiente, EntregaPerdida, EntregaEnProceso, EntregaADespachar,
	EntregaEnTransito, EntregaEntregado, EntregaADevolver, EntregaDevuelto,
	EntregaCancelada,
}

// transicionesEntrega holds the forward and return edges. Perdida and
// Cancelada are added for every non-terminal state in PuedeTransicionarA.
var transicionesEntrega = map[EstadoEntrega][]EstadoEntrega{
	EntregaPendiente:  {EntregaEnProceso, EntregaADespachar},
	EntregaEnProceso:  {EntregaADespachar},
	EntregaADespachar: {EntregaEnTransito},
	EntregaEnTransito: {EntregaEntregado},
	EntregaEntregado:  {EntregaADevolver},
	EntregaADevolver:  {EntregaDevuelto},
}

func (e EstadoEntrega) Valido() bool {
	for _, v := range EstadosEntrega {
		if v == e {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition may leave e.
func (e EstadoEntrega) Terminal() bool {
	return e == EntregaDevuelto || e == EntregaCancelada || e == EntregaPerdida
}

// Cerrado reports states hidden from the default order views.
func (e EstadoEntrega) Cerrado() bool {
	return e == EntregaPerdida || e == EntregaCancelada
}

// PuedeTransicionarA reports whether destino is a legal next state.
// Staying in the same state is not a transition and returns false.
func (e EstadoEntrega) PuedeTransicionarA(destino EstadoEntrega) bool {
	if !e.Valido() || !destino.Valido() || e == destino || e.Terminal() {
		return false
	}
	if destino == EntregaPerdida || destino == EntregaCancelada {
		return true
	}
	for _, d := range transicionesEntrega[e] {
		if d == destino {
			return true
		}
	}
	return false
}

// RequiereConfirmacion marks destinations the UI must confirm explicitly.
func (e EstadoEntrega) RequiereConfirmacion() bool {
	return e == EntregaCancelada || e == EntregaDevuelto
}

// AutoDespachable reports whether a fully paid line in e moves to A despachar.
func (e EstadoEntrega) AutoDespachable() bool {
	return e == EntregaPendiente || e == EntregaEnProceso
}
