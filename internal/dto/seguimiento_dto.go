package dto

// CalcularSeguimientoRequest drives the follow-up dialog. The client sends
// back the dates and pinned flags of its editing session; EditarFase (1-based)
// with Fecha applies one manual edit before recomputing.
type CalcularSeguimientoRequest struct {
	Base       string     `json:"base"        validate:"required,datetime=2006-01-02"`
	Dias       *[3]int    `json:"dias"        validate:"omitempty,dive,min=0,max=365"`
	Fechas     [3]*string `json:"fechas"`
	Fijadas    [3]bool    `json:"fijadas"`
	EditarFase *int       `json:"editar_fase" validate:"omitempty,min=1,max=3"`
	Fecha      *string    `json:"fecha"       validate:"required_with=EditarFase,omitempty,datetime=2006-01-02"`
}

type CalcularSeguimientoResponse struct {
	Fechas  [3]string `json:"fechas"`
	Fijadas [3]bool   `json:"fijadas"`
	Dias    [3]int    `json:"dias"`
}

type ConfiguracionSeguimientoRequest struct {
	DiasFase1    int    `json:"dias_fase_1"   validate:"min=0,max=365"`
	DiasFase2    int    `json:"dias_fase_2"   validate:"min=0,max=365"`
	DiasFase3    int    `json:"dias_fase_3"   validate:"min=0,max=365"`
	EmailGeneral string `json:"email_general" validate:"omitempty,email"`
}

type ConfiguracionSeguimientoResponse struct {
	DiasFase1    int    `json:"dias_fase_1"`
	DiasFase2    int    `json:"dias_fase_2"`
	DiasFase3    int    `json:"dias_fase_3"`
	EmailGeneral string `json:"email_general"`
}

type ConfiguracionCasheaRequest struct {
	Activo         bool `json:"activo"`
	IntervaloHoras int  `json:"intervalo_horas" validate:"required,min=1,max=24"`
	DiasVentana    int  `json:"dias_ventana"    validate:"required,min=1,max=30"`
}

type ConfiguracionCasheaResponse struct {
	Activo         bool `json:"activo"`
	IntervaloHoras int  `json:"intervalo_horas"`
	DiasVentana    int  `json:"dias_ventana"`
}
