package dto

// ProspectoFilter is bound from query string of GET /v1/prospectos.
type ProspectoFilter struct {
	Estado   string `form:"estado"`
	Marca    string `form:"marca"`
	AsesorID string `form:"asesor_id"`
	Q        string `form:"q"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type ProspectoListResponse struct {
	Data  []ProspectoResponse `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

// CrearProspectoRequest: follow-up dates left empty are derived from the
// configured offsets.
type CrearProspectoRequest struct {
	Nombre            string  `json:"nombre"           validate:"required,max=150"`
	Telefono          string  `json:"telefono"         validate:"max=30"`
	Email             string  `json:"email"            validate:"omitempty,email"`
	Canal             string  `json:"canal"            validate:"max=40"`
	Marca             string  `json:"marca"            validate:"required,oneof=BoxiSleep Mompox"`
	ProductoInteres   string  `json:"producto_interes" validate:"max=200"`
	AsesorID          *string `json:"asesor_id"        validate:"omitempty,uuid"`
	FechaCreacion     string  `json:"fecha_creacion"   validate:"omitempty,datetime=2006-01-02"`
	FechaSeguimiento1 *string `json:"fecha_seguimiento_1" validate:"omitempty,datetime=2006-01-02"`
	FechaSeguimiento2 *string `json:"fecha_seguimiento_2" validate:"omitempty,datetime=2006-01-02"`
	FechaSeguimiento3 *string `json:"fecha_seguimiento_3" validate:"omitempty,datetime=2006-01-02"`
	Notas             string  `json:"notas"`
}

type ActualizarProspectoRequest struct {
	Nombre                *string `json:"nombre"           validate:"omitempty,min=1,max=150"`
	Telefono              *string `json:"telefono"         validate:"omitempty,max=30"`
	Email                 *string `json:"email"            validate:"omitempty,email"`
	Canal                 *string `json:"canal"            validate:"omitempty,max=40"`
	ProductoInteres       *string `json:"producto_interes" validate:"omitempty,max=200"`
	AsesorID              *string `json:"asesor_id"        validate:"omitempty,uuid"`
	Estado                *string `json:"estado"           validate:"omitempty,oneof=nuevo en_seguimiento convertido descartado"`
	FechaSeguimiento1     *string `json:"fecha_seguimiento_1" validate:"omitempty,datetime=2006-01-02"`
	FechaSeguimiento2     *string `json:"fecha_seguimiento_2" validate:"omitempty,datetime=2006-01-02"`
	FechaSeguimiento3     *string `json:"fecha_seguimiento_3" validate:"omitempty,datetime=2006-01-02"`
	RespuestaSeguimiento1 *string `json:"respuesta_seguimiento_1"`
	RespuestaSeguimiento2 *string `json:"respuesta_seguimiento_2"`
	RespuestaSeguimiento3 *string `json:"respuesta_seguimiento_3"`
	Notas                 *string `json:"notas"`
}

type ProspectoResponse struct {
	ID                    string     `json:"id"`
	Nombre                string     `json:"nombre"`
	Telefono              string     `json:"telefono"`
	Email                 string     `json:"email"`
	Canal                 string     `json:"canal"`
	Marca                 string     `json:"marca"`
	ProductoInteres       string     `json:"producto_interes"`
	AsesorID              *string    `json:"asesor_id"`
	AsesorNombre          string     `json:"asesor_nombre,omitempty"`
	FechaCreacion         string     `json:"fecha_creacion"`
	Estado                string     `json:"estado"`
	FechasSeguimiento     [3]*string `json:"fechas_seguimiento"`
	RespuestasSeguimiento [3]string  `json:"respuestas_seguimiento"`
	Notas                 string     `json:"notas"`
}
