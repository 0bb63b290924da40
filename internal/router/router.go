package router

import (
	"context"
	"time"

	"colchones/internal/config"
	"colchones/internal/handler"
	"colchones/internal/infra"
	"colchones/internal/middleware"
	"colchones/internal/repository"
	"colchones/internal/service"
	"colchones/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators cmd/server owns and shuts down.
// Cola may be nil in tests, which disables outbound e-mail. Cashea is nil
// when no API key is configured.
type Deps struct {
	DB        *gorm.DB
	Redis     redis.UniversalClient
	Scheduler *worker.Scheduler
	Cola      *worker.Dispatcher
	Cashea    *infra.CasheaClient
}

// New wires all dependencies, registers the scheduled jobs and returns a
// configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	db, rdb := deps.DB, deps.Redis
	loc := cfg.Location()

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(rdb, "api", 1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	ventaRepo := repository.NewVentaRepository(db)
	cuotaRepo := repository.NewCuotaRepository(db)
	egresoRepo := repository.NewEgresoRepository(db)
	prospectoRepo := repository.NewProspectoRepository(db)
	verificacionRepo := repository.NewVerificacionRepository(db)
	configRepo := repository.NewConfiguracionRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	ejecucionRepo := repository.NewEjecucionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	var cola service.ColaCorreo
	if deps.Cola != nil {
		cola = deps.Cola
	}
	var cashea service.FuenteCashea
	var casheaCB *infra.CircuitBreaker
	if deps.Cashea != nil {
		cashea = deps.Cashea
		casheaCB = deps.Cashea.Breaker()
	}

	authSvc := service.NewAuthService(usuarioRepo, cfg)
	ventaSvc := service.NewVentaService(ventaRepo, cuotaRepo, configRepo, cola, loc, cfg.DefaultPhoneRegion)
	cuotaSvc := service.NewCuotaService(cuotaRepo, ventaRepo, cola, loc)
	egresoSvc := service.NewEgresoService(egresoRepo, loc)
	prospectoSvc := service.NewProspectoService(prospectoRepo, configRepo, loc, cfg.DefaultPhoneRegion)
	seguimientoSvc := service.NewSeguimientoService(ventaRepo, prospectoRepo, configRepo, cola, loc)
	verificacionSvc := service.NewVerificacionService(verificacionRepo)
	configSvc := service.NewConfiguracionService(configRepo, deps.Scheduler)
	ingestaSvc := service.NewIngestaService(ventaRepo, cuotaRepo, configRepo, cashea, loc, cfg.DefaultPhoneRegion)
	importacionSvc := service.NewImportacionService(ventaRepo, egresoRepo, snapshotRepo, configRepo, loc)
	tareaSvc := service.NewTareaService(deps.Scheduler, ejecucionRepo, loc)
	var correoSvc service.CorreoService
	if deps.Cola != nil {
		correoSvc = service.NewCorreoService(deps.Cola, loc)
	}

	// ── Scheduled jobs ───────────────────────────────────────────────────────
	registrarTareas(cfg, deps.Scheduler, configRepo, ingestaSvc, seguimientoSvc, egresoSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	ventasH := handler.NewVentasHandler(ventaSvc)
	cuotasH := handler.NewCuotasHandler(cuotaSvc)
	egresosH := handler.NewEgresosHandler(egresoSvc)
	prospectosH := handler.NewProspectosHandler(prospectoSvc)
	verificacionH := handler.NewVerificacionHandler(verificacionSvc)
	seguimientoH := handler.NewSeguimientoHandler(seguimientoSvc, configSvc)
	webhooksH := handler.NewWebhooksHandler(ingestaSvc)
	importacionesH := handler.NewImportacionesHandler(importacionSvc)
	tareasH := handler.NewTareasHandler(tareaSvc)
	correosH := handler.NewCorreosHandler(correoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, casheaCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(rdb), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Inbound webhooks: shared secret instead of JWT
	hooks := r.Group("/v1/webhooks", middleware.WebhookToken(cfg.WebhookToken))
	{
		hooks.POST("/tienda", webhooksH.Tienda)
		hooks.POST("/treble", webhooksH.Treble)
	}

	// Protected routes
	const (
		admin     = service.RolAdministrador
		finanzas  = service.RolFinanzas
		vendedor  = service.RolVendedor
		logistica = service.RolLogistica
	)
	todos := middleware.RequireRole(admin, finanzas, vendedor, logistica)
	ventas := middleware.RequireRole(admin, vendedor)
	cobros := middleware.RequireRole(admin, finanzas, vendedor)
	soloFinanzas := middleware.RequireRole(admin, finanzas)

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/ventas", todos, ventasH.Listar)
		v1.GET("/ventas/exportar", soloFinanzas, importacionesH.ExportarVentas)
		v1.GET("/ventas/:id", todos, ventasH.Obtener)
		v1.POST("/ventas", ventas, ventasH.Crear)
		v1.PUT("/ventas/:id", ventas, ventasH.Actualizar)
		v1.DELETE("/ventas/:id", middleware.RequireRole(admin), ventasH.Eliminar)
		// Logistica moves lines through dispatch and delivery
		v1.PATCH("/ventas/:id/estado", middleware.RequireRole(admin, vendedor, logistica), ventasH.CambiarEstado)

		ordenes := v1.Group("/ordenes/:orden")
		{
			ordenes.GET("/resumen", todos, ventasH.Resumen)
			ordenes.GET("/pdf", todos, ventasH.ResumenPDF)
			ordenes.PUT("/pago-inicial", cobros, ventasH.PagoInicial)
			ordenes.PUT("/flete", cobros, ventasH.Flete)
			ordenes.GET("/cuotas", todos, cuotasH.Listar)
			ordenes.POST("/cuotas", cobros, cuotasH.Crear)
		}
		cuotas := v1.Group("/cuotas", cobros)
		{
			cuotas.PUT("/:id", cuotasH.Actualizar)
			cuotas.DELETE("/:id", cuotasH.Eliminar)
		}

		egresos := v1.Group("/egresos", soloFinanzas)
		{
			egresos.POST("", egresosH.Crear)
			egresos.GET("", egresosH.Listar)
			egresos.GET("/exportar", importacionesH.ExportarEgresos)
			egresos.GET("/:id", egresosH.Obtener)
			egresos.PUT("/:id", egresosH.Actualizar)
			egresos.PATCH("/:id/estado", egresosH.CambiarEstado)
			egresos.DELETE("/:id", egresosH.Eliminar)
		}

		prospectos := v1.Group("/prospectos", ventas)
		{
			prospectos.POST("", prospectosH.Crear)
			prospectos.GET("", prospectosH.Listar)
			prospectos.GET("/:id", prospectosH.Obtener)
			prospectos.PUT("/:id", prospectosH.Actualizar)
			prospectos.DELETE("/:id", prospectosH.Eliminar)
		}

		verif := v1.Group("/verificacion", soloFinanzas)
		{
			verif.GET("", verificacionH.Listar)
			verif.PATCH("/:tipo/:id", verificacionH.Actualizar)
		}

		v1.POST("/seguimiento/calcular", ventas, seguimientoH.Calcular)

		conf := v1.Group("/configuracion")
		{
			conf.GET("/seguimiento", todos, seguimientoH.ObtenerConfiguracion)
			conf.PUT("/seguimiento", middleware.RequireRole(admin), seguimientoH.GuardarConfiguracion)
			conf.GET("/cashea", middleware.RequireRole(admin), seguimientoH.ObtenerCashea)
			conf.PUT("/cashea", middleware.RequireRole(admin), seguimientoH.GuardarCashea)
		}

		imp := v1.Group("/importaciones", soloFinanzas)
		{
			imp.POST("/ventas", importacionesH.ImportarVentas)
			imp.POST("/egresos", importacionesH.ImportarEgresos)
			imp.POST("/deshacer", importacionesH.Deshacer)
		}

		tareas := v1.Group("/tareas", middleware.RequireRole(admin))
		{
			tareas.GET("/ejecuciones", tareasH.Historial)
			tareas.POST("/:tarea/ejecutar", tareasH.Ejecutar)
		}

		if correoSvc != nil {
			correos := v1.Group("/correos/fallidos", middleware.RequireRole(admin))
			{
				correos.GET("", correosH.Fallidos)
				correos.POST("/reencolar", correosH.Reencolar)
			}
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole(admin))
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI outside production only
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// registrarTareas binds the three jobs to the scheduler. The Cashea interval
// comes from the stored configuration, falling back to the environment.
func registrarTareas(
	cfg *config.Config,
	sched *worker.Scheduler,
	configRepo repository.ConfiguracionRepository,
	ingesta service.IngestaService,
	seguimiento service.SeguimientoService,
	egresos service.EgresoService,
) {
	must := func(nombre string, err error) {
		if err != nil {
			log.Fatal().Err(err).Str("tarea", nombre).Msg("scheduler: no se pudo registrar la tarea")
		}
	}
	must(worker.TareaRecordatorios, sched.Registrar(worker.TareaRecordatorios, cfg.RecordatorioCron, service.TareaRecordatorios(seguimiento)))
	must(worker.TareaRecurrencias, sched.Registrar(worker.TareaRecurrencias, cfg.RecurrenciaCron, service.TareaRecurrencias(egresos)))
	must(worker.TareaCashea, sched.Registrar(worker.TareaCashea, "", service.TareaCashea(ingesta)))

	activo, horas := true, cfg.CasheaIntervaloHoras
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if c, err := configRepo.GetCashea(ctx); err != nil {
		log.Warn().Err(err).Msg("scheduler: configuracion de Cashea no disponible, se usa el entorno")
	} else {
		activo, horas = c.Activo, c.IntervaloHoras
	}
	must(worker.TareaCashea, sched.ReprogramarCashea(activo, horas))
}
