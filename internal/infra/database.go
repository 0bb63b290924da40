package infra

import (
	"fmt"
	"strings"

	"colchones/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (CHECK constraints over the closed enum sets, sequences).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the schema. Integration tests call it directly on the
// container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Venta{},
		&model.Cuota{},
		&model.Egreso{},
		&model.Prospecto{},
		&model.ConfiguracionSeguimiento{},
		&model.ConfiguracionCashea{},
		&model.EjecucionTarea{},
		&model.SnapshotImportacion{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// checkConstraint renders an idempotent ADD CONSTRAINT ... CHECK (col IN (...)).
// A NULL column passes the check, so nullable enums stay optional.
func checkConstraint(tabla, columna string, valores []string) string {
	nombre := fmt.Sprintf("chk_%s_%s", tabla, columna)
	quoted := make([]string, len(valores))
	for i, v := range valores {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return fmt.Sprintf(`DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[1]s') THEN
    ALTER TABLE %[2]s ADD CONSTRAINT %[1]s CHECK (%[3]s IN (%[4]s));
  END IF;
END $$`, nombre, tabla, columna, strings.Join(quoted, ", "))
}

func enumStrings[T ~string](vals ...T) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = string(v)
	}
	return out
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate cannot
// express. Each statement is guarded so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	verificacion := enumStrings(model.VerificacionPendiente, model.VerificacionVerificado, model.VerificacionRechazado)

	patches := []string{
		checkConstraint("ventas", "estado_entrega", enumStrings(model.EstadosEntrega...)),
		checkConstraint("ventas", "canal", enumStrings(model.CanalShopify, model.CanalCashea, model.CanalTreble, model.CanalManual, model.CanalTienda)),
		checkConstraint("ventas", "marca", enumStrings(model.MarcaBoxiSleep, model.MarcaMompox)),
		checkConstraint("ventas", "tipo", enumStrings(model.TipoInmediato, model.TipoReserva)),
		checkConstraint("ventas", "estado_verificacion_inicial", verificacion),
		checkConstraint("ventas", "estado_verificacion_flete", verificacion),
		checkConstraint("cuotas", "estado_verificacion", verificacion),
		checkConstraint("egresos", "estado", enumStrings(model.EgresoRegistrado, model.EgresoAprobado, model.EgresoPagado, model.EgresoAnulado)),
		checkConstraint("egresos", "estado_verificacion", verificacion),
		checkConstraint("egresos", "moneda", []string{"USD", "VES"}),
		checkConstraint("egresos", "frecuencia_recurrencia", enumStrings(
			model.FrecuenciaDiario, model.FrecuenciaSemanal, model.FrecuenciaQuincenal, model.FrecuenciaMensual,
			model.FrecuenciaTrimestral, model.FrecuenciaSemestral, model.FrecuenciaAnual)),
		checkConstraint("prospectos", "estado", enumStrings(model.ProspectoNuevo, model.ProspectoEnSeguimiento, model.ProspectoConvertido, model.ProspectoDescartado)),
		checkConstraint("usuarios", "rol", []string{"administrador", "finanzas", "vendedor", "logistica"}),

		// manual order numbers
		`CREATE SEQUENCE IF NOT EXISTS ventas_orden_manual_seq START 1000`,

		// a series position never exceeds its declared length
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_egresos_numero_en_serie') THEN
		    ALTER TABLE egresos ADD CONSTRAINT chk_egresos_numero_en_serie
		      CHECK (numero_en_serie IS NULL OR (numero_en_serie >= 1 AND numero_en_serie <= numero_repeticiones));
		  END IF;
		END $$`,

		// verification view filters
		`CREATE INDEX IF NOT EXISTS idx_ventas_pago_inicial_pendiente
		    ON ventas (estado_verificacion_inicial) WHERE pago_inicial_usd IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_cuotas_estado_verificacion ON cuotas (estado_verificacion)`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
