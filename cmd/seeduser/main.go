// cmd/seeduser/main.go: crea o actualiza el usuario administrador inicial.
// Uso: SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"fmt"
	"os"

	"colchones/internal/config"
	"colchones/internal/infra"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	username := envOr("SEED_USERNAME", "admin")
	password := os.Getenv("SEED_PASSWORD")
	nombre := envOr("SEED_NOMBRE", "Administrador")
	email := envOr("SEED_EMAIL", "admin@boxisleep.com")
	rol := envOr("SEED_ROL", "administrador")
	if len(password) < 8 {
		log.Fatal().Msg("SEED_PASSWORD debe tener al menos 8 caracteres")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (username, nombre, email, password_hash, rol, activo)
		VALUES (?, ?, ?, ?, ?, true)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre = EXCLUDED.nombre,
		    email = EXCLUDED.email,
		    rol = EXCLUDED.rol,
		    activo = true
	`, username, nombre, email, string(hash), rol)

	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert")
	}
	fmt.Printf("Usuario '%s' (%s) creado/actualizado\n", username, rol)
}
