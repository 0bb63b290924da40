package service

import (
	"context"
	"testing"
	"time"

	"colchones/internal/apierror"
	"colchones/internal/config"
	"colchones/internal/dto"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthSvc() (*authService, *stubUsuarioRepo) {
	repo := newStubUsuarioRepo()
	cfg := &config.Config{JWTSecret: "secreto-de-prueba", JWTExpirationHours: 8, JWTRefreshHours: 24}
	return NewAuthService(repo, cfg).(*authService), repo
}

func crearVendedora(t *testing.T, svc *authService) *dto.UsuarioResponse {
	t.Helper()
	u, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: " carla ", Nombre: "Carla Rivas", Email: ptr("carla@boxisleep.com"), Password: "colchon123", Rol: RolVendedor,
	})
	require.NoError(t, err)
	return u
}

func TestLogin_EmiteParDeTokens(t *testing.T) {
	svc, _ := newAuthSvc()
	u := crearVendedora(t, svc)
	assert.Equal(t, "carla", u.Username)

	r, err := svc.Login(context.Background(), dto.LoginRequest{Username: "carla", Password: "colchon123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", r.TokenType)
	assert.Equal(t, 8*3600, r.ExpiresIn)
	assert.Equal(t, RolVendedor, r.User.Rol)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(r.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secreto-de-prueba"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, TokenAcceso, claims["typ"])
	assert.Equal(t, u.ID, claims["user_id"])
}

func TestLogin_PorEmail(t *testing.T) {
	svc, _ := newAuthSvc()
	crearVendedora(t, svc)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "carla@boxisleep.com", Password: "colchon123"})
	assert.NoError(t, err)
}

func TestLogin_Rechazos(t *testing.T) {
	svc, _ := newAuthSvc()
	u := crearVendedora(t, svc)
	ctx := context.Background()

	_, err := svc.Login(ctx, dto.LoginRequest{Username: "carla", Password: "otra-clave"})
	assert.ErrorIs(t, err, ErrCredenciales)
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "colchon123"})
	assert.ErrorIs(t, err, ErrCredenciales)

	require.NoError(t, svc.DesactivarUsuario(ctx, uuid.MustParse(u.ID)))
	_, err = svc.Login(ctx, dto.LoginRequest{Username: "carla", Password: "colchon123"})
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestRefresh_SoloConTokenDeRefresco(t *testing.T) {
	svc, _ := newAuthSvc()
	u := crearVendedora(t, svc)
	ctx := context.Background()
	r, err := svc.Login(ctx, dto.LoginRequest{Username: "carla", Password: "colchon123"})
	require.NoError(t, err)

	nuevo, err := svc.Refresh(ctx, r.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, nuevo.AccessToken)

	_, err = svc.Refresh(ctx, r.AccessToken)
	assert.ErrorIs(t, err, ErrCredenciales)
	_, err = svc.Refresh(ctx, "no-es-un-jwt")
	assert.ErrorIs(t, err, ErrCredenciales)

	require.NoError(t, svc.DesactivarUsuario(ctx, uuid.MustParse(u.ID)))
	_, err = svc.Refresh(ctx, r.RefreshToken)
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestRefresh_Expirado(t *testing.T) {
	svc, _ := newAuthSvc()
	crearVendedora(t, svc)
	ctx := context.Background()
	svc.ahora = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	r, err := svc.Login(ctx, dto.LoginRequest{Username: "carla", Password: "colchon123"})
	require.NoError(t, err)

	svc.ahora = time.Now
	_, err = svc.Refresh(ctx, r.RefreshToken)
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestUsuarios_ActualizarYListar(t *testing.T) {
	svc, _ := newAuthSvc()
	u := crearVendedora(t, svc)
	ctx := context.Background()
	id := uuid.MustParse(u.ID)

	act, err := svc.ActualizarUsuario(ctx, id, dto.ActualizarUsuarioRequest{Rol: RolFinanzas})
	require.NoError(t, err)
	assert.Equal(t, RolFinanzas, act.Rol)
	assert.Equal(t, "Carla Rivas", act.Nombre)

	require.NoError(t, svc.DesactivarUsuario(ctx, id))
	activos, err := svc.ListarUsuarios(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, activos)
	todos, err := svc.ListarUsuarios(ctx, true)
	require.NoError(t, err)
	assert.Len(t, todos, 1)

	require.NoError(t, svc.ReactivarUsuario(ctx, id))
	assert.ErrorIs(t, svc.ReactivarUsuario(ctx, uuid.New()), apierror.ErrNoEncontrado)
}

func TestCrearUsuario_Duplicado(t *testing.T) {
	svc, _ := newAuthSvc()
	crearVendedora(t, svc)
	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "carla", Nombre: "Otra", Password: "colchon123", Rol: RolVendedor,
	})
	assert.ErrorIs(t, err, apierror.ErrConflicto)
}
