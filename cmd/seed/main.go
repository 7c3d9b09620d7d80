// seed crea usuarios de prueba (uno por rol), categorías y proveedores base.
//
// Uso: go run ./cmd/seed
// Lee la misma configuración que la API (DATABASE_URL o DB_*). SEED_PASSWORD define la contraseña común.
// Es idempotente: los registros existentes se omiten.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ispstock-api/internal/application/auth"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ispstock-api/pkg/config"
	"github.com/jhoicas/ispstock-api/pkg/logger"
)

type seedUser struct {
	username, email, fullName, role string
}

var users = []seedUser{
	{"admin", "admin@ispstock.local", "Administrador", entity.RoleAdmin},
	{"bodega", "bodega@ispstock.local", "Jefe de bodega", entity.RoleManager},
	{"tecnico", "tecnico@ispstock.local", "Técnico de campo", entity.RoleTechnician},
	{"ventas", "ventas@ispstock.local", "Asesor comercial", entity.RoleSales},
}

var categories = []entity.Category{
	{Name: "Routers", Code: "RTR", Description: "Routers y equipos CPE"},
	{Name: "ONTs", Code: "ONT", Description: "Terminales de fibra óptica"},
	{Name: "Cableado", Code: "CBL", Description: "Fibra drop, UTP y conectores"},
	{Name: "Antenas", Code: "ANT", Description: "Radioenlaces y antenas sectoriales"},
}

var suppliers = []entity.Supplier{
	{Name: "Huawei Technologies", Code: "HUAWEI", Email: "ventas@huawei.example"},
	{Name: "TP-Link", Code: "TPLINK", Email: "canal@tplink.example"},
	{Name: "Ubiquiti", Code: "UBNT", Email: "sales@ui.example"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "seed"})

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "cambiar123"
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración del esquema")
	}

	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	supplierRepo := postgres.NewSupplierRepository(pool)
	now := time.Now().UTC()

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatal().Err(err).Msg("hash de contraseña")
	}
	for _, u := range users {
		err := userRepo.Create(ctx, &entity.User{
			ID:           uuid.New().String(),
			Username:     u.username,
			Email:        u.email,
			PasswordHash: hash,
			FullName:     u.fullName,
			Role:         u.role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		report(log, "usuario", u.username, err)
	}

	for _, c := range categories {
		c.ID = uuid.New().String()
		c.IsActive = true
		c.CreatedAt, c.UpdatedAt = now, now
		report(log, "categoría", c.Code, categoryRepo.Create(ctx, &c))
	}

	for _, s := range suppliers {
		s.ID = uuid.New().String()
		s.IsActive = true
		s.CreatedAt, s.UpdatedAt = now, now
		report(log, "proveedor", s.Code, supplierRepo.Create(ctx, &s))
	}

	log.Info().Msg("seed completado")
}

func report(log *logger.Logger, kind, key string, err error) {
	switch {
	case err == nil:
		log.Info().Str("tipo", kind).Str("clave", key).Msg("creado")
	case errors.Is(err, domain.ErrConflict):
		log.Debug().Str("tipo", kind).Str("clave", key).Msg("ya existe")
	default:
		log.Fatal().Err(err).Str("tipo", kind).Str("clave", key).Msg("seed")
	}
}
