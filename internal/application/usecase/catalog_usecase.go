package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/policy"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// CategoryUseCase alta, consulta y baja de categorías.
type CategoryUseCase struct {
	repo repository.CategoryRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo}
}

// Create crea una categoría. Code duplicado → ErrConflict (lo informa el repositorio).
func (uc *CategoryUseCase) Create(ctx context.Context, actor policy.Actor, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := policy.Can(actor, policy.CatalogWrite, policy.Resource{}); err != nil {
		return nil, err
	}
	name, code := strings.TrimSpace(in.Name), strings.ToUpper(strings.TrimSpace(in.Code))
	if err := validateCatalog(name, code, 100); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Code:        code,
		Description: strings.TrimSpace(in.Description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return dto.NewCategoryResponse(c), nil
}

// GetByID obtiene una categoría por ID.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("categoría")
	}
	return dto.NewCategoryResponse(c), nil
}

// Update aplica los campos presentes. Code duplicado → ErrConflict.
func (uc *CategoryUseCase) Update(ctx context.Context, actor policy.Actor, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	if err := policy.Can(actor, policy.CatalogWrite, policy.Resource{}); err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("categoría")
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Code != nil {
		c.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.Description != nil {
		c.Description = strings.TrimSpace(*in.Description)
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := validateCatalog(c.Name, c.Code, 100); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return dto.NewCategoryResponse(c), nil
}

// List lista categorías; activeOnly filtra las inactivas.
func (uc *CategoryUseCase) List(ctx context.Context, activeOnly bool) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *dto.NewCategoryResponse(c))
	}
	return out, nil
}

// Delete elimina una categoría que ningún ítem referencia.
func (uc *CategoryUseCase) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.Can(actor, policy.CatalogWrite, policy.Resource{}); err != nil {
		return err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.NotFound("categoría")
	}
	used, err := uc.repo.InUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.Conflict("la categoría tiene ítems asociados")
	}
	return uc.repo.Delete(ctx, id)
}

// SupplierUseCase alta, consulta y baja de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

// Create crea un proveedor.
func (uc *SupplierUseCase) Create(ctx context.Context, actor policy.Actor, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	if err := policy.Can(actor, policy.CatalogWrite, policy.Resource{}); err != nil {
		return nil, err
	}
	name, code := strings.TrimSpace(in.Name), strings.ToUpper(strings.TrimSpace(in.Code))
	if err := validateCatalog(name, code, 150); err != nil {
		return nil, err
	}
	now := time.Now()
	s := &entity.Supplier{
		ID:            uuid.New().String(),
		Name:          name,
		Code:          code,
		ContactPerson: strings.TrimSpace(in.ContactPerson),
		Phone:         strings.TrimSpace(in.Phone),
		Email:         strings.TrimSpace(in.Email),
		Address:       strings.TrimSpace(in.Address),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return dto.NewSupplierResponse(s), nil
}

// GetByID obtiene un proveedor por ID.
func (uc *SupplierUseCase) GetByID(ctx context.Context, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("proveedor")
	}
	return dto.NewSupplierResponse(s), nil
}

// Update aplica los campos presentes.
func (uc *SupplierUseCase) Update(ctx context.Context, actor policy.Actor, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	if err := policy.Can(actor, policy.CatalogWrite, policy.Resource{}); err != nil {
		return nil, err
	}
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFound("proveedor")
	}
	trim := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	trim(&s.Name, in.Name)
	trim(&s.ContactPerson, in.ContactPerson)
	trim(&s.Phone, in.Phone)
	trim(&s.Email, in.Email)
	trim(&s.Address, in.Address)
	if in.Code != nil {
		s.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	if err := validateCatalog(s.Name, s.Code, 150); err != nil {
		return nil, err
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return dto.NewSupplierResponse(s), nil
}

// List lista proveedores.
func (uc *SupplierUseCase) List(ctx context.Context, activeOnly bool) ([]dto.SupplierResponse, error) {
	list, err := uc.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *dto.NewSupplierResponse(s))
	}
	return out, nil
}

// Delete elimina un proveedor sin ítems asociados.
func (uc *SupplierUseCase) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.Can(actor, policy.CatalogWrite, policy.Resource{}); err != nil {
		return err
	}
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s == nil {
		return domain.NotFound("proveedor")
	}
	used, err := uc.repo.InUse(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domain.Conflict("el proveedor tiene ítems asociados")
	}
	return uc.repo.Delete(ctx, id)
}

func validateCatalog(name, code string, maxName int) error {
	v := &domain.ValidationError{}
	switch {
	case name == "":
		v.Add("name", "requerido")
	case len([]rune(name)) > maxName:
		v.Add("name", "demasiado largo")
	}
	switch {
	case code == "":
		v.Add("code", "requerido")
	case len(code) > 20:
		v.Add("code", "máximo 20 caracteres")
	}
	return v.OrNil()
}
