package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"wegroup/internal/caching"
	"wegroup/internal/models"
	"wegroup/internal/repositories"

	"github.com/google/uuid"
)

const moduleCacheTTL = 5 * time.Minute

type TenantService interface {
	Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	// LookupByDomain matches the primary domain or the subdomain.
	LookupByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	// ListActiveModules returns the module types currently enabled for the
	// tenant, backed by a short-lived cache invalidated on toggle.
	ListActiveModules(ctx context.Context, tenantID uuid.UUID) ([]models.ModuleType, error)
	SetModuleActive(ctx context.Context, tenantID uuid.UUID, moduleType models.ModuleType, active bool) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo  repositories.TenantRepository
	moduleRepo  repositories.TenantModuleRepository
	provisioner ProvisioningService
	cacheSvc    caching.CacheService
}

func NewTenantService(tenantRepo repositories.TenantRepository, moduleRepo repositories.TenantModuleRepository, provisioner ProvisioningService, cacheSvc caching.CacheService) TenantService {
	return &tenantService{
		tenantRepo:  tenantRepo,
		moduleRepo:  moduleRepo,
		provisioner: provisioner,
		cacheSvc:    cacheSvc,
	}
}

type CreateTenantRequest struct {
	Name      string `json:"name" validate:"required"`
	Domain    string `json:"domain" validate:"required"`
	Subdomain string `json:"subdomain"`
}

func (s *tenantService) Create(ctx context.Context, req *CreateTenantRequest) (*models.Tenant, error) {
	if req.Name == "" || req.Domain == "" {
		return nil, errors.New("name and domain are required")
	}
	if strings.TrimSpace(req.Domain) != req.Domain || strings.Contains(req.Domain, " ") {
		return nil, errors.New("domain cannot have spaces")
	}

	tenant := &models.Tenant{
		ID:        uuid.New(),
		Name:      req.Name,
		Domain:    req.Domain,
		Subdomain: req.Subdomain,
		Settings:  models.JSONB{},
		Status:    models.TenantStatusActive,
	}

	// Tenant and its default module rows land in one transaction.
	if err := s.tenantRepo.CreateWithModules(ctx, tenant, models.DefaultModuleTypes()); err != nil {
		return nil, err
	}

	// System roles are provisioned after onboarding; the upsert is idempotent
	// so a retry after partial failure converges.
	if err := s.provisioner.EnsureSystemRoles(ctx, tenant.ID); err != nil {
		return nil, err
	}

	return tenant, nil
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	return s.tenantRepo.GetByID(ctx, id)
}

func (s *tenantService) LookupByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	if domain == "" {
		return nil, errors.New("domain is required")
	}
	return s.tenantRepo.GetByDomain(ctx, domain)
}

func (s *tenantService) ListActiveModules(ctx context.Context, tenantID uuid.UUID) ([]models.ModuleType, error) {
	if cached, err := s.cacheSvc.GetActiveModules(ctx, tenantID); err == nil && cached != nil {
		return cached, nil
	}

	moduleTypes, err := s.moduleRepo.ListActiveTypes(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	// Best effort; a cache write failure never fails the read.
	_ = s.cacheSvc.SetActiveModules(ctx, tenantID, moduleTypes, moduleCacheTTL)
	return moduleTypes, nil
}

func (s *tenantService) SetModuleActive(ctx context.Context, tenantID uuid.UUID, moduleType models.ModuleType, active bool) error {
	if err := s.moduleRepo.SetActive(ctx, tenantID, moduleType, active); err != nil {
		return err
	}
	return s.cacheSvc.InvalidateActiveModules(ctx, tenantID)
}

func (s *tenantService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.tenantRepo.Deactivate(ctx, id)
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return s.tenantRepo.List(ctx, limit, offset)
}
