package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"malayalees/src/core/domain"
	"malayalees/src/core/ports"
)

// organizationRules holds the tenant organization fields checked on write.
type organizationRules struct {
	TenantID         string `json:"tenantId" validate:"required,max=64,tenantid"`
	OrganizationName string `json:"organizationName" validate:"required,max=255"`
	ContactEmail     string `json:"contactEmail" validate:"omitempty,email"`
	PrimaryColor     string `json:"primaryColor" validate:"omitempty,hexcolor"`
	SecondaryColor   string `json:"secondaryColor" validate:"omitempty,hexcolor"`
	LogoURL          string `json:"logoUrl" validate:"omitempty,url"`
}

func validateOrganization(org *domain.TenantOrganization) error {
	org.TenantID = strings.TrimSpace(org.TenantID)
	org.OrganizationName = strings.TrimSpace(org.OrganizationName)
	return validateStruct(organizationRules{
		TenantID:         org.TenantID,
		OrganizationName: org.OrganizationName,
		ContactEmail:     org.ContactEmail,
		PrimaryColor:     org.PrimaryColor,
		SecondaryColor:   org.SecondaryColor,
		LogoURL:          org.LogoURL,
	})
}

// TenantService manages tenant organizations and per-tenant settings.
type TenantService struct {
	tenants  ports.TenantRepository
	cache    ports.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

func NewTenantService(tenants ports.TenantRepository, cache ports.Cache, cacheTTL time.Duration, log *slog.Logger) *TenantService {
	return &TenantService{tenants: tenants, cache: cache, cacheTTL: cacheTTL, log: log}
}

// ListOrganizations returns one page of organizations, optionally filtered by name.
func (s *TenantService) ListOrganizations(ctx context.Context, page, perPage int, search string) (*ports.PageResult[domain.TenantOrganization], error) {
	page, perPage = normalizePage(page, perPage)
	q := ports.ListQuery{Page: page, PerPage: perPage, Sort: []string{"organizationName,asc"}}
	if term := strings.TrimSpace(search); term != "" {
		q = q.Where("organizationName", ports.OpContains, term)
	}
	return s.tenants.ListOrganizations(ctx, q)
}

func (s *TenantService) GetOrganization(ctx context.Context, id int64) (*domain.TenantOrganization, error) {
	return s.tenants.GetOrganization(ctx, id)
}

// CreateOrganization registers a new tenant. Tenant ids are unique.
func (s *TenantService) CreateOrganization(ctx context.Context, org *domain.TenantOrganization) (*domain.TenantOrganization, error) {
	if err := validateOrganization(org); err != nil {
		return nil, err
	}

	existing, err := s.tenants.ListOrganizations(ctx, ports.ListQuery{Page: 1, PerPage: 1}.
		Where("tenantId", ports.OpEquals, org.TenantID))
	if err != nil {
		return nil, err
	}
	if len(existing.Items) > 0 {
		return nil, domain.NewConflictError(fmt.Sprintf("tenant %q already exists", org.TenantID))
	}

	org.ID = 0
	created, err := s.tenants.CreateOrganization(ctx, org)
	if err != nil {
		return nil, err
	}
	s.log.Info("tenant organization created", "tenant_id", created.TenantID, "organization_id", created.ID)
	return created, nil
}

// UpdateOrganization replaces an organization. The tenant id cannot change.
func (s *TenantService) UpdateOrganization(ctx context.Context, id int64, org *domain.TenantOrganization) (*domain.TenantOrganization, error) {
	current, err := s.tenants.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	if org.TenantID == "" {
		org.TenantID = current.TenantID
	}
	if org.TenantID != current.TenantID {
		return nil, domain.NewValidationError("tenantId", "tenantId cannot be changed")
	}
	if err := validateOrganization(org); err != nil {
		return nil, err
	}
	org.ID = id
	return s.tenants.UpdateOrganization(ctx, org)
}

func (s *TenantService) DeleteOrganization(ctx context.Context, id int64) error {
	if err := s.tenants.DeleteOrganization(ctx, id); err != nil {
		return err
	}
	s.log.Info("tenant organization deleted", "organization_id", id)
	return nil
}

func settingsKey(tenantID string) string {
	return tenantID + ":settings"
}

// storedSettings returns the tenant's settings including secrets. It always
// reads the backend so secrets never reach the cache. A tenant without a
// settings row gets unsaved defaults.
func (s *TenantService) storedSettings(ctx context.Context, tenantID string) (*domain.TenantSettings, error) {
	settings, err := s.tenants.GetSettings(ctx, tenantID)
	if domain.IsNotFound(err) {
		return defaultSettings(tenantID), nil
	}
	return settings, err
}

func defaultSettings(tenantID string) *domain.TenantSettings {
	return &domain.TenantSettings{
		TenantID:                tenantID,
		AllowUserRegistration:   true,
		EnableGuestRegistration: true,
	}
}

// Settings returns the tenant's settings with secrets masked. Only the
// masked copy is cached.
func (s *TenantService) Settings(ctx context.Context, tenantID string) (*domain.TenantSettings, error) {
	return readThrough(ctx, s.cache, s.log, settingsKey(tenantID), s.cacheTTL, func() (*domain.TenantSettings, error) {
		settings, err := s.storedSettings(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		return maskSettings(settings), nil
	})
}

// SaveSettings creates or updates the tenant's settings. Masked or empty
// secrets keep the stored values.
func (s *TenantService) SaveSettings(ctx context.Context, tenantID string, in *domain.TenantSettings) (*domain.TenantSettings, error) {
	stored, err := s.storedSettings(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	next := *in
	next.ID = stored.ID
	next.TenantID = tenantID
	if in.TwilioAuthToken == "" || in.TwilioAuthToken == domain.MaskedSecret {
		next.TwilioAuthToken = stored.TwilioAuthToken
	}
	if in.WhatsappWebhookToken == "" || in.WhatsappWebhookToken == domain.MaskedSecret {
		next.WhatsappWebhookToken = stored.WhatsappWebhookToken
	}
	if in.WhatsappAPIKey == "" || in.WhatsappAPIKey == domain.MaskedSecret {
		next.WhatsappAPIKey = stored.WhatsappAPIKey
	}
	if next.PlatformFeePercentage != nil && (*next.PlatformFeePercentage < 0 || *next.PlatformFeePercentage > 100) {
		return nil, domain.NewValidationError("platformFeePercentage", "platformFeePercentage must be between 0 and 100")
	}

	saved, err := s.save(ctx, &next)
	if err != nil {
		return nil, err
	}
	return maskSettings(saved), nil
}

func (s *TenantService) save(ctx context.Context, settings *domain.TenantSettings) (*domain.TenantSettings, error) {
	saved, err := s.tenants.SaveSettings(ctx, settings)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, settingsKey(settings.TenantID)); err != nil {
			s.log.Warn("cache invalidation failed", "key", settingsKey(settings.TenantID), "error", err)
		}
	}
	s.log.Info("tenant settings saved", "tenant_id", settings.TenantID, "settings_id", saved.ID)
	return saved, nil
}

func maskSettings(in *domain.TenantSettings) *domain.TenantSettings {
	out := *in
	for _, secret := range []*string{&out.TwilioAuthToken, &out.WhatsappWebhookToken, &out.WhatsappAPIKey} {
		if *secret != "" {
			*secret = domain.MaskedSecret
		}
	}
	return &out
}
