package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"malayalees/src/core/domain"
)

func newTenantService(b *fakeBackend, c *mapCache) *TenantService {
	if c == nil {
		return NewTenantService(b, nil, time.Minute, discard())
	}
	return NewTenantService(b, c, time.Minute, discard())
}

func TestCreateOrganization_Validation(t *testing.T) {
	s := newTenantService(newFakeBackend(), nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		org   domain.TenantOrganization
		field string
	}{
		{"missing tenant", domain.TenantOrganization{OrganizationName: "MOSC"}, "tenantId"},
		{"uppercase tenant", domain.TenantOrganization{TenantID: "Mosc", OrganizationName: "MOSC"}, "tenantId"},
		{"missing name", domain.TenantOrganization{TenantID: "mosc"}, "organizationName"},
		{"bad email", domain.TenantOrganization{TenantID: "mosc", OrganizationName: "MOSC", ContactEmail: "nope"}, "contactEmail"},
		{"bad color", domain.TenantOrganization{TenantID: "mosc", OrganizationName: "MOSC", PrimaryColor: "red"}, "primaryColor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := tt.org
			_, err := s.CreateOrganization(ctx, &org)
			var de *domain.DomainError
			require.ErrorAs(t, err, &de)
			assert.True(t, domain.IsValidationError(err))
			assert.Equal(t, tt.field, de.Field)
		})
	}
}

func TestCreateOrganization_DuplicateTenant(t *testing.T) {
	b := newFakeBackend()
	s := newTenantService(b, nil)
	ctx := context.Background()

	_, err := s.CreateOrganization(ctx, &domain.TenantOrganization{TenantID: "tenant_demo_001", OrganizationName: "Malayalees US", ContactEmail: "info@example.com"})
	require.NoError(t, err)

	_, err = s.CreateOrganization(ctx, &domain.TenantOrganization{TenantID: "tenant_demo_001", OrganizationName: "Copy"})
	assert.True(t, domain.IsConflict(err))
}

func TestUpdateOrganization_TenantIDImmutable(t *testing.T) {
	b := newFakeBackend()
	b.orgs[1] = domain.TenantOrganization{ID: 1, TenantID: "mosc", OrganizationName: "MOSC"}
	s := newTenantService(b, nil)

	_, err := s.UpdateOrganization(context.Background(), 1, &domain.TenantOrganization{TenantID: "other", OrganizationName: "MOSC"})
	assert.True(t, domain.IsValidationError(err))

	org, err := s.UpdateOrganization(context.Background(), 1, &domain.TenantOrganization{OrganizationName: "MOSC Houston"})
	require.NoError(t, err)
	assert.Equal(t, "mosc", org.TenantID)
	assert.Equal(t, "MOSC Houston", org.OrganizationName)
}

func TestSettings_DefaultsWhenMissing(t *testing.T) {
	s := newTenantService(newFakeBackend(), nil)

	settings, err := s.Settings(context.Background(), tenant)
	require.NoError(t, err)
	assert.Zero(t, settings.ID)
	assert.Equal(t, tenant, settings.TenantID)
	assert.True(t, settings.AllowUserRegistration)
}

func TestSaveSettings_KeepsMaskedSecrets(t *testing.T) {
	b := newFakeBackend()
	b.settings[tenant] = domain.TenantSettings{ID: 4, TenantID: tenant, TwilioAuthToken: "real-token"}
	c := newMapCache()
	s := newTenantService(b, c)
	ctx := context.Background()

	got, err := s.Settings(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, domain.MaskedSecret, got.TwilioAuthToken)

	got.MaxEventsPerMonth = intPtr(10)
	saved, err := s.SaveSettings(ctx, tenant, got)
	require.NoError(t, err)
	assert.Equal(t, domain.MaskedSecret, saved.TwilioAuthToken)
	assert.Equal(t, int64(4), saved.ID)

	assert.Equal(t, "real-token", b.settings[tenant].TwilioAuthToken)
	assert.Equal(t, 10, *b.settings[tenant].MaxEventsPerMonth)
	assert.Zero(t, c.len(), "cache invalidated after save")
}

func TestSettings_CacheHoldsNoSecrets(t *testing.T) {
	b := newFakeBackend()
	b.settings[tenant] = domain.TenantSettings{
		ID:                   4,
		TenantID:             tenant,
		TwilioAuthToken:      "twilio-secret",
		WhatsappAPIKey:       "wa-key",
		WhatsappWebhookToken: "hook-token",
	}
	c := newMapCache()
	s := newTenantService(b, c)
	ctx := context.Background()

	_, err := s.Settings(ctx, tenant)
	require.NoError(t, err)
	stored, err := s.storedSettings(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, "twilio-secret", stored.TwilioAuthToken)

	require.Equal(t, 1, c.len())
	raw := string(c.data[settingsKey(tenant)])
	for _, secret := range []string{"twilio-secret", "wa-key", "hook-token"} {
		assert.NotContains(t, raw, secret)
	}

	cached, err := s.Settings(ctx, tenant)
	require.NoError(t, err)
	assert.Equal(t, domain.MaskedSecret, cached.TwilioAuthToken)
}

func TestSaveSettings_CreatesWhenMissing(t *testing.T) {
	b := newFakeBackend()
	s := newTenantService(b, nil)

	saved, err := s.SaveSettings(context.Background(), tenant, &domain.TenantSettings{TenantID: "ignored", AllowUserRegistration: true})
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, tenant, b.settings[tenant].TenantID)
}

func TestSaveSettings_FeeRange(t *testing.T) {
	fee := 120.0
	s := newTenantService(newFakeBackend(), nil)

	_, err := s.SaveSettings(context.Background(), tenant, &domain.TenantSettings{PlatformFeePercentage: &fee})
	assert.True(t, domain.IsValidationError(err))
}
