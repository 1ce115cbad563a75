package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink_StatusAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		link Link
		want LinkStatus
	}{
		{"enabled", Link{Enabled: true}, LinkStatusActive},
		{"disabled", Link{Enabled: false}, LinkStatusDisabled},
		{"expired", Link{Enabled: true, ExpiresAt: &past}, LinkStatusExpired},
		{"not yet expired", Link{Enabled: true, ExpiresAt: &future}, LinkStatusActive},
		{"deleted wins", Link{Enabled: true, DeletedAt: &past}, LinkStatusDeleted},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.link.StatusAt(now))
		})
	}
}

func TestAuthContext_HasScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		scopes []string
		check  string
		want   bool
	}{
		{"has exact scope", []string{ScopeRead, ScopeWrite}, ScopeRead, true},
		{"missing scope", []string{ScopeRead}, ScopeWrite, false},
		{"admin implies read", []string{ScopeAdmin}, ScopeRead, true},
		{"admin implies write", []string{ScopeAdmin}, ScopeWrite, true},
		{"empty scopes", nil, ScopeRead, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			auth := &AuthContext{Scopes: tt.scopes}
			assert.Equal(t, tt.want, auth.HasScope(tt.check))
		})
	}
}

func TestTierConfig_DefaultsToFree(t *testing.T) {
	t.Parallel()

	assert.Equal(t, TierConfigs[TierFree], TierConfig("bogus"))
	assert.Equal(t, TierConfigs[TierPro], TierConfig(TierPro))
}

func TestScopeKind_IsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, ScopeKindLink.IsValid())
	assert.True(t, ScopeKindCampaign.IsValid())
	assert.True(t, ScopeKindAccount.IsValid())
	assert.False(t, ScopeKind("page").IsValid())
}

func TestPeriodComparison_NullPercent(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(PeriodComparison{Current: 5, Trend: TrendUp})
	require.NoError(t, err)
	assert.JSONEq(t, `{"current":5,"previous":0,"change_percent":null,"trend":"up"}`, string(data))
}

func TestReportScope_OwnerNotSerialized(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(ReportScope{Kind: ScopeKindLink, ID: "l1", OwnerID: "u1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"link","id":"l1"}`, string(data))
}
