package repository

import (
	"context"
	"fmt"

	"github.com/penshort/linkstats/internal/model"
)

// ResolveScope expands a report scope into the link IDs it covers.
// A non-empty scope.OwnerID restricts link and campaign scopes to that
// owner; foreign resources resolve as not found.
func (r *Repository) ResolveScope(ctx context.Context, scope model.ReportScope) ([]string, error) {
	switch scope.Kind {
	case model.ScopeKindLink:
		link, err := r.GetLinkByID(ctx, scope.ID)
		if err != nil {
			return nil, err
		}
		if scope.OwnerID != "" && link.OwnerID != scope.OwnerID {
			return nil, ErrLinkNotFound
		}
		return []string{link.ID}, nil

	case model.ScopeKindCampaign:
		campaign, err := r.GetCampaignByID(ctx, scope.ID)
		if err != nil {
			return nil, err
		}
		if scope.OwnerID != "" && campaign.OwnerID != scope.OwnerID {
			return nil, ErrCampaignNotFound
		}
		return r.ListLinkIDsByCampaign(ctx, campaign.ID)

	case model.ScopeKindAccount:
		ownerID := scope.OwnerID
		if ownerID == "" {
			ownerID = scope.ID
		}
		return r.ListActiveLinkIDsByOwner(ctx, ownerID)
	}

	return nil, fmt.Errorf("unknown scope kind %q", scope.Kind)
}
