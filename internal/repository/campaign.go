package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/penshort/linkstats/internal/model"
)

// ErrCampaignNotFound is returned when a campaign does not exist.
var ErrCampaignNotFound = errors.New("campaign not found")

// GetCampaignByID retrieves a campaign by its ID.
func (r *Repository) GetCampaignByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `SELECT id, owner_id, name, created_at FROM campaigns WHERE id = $1`

	var campaign model.Campaign
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&campaign.ID,
		&campaign.OwnerID,
		&campaign.Name,
		&campaign.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign by ID: %w", err)
	}

	return &campaign, nil
}
