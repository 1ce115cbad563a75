package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/penshort/linkstats/internal/model"
)

// ErrLinkNotFound is returned when a link does not exist.
var ErrLinkNotFound = errors.New("link not found")

const linkColumns = `id, short_code, destination, owner_id, campaign_id, enabled, expires_at, deleted_at, created_at, updated_at`

// GetLinkByID retrieves a link by its ID, including soft-deleted links.
// Deleted links keep their click history and stay reportable.
func (r *Repository) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by ID: %w", err)
	}

	return link, nil
}

// ListActiveLinkIDsByOwner returns the IDs of the active links owned by a
// user. Active matches model.LinkStatusActive.
func (r *Repository) ListActiveLinkIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	query := `
		SELECT id FROM links
		WHERE owner_id = $1
		  AND deleted_at IS NULL
		  AND enabled
		  AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY created_at DESC, id DESC
	`
	return r.queryIDs(ctx, query, ownerID)
}

// ListLinkIDsByCampaign returns the IDs of the live links in a campaign.
func (r *Repository) ListLinkIDsByCampaign(ctx context.Context, campaignID string) ([]string, error) {
	query := `
		SELECT id FROM links
		WHERE campaign_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`
	return r.queryIDs(ctx, query, campaignID)
}

func (r *Repository) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list link IDs: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan link ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating link IDs: %w", err)
	}

	return ids, nil
}

func scanLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.Destination,
		&link.OwnerID,
		&link.CampaignID,
		&link.Enabled,
		&link.ExpiresAt,
		&link.DeletedAt,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &link, nil
}
