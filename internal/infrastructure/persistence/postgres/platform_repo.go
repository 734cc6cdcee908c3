package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/codetrack-hub/codetrack-backend/internal/domain/platform"
	"github.com/codetrack-hub/codetrack-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PLATFORM REPOSITORY IMPLEMENTATION
// Platforms are reference data seeded by migration 002; this repository only
// reads them.
// ══════════════════════════════════════════════════════════════════════════════

// PlatformRepository implements platform.PlatformRepository for PostgreSQL.
type PlatformRepository struct {
	conn *Connection
}

// NewPlatformRepository creates a new PlatformRepository.
func NewPlatformRepository(conn *Connection) *PlatformRepository {
	return &PlatformRepository{conn: conn}
}

// GetByName returns a platform by canonical name.
func (r *PlatformRepository) GetByName(ctx context.Context, name platform.Name) (*platform.Platform, error) {
	query := `SELECT id, name, icon, color, created_at FROM platforms WHERE name = $1`

	p, err := r.scanPlatform(r.conn.QueryRow(ctx, query, string(name.Normalize())))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.NewDomainError("platform", "GetByName", shared.ErrNotFound,
				"platform "+string(name)+" not found")
		}
		return nil, err
	}
	return p, nil
}

// GetAll returns all platforms ordered by name.
func (r *PlatformRepository) GetAll(ctx context.Context) ([]*platform.Platform, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, name, icon, color, created_at FROM platforms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query platforms: %w", err)
	}
	defer rows.Close()

	var platforms []*platform.Platform
	for rows.Next() {
		p, err := r.scanPlatform(rows)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, p)
	}

	return platforms, rows.Err()
}

func (r *PlatformRepository) scanPlatform(row pgx.Row) (*platform.Platform, error) {
	var p platform.Platform
	var name string

	if err := row.Scan(&p.ID, &name, &p.Icon, &p.Color, &p.CreatedAt); err != nil {
		if IsNoRows(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan platform: %w", err)
	}

	p.Name = platform.Name(name)
	return &p, nil
}
