package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
)

const partnerColumns = `id, name, kind, email, domain, contact_person, approved, created_at`

func scanPartner(row pgx.Row) (domain.Partner, error) {
	var p domain.Partner
	var kind string
	err := row.Scan(&p.ID, &p.Name, &kind, &p.Email, &p.Domain, &p.ContactPerson, &p.Approved, &p.CreatedAt)
	p.Kind = domain.PartnerKind(kind)
	return p, err
}

func (db *DB) CreatePartner(ctx context.Context, p domain.Partner) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO partners (`+partnerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.ID, p.Name, string(p.Kind), p.Email, strings.ToLower(p.Domain), p.ContactPerson, p.Approved, p.CreatedAt)
	return err
}

func (db *DB) GetPartner(ctx context.Context, id string) (domain.Partner, error) {
	p, err := scanPartner(db.Pool.QueryRow(ctx, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id))
	return p, notFound(err)
}

func (db *DB) ListPartners(ctx context.Context) ([]domain.Partner, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+partnerColumns+` FROM partners ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
