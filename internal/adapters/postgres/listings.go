package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/domain"
	"github.com/Nemmy-G/Gods-Delight-Prop-Hub/internal/ports"
)

// price travels as text in both directions so no precision is lost to float8.
const listingColumns = `id, partner_id, title, description, type, category, price::text, location,
	features, images, rating, verified, flagged, flag_reason, created_at`

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	var typ, cat, price string
	err := row.Scan(&l.ID, &l.PartnerID, &l.Title, &l.Description, &typ, &cat, &price, &l.Location,
		&l.Features, &l.Images, &l.Rating, &l.Verified, &l.Flagged, &l.FlagReason, &l.CreatedAt)
	if err != nil {
		return l, err
	}
	l.Type = domain.ListingType(typ)
	l.Category = domain.AssetCategory(cat)
	if l.Price, err = decimal.NewFromString(price); err != nil {
		return l, fmt.Errorf("listing %s price %q: %w", l.ID, price, err)
	}
	return l, nil
}

func (db *DB) CreateListing(ctx context.Context, l domain.Listing) error {
	features, images := l.Features, l.Images
	if features == nil {
		features = []string{}
	}
	if images == nil {
		images = []string{}
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO listings (id, partner_id, title, description, type, category, price, location,
			features, images, rating, verified, flagged, flag_reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::text::numeric, $8, $9, $10, $11, $12, $13, $14, $15)
	`, l.ID, l.PartnerID, l.Title, l.Description, string(l.Type), string(l.Category), l.Price.String(), l.Location,
		features, images, l.Rating, l.Verified, l.Flagged, l.FlagReason, l.CreatedAt)
	return err
}

func (db *DB) GetListing(ctx context.Context, id string) (domain.Listing, error) {
	l, err := scanListing(db.Pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id))
	return l, notFound(err)
}

// listingQuery renders a filter into a WHERE clause and its arguments.
func listingQuery(f ports.ListingFilter) (string, []any) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.PartnerID != "" {
		where = append(where, "partner_id = "+arg(f.PartnerID))
	}
	if f.Category != "" {
		where = append(where, "category = "+arg(string(f.Category)))
	}
	switch {
	case f.OnlyFlagged:
		where = append(where, "flagged")
	case !f.IncludeHidden:
		where = append(where, "NOT flagged")
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, "(title ILIKE "+p+" OR location ILIKE "+p+")")
	}

	sql := `SELECT ` + listingColumns + ` FROM listings`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	return sql + " ORDER BY created_at DESC, id", args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

func (db *DB) ListListings(ctx context.Context, f ports.ListingFilter) ([]domain.Listing, error) {
	sql, args := listingQuery(f)
	rows, err := db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (db *DB) UpdateVerdict(ctx context.Context, id string, v domain.ListingVerdict) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE listings SET verified = $2, flagged = $3, flag_reason = $4 WHERE id = $1
	`, id, v.Verified, v.Flagged, v.Reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (db *DB) DeleteListing(ctx context.Context, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}
