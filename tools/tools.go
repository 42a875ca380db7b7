//go:build tools

package tools

// Tool dependencies pinned in go.mod. Run `go mod tidy` after changes.
//
//	go run github.com/pressly/goose/v3/cmd/goose -dir internal/adapters/postgres/migrations postgres "$PROPHUB_DATABASE_URL" status

import (
	_ "github.com/pressly/goose/v3/cmd/goose"
)
