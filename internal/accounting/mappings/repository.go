package mappings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Repository resolves integration keys to ledger accounts.
type Repository interface {
	// Resolve returns the account id for every key of module. A key without a mapping
	// fails the whole call with ErrMappingNotFound, so a journal is never built half mapped.
	Resolve(ctx context.Context, module string, keys ...string) (map[string]int64, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type repository struct {
	db querier
}

// NewRepository builds a Repository over a pool or transaction.
func NewRepository(db querier) Repository {
	return &repository{db: db}
}

func (r *repository) Resolve(ctx context.Context, module string, keys ...string) (map[string]int64, error) {
	if module == "" || len(keys) == 0 {
		return nil, errors.New("accounting: module and keys required")
	}
	rows, err := r.db.Query(ctx,
		`SELECT key, account_id FROM account_mappings WHERE module = $1 AND key = ANY($2)`,
		strings.ToUpper(module), keys)
	if err != nil {
		return nil, fmt.Errorf("accounting: resolve mappings: %w", err)
	}
	found := make(map[string]int64, len(keys))
	for rows.Next() {
		var key string
		var accountID int64
		if err := rows.Scan(&key, &accountID); err != nil {
			rows.Close()
			return nil, err
		}
		found[key] = accountID
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if missing := missingKeys(keys, found); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrMappingNotFound, strings.ToUpper(module), strings.Join(missing, ", "))
	}
	return found, nil
}

func missingKeys(keys []string, found map[string]int64) []string {
	var missing []string
	for _, key := range keys {
		if _, ok := found[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
