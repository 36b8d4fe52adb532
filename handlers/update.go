// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"strings"
)

// update collects "column = $n" assignments for a partial UPDATE by id
type update struct {
	sets []string
	args []any
}

func newUpdate() *update {
	return &update{}
}

// set adds an assignment; column names are always literals from this package
func (u *update) set(column string, value any) {
	u.args = append(u.args, value)
	u.sets = append(u.sets, fmt.Sprintf("%s = $%d", column, len(u.args)))
}

func (u *update) exec(ctx context.Context, q querier, table, id string) error {
	if len(u.sets) == 0 {
		return nil
	}
	args := append(u.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(u.sets, ", "), len(args))
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}
