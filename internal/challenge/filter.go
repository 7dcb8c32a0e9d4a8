package challenge

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ecotrackAPI/internal/apperr"
)

// Filter holds the recognized catalog query parameters. Absent fields impose
// no constraint; all present clauses combine with AND.
type Filter struct {
	Categories      []string
	StartDateFrom   *time.Time
	StartDateTo     *time.Time
	MinParticipants *int
	MaxParticipants *int
}

// ParseFilter builds a Filter from request query parameters. Malformed dates
// and non-numeric participant bounds are rejected instead of being silently
// coerced.
func ParseFilter(q url.Values) (*Filter, error) {
	f := &Filter{}

	if raw := q.Get("categories"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.Categories = append(f.Categories, c)
			}
		}
	}

	var err error
	if f.StartDateFrom, err = parseDateParam(q, "startDate"); err != nil {
		return nil, err
	}
	if f.StartDateTo, err = parseDateParam(q, "endDate"); err != nil {
		return nil, err
	}
	if f.MinParticipants, err = parseIntParam(q, "minParticipants"); err != nil {
		return nil, err
	}
	if f.MaxParticipants, err = parseIntParam(q, "maxParticipants"); err != nil {
		return nil, err
	}

	return f, nil
}

func parseDateParam(q url.Values, key string) (*time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return nil, apperr.New(apperr.InvalidArgument,
			fmt.Sprintf("Invalid %s: expected YYYY-MM-DD", key))
	}
	return &t, nil
}

func parseIntParam(q url.Values, key string) (*int, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, apperr.New(apperr.InvalidArgument,
			fmt.Sprintf("Invalid %s: expected an integer", key))
	}
	return &n, nil
}

// SQL renders the filter as a WHERE clause with positional placeholders
// starting at $1. An unconstrained filter renders an empty clause.
func (f *Filter) SQL() (string, []any) {
	var clauses []string
	var args []any

	if len(f.Categories) > 0 {
		args = append(args, f.Categories)
		clauses = append(clauses, fmt.Sprintf("category = ANY($%d)", len(args)))
	}
	if f.StartDateFrom != nil {
		args = append(args, *f.StartDateFrom)
		clauses = append(clauses, fmt.Sprintf("start_date >= $%d", len(args)))
	}
	if f.StartDateTo != nil {
		args = append(args, *f.StartDateTo)
		clauses = append(clauses, fmt.Sprintf("start_date <= $%d", len(args)))
	}
	if f.MinParticipants != nil {
		args = append(args, *f.MinParticipants)
		clauses = append(clauses, fmt.Sprintf("participants >= $%d", len(args)))
	}
	if f.MaxParticipants != nil {
		args = append(args, *f.MaxParticipants)
		clauses = append(clauses, fmt.Sprintf("participants <= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
