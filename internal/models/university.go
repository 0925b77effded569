package models

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/supabase-community/postgrest-go"
)

const UniversitiesTable = "universities"

type University struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	IsActive bool   `json:"is_active"`
}

// UniversityRef decodes an embedded universities(...) relation, which
// PostgREST returns either as an object or as a one-element array.
type UniversityRef struct {
	University
}

func (u *UniversityRef) UnmarshalJSON(b []byte) error {
	return unmarshalOneOrFirst(b, &u.University)
}

// unmarshalOneOrFirst decodes b into dst, taking the first element when b is
// an array.
func unmarshalOneOrFirst(b []byte, dst interface{}) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			return nil
		}
		trimmed = list[0]
	}
	return json.Unmarshal(trimmed, dst)
}

type UniversityRepo interface {
	ListActiveUniversities(ctx context.Context) ([]University, error)
	UniversityIDsInCity(ctx context.Context, city string) ([]string, error)
}

func (su *SupabaseRepo) ListActiveUniversities(ctx context.Context) ([]University, error) {
	raw, _, err := su.db.From(UniversitiesTable).
		Select("id,name,city,state,is_active", "", false).
		Eq("is_active", "true").
		Order("name", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, pgError("list universities", err)
	}
	var unis []University
	if err := json.Unmarshal(raw, &unis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal universities: %w", err)
	}
	return unis, nil
}

func (su *SupabaseRepo) UniversityIDsInCity(ctx context.Context, city string) ([]string, error) {
	raw, _, err := su.db.From(UniversitiesTable).
		Select("id", "", false).
		Eq("city", city).
		Execute()
	if err != nil {
		return nil, pgError("universities in city", err)
	}
	var rows []struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal university ids: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, rawID(r.ID))
	}
	return ids, nil
}

// rawID renders a JSON id as plain text whether it came back as a string or
// a number.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
