package user

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wichananm65/wealth-wheel-backend/internal/airtable"
)

const (
	emailColumn   = "Email"
	refCodeColumn = "url-ref"
)

// RecordStore is the subset of the Airtable client the repository needs.
type RecordStore interface {
	ListRecords(ctx context.Context, table string, opts airtable.ListOptions) ([]airtable.Record, error)
	CreateRecord(ctx context.Context, table string, fields any) (airtable.Record, error)
	UpdateRecord(ctx context.Context, table, id string, fields any) (airtable.Record, error)
}

type AirtableRepository struct {
	store RecordStore
	table string
}

// userFields is the JSON shape of a User row. omitempty keeps PATCH requests
// limited to the columns being changed.
type userFields struct {
	Name       string   `json:"Name,omitempty"`
	Email      string   `json:"Email,omitempty"`
	Phone      string   `json:"Phone,omitempty"`
	Status     Status   `json:"Status,omitempty"`
	ReferredBy []string `json:"ReferredBy,omitempty"`
	RefCode    string   `json:"url-ref,omitempty"`
}

func NewAirtableRepository(store RecordStore, table string) *AirtableRepository {
	return &AirtableRepository{store: store, table: table}
}

func (r *AirtableRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.findFirst(ctx, airtable.EqualsFormula(emailColumn, email))
}

func (r *AirtableRepository) FindByRefCode(ctx context.Context, code string) (User, error) {
	return r.findFirst(ctx, airtable.EqualsFormula(refCodeColumn, code))
}

func (r *AirtableRepository) Create(ctx context.Context, changes Changes) (User, error) {
	record, err := r.store.CreateRecord(ctx, r.table, fieldsFromChanges(changes))
	if err != nil {
		return User{}, fmt.Errorf("create user record: %w", err)
	}
	return scanUser(record)
}

func (r *AirtableRepository) Update(ctx context.Context, id string, changes Changes) (User, error) {
	record, err := r.store.UpdateRecord(ctx, r.table, id, fieldsFromChanges(changes))
	if err != nil {
		return User{}, fmt.Errorf("update user record %s: %w", id, err)
	}
	return scanUser(record)
}

func (r *AirtableRepository) findFirst(ctx context.Context, formula string) (User, error) {
	records, err := r.store.ListRecords(ctx, r.table, airtable.ListOptions{
		FilterByFormula: formula,
		MaxRecords:      1,
	})
	if err != nil {
		return User{}, fmt.Errorf("query users: %w", err)
	}
	if len(records) == 0 {
		return User{}, ErrNotFound
	}
	return scanUser(records[0])
}

func fieldsFromChanges(changes Changes) userFields {
	return userFields{
		Name:       changes.Name,
		Email:      changes.Email,
		Phone:      changes.Phone,
		Status:     changes.Status,
		ReferredBy: changes.ReferredBy,
	}
}

func scanUser(record airtable.Record) (User, error) {
	user := User{ID: record.ID}
	if len(record.Fields) == 0 {
		return user, nil
	}

	var fields userFields
	if err := json.Unmarshal(record.Fields, &fields); err != nil {
		return User{}, fmt.Errorf("decode user record %s: %w", record.ID, err)
	}

	user.Name = fields.Name
	user.Email = fields.Email
	user.Phone = fields.Phone
	user.Status = fields.Status
	user.ReferredBy = fields.ReferredBy
	user.RefCode = fields.RefCode
	return user, nil
}
