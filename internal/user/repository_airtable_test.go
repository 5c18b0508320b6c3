package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wichananm65/wealth-wheel-backend/internal/airtable"
)

// fakeAirtable serves the subset of the Airtable REST API the repository
// uses, backed by a map of record id to fields.
type fakeAirtable struct {
	mu      sync.Mutex
	records map[string]map[string]any
	order   []string
	patches []map[string]any
}

func newFakeAirtable(t *testing.T, seed map[string]map[string]any) (*httptest.Server, *fakeAirtable) {
	fake := &fakeAirtable{records: map[string]map[string]any{}}
	for id, fields := range seed {
		fake.records[id] = fields
		fake.order = append(fake.order, id)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key123" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"type":"AUTHENTICATION_REQUIRED","message":"bad key"}}`))
			return
		}
		fake.serve(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, fake
}

func (f *fakeAirtable) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/v0/appTest/User")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && path == "":
		formula := r.URL.Query().Get("filterByFormula")
		records := []map[string]any{}
		for _, id := range f.order {
			if matchesFormula(f.records[id], formula) {
				records = append(records, map[string]any{"id": id, "fields": f.records[id]})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"records": records})
	case r.Method == http.MethodPost && path == "":
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		id := "recNew" + string(rune('A'+len(f.order)))
		f.records[id] = body.Fields
		f.order = append(f.order, id)
		json.NewEncoder(w).Encode(map[string]any{"id": id, "fields": body.Fields})
	case r.Method == http.MethodPatch && strings.HasPrefix(path, "/"):
		id := strings.TrimPrefix(path, "/")
		existing, ok := f.records[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"NOT_FOUND"}`))
			return
		}
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		f.patches = append(f.patches, body.Fields)
		for k, v := range body.Fields {
			existing[k] = v
		}
		json.NewEncoder(w).Encode(map[string]any{"id": id, "fields": existing})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// matchesFormula understands the "{Field} = 'value'" shape only.
func matchesFormula(fields map[string]any, formula string) bool {
	open := strings.Index(formula, "{")
	closeIdx := strings.Index(formula, "}")
	quote := strings.Index(formula, "'")
	if open < 0 || closeIdx < 0 || quote < 0 {
		return true
	}
	field := formula[open+1 : closeIdx]
	value := strings.TrimSuffix(formula[quote+1:], "'")
	got, _ := fields[field].(string)
	return got == value
}

func newAirtableRepo(srvURL string) *AirtableRepository {
	client := airtable.NewClient(srvURL+"/v0", "appTest", "key123")
	return NewAirtableRepository(client, "User")
}

func TestAirtableRepository_FindByEmailAndRefCode(t *testing.T) {
	srv, _ := newFakeAirtable(t, map[string]map[string]any{
		"rec1": {"Name": "Ref", "Email": "ref@x.com", "Status": "Paid", "url-ref": "WHEEL1"},
	})
	repo := newAirtableRepo(srv.URL)
	ctx := context.Background()

	u, err := repo.FindByEmail(ctx, "ref@x.com")
	require.NoError(t, err)
	require.Equal(t, "rec1", u.ID)
	require.True(t, u.IsPaid())
	require.Equal(t, "WHEEL1", u.RefCode)

	u, err = repo.FindByRefCode(ctx, "WHEEL1")
	require.NoError(t, err)
	require.Equal(t, "rec1", u.ID)

	_, err = repo.FindByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAirtableRepository_CreateAndPatch(t *testing.T) {
	srv, fake := newFakeAirtable(t, nil)
	repo := newAirtableRepo(srv.URL)
	ctx := context.Background()

	created, err := repo.Create(ctx, Changes{Name: "A", Email: "a@x.com", Phone: "1", Status: StatusInvited, ReferredBy: []string{"rec9"}})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, []string{"rec9"}, created.ReferredBy)
	require.Equal(t, StatusInvited, created.Status)

	paid, err := repo.Update(ctx, created.ID, Changes{Status: StatusPaid})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.Equal(t, "A", paid.Name)

	// the payment update only sends the Status column
	require.Len(t, fake.patches, 1)
	require.Equal(t, map[string]any{"Status": "Paid"}, fake.patches[0])
}

func TestAirtableRepository_RegistrationPatchCarriesReferrer(t *testing.T) {
	srv, fake := newFakeAirtable(t, map[string]map[string]any{
		"recRef": {"Email": "ref@x.com", "url-ref": "GOOD"},
		"rec2":   {"Name": "A", "Email": "a@x.com", "Phone": "1", "Status": "Invited"},
	})
	svc := NewService(newAirtableRepo(srv.URL), nil)

	updated, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Phone: "1", RefCode: "GOOD"})
	require.NoError(t, err)
	require.Equal(t, "rec2", updated.ID)
	require.Equal(t, []string{"recRef"}, updated.ReferredBy)

	require.Len(t, fake.patches, 1)
	require.Equal(t, []any{"recRef"}, fake.patches[0]["ReferredBy"])
	require.Equal(t, "Invited", fake.patches[0]["Status"])
}

func TestAirtableRepository_Errors(t *testing.T) {
	srv, _ := newFakeAirtable(t, nil)
	repo := newAirtableRepo(srv.URL)

	_, err := repo.Update(context.Background(), "recMissing", Changes{Status: StatusPaid})
	var apiErr *airtable.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, "NOT_FOUND", apiErr.Type)

	badKey := NewAirtableRepository(airtable.NewClient(srv.URL+"/v0", "appTest", "wrong"), "User")
	_, err = badKey.FindByEmail(context.Background(), "a@x.com")
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "bad key", apiErr.Message)
	require.NotErrorIs(t, err, ErrNotFound)
}
