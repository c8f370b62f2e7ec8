package resource

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

type call struct {
	method string
	path   string
	id     string
	fields map[string]any
}

type fakeAPI struct {
	records   []fetanapi.Record
	listErr   error
	mutateErr error
	lists     int
	calls     []call
}

func (f *fakeAPI) List(_ context.Context, path, _ string) ([]fetanapi.Record, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeAPI) Create(_ context.Context, path string, fields map[string]any) error {
	f.calls = append(f.calls, call{method: "POST", path: path, fields: fields})
	return f.mutateErr
}

func (f *fakeAPI) Update(_ context.Context, path, id string, fields map[string]any) error {
	f.calls = append(f.calls, call{method: "PUT", path: path, id: id, fields: fields})
	return f.mutateErr
}

func (f *fakeAPI) Put(_ context.Context, path string, fields map[string]any) error {
	f.calls = append(f.calls, call{method: "PUT", path: path, fields: fields})
	return f.mutateErr
}

func (f *fakeAPI) Delete(_ context.Context, path, id string) error {
	f.calls = append(f.calls, call{method: "DELETE", path: path, id: id})
	return f.mutateErr
}

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(_ context.Context, text string) { n.successes = append(n.successes, text) }
func (n *recordingNotifier) Error(_ context.Context, text string)   { n.errors = append(n.errors, text) }

type recordingRecorder struct {
	mutations []Mutation
}

func (r *recordingRecorder) Record(_ context.Context, m Mutation) { r.mutations = append(r.mutations, m) }

func products(ids ...string) []fetanapi.Record {
	out := make([]fetanapi.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, fetanapi.Record{"_id": id, "name": "Product " + id, "isActive": true})
	}
	return out
}

func TestScreen_Load(t *testing.T) {
	api := &fakeAPI{records: products("1", "2", "3")}
	s := NewScreen(Products, api, nil, nil)
	assert.Equal(t, Loading, s.State)

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, Loaded, s.State)
	assert.Len(t, s.Records, 3)
}

func TestScreen_LoadFailureShowsEmptyList(t *testing.T) {
	api := &fakeAPI{listErr: &fetanapi.APIError{StatusCode: 500, Message: "boom"}}
	n := &recordingNotifier{}
	s := NewScreen(Coupons, api, n, nil)

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, Loaded, s.State)
	assert.NotNil(t, s.Records)
	assert.Empty(t, s.Records)
	assert.Equal(t, []string{"Failed to load coupons: boom"}, n.errors)
}

func TestScreen_LoadUnauthorizedIsNotToasted(t *testing.T) {
	api := &fakeAPI{listErr: &fetanapi.APIError{StatusCode: 401, Message: "Invalid token"}}
	n := &recordingNotifier{}
	s := NewScreen(Users, api, n, nil)

	err := s.Load(context.Background())
	assert.True(t, fetanapi.IsUnauthorized(err))
	assert.Empty(t, n.errors)
}

func TestScreen_CreateCoercesAndRefetchesOnce(t *testing.T) {
	api := &fakeAPI{records: products("1")}
	n := &recordingNotifier{}
	rec := &recordingRecorder{}
	s := NewScreen(Products, api, n, rec)

	require.NoError(t, s.OpenCreate())
	assert.Equal(t, Creating, s.State)

	form := url.Values{
		"name":          {"Coffee"},
		"category":      {"Drinks"},
		"price":         {"abc"},
		"originalPrice": {"12.50"},
		"stock":         {"12abc"},
		"isActive":      {"true"},
		"featured":      {"false"},
		"description":   {"Fresh"},
	}
	require.NoError(t, s.Submit(context.Background(), form))

	require.Len(t, api.calls, 1)
	c := api.calls[0]
	assert.Equal(t, "POST", c.method)
	assert.Equal(t, "/products", c.path)
	assert.Equal(t, float64(0), c.fields["price"])
	assert.Equal(t, 12.5, c.fields["originalPrice"])
	assert.Equal(t, int64(12), c.fields["stock"])
	assert.Equal(t, true, c.fields["isActive"])
	assert.Equal(t, false, c.fields["featured"])

	assert.Equal(t, 1, api.lists)
	assert.Equal(t, Loaded, s.State)
	assert.Equal(t, []string{"Product created successfully"}, n.successes)
	require.Len(t, rec.mutations, 1)
	assert.Equal(t, "create", rec.mutations[0].Action)
}

func TestScreen_SubmitMissingRequiredKeepsFormOpen(t *testing.T) {
	api := &fakeAPI{}
	n := &recordingNotifier{}
	s := NewScreen(Products, api, n, nil)
	require.NoError(t, s.OpenCreate())

	form := url.Values{"name": {"Coffee"}}
	err := s.Submit(context.Background(), form)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "Category")
	assert.Equal(t, Creating, s.State)
	assert.Equal(t, form, s.Form)
	assert.Empty(t, api.calls)
	assert.Zero(t, api.lists)
	assert.Len(t, n.errors, 1)
}

func TestScreen_SubmitFailureHoldsState(t *testing.T) {
	api := &fakeAPI{records: products("1"), mutateErr: &fetanapi.APIError{StatusCode: 400, Message: "Code already exists"}}
	n := &recordingNotifier{}
	s := NewScreen(Products, api, n, nil)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.OpenEdit("1"))

	form := url.Values{
		"name": {"x"}, "category": {"y"}, "price": {"1"}, "originalPrice": {"1"},
		"stock": {"1"}, "description": {"d"},
	}
	err := s.Submit(context.Background(), form)
	require.Error(t, err)

	assert.Equal(t, Editing, s.State)
	assert.Equal(t, "1", s.Selected.ID())
	assert.Equal(t, 1, api.lists)
	assert.Equal(t, []string{"Failed to save product: Code already exists"}, n.errors)
}

func TestScreen_EditOmitsCreateOnlyFields(t *testing.T) {
	api := &fakeAPI{records: []fetanapi.Record{{"_id": "a1", "fullName": "Abebe"}}}
	s := NewScreen(Agents, api, nil, nil)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.OpenEdit("a1"))

	form := url.Values{
		"fullName": {"Abebe"}, "email": {"a@b.c"}, "phone": {"0911"},
		"password": {"secret"}, "commission": {""}, "permissions": {" view_orders , manage_products "},
		"isActive": {"false"},
	}
	require.NoError(t, s.Submit(context.Background(), form))

	require.Len(t, api.calls, 1)
	c := api.calls[0]
	assert.Equal(t, "PUT", c.method)
	assert.Equal(t, "a1", c.id)
	assert.NotContains(t, c.fields, "password")
	assert.Equal(t, float64(0), c.fields["commission"])
	assert.Equal(t, []string{"view_orders", "manage_products"}, c.fields["permissions"])
	assert.Equal(t, false, c.fields["isActive"])
	assert.Equal(t, 2, api.lists)
}

func TestScreen_CreateAgentRequiresPassword(t *testing.T) {
	s := NewScreen(Agents, &fakeAPI{}, nil, nil)
	require.NoError(t, s.OpenCreate())

	err := s.Submit(context.Background(), url.Values{
		"fullName": {"Abebe"}, "email": {"a@b.c"}, "phone": {"0911"},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Password"}, ve.Fields)
}

func TestScreen_ToggleSendsOnlyFlippedField(t *testing.T) {
	api := &fakeAPI{records: products("7")}
	n := &recordingNotifier{}
	s := NewScreen(Products, api, n, nil)

	require.NoError(t, s.Toggle(context.Background(), "7", true))

	require.Len(t, api.calls, 1)
	assert.Equal(t, map[string]any{"isActive": false}, api.calls[0].fields)
	assert.Equal(t, "7", api.calls[0].id)
	assert.Equal(t, 1, api.lists)
	assert.Equal(t, []string{"Product deactivated"}, n.successes)
}

func TestScreen_ToggleUnsupported(t *testing.T) {
	api := &fakeAPI{}
	s := NewScreen(Coupons, api, nil, nil)
	assert.ErrorIs(t, s.Toggle(context.Background(), "1", true), ErrNotSupported)
	assert.Empty(t, api.calls)
}

func TestScreen_DeleteRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{records: products("1")}
	s := NewScreen(Products, api, nil, nil)

	assert.ErrorIs(t, s.Delete(context.Background(), "1", false), ErrNotConfirmed)
	assert.Empty(t, api.calls)
	assert.Zero(t, api.lists)

	require.NoError(t, s.Delete(context.Background(), "1", true))
	require.Len(t, api.calls, 1)
	assert.Equal(t, "DELETE", api.calls[0].method)
	assert.Equal(t, 1, api.lists)
}

func TestScreen_UsersCannotBeCreatedOrDeleted(t *testing.T) {
	s := NewScreen(Users, &fakeAPI{}, nil, nil)
	assert.ErrorIs(t, s.OpenCreate(), ErrNotSupported)
	assert.ErrorIs(t, s.Delete(context.Background(), "1", true), ErrNotSupported)
}

func TestScreen_OrderActions(t *testing.T) {
	api := &fakeAPI{}
	s := NewScreen(Orders, api, nil, nil)

	require.NoError(t, s.Act(context.Background(), "o1", "status", "shipped"))
	require.NoError(t, s.Act(context.Background(), "o1", "payment-status", "completed"))

	require.Len(t, api.calls, 2)
	assert.Equal(t, "/orders/o1", api.calls[0].path)
	assert.Equal(t, map[string]any{"status": "shipped"}, api.calls[0].fields)
	assert.Equal(t, "/orders/o1/payment-status", api.calls[1].path)
	assert.Equal(t, map[string]any{"paymentStatus": "completed"}, api.calls[1].fields)
	assert.Equal(t, 2, api.lists)

	assert.ErrorIs(t, s.Act(context.Background(), "o1", "status", "lost"), ErrInvalidOption)
	assert.ErrorIs(t, s.Act(context.Background(), "o1", "refund", "x"), ErrUnknownAction)
	assert.Len(t, api.calls, 2)
}

func TestScreen_CancelHasNoSideEffects(t *testing.T) {
	api := &fakeAPI{records: products("1")}
	s := NewScreen(Products, api, nil, nil)
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, s.OpenEdit("1"))

	s.Cancel()
	assert.Equal(t, Loaded, s.State)
	assert.Nil(t, s.Selected)
	assert.Empty(t, api.calls)
	assert.Equal(t, 1, api.lists)
}

func TestScreen_OpenEditUnknownRecord(t *testing.T) {
	s := NewScreen(Products, &fakeAPI{records: products("1")}, nil, nil)
	require.NoError(t, s.Load(context.Background()))
	assert.ErrorIs(t, s.OpenEdit("missing"), ErrRecordNotFound)
}

func TestScreen_SubmitWithoutForm(t *testing.T) {
	s := NewScreen(Products, &fakeAPI{}, nil, nil)
	assert.ErrorIs(t, s.Submit(context.Background(), url.Values{}), ErrNoOpenForm)
}

func TestScreen_RecordedPasswordIsRedacted(t *testing.T) {
	rec := &recordingRecorder{}
	s := NewScreen(Agents, &fakeAPI{}, nil, rec)
	require.NoError(t, s.OpenCreate())
	require.NoError(t, s.Submit(context.Background(), url.Values{
		"fullName": {"Abebe"}, "email": {"a@b.c"}, "phone": {"0911"}, "password": {"secret"},
	}))
	require.Len(t, rec.mutations, 1)
	assert.Equal(t, "********", rec.mutations[0].Fields["password"])
}

func TestScreen_Filtered(t *testing.T) {
	api := &fakeAPI{records: []fetanapi.Record{
		{"_id": "1", "orderNumber": "ORD-100", "user": map[string]any{"fullName": "Abebe Kebede"}},
		{"_id": "2", "orderNumber": "ORD-200", "user": map[string]any{"fullName": "Sara Tesfaye"}},
	}}
	s := NewScreen(Orders, api, nil, nil)
	require.NoError(t, s.Load(context.Background()))

	assert.Len(t, s.Filtered(""), 2)
	got := s.Filtered("sara")
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].ID())
	assert.Len(t, s.Filtered("ord-1"), 1)
	assert.Empty(t, s.Filtered("nobody"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "creating", Creating.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestFakeAPIErrorsAreReturned(t *testing.T) {
	boom := errors.New("network down")
	s := NewScreen(Gallery, &fakeAPI{mutateErr: boom}, nil, nil)
	assert.ErrorIs(t, s.Delete(context.Background(), "g1", true), boom)
}
