package resource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

var (
	ErrNotSupported   = errors.New("operation not supported by this resource")
	ErrRecordNotFound = errors.New("record not found")
	ErrNoOpenForm     = errors.New("no form is open")
	ErrNotConfirmed   = errors.New("deletion was not confirmed")
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidOption  = errors.New("value is not one of the action's options")
)

// API is the subset of the platform client a screen talks to.
type API interface {
	List(ctx context.Context, path, field string) ([]fetanapi.Record, error)
	Create(ctx context.Context, path string, fields map[string]any) error
	Update(ctx context.Context, path, id string, fields map[string]any) error
	Put(ctx context.Context, path string, fields map[string]any) error
	Delete(ctx context.Context, path, id string) error
}

// Notifier surfaces the outcome of an operation to the administrator.
type Notifier interface {
	Success(ctx context.Context, text string)
	Error(ctx context.Context, text string)
}

// Mutation describes a successful change, for the activity log.
type Mutation struct {
	Resource string
	Action   string
	RecordID string
	Fields   map[string]any
}

// Recorder keeps an audit trail of mutations.
type Recorder interface {
	Record(ctx context.Context, m Mutation)
}

// State of a screen.
type State int

const (
	Loading State = iota
	Loaded
	Editing
	Creating
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Editing:
		return "editing"
	case Creating:
		return "creating"
	default:
		return "unknown"
	}
}

// Screen is the state machine behind one resource page. Every successful
// mutation is followed by exactly one list fetch; the list is never patched
// locally.
type Screen struct {
	Def *Definition

	State    State
	Records  []fetanapi.Record
	Selected fetanapi.Record
	// Form holds the submitted values while a failed form stays open.
	Form url.Values
	// LoadErr is the error of the most recent list fetch, if it failed.
	LoadErr error

	api      API
	notify   Notifier
	recorder Recorder
}

// NewScreen creates a screen in the Loading state.
func NewScreen(def *Definition, api API, notify Notifier, recorder Recorder) *Screen {
	return &Screen{
		Def:      def,
		State:    Loading,
		api:      api,
		notify:   notify,
		recorder: recorder,
	}
}

// Load fetches the list. On failure the screen still becomes Loaded, with
// an empty list, and the error is logged, surfaced and returned.
func (s *Screen) Load(ctx context.Context) error {
	records, err := s.api.List(ctx, s.Def.Path, s.Def.ListKey)
	s.State = Loaded
	s.LoadErr = err
	if err != nil {
		s.Records = []fetanapi.Record{}
		log.Error().Err(err).Str("resource", s.Def.Slug).Msg("Failed to fetch list")
		s.toastError(ctx, "Failed to load "+strings.ToLower(s.Def.Title), err)
		return err
	}
	s.Records = records
	return nil
}

// Find returns the loaded record with the given id.
func (s *Screen) Find(id string) (fetanapi.Record, bool) {
	for _, r := range s.Records {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}

// Filtered returns the loaded records matching a search term.
func (s *Screen) Filtered(term string) []fetanapi.Record {
	return Filter(s.Records, s.Def.Search, term)
}

// OpenCreate opens an empty form.
func (s *Screen) OpenCreate() error {
	if !s.Def.CanCreate {
		return ErrNotSupported
	}
	s.State = Creating
	s.Selected = nil
	s.Form = nil
	return nil
}

// OpenEdit opens the form prefilled with a loaded record.
func (s *Screen) OpenEdit(id string) error {
	if !s.Def.CanUpdate {
		return ErrNotSupported
	}
	rec, ok := s.Find(id)
	if !ok {
		return ErrRecordNotFound
	}
	s.State = Editing
	s.Selected = rec
	s.Form = nil
	return nil
}

// ResumeEdit reopens the edit form of record id from a posted form, without
// a list fetch.
func (s *Screen) ResumeEdit(id string) error {
	if !s.Def.CanUpdate {
		return ErrNotSupported
	}
	s.State = Editing
	s.Selected = fetanapi.Record{"_id": id}
	return nil
}

// Cancel closes the open form.
func (s *Screen) Cancel() {
	s.State = Loaded
	s.Selected = nil
	s.Form = nil
}

// Submit coerces the form and creates or updates the record. On failure the
// form stays open with the submitted values.
func (s *Screen) Submit(ctx context.Context, values url.Values) error {
	creating := s.State == Creating
	if !creating && s.State != Editing {
		return ErrNoOpenForm
	}

	payload, err := BuildPayload(s.Def.Fields, values, creating)
	if err != nil {
		s.Form = values
		s.toastError(ctx, "Please fill in all required fields", err)
		return err
	}

	var id, action, verb string
	if creating {
		action, verb = "create", "created"
		err = s.api.Create(ctx, s.Def.Path, payload)
	} else {
		id = s.Selected.ID()
		action, verb = "update", "updated"
		err = s.api.Update(ctx, s.Def.Path, id, payload)
	}
	if err != nil {
		s.Form = values
		log.Error().Err(err).Str("resource", s.Def.Slug).Str("action", action).Msg("Failed to save record")
		s.toastError(ctx, fmt.Sprintf("Failed to save %s", strings.ToLower(s.Def.Singular)), err)
		return err
	}

	s.done(ctx, Mutation{Resource: s.Def.Slug, Action: action, RecordID: id, Fields: redact(s.Def.Fields, payload)},
		fmt.Sprintf("%s %s successfully", s.Def.Singular, verb))
	return nil
}

// Toggle flips the toggle field of record id. current is the value the
// administrator saw; only the flipped field is sent.
func (s *Screen) Toggle(ctx context.Context, id string, current bool) error {
	if !s.Def.CanToggle() {
		return ErrNotSupported
	}
	fields := map[string]any{s.Def.ToggleField: !current}
	if err := s.api.Update(ctx, s.Def.Path, id, fields); err != nil {
		log.Error().Err(err).Str("resource", s.Def.Slug).Str("id", id).Msg("Failed to toggle record")
		s.toastError(ctx, fmt.Sprintf("Failed to update %s", strings.ToLower(s.Def.Singular)), err)
		return err
	}
	verb := "deactivated"
	if !current {
		verb = "activated"
	}
	s.done(ctx, Mutation{Resource: s.Def.Slug, Action: "toggle", RecordID: id, Fields: fields},
		fmt.Sprintf("%s %s", s.Def.Singular, verb))
	return nil
}

// Delete removes record id. Nothing is sent unless confirmed.
func (s *Screen) Delete(ctx context.Context, id string, confirmed bool) error {
	if !s.Def.CanDelete {
		return ErrNotSupported
	}
	if !confirmed {
		return ErrNotConfirmed
	}
	if err := s.api.Delete(ctx, s.Def.Path, id); err != nil {
		log.Error().Err(err).Str("resource", s.Def.Slug).Str("id", id).Msg("Failed to delete record")
		s.toastError(ctx, fmt.Sprintf("Failed to delete %s", strings.ToLower(s.Def.Singular)), err)
		return err
	}
	s.done(ctx, Mutation{Resource: s.Def.Slug, Action: "delete", RecordID: id},
		fmt.Sprintf("%s deleted successfully", s.Def.Singular))
	return nil
}

// Act sends a single-field update through one of the resource's actions.
func (s *Screen) Act(ctx context.Context, id, name, value string) error {
	action, ok := s.Def.Action(name)
	if !ok {
		return ErrUnknownAction
	}
	if !action.Allows(value) {
		return ErrInvalidOption
	}
	fields := map[string]any{action.Field: value}
	if err := s.api.Put(ctx, fetanapi.RecordPath(s.Def.Path, id)+action.Suffix, fields); err != nil {
		log.Error().Err(err).Str("resource", s.Def.Slug).Str("action", name).Msg("Failed to apply action")
		s.toastError(ctx, fmt.Sprintf("Failed to update %s", strings.ToLower(action.Label)), err)
		return err
	}
	s.done(ctx, Mutation{Resource: s.Def.Slug, Action: name, RecordID: id, Fields: fields},
		fmt.Sprintf("%s updated", action.Label))
	return nil
}

// done closes the form, records the mutation and re-fetches once.
func (s *Screen) done(ctx context.Context, m Mutation, msg string) {
	s.State = Loaded
	s.Selected = nil
	s.Form = nil
	if s.recorder != nil {
		s.recorder.Record(ctx, m)
	}
	if s.notify != nil {
		s.notify.Success(ctx, msg)
	}
	_ = s.Load(ctx)
}

func (s *Screen) toastError(ctx context.Context, text string, err error) {
	// A rejected token is reported once, by whoever ends the session.
	if s.notify == nil || fetanapi.IsUnauthorized(err) {
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		text += ": " + strings.Join(ve.Fields, ", ")
	} else if msg := fetanapi.Message(err, ""); msg != "" {
		text += ": " + msg
	}
	s.notify.Error(ctx, text)
}

// redact drops password values from a recorded payload.
func redact(fields []Field, payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v
	}
	for _, f := range fields {
		if _, ok := out[f.Name]; ok && f.Type == Password {
			out[f.Name] = "********"
		}
	}
	return out
}
