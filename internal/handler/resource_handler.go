package handler

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fetan/fetan_admin/internal/resource"
	"github.com/fetan/fetan_admin/internal/service"
	"github.com/fetan/fetan_admin/pkg/fetanapi"
)

// ListView is the data of a resource list page.
type ListView struct {
	Def     *resource.Definition
	Records []fetanapi.Record
	Query   string
	Now     time.Time
}

// FormView is the data of a create or edit form.
type FormView struct {
	Def      *resource.Definition
	Fields   []resource.Field
	Values   map[string]string
	Creating bool
	Action   string
	Upload   bool
}

// DetailView is the data of a record page.
type DetailView struct {
	Def    *resource.Definition
	Record fetanapi.Record
	Keys   []string
}

// ConfirmView asks before a delete.
type ConfirmView struct {
	Def *resource.Definition
	ID  string
}

// ResourceHandler serves the generic screen of one resource definition.
type ResourceHandler struct {
	def      *resource.Definition
	shell    *Shell
	activity *service.ActivityService
	media    *service.MediaService
	now      func() time.Time
}

// NewResourceHandler creates a handler for def. media may be nil.
func NewResourceHandler(def *resource.Definition, shell *Shell, activity *service.ActivityService, media *service.MediaService) *ResourceHandler {
	return &ResourceHandler{
		def:      def,
		shell:    shell,
		activity: activity,
		media:    media,
		now:      time.Now,
	}
}

// screen builds a screen bound to the signed-in admin.
func (h *ResourceHandler) screen(c *gin.Context) *resource.Screen {
	store := sessionOf(c)
	return resource.NewScreen(h.def, store.Client(), h.shell.notifier(c), h.activity.For(store.Snapshot().Admin))
}

// List renders the list, filtered by ?q=.
func (h *ResourceHandler) List(c *gin.Context) {
	s := h.screen(c)
	if err := s.Load(c.Request.Context()); fetanapi.IsUnauthorized(err) {
		h.shell.Expire(c)
		return
	}
	h.renderList(c, s, http.StatusOK)
}

// New renders an empty create form.
func (h *ResourceHandler) New(c *gin.Context) {
	s := h.screen(c)
	if err := s.OpenCreate(); err != nil {
		h.shell.RenderError(c, http.StatusNotFound, "This resource cannot be created here")
		return
	}
	h.renderForm(c, s, http.StatusOK)
}

// Create submits the create form.
func (h *ResourceHandler) Create(c *gin.Context) {
	s := h.screen(c)
	if err := s.OpenCreate(); err != nil {
		h.shell.RenderError(c, http.StatusMethodNotAllowed, "This resource cannot be created here")
		return
	}
	h.submit(c, s)
}

// Show renders one record with its actions.
func (h *ResourceHandler) Show(c *gin.Context) {
	s := h.screen(c)
	if err := s.Load(c.Request.Context()); err != nil {
		if fetanapi.IsUnauthorized(err) {
			h.shell.Expire(c)
			return
		}
		h.renderList(c, s, http.StatusBadGateway)
		return
	}
	rec, ok := s.Find(c.Param("id"))
	if !ok {
		h.shell.RenderError(c, http.StatusNotFound, h.def.Singular+" not found")
		return
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h.shell.Render(c, http.StatusOK, "detail.html", h.def.Singular, h.def.Slug, DetailView{Def: h.def, Record: rec, Keys: keys})
}

// Edit renders the edit form prefilled from the list.
func (h *ResourceHandler) Edit(c *gin.Context) {
	s := h.screen(c)
	if err := s.Load(c.Request.Context()); err != nil {
		if fetanapi.IsUnauthorized(err) {
			h.shell.Expire(c)
			return
		}
		h.renderList(c, s, http.StatusBadGateway)
		return
	}
	switch err := s.OpenEdit(c.Param("id")); {
	case errors.Is(err, resource.ErrNotSupported):
		h.shell.RenderError(c, http.StatusNotFound, "This resource cannot be edited here")
		return
	case err != nil:
		h.shell.RenderError(c, http.StatusNotFound, h.def.Singular+" not found")
		return
	}
	h.renderForm(c, s, http.StatusOK)
}

// Update submits the edit form.
func (h *ResourceHandler) Update(c *gin.Context) {
	s := h.screen(c)
	if err := s.ResumeEdit(c.Param("id")); err != nil {
		h.shell.RenderError(c, http.StatusMethodNotAllowed, "This resource cannot be edited here")
		return
	}
	h.submit(c, s)
}

func (h *ResourceHandler) submit(c *gin.Context, s *resource.Screen) {
	values := postedValues(c)
	if err := h.attachUpload(c, values); err != nil {
		s.Form = values
		h.shell.notifier(c).Error(c.Request.Context(), "Image upload failed: "+err.Error())
		h.renderForm(c, s, http.StatusUnprocessableEntity)
		return
	}

	err := s.Submit(c.Request.Context(), values)
	switch {
	case fetanapi.IsUnauthorized(err) || fetanapi.IsUnauthorized(s.LoadErr):
		h.shell.Expire(c)
	case err != nil:
		h.renderForm(c, s, http.StatusUnprocessableEntity)
	default:
		h.renderList(c, s, http.StatusOK)
	}
}

// attachUpload stores an uploaded image and points the upload field at it.
func (h *ResourceHandler) attachUpload(c *gin.Context, values url.Values) error {
	if h.def.UploadField == "" || h.media == nil {
		return nil
	}
	file, err := c.FormFile("image")
	if err != nil {
		// No file chosen.
		return nil
	}

	f, err := file.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	u, err := h.media.UploadGalleryImage(c.Request.Context(), file.Filename, file.Header.Get("Content-Type"), file.Size, f)
	if err != nil {
		log.Error().Err(err).Str("resource", h.def.Slug).Msg("Failed to upload image")
		return err
	}
	values.Set(h.def.UploadField, u)
	return nil
}

// Toggle flips the record's active flag.
func (h *ResourceHandler) Toggle(c *gin.Context) {
	s := h.screen(c)
	err := s.Toggle(c.Request.Context(), c.Param("id"), c.PostForm("current") == "true")
	h.afterMutation(c, s, err)
}

// Delete removes the record, asking for confirmation first.
func (h *ResourceHandler) Delete(c *gin.Context) {
	s := h.screen(c)
	err := s.Delete(c.Request.Context(), c.Param("id"), c.PostForm("confirm") == "yes")
	if errors.Is(err, resource.ErrNotConfirmed) {
		h.shell.Render(c, http.StatusOK, "confirm.html", "Delete "+h.def.Singular, h.def.Slug,
			ConfirmView{Def: h.def, ID: c.Param("id")})
		return
	}
	h.afterMutation(c, s, err)
}

// Act applies one of the resource's single-field actions.
func (h *ResourceHandler) Act(c *gin.Context) {
	s := h.screen(c)
	err := s.Act(c.Request.Context(), c.Param("id"), c.Param("action"), c.PostForm("value"))
	h.afterMutation(c, s, err)
}

// afterMutation renders the refreshed list. A failed mutation still shows
// the list, fetched once, with the error toast.
func (h *ResourceHandler) afterMutation(c *gin.Context, s *resource.Screen, err error) {
	switch {
	case errors.Is(err, resource.ErrNotSupported), errors.Is(err, resource.ErrUnknownAction):
		h.shell.RenderError(c, http.StatusNotFound, "This operation is not available for "+h.def.Title)
		return
	case errors.Is(err, resource.ErrInvalidOption):
		h.shell.RenderError(c, http.StatusBadRequest, "Invalid value")
		return
	case fetanapi.IsUnauthorized(err):
		h.shell.Expire(c)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusBadGateway
		if loadErr := s.Load(c.Request.Context()); fetanapi.IsUnauthorized(loadErr) {
			h.shell.Expire(c)
			return
		}
	} else if fetanapi.IsUnauthorized(s.LoadErr) {
		h.shell.Expire(c)
		return
	}
	h.renderList(c, s, status)
}

func (h *ResourceHandler) renderList(c *gin.Context, s *resource.Screen, status int) {
	q := c.Query("q")
	h.shell.Render(c, status, "list.html", h.def.Title, h.def.Slug, ListView{
		Def:     h.def,
		Records: s.Filtered(q),
		Query:   q,
		Now:     h.now(),
	})
}

func (h *ResourceHandler) renderForm(c *gin.Context, s *resource.Screen, status int) {
	creating := s.State == resource.Creating
	fields := h.def.FormFields(creating)

	values := make(map[string]string, len(fields))
	for _, f := range fields {
		if s.Form != nil {
			values[f.Name] = s.Form.Get(f.Name)
			if f.Type == resource.Password {
				values[f.Name] = ""
			}
			continue
		}
		values[f.Name] = f.FormValue(s.Selected)
	}

	action := "/" + h.def.Slug
	title := "Add " + h.def.Singular
	if !creating {
		action += "/" + url.PathEscape(s.Selected.ID())
		title = "Edit " + h.def.Singular
	}

	h.shell.Render(c, status, "form.html", title, h.def.Slug, FormView{
		Def:      h.def,
		Fields:   fields,
		Values:   values,
		Creating: creating,
		Action:   action,
		Upload:   h.def.UploadField != "" && h.media != nil,
	})
}
