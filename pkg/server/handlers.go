package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/entity"
	"github.com/matzehuels/heightcompare/pkg/errors"
	hcio "github.com/matzehuels/heightcompare/pkg/io"
	"github.com/matzehuels/heightcompare/pkg/pipeline"
	"github.com/matzehuels/heightcompare/pkg/render/chart/layout"
	"github.com/matzehuels/heightcompare/pkg/ruler"
	"github.com/matzehuels/heightcompare/pkg/scale"
	"github.com/matzehuels/heightcompare/pkg/session"
	"github.com/matzehuels/heightcompare/pkg/units"
)

// Request limits.
const (
	maxPeople       = 200
	defaultSample   = 5
	maxSample       = 50
	defaultList     = 50
	maxList         = 500
	readinessBudget = 5 * time.Second
)

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessBudget)
	defer cancel()
	if _, err := s.catalog.Categories(ctx); err != nil {
		s.logger.Warn("catalog not ready", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody(errors.ErrCodeNetwork, "catalog unreachable"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// =============================================================================
// Boards
// =============================================================================

type createBoardRequest struct {
	Name   string        `json:"name"`
	Mode   units.Mode    `json:"mode"`
	People []hcio.Person `json:"people"`
}

func (req createBoardRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Name, validation.Length(0, errors.MaxNameLength)),
		validation.Field(&req.Mode, validation.In(units.ModeCentimeter, units.ModeFoot)),
		validation.Field(&req.People, validation.Length(0, maxPeople)),
	)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var req createBoardRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	board := hcio.Board{Name: req.Name, Mode: req.Mode, People: req.People}
	people, err := board.Collection()
	if err != nil {
		writeError(w, err)
		return
	}
	ttl := s.cfg.BoardTTL
	if ttl < 0 {
		ttl = 0
	}
	b, err := session.New(req.Name, ttl)
	if err != nil {
		writeError(w, err)
		return
	}
	b.Mode = req.Mode
	b.Save(people)
	if err := s.boards.Set(r.Context(), b); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("created board", "board", b.ID, "people", len(b.People))
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := s.loadBoard(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateBoardID(id); err != nil {
		writeError(w, err)
		return
	}
	unlock := s.locks.lock(id)
	defer unlock()
	if _, err := s.boards.Get(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	if err := s.boards.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// People
// =============================================================================

type personPatch struct {
	Name   *string      `json:"name"`
	Height *hcio.Height `json:"height"`
	Gender *string      `json:"gender"`
	Color  *string      `json:"color"`
	Image  *string      `json:"image"`
}

func (p personPatch) Validate() error {
	if p.Name == nil && p.Height == nil && p.Gender == nil && p.Color == nil && p.Image == nil {
		return errors.New(errors.ErrCodeInvalidInput, "patch changes nothing")
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(1, errors.MaxNameLength)),
		validation.Field(&p.Gender, validation.In("male", "female", "other", "Male", "Female", "Other")),
		validation.Field(&p.Image, is.RequestURL),
	)
}

func (p personPatch) toPatch() (entity.Patch, error) {
	var out entity.Patch
	out.Name = p.Name
	out.ImageURL = p.Image
	if p.Height != nil {
		h := float64(*p.Height)
		out.Height = &h
	}
	if p.Gender != nil {
		g := entity.ParseGender(*p.Gender)
		out.Gender = &g
	}
	if p.Color != nil {
		c, err := entity.ParseColor(*p.Color)
		if err != nil {
			return entity.Patch{}, err
		}
		out.Color = &c
	}
	return out, nil
}

func (s *Server) handleAddPerson(w http.ResponseWriter, r *http.Request) {
	var req hcio.Person
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	spec, err := req.Spec()
	if err != nil {
		writeError(w, err)
		return
	}
	var added entity.Entity
	_, err = s.mutate(r, func(_ *session.Session, people *entity.Collection) error {
		if people.Len() >= maxPeople {
			return errors.New(errors.ErrCodeInvalidInput, "board already has %d people", maxPeople)
		}
		e, err := people.Add(spec)
		added = e
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var req personPatch
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, err)
		return
	}
	pid := chi.URLParam(r, "pid")
	var updated entity.Entity
	_, err = s.mutate(r, func(_ *session.Session, people *entity.Collection) error {
		e, err := people.Update(pid, patch)
		updated = e
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleRemovePerson(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")
	_, err := s.mutate(r, func(_ *session.Session, people *entity.Collection) error {
		if !people.Remove(pid) {
			return errors.New(errors.ErrCodePersonNotFound, "person %q not found", pid)
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearPeople(w http.ResponseWriter, r *http.Request) {
	_, err := s.mutate(r, func(_ *session.Session, people *entity.Collection) error {
		people.Clear()
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type modeRequest struct {
	Mode *units.Mode `json:"mode"`
}

func (req modeRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Mode, validation.NotNil, validation.In(units.ModeAuto, units.ModeCentimeter, units.ModeFoot)),
	)
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.mutate(r, func(b *session.Session, _ *entity.Collection) error {
		b.Mode = *req.Mode
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// =============================================================================
// Charts
// =============================================================================

type chartResponse struct {
	Board      string           `json:"board"`
	Resolution scale.Resolution `json:"resolution"`
	Marks      []ruler.Mark     `json:"marks"`
	Layout     layout.Layout    `json:"layout"`
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	b, err := s.loadBoard(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.chartOptions(r, b)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, err)
		return
	}
	res, marks := s.runner.Resolve(r.Context(), b.People, b.Mode)
	writeJSON(w, http.StatusOK, chartResponse{
		Board:      b.ID,
		Resolution: res,
		Marks:      marks,
		Layout:     layout.Build(b.People, res, marks, opts.LayoutOptions()...),
	})
}

func (s *Server) handleChartArtifact(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, err)
		return
	}
	b, err := s.loadBoard(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts, err := s.chartOptions(r, b)
	if err != nil {
		writeError(w, err)
		return
	}
	opts.Formats = []string{format}

	result, err := s.runner.Render(r.Context(), b.People, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	cacheState := "miss"
	if result.CacheInfo.Hits[format] {
		cacheState = "hit"
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Cache", cacheState)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// chartOptions reads the render settings from the query string.
func (s *Server) chartOptions(r *http.Request, b *session.Session) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Mode:      b.Mode,
		Height:    s.cfg.ChartHeight,
		Title:     q.Get("title"),
		Watermark: s.cfg.Watermark,
		Board:     b.ID,
	}
	if v := q.Get("watermark"); v != "" {
		opts.Watermark = v
	}
	var err error
	if opts.Height, err = floatParam(q.Get("height"), opts.Height); err != nil {
		return opts, err
	}
	if opts.Scale, err = floatParam(q.Get("scale"), 0); err != nil {
		return opts, err
	}
	if opts.NoWatermark, err = boolParam(q.Get("no_watermark")); err != nil {
		return opts, err
	}
	if opts.NoGrid, err = boolParam(q.Get("no_grid")); err != nil {
		return opts, err
	}
	if opts.Refresh, err = boolParam(q.Get("refresh")); err != nil {
		return opts, err
	}
	return opts, nil
}

// =============================================================================
// Catalog on boards
// =============================================================================

func (s *Server) handleAddCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog.ByID(r.Context(), chi.URLParam(r, "cid"))
	if err != nil {
		writeError(w, err)
		return
	}
	var added entity.Entity
	_, err = s.mutate(r, func(_ *session.Session, people *entity.Collection) error {
		if people.Len() >= maxPeople {
			return errors.New(errors.ErrCodeInvalidInput, "board already has %d people", maxPeople)
		}
		e, err := people.Add(entity.FromCharacter(c))
		added = e
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r.URL.Query().Get("n"), defaultSample, 1, maxSample)
	if err != nil {
		writeError(w, err)
		return
	}
	chars, err := s.catalog.Random(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := s.mutate(r, func(_ *session.Session, people *entity.Collection) error {
		people.Clear()
		for _, c := range chars {
			if _, err := people.Add(entity.FromCharacter(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// =============================================================================
// Catalog
// =============================================================================

type charactersResponse struct {
	Characters []catalog.Character `json:"characters"`
	Count      int                 `json:"count"`
}

func listOf(chars []catalog.Character) charactersResponse {
	if chars == nil {
		chars = []catalog.Character{}
	}
	return charactersResponse{Characters: chars, Count: len(chars)}
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), defaultList, 1, maxList)
	if err != nil {
		writeError(w, err)
		return
	}
	query := catalog.Query{Text: q.Get("q"), Limit: limit}
	for _, raw := range splitParams(q["category"]) {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "category %q is not a number", raw))
			return
		}
		query.Categories = append(query.Categories, id)
	}
	for _, g := range splitParams(q["gender"]) {
		query.Genders = append(query.Genders, strings.ToLower(g))
	}

	all, err := s.catalog.Characters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(catalog.Filter(all, query)))
}

func (s *Server) handleRandomCharacters(w http.ResponseWriter, r *http.Request) {
	n, err := intParam(r.URL.Query().Get("n"), 1, 1, maxSample)
	if err != nil {
		writeError(w, err)
		return
	}
	chars, err := s.catalog.Random(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listOf(chars))
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := s.catalog.ByID(r.Context(), chi.URLParam(r, "cid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if cats == nil {
		cats = []catalog.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// =============================================================================
// Scale
// =============================================================================

type scaleResponse struct {
	Resolution scale.Resolution `json:"resolution"`
	Marks      []ruler.Mark     `json:"marks"`
}

func (s *Server) handleScale(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := units.ModeAuto
	if v := q.Get("mode"); v != "" {
		m, err := units.ParseMode(v)
		if err != nil {
			writeError(w, err)
			return
		}
		mode = m
	}
	var heights []float64
	for _, raw := range splitParams(q["h"]) {
		cm, err := units.ParseHeight(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := errors.ValidateHeight(cm); err != nil {
			writeError(w, err)
			return
		}
		heights = append(heights, cm)
	}

	res := scale.SelectDisplay(heights, mode)
	writeJSON(w, http.StatusOK, scaleResponse{
		Resolution: res,
		Marks:      ruler.Generate(res.Range, res.Unit),
	})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) loadBoard(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateBoardID(id); err != nil {
		return nil, err
	}
	return s.boards.Get(r.Context(), id)
}

// mutate loads the board under its lock, applies fn to it and its people,
// and stores the result. Nothing is stored when fn fails.
func (s *Server) mutate(r *http.Request, fn func(*session.Session, *entity.Collection) error) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateBoardID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(id)
	defer unlock()

	b, err := s.boards.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	people, err := b.Collection()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "board %q is corrupt", id)
	}
	if err := fn(b, people); err != nil {
		return nil, err
	}
	b.Save(people)
	if err := s.boards.Set(r.Context(), b); err != nil {
		return nil, err
	}
	return b, nil
}

// splitParams flattens repeated and comma-separated query values.
func splitParams(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%q must be an integer between %d and %d", raw, lo, hi)
	}
	return n, nil
}

func floatParam(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%q is not a number", raw)
	}
	return f, nil
}

func boolParam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%q is not a boolean", raw)
	}
	return b, nil
}
