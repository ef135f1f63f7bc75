package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/ashkam58/mathflix/internal/server/cache"
	"github.com/ashkam58/mathflix/internal/server/response"
	"github.com/ashkam58/mathflix/pkg/catalogs"
	"github.com/ashkam58/mathflix/pkg/constants"
	"github.com/ashkam58/mathflix/pkg/logging"
)

// ListQuery is a parsed GET /games query.
type ListQuery struct {
	Filter catalogs.Filter
	Limit  int
	Offset int
}

// ParseListQuery extracts filter and pagination parameters.
func ParseListQuery(r *http.Request) (ListQuery, error) {
	q := r.URL.Query()
	lq := ListQuery{
		Filter: catalogs.Filter{Query: q.Get("q")},
		Limit:  constants.DefaultPageSize,
	}

	if v := q.Get("category"); v != "" {
		c, err := catalogs.ParseCategory(v)
		if err != nil {
			return lq, err
		}
		lq.Filter.Category = c
	}
	if v := q.Get("premium"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return lq, errors.New("premium must be true or false")
		}
		lq.Filter.Premium = &b
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return lq, errors.New("limit must be a positive integer")
		}
		lq.Limit = min(n, constants.MaxPageSize)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return lq, errors.New("offset must be a non-negative integer")
		}
		lq.Offset = n
	}
	return lq, nil
}

// HandleListGames handles GET /api/v1/games.
func (h *Handlers) HandleListGames(w http.ResponseWriter, r *http.Request) {
	lq, err := ParseListQuery(r)
	if err != nil {
		response.BadRequest(w, "Invalid query parameters", err.Error())
		return
	}

	cacheKey := cache.Key("games", r.URL.RawQuery)
	if cached, found := h.cache.Get(cacheKey); found {
		response.OK(w, cached)
		return
	}

	all, err := h.client.Games(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error().Err(err).Msg("listing games failed")
		response.ErrorFromType(w, err)
		return
	}
	h.catalogSize.Store(int64(len(all)))

	filtered := lq.Filter.Apply(all)
	total := len(filtered)
	page := []catalogs.Record{}
	if lq.Offset < total {
		page = filtered[lq.Offset:min(lq.Offset+lq.Limit, total)]
	}

	result := map[string]any{
		"games": page,
		"pagination": map[string]any{
			"total":  total,
			"limit":  lq.Limit,
			"offset": lq.Offset,
			"count":  len(page),
		},
	}

	h.cache.Set(cacheKey, result)
	response.OK(w, result)
}

// HandleGetGame handles GET /api/v1/games/{id}.
func (h *Handlers) HandleGetGame(w http.ResponseWriter, r *http.Request, id string) {
	cacheKey := cache.Key("game", id)
	if cached, found := h.cache.Get(cacheKey); found {
		response.OK(w, cached)
		return
	}

	game, err := h.client.Game(r.Context(), id)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.cache.Set(cacheKey, game)
	response.OK(w, game)
}

// HandleCreateGame handles POST /api/v1/games.
func (h *Handlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	var rec catalogs.Record
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes)).Decode(&rec); err != nil {
		response.BadRequest(w, "Invalid JSON request body", err.Error())
		return
	}

	created, err := h.client.CreateGame(r.Context(), rec)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	response.Created(w, created)
}

// HandleDeleteGame handles DELETE /api/v1/games/{id}.
func (h *Handlers) HandleDeleteGame(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.client.DeleteGame(r.Context(), id); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, map[string]any{"id": id, "deleted": true})
}

// HandleIncrementViews handles POST /api/v1/games/{id}/views.
func (h *Handlers) HandleIncrementViews(w http.ResponseWriter, r *http.Request, id string) {
	views, err := h.client.IncrementViews(r.Context(), id)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveView()
	}

	response.OK(w, map[string]any{"id": id, "views": views})
}
