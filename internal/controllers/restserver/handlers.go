package restserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/chrissnell/eddyflux/internal/storage"
	"github.com/chrissnell/eddyflux/pkg/flux"
	"github.com/chrissnell/eddyflux/pkg/rotation"
)

// ComputeFlux handles POST /api/v1/flux: it computes the flux of one
// interval with the site's options, stores it and returns the record.
func (c *Controller) ComputeFlux(w http.ResponseWriter, req *http.Request) {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)

	var body FluxRequest
	if err := c.formatter.DecodeRequest(req, &body); err != nil {
		c.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return
	}

	site := body.Site
	if site == "" {
		site = c.sites[0]
	}
	calc, ok := c.calculators[site]
	if !ok {
		c.formatter.WriteError(w, req, http.StatusNotFound, fmt.Sprintf("unknown site %q", site))
		return
	}

	overrides, err := body.Options.toOptions()
	if err != nil {
		c.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	res, err := calc.Compute(body.Series, overrides...)
	if err != nil {
		var verr *flux.ValidationError
		if errors.As(err, &verr) {
			c.formatter.WriteError(w, req, http.StatusUnprocessableEntity, err.Error())
			return
		}
		c.logger.Errorf("computing flux for site %s: %v", site, err)
		c.formatter.WriteError(w, req, http.StatusInternalServerError, "error computing flux")
		return
	}

	var start time.Time
	if body.StartTime != nil {
		start = *body.StartTime
	}
	method := calc.Options().With(overrides...).RotationMethod
	rec := storage.NewRecord(site, start, body.Series.Len(), method.String(), res)

	if err := c.store.Save(req.Context(), rec); err != nil {
		c.logger.Errorf("storing flux result: %v", err)
		c.formatter.WriteError(w, req, http.StatusInternalServerError, "error storing result")
		return
	}

	c.formatter.WriteResponse(w, req, http.StatusCreated, rec)
}

// ListResults handles GET /api/v1/results?site=&limit=.
func (c *Controller) ListResults(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			c.formatter.WriteError(w, req, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := c.store.List(req.Context(), q.Get("site"), limit)
	if err != nil {
		c.logger.Errorf("listing results: %v", err)
		c.formatter.WriteError(w, req, http.StatusInternalServerError, "error listing results")
		return
	}

	c.formatter.WriteResponse(w, req, http.StatusOK, records)
}

// GetResult handles GET /api/v1/results/{id}.
func (c *Controller) GetResult(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		c.formatter.WriteError(w, req, http.StatusBadRequest, "invalid result id")
		return
	}

	rec, err := c.store.Get(req.Context(), id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.formatter.WriteError(w, req, http.StatusNotFound, "result not found")
	case err != nil:
		c.logger.Errorf("loading result %s: %v", id, err)
		c.formatter.WriteError(w, req, http.StatusInternalServerError, "error loading result")
	default:
		c.formatter.WriteResponse(w, req, http.StatusOK, rec)
	}
}

// ListSites handles GET /api/v1/sites.
func (c *Controller) ListSites(w http.ResponseWriter, req *http.Request) {
	sites := make([]SiteInfo, 0, len(c.sites))
	for _, name := range c.sites {
		opts := c.calculators[name].Options()
		sites = append(sites, SiteInfo{
			Name:              name,
			RotationMethod:    opts.RotationMethod.String(),
			MinSamples:        opts.MinSamples,
			SamplingFrequency: opts.SamplingFrequency,
			MeasurementHeight: opts.MeasurementHeight,
			RoughnessLength:   opts.RoughnessLength,
			FetchDistance:     opts.FetchDistance,
		})
	}
	c.formatter.WriteResponse(w, req, http.StatusOK, sites)
}

// Recommend handles GET /api/v1/recommend?terrain=&wind=&slope=.
func (c *Controller) Recommend(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	terrain, err := rotation.ParseTerrain(q.Get("terrain"))
	if err != nil {
		c.formatter.WriteError(w, req, http.StatusBadRequest, err.Error())
		return
	}

	wind, err := floatParam(q.Get("wind"), 0)
	if err != nil {
		c.formatter.WriteError(w, req, http.StatusBadRequest, "wind must be a number")
		return
	}
	slope, err := floatParam(q.Get("slope"), 0)
	if err != nil {
		c.formatter.WriteError(w, req, http.StatusBadRequest, "slope must be a number")
		return
	}

	c.formatter.WriteResponse(w, req, http.StatusOK, Recommendation{
		Terrain:        terrain.String(),
		WindSpeed:      wind,
		SlopeDegrees:   slope,
		RotationMethod: rotation.RecommendMethod(terrain, wind, slope).String(),
	})
}

// Health handles GET /healthz.
func (c *Controller) Health(w http.ResponseWriter, req *http.Request) {
	c.formatter.WriteResponse(w, req, http.StatusOK, map[string]string{"status": "ok"})
}

func (c *Controller) methodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Allow", allowed)
		c.formatter.WriteError(w, req, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", req.Method))
	}
}

func floatParam(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseFloat(s, 64)
}
