package controllers

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"railpulse/internal/alerts"
	"railpulse/internal/analytics"
	"railpulse/internal/archive"
	"railpulse/internal/models"
	"railpulse/internal/providers"
	"railpulse/internal/services"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const (
	defaultTweetsPerPage = 25
	defaultAlertsPerPage = 20
)

type ApiController struct {
	logger    providers.Logger
	cache     providers.CacheProviderInterface
	pipeline  services.PipelineServiceInterface
	records   models.RecordRepository
	alerts    alerts.ManagerInterface
	archives  archive.ServiceInterface
	analytics analytics.AggregatorInterface
}

func NewApiController(logger providers.Logger, cache providers.CacheProviderInterface, pipeline services.PipelineServiceInterface, records models.RecordRepository, alertManager alerts.ManagerInterface, archives archive.ServiceInterface, aggregator analytics.AggregatorInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		cache:     cache,
		pipeline:  pipeline,
		records:   records,
		alerts:    alertManager,
		archives:  archives,
		analytics: aggregator,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	gson, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// ClassifyTweet scores a single text without persisting anything.
func (ac *ApiController) ClassifyTweet(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Tweet string `json:"tweet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if payload.Tweet == "" {
		writeError(w, http.StatusBadRequest, "Tweet text is required")
		return
	}

	result := ac.pipeline.ClassifyText(r.Context(), payload.Tweet)
	writeJSON(w, http.StatusOK, map[string]any{
		"sentiment_score": result.Score,
		"confidence":      result.Confidence,
	})
}

// IngestTweets runs a batch of raw posts through the pipeline.
func (ac *ApiController) IngestTweets(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Tweets []services.IncomingTweet `json:"tweets"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	report, err := ac.pipeline.Ingest(r.Context(), payload.Tweets)
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Ingest failed: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func parseTimeParam(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTweets lists records with conjunctive filters and pagination.
func (ac *ApiController) GetTweets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.RecordFilter{}
	var err error
	if filter.From, err = parseTimeParam(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from timestamp")
		return
	}
	if filter.To, err = parseTimeParam(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to timestamp")
		return
	}
	filter.FromExclusive = q.Get("fromExclusive") == "true"
	filter.ToExclusive = q.Get("toExclusive") == "true"

	if raw := q.Get("sentiment"); raw != "" {
		score := cast.ToInt(raw)
		if score < models.ScoreMin || score > models.ScoreMax {
			writeError(w, http.StatusBadRequest, "invalid sentiment score")
			return
		}
		filter.Score = &score
	}
	if raw := q.Get("emergency"); raw != "" {
		emergency := raw == "true"
		filter.Emergency = &emergency
	}
	filter.Contains = q.Get("search")
	filter.Category = q.Get("category")

	page := cast.ToInt(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage := cast.ToInt(q.Get("perPage"))
	if perPage < 1 {
		perPage = defaultTweetsPerPage
	}
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	tweets, err := ac.records.Query(r.Context(), filter)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Error listing records: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tweets":   tweets,
		"page":     page,
		"per_page": perPage,
		"count":    len(tweets),
	})
}

// GetAlerts lists emergency alerts by status and level.
func (ac *ApiController) GetAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.AlertFilter{}
	switch q.Get("status") {
	case "", "active":
		resolved := false
		filter.Resolved = &resolved
	case "resolved":
		resolved := true
		filter.Resolved = &resolved
	case "all":
	default:
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	if raw := q.Get("level"); raw != "" {
		level, ok := models.LookupAlertLevel(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid level filter")
			return
		}
		filter.Level = &level
	}

	page := cast.ToInt(q.Get("page"))
	if page < 1 {
		page = 1
	}
	filter.Limit = defaultAlertsPerPage
	filter.Offset = (page - 1) * defaultAlertsPerPage

	alertList, err := ac.alerts.List(r.Context(), filter)
	if err != nil {
		ac.logger.Errorf(providers.TypeGet, "Error listing alerts: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"alerts": alertList,
		"page":   page,
		"count":  len(alertList),
	})
}

// ResolveAlert marks an alert resolved, with optional audit notes.
func (ac *ApiController) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		AlertID string `json:"alert_id"`
		Notes   string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if payload.AlertID == "" {
		writeError(w, http.StatusBadRequest, "alert_id is required")
		return
	}

	alert, err := ac.alerts.Resolve(r.Context(), payload.AlertID, payload.Notes)
	if err != nil {
		if errors.Is(err, models.ErrAlertNotFound) {
			writeError(w, http.StatusNotFound, "alert not found")
			return
		}
		ac.logger.Errorf(providers.TypePost, "Error resolving alert %s: %s", payload.AlertID, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"alert":  alert,
	})
}

// CreateArchive snapshots records in a time range to the object store.
func (ac *ApiController) CreateArchive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
		Name  string    `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if payload.Start.IsZero() || payload.End.IsZero() || payload.End.Before(payload.Start) {
		writeError(w, http.StatusBadRequest, "invalid time range")
		return
	}

	tweets, err := ac.records.Query(r.Context(), models.RecordFilter{
		From:     &payload.Start,
		To:       &payload.End,
		OrderAsc: true,
	})
	if err != nil {
		ac.logger.Errorf(providers.TypePost, "Error querying records for archive: %s", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	name, ok := ac.archives.Archive(r.Context(), tweets, payload.Name)
	if !ok {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"status":  "error",
			"message": "Failed to create archive",
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"archive": name,
		"records": len(tweets),
	})
}

// ListArchives lists snapshot names matching an optional prefix.
// Listings are served fresh: snapshots appear via this API and the
// background scheduler, and a cached listing would hide either until
// its TTL ran out.
func (ac *ApiController) ListArchives(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	writeJSON(w, http.StatusOK, map[string]any{
		"archives": ac.archives.List(r.Context(), prefix),
	})
}

// GetArchive retrieves one snapshot's records by name.
func (ac *ApiController) GetArchive(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	tweets, err := ac.archives.Retrieve(r.Context(), name)
	if err != nil {
		if errors.Is(err, archive.ErrSnapshotNotFound) {
			writeError(w, http.StatusNotFound, "archive not found")
			return
		}
		writeError(w, http.StatusBadGateway, "archive retrieval failed")
		return
	}

	snapshots := make([]models.TweetSnapshot, 0, len(tweets))
	for _, tweet := range tweets {
		snapshots = append(snapshots, tweet.Snapshot())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"archive": name,
		"tweets":  snapshots,
	})
}

// GetAnalytics serves windowed rollups, cached per window.
func (ac *ApiController) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	window := analytics.Window{
		Preset: q.Get("range"),
		Dense:  q.Get("dense") == "true",
	}
	var err error
	if window.From, err = parseTimeParam(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from timestamp")
		return
	}
	if window.To, err = parseTimeParam(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to timestamp")
		return
	}

	cacheKey := "analytics:" + window.Preset + ":" + q.Get("from") + ":" + q.Get("to") + ":" + q.Get("dense")
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		return ac.analytics.Summarize(r.Context(), window)
	})
}
