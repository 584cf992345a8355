package handlers

import (
	"context"
	"datatrans/config"
	"datatrans/database"
	"datatrans/models"
	"datatrans/service"
	"datatrans/version"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// API serves the translator workflow over HTTP.
type API struct {
	svc *service.Services
	cfg *config.Config
	db  *gorm.DB
	log zerolog.Logger
}

// New constructs the HTTP API
func New(svc *service.Services, cfg *config.Config, db *gorm.DB, logger zerolog.Logger) *API {
	return &API{svc: svc, cfg: cfg, db: db, log: logger}
}

// Router builds the gin engine with all routes.
func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(a.log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
	}))

	r.GET("/api/health", a.Health)

	api := r.Group("/api", TranslatorAuth(a.cfg.TranslatorTokenHash))
	{
		api.GET("/models", a.ListModels)
		api.GET("/models/:slug/:language", a.ModelDetail)
		api.POST("/models/:slug/:language", a.CommitTranslations)
		api.GET("/models/:slug/:language/:object_id", a.ObjectDetail)
		api.POST("/models/:slug/:language/:object_id", a.CommitTranslations)

		api.POST("/make-messages", a.MakeMessages)

		api.GET("/obsoletes", a.ListObsoletes)
		api.POST("/obsoletes/purge", a.PurgeObsoletes)
	}
	return r
}

// ListModels returns every registered model with its progress and word count.
func (a *API) ListModels(c *gin.Context) {
	overview, err := a.svc.Progress.Overview(c.Request.Context())
	if err != nil {
		failErr(c, "Failed to list models", err)
		return
	}
	ok(c, overview)
}

// ModelDetail returns the editor for all objects of a model, or the object
// selector when the model is translated one object at a time.
func (a *API) ModelDetail(c *gin.Context) {
	slug, language := c.Param("slug"), c.Param("language")

	m, found := a.svc.Editor.Model(slug)
	if found && m.OneFormPerObject {
		selector, err := a.svc.Editor.Selector(c.Request.Context(), slug, language)
		if err != nil {
			failErr(c, "Failed to load objects", err)
			return
		}
		ok(c, gin.H{"selector": selector})
		return
	}

	editor, err := a.svc.Editor.Editor(c.Request.Context(), slug, language, nil)
	if err != nil {
		failErr(c, "Failed to load editor", err)
		return
	}
	ok(c, gin.H{"editor": editor})
}

// ObjectDetail returns the editor for one object.
func (a *API) ObjectDetail(c *gin.Context) {
	objectID, err := strconv.ParseInt(c.Param("object_id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid object id", "invalid object id")
		return
	}

	editor, err := a.svc.Editor.Editor(c.Request.Context(), c.Param("slug"), c.Param("language"), []int64{objectID})
	if err != nil {
		failErr(c, "Failed to load editor", err)
		return
	}
	ok(c, gin.H{"editor": editor})
}

// CommitTranslations saves a submitted translation form.
func (a *API) CommitTranslations(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		fail(c, http.StatusBadRequest, CodeInvalidRequest, "Invalid form", err.Error())
		return
	}

	saved, err := a.svc.Translations.CommitForm(c.Request.Context(), c.Request.PostForm)
	if err != nil {
		failErr(c, "Failed to commit translations", err)
		return
	}
	ok(c, gin.H{"saved": saved})
}

// MakeMessages creates the missing translations of every registered model.
func (a *API) MakeMessages(c *gin.Context) {
	created, err := a.svc.Translations.MakeMessages(c.Request.Context())
	if err != nil {
		failErr(c, "Failed to make messages", err)
		return
	}
	ok(c, gin.H{"created": created})
}

// ListObsoletes returns the obsolete translations worth reviewing and the
// total number a purge would delete.
func (a *API) ListObsoletes(c *gin.Context) {
	ctx := c.Request.Context()

	all, err := a.svc.Obsoletes.Find(ctx)
	if err != nil {
		failErr(c, "Failed to find obsolete translations", err)
		return
	}
	review := make([]models.KeyValue, 0, len(all))
	for i := range all {
		if a.svc.Obsoletes.NeedsReview(&all[i]) {
			review = append(review, all[i])
		}
	}

	data := gin.H{"obsoletes": review, "total": len(all)}
	if when, count, found, err := a.svc.Obsoletes.LastPurge(ctx); err == nil && found {
		data["last_purge"] = gin.H{"at": when, "deleted": count}
	}
	ok(c, data)
}

// PurgeObsoletes deletes every obsolete translation.
func (a *API) PurgeObsoletes(c *gin.Context) {
	deleted, err := a.svc.Obsoletes.Purge(c.Request.Context())
	if err != nil {
		failErr(c, "Failed to purge obsolete translations", err)
		return
	}
	ok(c, gin.H{"deleted": deleted})
}

// Health reports database connectivity.
func (a *API) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	dbHealthy := database.Ping(ctx, a.db)
	health := gin.H{
		"status":               "healthy",
		"timestamp":            time.Now().Unix(),
		"version":              version.GetFullVersion(),
		"db_healthy":           dbHealthy,
		"sqlite_busy_errors":   database.SQLiteBusyErrorsTotal(),
		"sqlite_locked_errors": database.SQLiteLockedErrorsTotal(),
	}

	if !dbHealthy {
		health["status"] = "degraded"
		respond(c, http.StatusServiceUnavailable, CodeUnavailable, "Database unavailable", health)
		return
	}
	ok(c, health)
}
