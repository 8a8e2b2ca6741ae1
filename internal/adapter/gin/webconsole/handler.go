package webconsole

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-console/internal/usecase/console"
	apperrors "user-console/pkg/errors"
	"user-console/pkg/logger"
)

// SessionCookie names the cookie that binds a browser to its Session.
const SessionCookie = "uc_session"

const sessionKey = "webconsole.session"

//go:embed templates/*.html
var templates embed.FS

// Config holds the web console settings.
type Config struct {
	ServiceName    string
	RequestTimeout time.Duration
	SecureCookie   bool
}

// Handler serves the browser console. Every mutating route redirects back to
// the index (post/redirect/get).
type Handler struct {
	registry *Registry
	cfg      Config
	log      *zap.Logger
}

// NewHandler creates a Handler over registry.
func NewHandler(registry *Registry, cfg Config, log *zap.Logger) *Handler {
	return &Handler{registry: registry, cfg: cfg, log: log}
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"ttlMillis": func(n console.Notice) int64 {
			return n.ExpiresAt.Sub(n.CreatedAt).Milliseconds()
		},
	}).ParseFS(templates, "templates/*.html")
}

// Register mounts the console routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	s := r.Group("/", h.session())
	{
		s.GET("/", h.Index)
		s.POST("/reload", h.Reload)
		s.POST("/users/new", h.BeginAdd)
		s.POST("/users/:id/edit", h.BeginEdit)
		s.POST("/users/:id/delete", h.Delete)
		s.POST("/form", h.Submit)
		s.POST("/form/cancel", h.Cancel)
		s.POST("/notices/:id/dismiss", h.Dismiss)
	}
}

// session attaches the caller's Session, creating one and setting the cookie
// when the request carries none or an expired one.
func (h *Handler) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *Session
		if id, err := c.Cookie(SessionCookie); err == nil {
			sess, _ = h.registry.Get(id)
		}
		if sess == nil {
			sess = h.registry.Create()
		}

		maxAge := int(h.registry.cfg.SessionTTL.Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sess.ID, maxAge, "/", "", h.cfg.SecureCookie, true)

		ctx := context.WithValue(c.Request.Context(), logger.SessionIDKey, sess.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) *Session {
	return c.MustGet(sessionKey).(*Session)
}

// requestContext bounds one handler's remote work.
func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	timeout := h.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

type indexData struct {
	console.Snapshot
	Title    string
	HasPrev  bool
	HasNext  bool
	PrevPage int64
	NextPage int64
}

// Index renders the table, the form (when open) and the notices. The page
// query parameter moves the page pointer when it names a valid page.
func (h *Handler) Index(c *gin.Context) {
	sess := sessionFrom(c)
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := sess.Store.EnsureLoaded(ctx); err != nil {
		h.logFor(c).Warn("initial load failed", zap.Error(err))
	}

	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.ParseInt(raw, 10, 64); err == nil {
			sess.Store.Paginate(page)
		}
	}

	snap := sess.Store.Snapshot()
	c.HTML(http.StatusOK, "index.html", indexData{
		Snapshot: snap,
		Title:    h.cfg.ServiceName,
		HasPrev:  snap.Pagination.HasPrev(),
		HasNext:  snap.Pagination.HasNext(),
		PrevPage: snap.Pagination.Page - 1,
		NextPage: snap.Pagination.Page + 1,
	})
}

// Reload re-fetches the collection.
func (h *Handler) Reload(c *gin.Context) {
	sess := sessionFrom(c)
	ctx, cancel := h.requestContext(c)
	defer cancel()

	h.dispatch(c, sess, ctx, console.Load{})
}

// BeginAdd opens an empty form.
func (h *Handler) BeginAdd(c *gin.Context) {
	sess := sessionFrom(c)
	h.dispatch(c, sess, c.Request.Context(), console.BeginAdd{})
}

// BeginEdit opens the form on the record with the path id.
func (h *Handler) BeginEdit(c *gin.Context) {
	sess := sessionFrom(c)
	row, ok := h.row(c, sess)
	if !ok {
		return
	}
	h.dispatch(c, sess, c.Request.Context(), row.Edit())
}

// Delete deletes the record with the path id.
func (h *Handler) Delete(c *gin.Context) {
	sess := sessionFrom(c)
	row, ok := h.row(c, sess)
	if !ok {
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()
	h.dispatch(c, sess, ctx, row.Delete())
}

// Submit applies the posted fields to the open form and submits it. Failures
// are shown inline by the next render.
func (h *Handler) Submit(c *gin.Context) {
	sess := sessionFrom(c)
	form := sess.Store.Form()
	if form == nil {
		h.redirect(c, sess)
		return
	}

	for _, field := range []string{console.FieldName, console.FieldEmail, console.FieldDepartment} {
		if value, ok := c.GetPostForm(field); ok {
			if err := form.Change(field, value); err != nil {
				h.logFor(c).Warn("form change rejected", zap.String("field", field), zap.Error(err))
			}
		}
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := form.Submit(ctx); err != nil {
		h.logFor(c).Info("form submit failed", zap.Error(err))
	}
	h.redirect(c, sess)
}

// Cancel closes the form without saving.
func (h *Handler) Cancel(c *gin.Context) {
	sess := sessionFrom(c)
	if form := sess.Store.Form(); form != nil {
		if err := form.Cancel(c.Request.Context()); err != nil {
			h.logFor(c).Warn("form cancel failed", zap.Error(err))
		}
	}
	h.redirect(c, sess)
}

// Dismiss removes one notice before it expires.
func (h *Handler) Dismiss(c *gin.Context) {
	sess := sessionFrom(c)
	if id, err := strconv.ParseUint(c.Param("id"), 10, 64); err == nil {
		sess.Notices.Dismiss(id)
	}
	h.redirect(c, sess)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"service":  h.cfg.ServiceName,
		"sessions": h.registry.Len(),
	})
}

// row finds the record with the path id. Unknown ids answer 404.
func (h *Handler) row(c *gin.Context, sess *Session) (console.Row, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err == nil {
		for _, u := range sess.Store.Records() {
			if u.ID == id {
				return console.NewRow(&u)
			}
		}
	}
	c.String(http.StatusNotFound, "user %q not found", c.Param("id"))
	return console.Row{}, false
}

func (h *Handler) dispatch(c *gin.Context, sess *Session, ctx context.Context, cmd console.Command) {
	if err := sess.Store.Dispatch(ctx, cmd); err != nil {
		if errors.Is(err, console.ErrStoreClosed) {
			c.String(http.StatusGone, "session closed")
			return
		}
		h.logFor(c).Info("console command failed",
			zap.String("command", fmt.Sprintf("%T", cmd)),
			zap.Int("status", apperrors.HTTPStatus(err)),
			zap.Error(err),
		)
	}
	h.redirect(c, sess)
}

func (h *Handler) redirect(c *gin.Context, sess *Session) {
	page := sess.Store.Snapshot().Pagination.Page
	c.Redirect(http.StatusSeeOther, "/?page="+strconv.FormatInt(page, 10))
}

func (h *Handler) logFor(c *gin.Context) *zap.Logger {
	return logger.WithContext(c.Request.Context(), h.log)
}
