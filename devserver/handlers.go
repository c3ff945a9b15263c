package devserver

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/axin/component"
	"github.com/kbukum/axin/errors"
	"github.com/kbukum/axin/logger"
	"github.com/kbukum/axin/observability"
	"github.com/kbukum/axin/validation"
)

const apiPrefix = "/api"

// Event names written on chat streams.
const (
	eventMessage   = "message"
	eventClose     = "close"
	eventKeepAlive = "keepalive"
)

type planQuery struct {
	Message string `form:"message" validate:"required,max=4000"`
	ChatID  string `form:"chatId" validate:"required,max=128"`
}

type manusQuery struct {
	Message string `form:"message" validate:"required,max=4000"`
}

func (s *Server) registerRoutes() {
	api := s.engine.Group(apiPrefix)
	api.GET("/health", s.health)

	plan := api.Group("/ai/plan_app/chat")
	plan.GET("/sync", s.planChatSync)
	plan.GET("/sse", s.planChatStream(false))
	plan.GET("/server_sent_event", s.planChatStream(true))
	plan.GET("/sse_emitter", s.planChatStream(false))

	api.GET("/ai/manus/chat", s.manusChat)

	s.engine.NoRoute(s.page)
}

func (s *Server) health(c *gin.Context) {
	status := component.StatusHealthy
	var components []component.Health
	if s.checker != nil {
		components = s.checker(c.Request.Context())
		for _, h := range components {
			if h.Status == component.StatusUnhealthy {
				status = component.StatusUnhealthy
				break
			}
			if h.Status == component.StatusDegraded {
				status = component.StatusDegraded
			}
		}
	}

	code := http.StatusOK
	if status == component.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"service":    "axin",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"components": components,
	})
}

func (s *Server) planChatSync(c *gin.Context) {
	var q planQuery
	if !bindQuery(c, &q) {
		return
	}
	chunks, err := s.responder.Reply(c.Request.Context(), AppPlan, q.Message, q.ChatID)
	if err != nil {
		respondError(c, errors.ExternalServiceError("responder", err))
		return
	}
	c.String(http.StatusOK, joinReply(chunks))
}

func (s *Server) planChatStream(withIDs bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q planQuery
		if !bindQuery(c, &q) {
			return
		}
		s.streamReply(c, AppPlan, q.Message, q.ChatID, withIDs)
	}
}

func (s *Server) manusChat(c *gin.Context) {
	var q manusQuery
	if !bindQuery(c, &q) {
		return
	}
	s.streamReply(c, AppManus, q.Message, "", false)
}

// page serves the single-page app fallback for non-API paths.
func (s *Server) page(c *gin.Context) {
	path := c.Request.URL.Path
	if strings.HasPrefix(path, apiPrefix+"/") || path == apiPrefix || c.Request.Method != http.MethodGet {
		respondError(c, errors.NotFound("endpoint", path))
		return
	}
	route, err := s.pages.Resolve(path)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"path": route.Path,
		"name": route.Name,
		"page": route.Page,
	})
}

// streamReply writes the reply as an event stream ending with a close event.
func (s *Server) streamReply(c *gin.Context, app App, message, chatID string, withIDs bool) {
	ctx, op := observability.StartOperation(c.Request.Context(), observability.SpanChatStream, s.metrics,
		attribute.String(observability.AttrChatID, chatID),
		attribute.String("chat.app", string(app)),
	)

	chunks, err := s.responder.Reply(ctx, app, message, chatID)
	if err != nil {
		op.End(ctx, err)
		respondError(c, errors.ExternalServiceError("responder", err))
		return
	}

	// Streams outlive the server's write timeout.
	if err := http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{}); err != nil {
		s.log.Debug("Could not clear write deadline", logger.Fields(logger.FieldError, err.Error()))
	}
	h := c.Writer.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	route := c.FullPath()
	keepAlive := time.NewTicker(s.config.KeepAlive)
	defer keepAlive.Stop()

	for i, chunk := range chunks {
		if i > 0 {
			if err := s.pause(c, route, keepAlive.C); err != nil {
				op.End(ctx, err)
				return
			}
		}
		id := ""
		if withIDs {
			id = strconv.Itoa(i + 1)
		}
		writeData(c.Writer, id, chunk)
		c.Writer.Flush()
		s.recordEvent(c, route, eventMessage)
	}

	c.SSEvent(eventClose, "")
	c.Writer.Flush()
	s.recordEvent(c, route, eventClose)

	s.log.Debug("Chat stream finished", logger.Fields(
		logger.FieldChatID, chatID,
		"app", string(app),
		"chunks", len(chunks),
	))
	op.End(ctx, nil)
}

// pause waits ChunkDelay, sending keepalive comments meanwhile. It fails
// when the client goes away.
func (s *Server) pause(c *gin.Context, route string, keepAlive <-chan time.Time) error {
	ctx := c.Request.Context()
	if s.config.ChunkDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.config.ChunkDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-keepAlive:
			_, _ = c.Writer.WriteString(": keepalive " + strconv.FormatInt(time.Now().Unix(), 10) + "\n\n")
			c.Writer.Flush()
			s.recordEvent(c, route, eventKeepAlive)
		case <-timer.C:
			return nil
		}
	}
}

func (s *Server) recordEvent(c *gin.Context, route, event string) {
	if s.metrics != nil {
		s.metrics.RecordStreamEvent(c.Request.Context(), route, event)
	}
}

// writeData writes one unnamed event. Each line of data gets its own field,
// after a space so that leading spaces in the data survive parsing.
func writeData(w gin.ResponseWriter, id, data string) {
	var b strings.Builder
	if id != "" {
		b.WriteString("id: " + id + "\n")
	}
	for _, line := range strings.Split(data, "\n") {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	_, _ = w.WriteString(b.String())
}

// bindQuery binds and validates query parameters, writing the error response
// on failure.
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		respondError(c, errors.InvalidInput("query", err.Error()))
		return false
	}
	if err := validation.Validate(dst); err != nil {
		respondError(c, err)
		return false
	}
	return true
}

// respondError writes err as AppError JSON; other errors become a 500.
func respondError(c *gin.Context, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Internal(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
