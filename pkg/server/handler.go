package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mikeboe/paper-assistant/pkg/chat"
	"github.com/mikeboe/paper-assistant/pkg/citation"
	"github.com/mikeboe/paper-assistant/pkg/research"
	"github.com/mikeboe/paper-assistant/pkg/search"
	"github.com/mikeboe/paper-assistant/pkg/session"
)

var errNoPapers = errors.New("no papers loaded; upload papers first")

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.Any("/mcp", gin.WrapH(h.MCPHandler()))
	api := r.Group("/api")
	{
		api.GET("/options", h.getOptions)

		api.POST("/sessions", h.createSession)
		api.GET("/sessions/:id", h.getSession)
		api.DELETE("/sessions/:id", h.deleteSession)

		api.POST("/sessions/:id/papers", h.uploadPapers)
		api.POST("/sessions/:id/papers/text", h.loadText)
		api.GET("/sessions/:id/papers", h.listPapers)

		api.POST("/sessions/:id/analyses", h.analyze)
		api.GET("/sessions/:id/analyses", h.listAnalyses)
		api.GET("/sessions/:id/analyses/export", h.exportAnalyses)

		api.POST("/sessions/:id/comparison", h.compare)
		api.POST("/sessions/:id/related", h.related)
		api.POST("/sessions/:id/summaries", h.summaries)
		api.GET("/sessions/:id/citations", h.citations)
		api.GET("/sessions/:id/search", h.search)

		api.POST("/sessions/:id/questions", h.ask)
		api.GET("/sessions/:id/questions", h.listQuestions)

		api.POST("/sessions/:id/assistant", h.assistant)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, research.ErrInsufficientInput),
		errors.Is(err, research.ErrNoResults),
		errors.Is(err, research.ErrInvalidQuestion),
		errors.Is(err, search.ErrInvalidInput),
		errors.Is(err, errNoPapers):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// lockSession resolves the :id session and locks it. The caller unlocks.
func (h *Handler) lockSession(c *gin.Context) (*session.Session, bool) {
	sess, err := h.Service.Store.Get(c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	sess.Lock()
	return sess, true
}

func (h *Handler) getOptions(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Options())
}

func (h *Handler) createSession(c *gin.Context) {
	var req struct {
		CitationStyle string `json:"citation_style"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	sess := h.Service.Store.Create()
	if req.CitationStyle != "" {
		style, err := citation.ParseStyle(req.CitationStyle)
		if err != nil {
			_ = h.Service.Store.Delete(sess.ID.String())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		sess.CitationStyle = style
	}

	sess.Lock()
	defer sess.Unlock()
	c.JSON(http.StatusCreated, sess.View())
}

func (h *Handler) getSession(c *gin.Context) {
	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()
	c.JSON(http.StatusOK, sess.View())
}

func (h *Handler) deleteSession(c *gin.Context) {
	if err := h.Service.Store.Delete(c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadPapers(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid multipart form: %v", err)})
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	files := make([]UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		files = append(files, UploadedFile{Name: fh.Filename, Data: data})
	}

	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	sess.ClearNotices()
	papers := h.Service.LoadPapers(c.Request.Context(), sess, files)
	c.JSON(http.StatusOK, gin.H{"papers": papers, "notices": sess.Notices()})
}

func (h *Handler) loadText(c *gin.Context) {
	var req struct {
		Papers []research.Document `json:"papers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	sess.ClearNotices()
	papers := h.Service.LoadText(sess, req.Papers)
	c.JSON(http.StatusOK, gin.H{"papers": papers, "notices": sess.Notices()})
}

func (h *Handler) listPapers(c *gin.Context) {
	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()
	c.JSON(http.StatusOK, gin.H{"papers": sess.View().Papers})
}

func (h *Handler) analyze(c *gin.Context) {
	var req struct {
		FocusAreas   []string `json:"focus_areas"`
		OutputFormat string   `json:"output_format"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	format, err := research.ParseOutputFormat(req.OutputFormat)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	if len(sess.Documents) == 0 {
		abortWithError(c, errNoPapers)
		return
	}
	sess.ClearNotices()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	send := func(event string, payload any) {
		c.SSEvent(event, payload)
		c.Writer.Flush()
	}

	obs := research.Observer{
		OnProgress: func(f float64) { send("progress", gin.H{"fraction": f}) },
		OnResult:   func(r research.AnalysisResult) { send("result", r) },
		OnFailure: func(d research.Document, err error) {
			send("warning", gin.H{"paper": d.Name, "error": err.Error()})
		},
	}

	results := h.Service.Analyze(c.Request.Context(), sess,
		research.AnalysisRequest{FocusAreas: req.FocusAreas, OutputFormat: format}, obs)
	send("done", gin.H{"analyzed": len(results), "total": len(sess.Documents)})
}

func (h *Handler) listAnalyses(c *gin.Context) {
	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()
	c.JSON(http.StatusOK, gin.H{"results": sess.View().Results})
}

func (h *Handler) exportAnalyses(c *gin.Context) {
	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	if len(sess.Results) == 0 {
		abortWithError(c, research.ErrNoResults)
		return
	}

	filename := research.ExportFilename(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(research.Export(sess.Results)))
}

func (h *Handler) compare(c *gin.Context) {
	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	sess.ClearNotices()
	comparison, err := h.Service.Compare(c.Request.Context(), sess)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comparison": comparison, "notices": sess.Notices()})
}

func (h *Handler) related(c *gin.Context) {
	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	sess.ClearNotices()
	papers, err := h.Service.Related(c.Request.Context(), sess)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"papers": papers, "notices": sess.Notices()})
}

func (h *Handler) summaries(c *gin.Context) {
	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	sess.ClearNotices()
	summaries, err := h.Service.Summaries(c.Request.Context(), sess)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summaries": summaries, "notices": sess.Notices()})
}

func (h *Handler) citations(c *gin.Context) {
	var style citation.Style
	if raw := c.Query("style"); raw != "" {
		parsed, err := citation.ParseStyle(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		style = parsed
	}

	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	if style == "" {
		style = sess.CitationStyle
	}
	c.JSON(http.StatusOK, gin.H{"style": style, "papers": h.Service.Citations(sess, style)})
}

func (h *Handler) search(c *gin.Context) {
	topK := 0
	if raw := c.Query("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top_k must be an integer"})
			return
		}
		topK = n
	}

	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	if len(sess.Documents) == 0 {
		abortWithError(c, errNoPapers)
		return
	}

	results, err := h.Service.Search(sess, c.Query("q"), topK)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"query": c.Query("q"), "results": results})
}

func (h *Handler) ask(c *gin.Context) {
	var req struct {
		Question string `json:"question"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	sess.ClearNotices()
	qa, err := h.Service.Ask(c.Request.Context(), sess, req.Question)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qa": qa, "notices": sess.Notices()})
}

func (h *Handler) listQuestions(c *gin.Context) {
	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()
	c.JSON(http.StatusOK, gin.H{"qa": sess.View().QA})
}

func (h *Handler) assistant(c *gin.Context) {
	if h.Service.Chat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": chat.ErrUnavailable.Error()})
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.lockSession(c)
	if !ok {
		return
	}
	defer sess.Unlock()

	next, err := h.Service.Chat.Send(c.Request.Context(), sess, req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	for event, err := range next {
		c.SSEvent("message", event)
		c.Writer.Flush()
		if err != nil {
			return
		}
	}
}
