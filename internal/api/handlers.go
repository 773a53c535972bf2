package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"portfolio/internal/cache"
	"portfolio/internal/captcha"
	"portfolio/internal/chat"
	"portfolio/internal/contact"
	"portfolio/internal/content"
	"portfolio/internal/middleware"
	"portfolio/internal/util"
)

func (h *Handlers) BlogLatest(w http.ResponseWriter, r *http.Request) {
	resp := h.Blog.Latest(r.Context())
	cache.ApplyHeaders(w, cache.HeadersBlogData)
	util.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) BlogClear(w http.ResponseWriter, r *http.Request) {
	resp := h.Blog.Clear(r.Context())
	cache.ApplyHeaders(w, cache.HeadersNoCache)
	util.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	if err := util.DecodeJSON(r, &form); err != nil {
		util.WriteError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	ip := middleware.ClientIP(r, h.Config.TrustProxy)
	res, err := h.Contact.Submit(r.Context(), form, ip)
	cache.ApplyHeaders(w, cache.HeadersNoCache)
	if err == nil {
		util.WriteJSON(w, http.StatusOK, res)
		return
	}

	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		util.WriteErrorDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid form data", verr.Fields)
	case errors.Is(err, captcha.ErrCaptchaRequired):
		util.WriteError(w, http.StatusBadRequest, "CAPTCHA_FAILED", "Captcha verification failed")
	case errors.Is(err, captcha.ErrCaptchaUnavailable):
		util.WriteError(w, http.StatusServiceUnavailable, "CAPTCHA_UNAVAILABLE", "Captcha verification is unavailable. Please try again later.")
	case errors.Is(err, contact.ErrSend):
		util.WriteError(w, http.StatusInternalServerError, "EMAIL_SEND_ERROR", "Failed to send message. Please try again later.")
	default:
		h.log.Error("contact form error", zap.Error(err), zap.String("request_id", middleware.RequestID(r.Context())))
		util.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error. Please try again later.")
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

// ChatMessage answers with an event stream. A body that fails to decode counts as
// an empty message so it is still charged against the client's window.
func (h *Handlers) ChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	_ = util.DecodeJSON(r, &req)

	reply, err := h.Chat.Answer(middleware.ClientIP(r, h.Config.TrustProxy), req.Message)
	switch {
	case errors.Is(err, chat.ErrRateLimited):
		util.WriteError(w, http.StatusTooManyRequests, "", "Too many messages. Please wait before sending another.")
		return
	case errors.Is(err, chat.ErrMessageRequired):
		util.WriteError(w, http.StatusBadRequest, "", "Message is required")
		return
	case errors.Is(err, chat.ErrMessageTooLong):
		util.WriteError(w, http.StatusBadRequest, "", "Message too long")
		return
	case err != nil:
		h.log.Error("chat error", zap.Error(err))
		util.WriteError(w, http.StatusInternalServerError, "", "Internal server error")
		return
	}

	if err := chat.Stream(r.Context(), w, reply, h.Chat.Delay()); err != nil {
		h.log.Debug("chat stream ended early", zap.Error(err))
	}
}

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	featured, _ := strconv.ParseBool(q.Get("featured"))
	projects := h.Content.Projects(content.ProjectFilter{
		FeaturedOnly: featured,
		Tech:         strings.TrimSpace(q.Get("tech")),
	})
	cache.ApplyHeaders(w, cache.HeadersProjectData)
	util.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "data": projects})
}

func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	p, ok := h.Content.Project(chi.URLParam(r, "slug"))
	if !ok {
		util.WriteError(w, http.StatusNotFound, "", "Project not found")
		return
	}
	cache.ApplyHeaders(w, cache.HeadersProjectData)
	util.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "data": p})
}

func (h *Handlers) GetTechStack(w http.ResponseWriter, r *http.Request) {
	cache.ApplyHeaders(w, cache.HeadersProjectData)
	util.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "data": h.Content.TechStack()})
}

func (h *Handlers) GetAbout(w http.ResponseWriter, r *http.Request) {
	cache.ApplyHeaders(w, cache.HeadersProjectData)
	util.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "data": h.Content.About()})
}
