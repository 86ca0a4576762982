package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"aiResume/internal/api/middleware"
	"aiResume/internal/drafts"
	"aiResume/internal/errcode"
	"aiResume/internal/generation"
	"aiResume/internal/metrics"
	"aiResume/internal/resume"
)

// GenerateResponse is the success body of both generation endpoints.
type GenerateResponse struct {
	Success  bool   `json:"success"`
	Content  string `json:"content"`
	Message  string `json:"message"`
	DraftID  string `json:"draftId,omitempty"`
	Filename string `json:"filename"`
}

const configurationMessage = "Gemini API key not configured. Please add your API key to the .env file."

// GenerateResume handles POST /api/generate-resume.
func (h *Handler) GenerateResume(c *gin.Context) {
	h.generate(c, resume.DocTypeResume)
}

// GenerateCoverLetter handles POST /api/generate-cover-letter.
func (h *Handler) GenerateCoverLetter(c *gin.Context) {
	h.generate(c, resume.DocTypeCoverLetter)
}

func (h *Handler) generate(c *gin.Context, docType resume.DocType) {
	log := middleware.LoggerFromContext(c).With(slog.String("doc_type", string(docType)))

	if !h.Generator.Configured() {
		metrics.ObserveGeneration(string(docType), string(generation.KindConfiguration), 0)
		Error(c, http.StatusInternalServerError, errcode.Configuration, configurationMessage)
		return
	}

	var req resume.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	req = req.Trimmed()

	if err := resume.Validate(docType, req); err != nil {
		var missing *resume.MissingFieldsError
		if errors.As(err, &missing) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:         missing.Error(),
				Code:          errcode.Validation,
				MissingFields: missing.Fields,
			})
			return
		}
		BadRequest(c, err.Error())
		return
	}

	prompt, err := resume.BuildPrompt(docType, req)
	if err != nil {
		log.Error("build prompt failed", slog.Any("error", err))
		Internal(c, errcode.SystemError, "Failed to build prompt")
		return
	}

	start := time.Now()
	content, err := h.Generator.Generate(c.Request.Context(), prompt)
	if err != nil {
		kind := generation.KindOf(err)
		if kind == "" {
			kind = generation.KindUpstream
		}
		metrics.ObserveGeneration(string(docType), string(kind), time.Since(start))
		log.Error("generation failed", slog.String("kind", string(kind)), slog.Any("error", err))

		status, code, msg := generationFailure(kind, docType)
		var genErr *generation.Error
		details := ""
		if errors.As(err, &genErr) {
			details = genErr.Details
		}
		ErrorWithDetails(c, status, code, msg, details)
		return
	}
	metrics.ObserveGeneration(string(docType), "ok", time.Since(start))

	filename := resume.ExportFilename(docType, req.PersonalInfo.FullName)
	resp := GenerateResponse{
		Success:  true,
		Content:  content,
		Message:  docType.Label() + " generated successfully!",
		Filename: filename,
	}

	if h.Drafts != nil {
		draft := drafts.New(docType, content, filename, time.Now())
		if err := h.Drafts.Put(c.Request.Context(), draft); err != nil {
			log.Warn("store draft failed", slog.Any("error", err))
		} else {
			resp.DraftID = draft.ID
		}
	}

	c.JSON(http.StatusOK, resp)
}

func generationFailure(kind generation.Kind, docType resume.DocType) (status, code int, msg string) {
	switch kind {
	case generation.KindConfiguration:
		return http.StatusInternalServerError, errcode.Configuration, configurationMessage
	case generation.KindAuthentication:
		return http.StatusBadGateway, errcode.UpstreamAuth, "Invalid API key. Please check your Gemini API key."
	case generation.KindCapacity:
		return http.StatusTooManyRequests, errcode.UpstreamQuota, "API quota exceeded. Please try again later."
	case generation.KindModel:
		return http.StatusBadGateway, errcode.UpstreamModel, "AI model error. Please try again."
	case generation.KindTimeout:
		return http.StatusGatewayTimeout, errcode.UpstreamTimeout, "The AI service took too long to respond. Please try again."
	default:
		label := "resume"
		if docType == resume.DocTypeCoverLetter {
			label = "cover letter"
		}
		return http.StatusBadGateway, errcode.Upstream, "Failed to generate " + label
	}
}
