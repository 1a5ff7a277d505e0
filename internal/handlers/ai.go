package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/aserras/webfront/internal/request"
	"github.com/aserras/webfront/internal/services/brain"
	"github.com/aserras/webfront/internal/validation"
	"go.uber.org/zap"
)

const (
	// MaxPromptLength is the maximum length for free-form prompt text
	MaxPromptLength = 10000
)

// AIHandler proxies generation requests to the Brain backend. Responses
// come back as the backend produced them; this layer only validates input
// and maps errors.
type AIHandler struct {
	brain  *brain.Client
	logger *zap.Logger
}

// NewAIHandler creates a new AI handler.
func NewAIHandler(brainClient *brain.Client, logger *zap.Logger) *AIHandler {
	return &AIHandler{brain: brainClient, logger: logger}
}

// ChatRequest represents a text generation request
type ChatRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=10000"`
	Model  string `json:"model,omitempty" validate:"max=200"`
}

// ImageRequest represents an image generation request
type ImageRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=10000"`
	Size   string `json:"size,omitempty" validate:"max=50"`
}

// CodeRequest represents a code generation request
type CodeRequest struct {
	Instructions string `json:"instructions" validate:"required,min=1,max=10000"`
	Language     string `json:"language,omitempty" validate:"max=100"`
	Model        string `json:"model,omitempty" validate:"max=200"`
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
}

// Models lists the generation models the backend offers.
func (h *AIHandler) Models(w http.ResponseWriter, r *http.Request) {
	models, err := h.brain.ListModels(r.Context(), request.TokenFromContext(r))
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}
	if models == nil {
		models = []json.RawMessage{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"models": models})
}

// Chat proxies a text generation prompt.
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Prompt = validation.SanitizeText(req.Prompt)
	if err := validation.Validate.Struct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, "prompt is required and must be at most 10000 characters")
		return
	}

	result, err := h.brain.GenerateText(r.Context(), request.TokenFromContext(r), req.Prompt, req.Model)
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, result)
}

// Image proxies an image generation prompt.
func (h *AIHandler) Image(w http.ResponseWriter, r *http.Request) {
	var req ImageRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Prompt = validation.SanitizeText(req.Prompt)
	if err := validation.Validate.Struct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, "prompt is required and must be at most 10000 characters")
		return
	}

	result, err := h.brain.GenerateImage(r.Context(), request.TokenFromContext(r), req.Prompt, req.Size)
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, result)
}

// Code proxies a code generation request.
func (h *AIHandler) Code(w http.ResponseWriter, r *http.Request) {
	var req CodeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Instructions = validation.SanitizeText(req.Instructions)
	if err := validation.Validate.Struct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, "instructions are required and must be at most 10000 characters")
		return
	}

	result, err := h.brain.GenerateCode(r.Context(), request.TokenFromContext(r), req.Instructions, req.Language, req.Model)
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, result)
}

// History returns the caller's generation history.
func (h *AIHandler) History(w http.ResponseWriter, r *http.Request) {
	items, err := h.brain.History(r.Context(), request.TokenFromContext(r))
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Profile returns the caller's profile from the backend.
func (h *AIHandler) Profile(w http.ResponseWriter, r *http.Request) {
	result, err := h.brain.Profile(r.Context(), request.TokenFromContext(r))
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, result)
}

// UpdateProfile patches the caller's profile on the backend.
func (h *AIHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondDetail(w, http.StatusBadRequest, "profile fields failed validation")
		return
	}
	if req.Name == nil && req.Email == nil {
		respondDetail(w, http.StatusBadRequest, "at least one field must be provided")
		return
	}

	result, err := h.brain.UpdateProfile(r.Context(), request.TokenFromContext(r), req)
	if err != nil {
		respondBrainError(w, h.logger, err)
		return
	}
	respondRaw(w, http.StatusOK, result)
}
