package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/calmguard/ecomcare/internal/model/analysis"
	"github.com/calmguard/ecomcare/internal/prompts"
	"github.com/calmguard/ecomcare/internal/service/support"
	"github.com/calmguard/ecomcare/pkg/utils"
)

// Processor 执行一次客服分析。
type Processor interface {
	Process(ctx context.Context, req analysis.ChatRequest) (analysis.BotResponse, error)
	Prompts() prompts.Set
}

// Handler 客服分析接口的HTTP处理器
type Handler struct {
	processor Processor
}

// New 创建处理器
func New(processor Processor) *Handler {
	return &Handler{processor: processor}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleChat)
	r.Get("/prompts", h.handlePrompts)
}

// handleChat 处理一次用户消息并返回回复与分析结果
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload analysis.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(payload.Message) == "" {
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := h.processor.Process(r.Context(), payload)
	if err != nil {
		if errors.Is(err, support.ErrEmptyMessage) {
			utils.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[chat] process failed: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePrompts(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.processor.Prompts())
}
