package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/minsuRob/sportcomm-sub006/internal/service"
	"github.com/minsuRob/sportcomm-sub006/internal/transport/http/middleware"
	log "github.com/sirupsen/logrus"
)

type PrivateChatHandler struct {
	chatService *service.ChatService
}

func NewPrivateChatHandler(chatService *service.ChatService) *PrivateChatHandler {
	return &PrivateChatHandler{chatService: chatService}
}

func (h *PrivateChatHandler) FindOrCreate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.UserID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_USER_ID", "user_id is required")
		return
	}

	room, err := h.chatService.FindOrCreatePrivateChat(r.Context(), userID, input.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfChat):
			writeError(w, http.StatusBadRequest, "SELF_CHAT", "Cannot start a private chat with yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			log.Printf("ERROR find or create private chat: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, room)
}

func (h *PrivateChatHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	page, limit := pageParams(r)

	resp, err := h.chatService.ListPrivateChats(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("ERROR list private chats: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PrivateChatHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	partner, err := h.chatService.GetPartner(r.Context(), roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Room not found")
		default:
			log.Printf("ERROR get partner: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}
	if partner == nil {
		writeError(w, http.StatusNotFound, "NO_PARTNER", "Room has no chat partner")
		return
	}

	writeJSON(w, http.StatusOK, partner)
}

func (h *PrivateChatHandler) SearchPartners(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "q is required")
		return
	}
	page, limit := pageParams(r)

	resp, err := h.chatService.SearchChatPartners(r.Context(), userID, query, page, limit)
	if err != nil {
		log.Printf("ERROR search chat partners: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
