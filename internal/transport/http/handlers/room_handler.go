package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/minsuRob/sportcomm-sub006/internal/service"
	"github.com/minsuRob/sportcomm-sub006/internal/transport/http/middleware"
	"github.com/minsuRob/sportcomm-sub006/pkg/validator"
	log "github.com/sirupsen/logrus"
)

type RoomHandler struct {
	chatService *service.ChatService
}

func NewRoomHandler(chatService *service.ChatService) *RoomHandler {
	return &RoomHandler{chatService: chatService}
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	page, limit := pageParams(r)

	resp, err := h.chatService.ListRooms(r.Context(), userID, page, limit)
	if err != nil {
		log.Printf("ERROR list rooms: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *RoomHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)

	resp, err := h.chatService.ListPublicRooms(r.Context(), page, limit)
	if err != nil {
		log.Printf("ERROR list public rooms: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *RoomHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid team ID")
		return
	}
	page, limit := pageParams(r)

	resp, err := h.chatService.ListTeamRooms(r.Context(), teamID, page, limit)
	if err != nil {
		log.Printf("ERROR list team rooms: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	room, err := h.chatService.GetRoom(r.Context(), roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Room not found")
		default:
			log.Printf("ERROR get room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateRoomInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateStruct(input); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	room, err := h.chatService.CreateRoom(r.Context(), userID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRoomName), errors.Is(err, service.ErrInvalidCapacity):
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		default:
			log.Printf("ERROR create room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	if err := h.chatService.JoinRoom(r.Context(), roomID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Room not found")
		case errors.Is(err, service.ErrRoomInactive):
			writeError(w, http.StatusForbidden, "ROOM_INACTIVE", "Room is not active")
		case errors.Is(err, service.ErrRoomFull):
			writeError(w, http.StatusConflict, "ROOM_FULL", "Room is at capacity")
		default:
			log.Printf("ERROR join room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"joined": true})
}

func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	roomID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	if err := h.chatService.LeaveRoom(r.Context(), roomID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Room not found")
		default:
			log.Printf("ERROR leave room: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"left": true})
}
