// Chat registry HTTP handlers.
//
//   - GET  /chats  (notification destinations)
//   - POST /chats  (register or refresh a destination)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rabbitry/internal/domain"
)

// RegisterChatRequest is the JSON payload for registering a chat.
type RegisterChatRequest struct {
	// ChatID is the messenger's chat identifier (negative for groups).
	ChatID int64 `json:"chat_id" binding:"required" example:"-1001234567890"`
	// ChatName is the display name; "Untitled" is shown when blank.
	ChatName string `json:"chat_name" binding:"max=1024" example:"Rabbitry keepers"`
}

// ListChatsResponse lists every registered chat.
type ListChatsResponse struct {
	Chats []domain.ChatRegistration `json:"chats"`
}

// ListChats godoc
// @ID          listChats
// @Summary     List registered chats
// @Description Returns every chat that receives pregnancy notifications, ordered by chat id.
// @Tags        Chats
// @Produce     json
//
// @Success     200  {object} handlers.ListChatsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /chats [get]
func (h *Handlers) ListChats(c *gin.Context) {
	items, err := h.chats.List(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}
	if items == nil {
		items = []domain.ChatRegistration{}
	}
	ok(c, http.StatusOK, ListChatsResponse{Chats: items})
}

// RegisterChat godoc
// @ID          registerChat
// @Summary     Register a chat
// @Description Adds the chat to the notification destinations, or refreshes its name and activity time.
// @Tags        Chats
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterChatRequest  true  "Chat"
//
// @Success     201  {object}  domain.ChatRegistration
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chats [post]
func (h *Handlers) RegisterChat(c *gin.Context) {
	var req RegisterChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id required")
		return
	}
	reg, err := h.chats.Register(c.Request.Context(), req.ChatID, req.ChatName)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusCreated, reg)
}
