package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rabbitry/internal/bot"
)

// BotUpdate godoc
// @ID          botUpdate
// @Summary     Deliver a chat update to the bot
// @Description Accepts one text message or button press from a chat gateway and returns the bot's reply with an inline keyboard.
// @Description "/start" registers the chat for pregnancy notifications.
// @Tags        Bot
// @Accept      json
// @Produce     json
//
// @Param       body  body  bot.Update  true  "Chat update"
//
// @Success     200  {object}  bot.Reply
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /bot/updates [post]
func (h *Handlers) BotUpdate(c *gin.Context) {
	var u bot.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "chat_id required")
		return
	}
	if u.Text == "" && u.Callback == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "text or callback required")
		return
	}
	ok(c, http.StatusOK, h.bot.Handle(c.Request.Context(), u))
}
