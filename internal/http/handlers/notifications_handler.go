package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/i18n"
	"github.com/tbourn/go-rabbitry/internal/scanner"
)

// PreviewEntry is one doe the scanner would report.
type PreviewEntry struct {
	CageID           int                    `json:"cage_id" example:"3"`
	Name             string                 `json:"name" example:"Clover"`
	Status           domain.PregnancyStatus `json:"status" example:"preparing"`
	Days             int                    `json:"days_since_breeding" example:"26"`
	LastBreedingDate time.Time              `json:"last_breeding_date"`
	Line             string                 `json:"line"`
}

// NotificationPreview is what the next scan would send, without sending it.
type NotificationPreview struct {
	// Checked is the number of bred does inspected.
	Checked int `json:"checked" example:"5"`
	// Entries are the does in a notification window, by cage.
	Entries []PreviewEntry `json:"entries"`
	// Text is the digest message; empty when nothing would be sent.
	Text string `json:"text"`
}

// PreviewNotifications godoc
// @ID          previewNotifications
// @Summary     Preview the pregnancy digest
// @Description Classifies bred does like the periodic scanner does and returns the digest it would send. Nothing is delivered.
// @Tags        Notifications
// @Produce     json
//
// @Param       locale  query  string  false  "Language of the rendered text (en, ru)"  example(ru)
//
// @Success     200  {object}  handlers.NotificationPreview
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /notifications/preview [get]
func (h *Handlers) PreviewNotifications(c *gin.Context) {
	females, err := h.rabbits.BredFemales(c.Request.Context())
	if err != nil {
		serviceError(c, err)
		return
	}

	locale := c.DefaultQuery("locale", h.locale)
	p := i18n.NewPrinter(locale)
	entries := scanner.Classify(females, h.now())

	resp := NotificationPreview{Checked: len(females), Entries: make([]PreviewEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, PreviewEntry{
			CageID:           e.Rabbit.CageID,
			Name:             e.Rabbit.Name,
			Status:           e.Status,
			Days:             e.Days,
			LastBreedingDate: *e.Rabbit.LastBreedingDate,
			Line:             scanner.Line(p, e),
		})
	}
	if len(entries) > 0 {
		resp.Text = scanner.Digest(p, entries)
	}
	ok(c, http.StatusOK, resp)
}
