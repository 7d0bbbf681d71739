// Rabbit HTTP handlers.
//
// This file exposes REST endpoints for cages and their occupants:
//   - GET    /rabbits                        (occupied cages, paginated, ETag)
//   - GET    /rabbits/{cage}                 (occupant card; empty sentinel when unknown)
//   - PUT    /rabbits/{cage}                 (register occupant)
//   - DELETE /rabbits/{cage}                 (empty the cage)
//   - POST   /rabbits/{cage}/breed           (breed with a partner, Idempotency-Key aware)
//   - POST   /rabbits/{cage}/breeding/reset  (clear a female's breeding date)
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rabbitry/internal/domain"
	"github.com/tbourn/go-rabbitry/internal/http/middleware"
	"github.com/tbourn/go-rabbitry/internal/services"
)

//
// DTOs
//

// RabbitView is a cage occupant plus its derived breeding state.
type RabbitView struct {
	domain.Rabbit
	// Ready is true when the rabbit may be bred now (always for males).
	Ready bool `json:"ready" example:"false"`
	// DaysUntilReady is the remaining cooldown in days.
	DaysUntilReady int `json:"days_until_ready" example:"1"`
	// DaysSinceBreeding is omitted when the rabbit was never bred.
	DaysSinceBreeding *int `json:"days_since_breeding,omitempty" example:"29"`
	// Pregnancy is none, preparing or due_soon.
	Pregnancy domain.PregnancyStatus `json:"pregnancy_status" example:"preparing"`
	// Father is the resolved father, when recorded and still present.
	Father *domain.Rabbit `json:"father,omitempty"`
}

func newRabbitView(rb domain.Rabbit, father *domain.Rabbit, now time.Time) RabbitView {
	v := RabbitView{
		Rabbit:         rb,
		Ready:          !rb.IsEmpty && rb.IsReadyToBreed(now),
		DaysUntilReady: rb.DaysUntilReady(now),
		Pregnancy:      rb.PregnancyStatus(now),
		Father:         father,
	}
	if d, ok := rb.DaysSinceLastBreeding(now); ok {
		v.DaysSinceBreeding = &d
	}
	return v
}

// ListRabbitsResponse wraps a page of occupied cages and pagination information.
type ListRabbitsResponse struct {
	Rabbits    []domain.Rabbit `json:"rabbits"`
	Pagination Pagination      `json:"pagination"`
}

// RegisterRabbitRequest is the JSON payload for placing an occupant in a cage.
type RegisterRabbitRequest struct {
	// Gender is "male" or "female".
	Gender string `json:"gender" binding:"required" example:"female"`
	// Name is the occupant's label (1–64 chars after whitespace folding).
	Name string `json:"name" binding:"required,max=255" example:"Clover"`
	// FatherID optionally names the cage of the father.
	FatherID *int `json:"father_id,omitempty" example:"4"`
}

// BreedRequest names the partner cage.
type BreedRequest struct {
	PartnerCage int `json:"partner_cage" binding:"required,min=1" example:"4"`
}

// BreedResponse reports a successful breeding.
type BreedResponse struct {
	Female domain.Rabbit `json:"female"`
	Male   domain.Rabbit `json:"male"`
	BredAt time.Time     `json:"bred_at"`
}

// ResetBreedingResponse confirms a cleared breeding date.
type ResetBreedingResponse struct {
	Rabbit domain.Rabbit `json:"rabbit"`
}

//
// Handlers
//

// ListRabbits godoc
// @ID          listRabbits
// @Summary     List occupied cages (paginated)
// @Description Returns a page of occupied cages ordered by cage number. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Rabbits
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"rabbits:1:20:3:1700000000\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListRabbitsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rabbits [get]
func (h *Handlers) ListRabbits(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.rabbits.Stats(ctx); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		etag := fmt.Sprintf(`W/"rabbits:%d:%d:%d:%d"`, page, pageSize, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	} else {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("rabbit stats unavailable, skipping etag")
	}

	items, total, err := h.rabbits.ListPage(ctx, page, pageSize)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, ListRabbitsResponse{
		Rabbits:    items,
		Pagination: newPagination(page, pageSize, total),
	})
}

// GetRabbit godoc
// @ID          getRabbit
// @Summary     Get a cage occupant
// @Description Returns the occupant with derived breeding state. An unknown cage is reported as an empty male cage.
// @Tags        Rabbits
// @Produce     json
//
// @Param       cage  path  int  true  "Cage number"  minimum(1) example(3)
//
// @Success     200  {object}  handlers.RabbitView
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid cage"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rabbits/{cage} [get]
func (h *Handlers) GetRabbit(c *gin.Context) {
	ctx := c.Request.Context()
	rb, err := h.rabbits.Load(ctx, cageParam(c))
	if err != nil {
		serviceError(c, err)
		return
	}
	var father *domain.Rabbit
	if !rb.IsEmpty {
		if father, err = h.rabbits.ResolveFather(ctx, &rb); err != nil {
			serviceError(c, err)
			return
		}
	}
	ok(c, http.StatusOK, newRabbitView(rb, father, h.now()))
}

// RegisterRabbit godoc
// @ID          registerRabbit
// @Summary     Register a cage occupant
// @Description Places a new occupant in the cage, replacing whatever it held. The breeding date starts cleared.
// @Tags        Rabbits
// @Accept      json
// @Produce     json
//
// @Param       cage  path  int                              true  "Cage number"  minimum(1) example(3)
// @Param       body  body  handlers.RegisterRabbitRequest  true  "Occupant"
//
// @Success     200  {object}  handlers.RabbitView
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rabbits/{cage} [put]
func (h *Handlers) RegisterRabbit(c *gin.Context) {
	var req RegisterRabbitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "gender and name are required")
		return
	}
	g, valid := domain.ParseGender(req.Gender)
	if !valid {
		serviceError(c, services.ErrInvalidGender)
		return
	}

	rb, err := h.rabbits.Register(c.Request.Context(), cageParam(c), g, req.Name, req.FatherID)
	if err != nil {
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, newRabbitView(*rb, nil, h.now()))
}

// DeleteRabbit godoc
// @ID          deleteRabbit
// @Summary     Empty a cage
// @Tags        Rabbits
// @Produce     json
//
// @Param       cage  path  int  true  "Cage number"  minimum(1) example(3)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid cage"
// @Failure     404  {object}  handlers.ErrorResponse  "Cage already empty"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rabbits/{cage} [delete]
func (h *Handlers) DeleteRabbit(c *gin.Context) {
	if err := h.rabbits.Delete(c.Request.Context(), cageParam(c)); err != nil {
		serviceError(c, err)
		return
	}
	noContent(c)
}

// BreedRabbit godoc
// @ID          breedRabbit
// @Summary     Breed two rabbits
// @Description Breeds the occupant of the cage with the partner cage. The pair must be one male and one female and the female must have rested 30 days. On success the female's breeding date becomes now.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result, no second breeding).
// @Tags        Rabbits
// @Accept      json
// @Produce     json
//
// @Param       X-Actor-ID       header  string  false "Caller identity scoping idempotency keys"  example(keeper-1)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries"          example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       cage             path    int     true  "Cage number"                               minimum(1) example(3)
// @Param       body             body    handlers.BreedRequest  true  "Partner"
//
// @Success     200  {object}  handlers.BreedResponse
// @Header      200  {string}  Idempotency-Replayed  "true when served from a stored outcome"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Cage empty"
// @Failure     409  {object}  handlers.ErrorResponse  "Female not ready or concurrent update"
// @Failure     422  {object}  handlers.ErrorResponse  "Same gender"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rabbits/{cage}/breed [post]
func (h *Handlers) BreedRabbit(c *gin.Context) {
	ctx := c.Request.Context()
	cage := cageParam(c)

	var req BreedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "partner_cage must be a positive integer")
		return
	}

	actor, scope := middleware.ActorFrom(c), middleware.IdempotencyScope(c)
	key, _ := middleware.GetIdempotencyKey(c)

	// Idempotency (replay path).
	if key != "" && h.idem != nil {
		rec, err := h.idem.Lookup(ctx, actor, scope, key, h.now().UTC())
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
		} else if rec != nil {
			if resp, err := h.replayBreed(c, rec, cage, req.PartnerCage); err == nil {
				c.Header(middleware.HeaderReplayed, "true")
				ok(c, rec.Status, resp)
				return
			}
		}
	}

	out, err := h.breeding.AttemptBreed(ctx, cage, req.PartnerCage)
	if err != nil {
		serviceError(c, err)
		return
	}

	// Idempotency (store path), best effort.
	if key != "" && h.idem != nil {
		if err := h.idem.Remember(ctx, actor, scope, key, out.Female.CageID, http.StatusOK); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency store failed")
		}
	}
	ok(c, http.StatusOK, BreedResponse{Female: out.Female, Male: out.Male, BredAt: out.BredAt})
}

// replayBreed rebuilds the response of a stored breeding from current rows.
func (h *Handlers) replayBreed(c *gin.Context, rec *domain.Idempotency, cage, partner int) (BreedResponse, error) {
	ctx := c.Request.Context()
	maleCage := partner
	if rec.CageID == partner {
		maleCage = cage
	}
	female, err := h.rabbits.Load(ctx, rec.CageID)
	if err != nil {
		return BreedResponse{}, err
	}
	male, err := h.rabbits.Load(ctx, maleCage)
	if err != nil {
		return BreedResponse{}, err
	}
	bredAt := rec.CreatedAt
	if female.LastBreedingDate != nil {
		bredAt = *female.LastBreedingDate
	}
	return BreedResponse{Female: female, Male: male, BredAt: bredAt}, nil
}

// ResetBreeding godoc
// @ID          resetBreeding
// @Summary     Clear a female's breeding date
// @Tags        Rabbits
// @Produce     json
//
// @Param       cage  path  int  true  "Cage number"  minimum(1) example(3)
//
// @Success     200  {object}  handlers.ResetBreedingResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid cage"
// @Failure     404  {object}  handlers.ErrorResponse  "Cage empty"
// @Failure     409  {object}  handlers.ErrorResponse  "Not a female"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /rabbits/{cage}/breeding/reset [post]
func (h *Handlers) ResetBreeding(c *gin.Context) {
	ctx := c.Request.Context()
	cage := cageParam(c)

	reset, err := h.rabbits.ResetBreeding(ctx, cage)
	if err != nil {
		serviceError(c, err)
		return
	}
	rb, err := h.rabbits.Load(ctx, cage)
	if err != nil {
		serviceError(c, err)
		return
	}
	if !reset {
		err = services.ErrNotFemale
		if rb.IsEmpty {
			err = services.ErrCageEmpty
		}
		serviceError(c, err)
		return
	}
	ok(c, http.StatusOK, ResetBreedingResponse{Rabbit: rb})
}
