// Package httpapi exposes the reservation core over HTTP (spec §6's "HTTP
// layer" boundary), grounded on the api-gateway's gin handler shape: thin
// JSON-binding handlers delegating straight to a service, context-derived
// subject, uniform status-code mapping instead of the gateway's client
// proxying.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/internal/httpapi/middleware"
	"github.com/padelhub/reservation-core/internal/reservation"
	"github.com/padelhub/reservation-core/internal/score"
)

type ReservationHandler struct {
	machine *reservation.Machine
}

func NewReservationHandler(machine *reservation.Machine) *ReservationHandler {
	return &ReservationHandler{machine: machine}
}

type createRequest struct {
	SlotID    int64     `json:"slot_id" binding:"required"`
	Date      time.Time `json:"date" binding:"required"`
	Type      int       `json:"type" binding:"required"`
	Channel   int       `json:"channel" binding:"required"`
	PayForAll bool      `json:"pay_for_all"`
	MinRating float64   `json:"min_rating"`
	MaxRating float64   `json:"max_rating"`
}

// POST /v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.machine.Create(c.Request.Context(), reservation.CreateInput{
		SlotID:        req.SlotID,
		Date:          req.Date,
		CreatorUserID: middleware.UserID(c),
		Type:          domain.ReservationType(req.Type),
		Channel:       domain.PaymentChannel(req.Channel),
		PayForAll:     req.PayForAll,
		MinRating:     req.MinRating,
		MaxRating:     req.MaxRating,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": codeFor(err)})
		return
	}
	c.JSON(http.StatusCreated, res)
}

type joinRequest struct {
	Channel int `json:"channel" binding:"required"`
}

// POST /v1/reservations/:id/join
func (h *ReservationHandler) Join(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.machine.Join(c.Request.Context(), reservation.JoinInput{
		ReservationID: id,
		UserID:        middleware.UserID(c),
		Channel:       domain.PaymentChannel(req.Channel),
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": codeFor(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

// POST /v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}

	err := h.machine.Cancel(c.Request.Context(), reservation.CancelInput{
		ReservationID: id,
		UserID:        middleware.UserID(c),
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": codeFor(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation_id": id, "status": "cancelled"})
}

type scoreRequest struct {
	Set1A, Set1B int
	Set2A, Set2B int
	Set3A, Set3B int
	SuperTiebreak bool
	SetMode       int
}

type ScoreHandler struct {
	protocol *score.Protocol
}

func NewScoreHandler(protocol *score.Protocol) *ScoreHandler {
	return &ScoreHandler{protocol: protocol}
}

// POST /v1/reservations/:id/score
func (h *ScoreHandler) Submit(c *gin.Context) {
	id, ok := parseReservationID(c)
	if !ok {
		return
	}
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.protocol.UpdateScore(c.Request.Context(), id, score.Submission{
		Set1:          score.Set{A: req.Set1A, B: req.Set1B},
		Set2:          score.Set{A: req.Set2A, B: req.Set2B},
		Set3:          score.Set{A: req.Set3A, B: req.Set3B},
		SuperTiebreak: req.SuperTiebreak,
		SetMode:       domain.SetMode(req.SetMode),
	}, middleware.UserID(c))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": codeFor(err)})
		return
	}
	c.JSON(http.StatusOK, res)
}

func parseReservationID(c *gin.Context) (int64, bool) {
	var uri struct {
		ID int64 `uri:"id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reservation id"})
		return 0, false
	}
	return uri.ID, true
}
