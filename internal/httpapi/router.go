package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/padelhub/reservation-core/internal/reservation"
	"github.com/padelhub/reservation-core/internal/score"
	"github.com/padelhub/reservation-core/internal/httpapi/middleware"
	"github.com/padelhub/reservation-core/pkg/auth"
)

// NewRouter wires the reservation core's HTTP surface, grounded on the
// api-gateway's route-group layout (versioned prefix, JWTAuth applied to
// the whole authenticated group).
func NewRouter(verifier *auth.Verifier, machine *reservation.Machine, protocol *score.Protocol) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	reservations := NewReservationHandler(machine)
	scores := NewScoreHandler(protocol)

	v1 := r.Group("/v1")
	v1.Use(middleware.JWTAuth(verifier))
	{
		v1.POST("/reservations", reservations.Create)
		v1.POST("/reservations/:id/join", reservations.Join)
		v1.POST("/reservations/:id/cancel", reservations.Cancel)
		v1.POST("/reservations/:id/score", scores.Submit)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	return r
}
