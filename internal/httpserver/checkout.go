package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutsvc "foodorder/internal/service/checkout"
)

func placeOrder(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutsvc.PlaceOrderInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
		res, err := svc.PlaceOrder(c.Request.Context(), sessionFrom(c), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		status := http.StatusCreated
		if res.Pending {
			status = http.StatusAccepted
		}
		c.JSON(status, res)
	}
}

func confirmDraft(svc checkoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.ConfirmDraft(c.Request.Context(), sessionFrom(c), c.Param("draftID"))
		if err != nil {
			respondErr(c, err)
			return
		}
		status := http.StatusCreated
		if res.Pending {
			status = http.StatusAccepted
		}
		c.JSON(status, res)
	}
}
