package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/domain"
	cartsvc "foodorder/internal/service/cart"
)

func listCart(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		lines, err := svc.List(c.Request.Context(), sessionFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		if lines == nil {
			lines = []domain.CartLine{}
		}
		var subtotal int64
		for _, l := range lines {
			subtotal += l.LineTotalCents()
		}
		c.JSON(http.StatusOK, gin.H{"lines": lines, "subtotalCents": subtotal})
	}
}

func cartBadge(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := svc.TotalQuantity(c.Request.Context(), sessionFrom(c))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalQuantity": total})
	}
}

func addCartItem(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cartsvc.AddInput
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
		line, merged, err := svc.Add(c.Request.Context(), sessionFrom(c), req)
		if err != nil {
			respondErr(c, err)
			return
		}
		status := http.StatusCreated
		if merged {
			status = http.StatusOK
		}
		c.JSON(status, gin.H{"line": line, "merged": merged})
	}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func setCartQuantity(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
		if err := svc.SetQuantity(c.Request.Context(), sessionFrom(c), c.Param("lineID"), req.Quantity); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func removeCartItem(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Remove(c.Request.Context(), sessionFrom(c), c.Param("lineID")); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func clearCart(svc cartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Clear(c.Request.Context(), sessionFrom(c)); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
