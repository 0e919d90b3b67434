package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodorder/internal/domain"
	orderrepo "foodorder/internal/repository/order"
)

// statusTab parses the optional ?status= query. Empty means every tab.
func statusTab(c *gin.Context) (*domain.OrderStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	st, ok := domain.ParseOrderStatus(raw)
	if !ok {
		return nil, false
	}
	return &st, true
}

func listMyOrders(views orderViews) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := statusTab(c)
		if !ok {
			badRequest(c, "unknown status")
			return
		}
		orders, err := views.Customer(c.Request.Context(), sessionFrom(c).UserID, st)
		if err != nil {
			respondErr(c, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func listBranchOrders(views orderViews) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		if sess.BranchID == "" {
			badRequest(c, "missing "+headerBranchID)
			return
		}
		st, ok := statusTab(c)
		if !ok {
			badRequest(c, "unknown status")
			return
		}
		orders, err := views.Branch(c.Request.Context(), sess.BranchID, st)
		if err != nil {
			respondErr(c, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func listAllOrders(views orderViews) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, ok := statusTab(c)
		if !ok {
			badRequest(c, "unknown status")
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
		f := orderrepo.ListFilter{
			BranchID: c.Query("branchId"),
			Status:   st,
			Limit:    limit,
			Offset:   offset,
		}
		orders, err := views.Platform(c.Request.Context(), f)
		if err != nil {
			respondErr(c, err)
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrder(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := svc.Get(c.Request.Context(), sessionFrom(c), c.Param("orderID"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ord)
	}
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func transitionOrder(svc orderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid body")
			return
		}
		to, ok := domain.ParseOrderStatus(req.Status)
		if !ok {
			badRequest(c, "unknown status")
			return
		}
		ord, err := svc.Transition(c.Request.Context(), sessionFrom(c), c.Param("orderID"), to)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ord)
	}
}

// orderPosition surfaces the latest carrier-reported position for an order
// the caller may see. The feed is display only; it never changes status.
func orderPosition(svc orderService, positions positionSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if _, err := svc.Get(c.Request.Context(), sessionFrom(c), orderID); err != nil {
			respondErr(c, err)
			return
		}
		pos, ok := positions.Latest(orderID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "no position yet"})
			return
		}
		c.JSON(http.StatusOK, pos)
	}
}
