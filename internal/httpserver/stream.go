package httpserver

import (
	"io"

	"github.com/gin-gonic/gin"

	"foodorder/internal/domain"
	"foodorder/internal/projection"
)

// streamOrders serves the live order feed over server-sent events. The
// filter is pinned to the caller's identity: customers see their own orders,
// branch staff their branch, admins whatever they ask for. The subscription
// is torn down when the client disconnects.
func streamOrders(hub liveHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessionFrom(c)
		filter := projection.Filter{OrderID: c.Query("orderId")}
		switch sess.Role {
		case domain.RoleCustomer:
			filter.CustomerID = sess.UserID
		case domain.RoleBranch:
			filter.BranchID = sess.BranchID
		case domain.RoleAdmin:
			filter.CustomerID = c.Query("customerId")
			filter.BranchID = c.Query("branchId")
		}

		sub := hub.Subscribe(filter, 64)
		defer sub.Close()

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		c.Stream(func(w io.Writer) bool {
			select {
			case ev, ok := <-sub.Events:
				if !ok {
					return false
				}
				c.SSEvent(ev.Type, ev)
				return true
			case <-c.Request.Context().Done():
				return false
			}
		})
	}
}
