package httpserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"foodorder/internal/domain"
	"foodorder/internal/metrics"
)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, headerUserID, headerBranchID)
	corsCfg.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsCfg))

	if deps.Metrics != nil {
		router.Use(deps.Metrics.GinMiddleware())
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/branches", listBranches(deps.Catalog))
	router.GET("/branches/:branchID/menu", listBranchMenu(deps.Catalog))

	authed := router.Group("/", requireSession(deps.Users))

	cart := authed.Group("/cart")
	{
		cart.GET("", listCart(deps.Cart))
		cart.GET("/badge", cartBadge(deps.Cart))
		cart.POST("/items", addCartItem(deps.Cart))
		cart.PATCH("/items/:lineID", setCartQuantity(deps.Cart))
		cart.DELETE("/items/:lineID", removeCartItem(deps.Cart))
		cart.DELETE("", clearCart(deps.Cart))
	}

	authed.POST("/checkout", placeOrder(deps.Checkout))
	authed.POST("/checkout/drafts/:draftID/confirm", confirmDraft(deps.Checkout))

	orders := authed.Group("/orders")
	{
		orders.GET("", listMyOrders(deps.Views))
		orders.GET("/stream", streamOrders(deps.Hub))
		orders.GET("/:orderID", getOrder(deps.Orders))
		orders.POST("/:orderID/status", transitionOrder(deps.Orders))
		orders.GET("/:orderID/position", orderPosition(deps.Orders, deps.Positions))
	}

	branch := authed.Group("/branch", requireRole(domain.RoleBranch, domain.RoleAdmin))
	branch.GET("/orders", listBranchOrders(deps.Views))

	admin := authed.Group("/admin", requireRole(domain.RoleAdmin))
	admin.GET("/orders", listAllOrders(deps.Views))

	return router
}
