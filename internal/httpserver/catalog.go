package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/domain"
)

func listBranches(cat branchCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		branches, err := cat.ListBranches(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		if branches == nil {
			branches = []domain.Branch{}
		}
		c.JSON(http.StatusOK, gin.H{"branches": branches})
	}
}

func listBranchMenu(cat branchCatalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := cat.ListOffered(c.Request.Context(), c.Param("branchID"))
		if err != nil {
			respondErr(c, err)
			return
		}
		if items == nil {
			items = []domain.MenuItem{}
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
