package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/services"
)

// HomeLatestHandler godoc
// @Summary      Latest posts and recipes
// @Description  Fetched in parallel; a failing side is returned as an empty list
// @Tags         home
// @Param        limit  query  int  false  "Items per content type"
// @Produce      json
// @Success      200  {object}  dto.HomeLatestDTO
// @Failure      500  {object}  dto.HomeLatestDTO
// @Router       /home/latest [get]
func HomeLatestHandler(svc *services.HomeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		res, err := svc.Latest(c.Request.Context(), limit)
		if err != nil {
			res.Error = err.Error()
		}
		c.JSON(statusFor(err), res)
	}
}

// SiteSearchHandler godoc
// @Summary      Site-wide search
// @Description  Searches posts and recipes together, newest first
// @Tags         home
// @Param        q      query  string  true   "Search query"
// @Param        limit  query  int     false  "Maximum number of results"
// @Produce      json
// @Success      200  {object}  dto.SearchResponseDTO
// @Failure      400  {object}  dto.SearchResponseDTO
// @Failure      500  {object}  dto.SearchResponseDTO
// @Router       /search [get]
func SiteSearchHandler(svc *services.HomeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		res, err := svc.Search(c.Request.Context(), c.Query("q"), limit)
		if err != nil {
			res.Error = err.Error()
		}
		c.JSON(statusFor(err), res)
	}
}
