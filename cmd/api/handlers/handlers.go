package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/dto"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/pagination"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/services"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// 목록/검색 응답은 실패해도 페이지 형태를 유지하고 error 필드만 채운다.
func writePage(c *gin.Context, page dto.PageResult, err error) {
	if err != nil {
		page.Error = err.Error()
		c.JSON(statusFor(err), page)
		return
	}
	c.JSON(http.StatusOK, page)
}

func pageSizeQuery(c *gin.Context) int {
	n, _ := strconv.Atoi(c.Query("page_size"))
	return n
}

// ListHandler godoc
// @Summary      List content
// @Description  Published posts or recipes, newest first, one page at a time
// @Tags         content
// @Param        type       path   string  true   "Content type"  Enums(posts, recipes)
// @Param        page       query  int     false  "Page number (1-based, invalid values mean 1)"
// @Param        page_size  query  int     false  "Page size (default from config)"
// @Produce      json
// @Success      200  {object}  dto.PageResult
// @Failure      500  {object}  dto.PageResult
// @Router       /{type} [get]
func ListHandler(svc *services.ContentService, ct models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pagination.ParsePage(c.Query("page"))
		res, err := svc.ListPage(c.Request.Context(), ct, page, pageSizeQuery(c))
		writePage(c, res, err)
	}
}

// SearchHandler godoc
// @Summary      Search content
// @Description  Case-insensitive substring search over title, description, body, category and tags
// @Tags         content
// @Param        type       path   string  true   "Content type"  Enums(posts, recipes)
// @Param        q          query  string  true   "Search query"
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size"
// @Produce      json
// @Success      200  {object}  dto.PageResult
// @Failure      400  {object}  dto.PageResult
// @Failure      500  {object}  dto.PageResult
// @Router       /{type}/search [get]
func SearchHandler(svc *services.ContentService, ct models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pagination.ParsePage(c.Query("page"))
		res, err := svc.SearchPage(c.Request.Context(), ct, c.Query("q"), page, pageSizeQuery(c))
		writePage(c, res, err)
	}
}

// CategoryHandler godoc
// @Summary      List content of one category
// @Tags         content
// @Param        type       path   string  true   "Content type"  Enums(posts, recipes)
// @Param        category   path   string  true   "Category name"
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size"
// @Produce      json
// @Success      200  {object}  dto.PageResult
// @Failure      400  {object}  dto.PageResult
// @Failure      500  {object}  dto.PageResult
// @Router       /{type}/categories/{category} [get]
func CategoryHandler(svc *services.ContentService, ct models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := pagination.ParsePage(c.Query("page"))
		res, err := svc.ListPageByCategory(c.Request.Context(), ct, c.Param("category"), page, pageSizeQuery(c))
		writePage(c, res, err)
	}
}

// CategoryCountsHandler godoc
// @Summary      Count content per category
// @Description  Every known category in canonical order; failed categories count as 0
// @Tags         content
// @Param        type  path  string  true  "Content type"  Enums(posts, recipes)
// @Produce      json
// @Success      200  {object}  dto.CategoryCountsDTO
// @Failure      500  {object}  dto.CategoryCountsDTO
// @Router       /{type}/category-counts [get]
func CategoryCountsHandler(svc *services.CategoryService, ct models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.CountsByCategory(c.Request.Context(), ct)
		if err != nil {
			res.Error = err.Error()
		}
		c.JSON(statusFor(err), res)
	}
}

// LatestHandler godoc
// @Summary      Latest content
// @Tags         content
// @Param        type   path   string  true   "Content type"  Enums(posts, recipes)
// @Param        limit  query  int     false  "Number of items (default from config)"
// @Produce      json
// @Success      200  {object}  dto.LatestDTO
// @Failure      500  {object}  dto.LatestDTO
// @Router       /{type}/latest [get]
func LatestHandler(svc *services.ContentService, ct models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))
		items, err := svc.Latest(c.Request.Context(), ct, limit)
		out := dto.LatestDTO{Items: items}
		if err != nil {
			out.Error = err.Error()
		}
		c.JSON(statusFor(err), out)
	}
}

// GetBySlugHandler godoc
// @Summary      Get content by slug
// @Tags         content
// @Param        type  path  string  true  "Content type"  Enums(posts, recipes)
// @Param        slug  path  string  true  "Slug"
// @Produce      json
// @Success      200  {object}  models.ContentItem
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /{type}/items/{slug} [get]
func GetBySlugHandler(svc *services.ContentService, ct models.ContentType) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.GetBySlug(c.Request.Context(), ct, c.Param("slug"))
		if err != nil {
			errorJSON(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}
