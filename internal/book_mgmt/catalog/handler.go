package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boiadda-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// GET /books (一覧; member_id 指定で can_borrow 判定)
	r.GET("/books", h.ListBooks)
	// GET /books/:book_id
	r.GET("/books/:book_id", h.GetBook)
}

func (h *Handler) ListBooks(c *gin.Context) {
	var memberID *int64
	if v := c.Query("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid member_id"))
			return
		}
		memberID = &id
	}

	res, err := h.svc.ListBooks(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetBook(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid book_id"))
		return
	}

	res, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
