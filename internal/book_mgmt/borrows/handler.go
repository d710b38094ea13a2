package borrows

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

// RegisterRoutes binds the member-facing routes. The actor id comes from the
// authenticated token, never from the request body.
func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /borrow/:book_id
	r.POST("/borrow/:book_id", h.RequestBorrow)
	// POST /return
	r.POST("/return", h.ReturnCopy)
	// GET /users/:member_id/borrowed-books (返却画面用)
	r.GET("/users/:member_id/borrowed-books", h.ListBorrowedBooks)
}

// RegisterAdminRoutes binds the admin decision routes.
func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/borrow-requests", h.ListPending)
	r.POST("/borrow-requests/:txn_id/approve", h.ApproveBorrow)
	r.POST("/borrow-requests/:txn_id/reject", h.RejectBorrow)
}

// ---------- handlers ----------

func (h *Handler) RequestBorrow(c *gin.Context) {
	memberID, ok := auth.MemberIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Body(apperr.CodeUnauthorized, "missing authenticated member"))
		return
	}
	bookID, err := strconv.ParseInt(c.Param("book_id"), 10, 64)
	if err != nil || bookID <= 0 {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid book_id"))
		return
	}

	res, err := h.svc.RequestBorrow(c.Request.Context(), memberID, bookID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ReturnCopy(c *gin.Context) {
	memberID, ok := auth.MemberIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Body(apperr.CodeUnauthorized, "missing authenticated member"))
		return
	}

	var req ReturnRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid json"))
			return
		}
	}

	res, err := h.svc.ReturnCopy(c.Request.Context(), memberID, req.CopyID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListBorrowedBooks(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Param("member_id"), 10, 64)
	if err != nil || memberID <= 0 {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid member_id"))
		return
	}

	res, err := h.svc.ListBorrowedBooks(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ListPending(c *gin.Context) {
	res, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ApproveBorrow(c *gin.Context) {
	h.decide(c, h.svc.ApproveBorrow)
}

func (h *Handler) RejectBorrow(c *gin.Context) {
	h.decide(c, h.svc.RejectBorrow)
}

func (h *Handler) decide(c *gin.Context, fn func(ctx context.Context, txnID, adminID int64, comment *string) (*DecisionResponse, error)) {
	adminID, ok := auth.MemberIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Body(apperr.CodeUnauthorized, "missing authenticated member"))
		return
	}
	txnID, err := strconv.ParseInt(c.Param("txn_id"), 10, 64)
	if err != nil || txnID <= 0 {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid txn_id"))
		return
	}

	var req AdminDecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid json"))
			return
		}
	}

	res, err := fn(c.Request.Context(), txnID, adminID, req.Comment)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
