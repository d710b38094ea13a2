package donations

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/auth"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	// POST /donate (新規タイトルの寄贈)
	r.POST("/donate", h.DonateNewBook)
	// POST /donate/:book_id (既存タイトルへの追加寄贈)
	r.POST("/donate/:book_id", h.DonateExistingBook)
}

func RegisterAdminRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/donation-requests", h.ListPending)
	r.POST("/donation-requests/:txn_id/approve", h.ApproveDonation)
	r.POST("/donation-requests/:txn_id/reject", h.RejectDonation)
}

// ---------- handlers ----------

func (h *Handler) DonateNewBook(c *gin.Context) {
	memberID, ok := auth.MemberIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Body(apperr.CodeUnauthorized, "missing authenticated member"))
		return
	}

	var req NewBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid json or missing required fields"))
		return
	}

	res, err := h.svc.DonateNewBook(c.Request.Context(), memberID, req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) DonateExistingBook(c *gin.Context) {
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

	res, err := h.svc.DonateExistingBook(c.Request.Context(), memberID, bookID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) ListPending(c *gin.Context) {
	res, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) ApproveDonation(c *gin.Context) {
	h.decide(c, h.svc.ApproveDonation)
}

func (h *Handler) RejectDonation(c *gin.Context) {
	h.decide(c, h.svc.RejectDonation)
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
