package members

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boiadda-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/users", h.ListMembers)
	r.GET("/users/:member_id", h.GetMember)
}

func (h *Handler) ListMembers(c *gin.Context) {
	res, err := h.svc.ListMembers(c.Request.Context())
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetMember(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("member_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid member_id"))
		return
	}

	res, err := h.svc.GetMember(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
