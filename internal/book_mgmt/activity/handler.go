package activity

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"boiadda-backend/internal/platform/apperr"
)

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}

	r.GET("/recent-activities", h.RecentActivities)
	r.GET("/users/:member_id/statistics", h.MemberStatistics)
}

func (h *Handler) RecentActivities(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid limit"))
			return
		}
		limit = n
	}

	res, err := h.svc.RecentActivities(c.Request.Context(), limit)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MemberStatistics(c *gin.Context) {
	memberID, err := strconv.ParseInt(c.Param("member_id"), 10, 64)
	if err != nil || memberID <= 0 {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid member_id"))
		return
	}

	res, err := h.svc.MemberStatistics(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, res)
}
