package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boiadda-backend/internal/platform/apperr"
)

func RegisterRoutes(r gin.IRoutes, svc *Service) {
	r.POST("/auth/register", func(c *gin.Context) { register(c, svc) })
	r.POST("/auth/login", func(c *gin.Context) { login(c, svc) })
	r.POST("/auth/logout", logout)
}

func RegisterAuthedRoutes(r gin.IRoutes, svc *Service) {
	r.GET("/auth/me", func(c *gin.Context) { me(c, svc) })
}

func register(c *gin.Context, svc *Service) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid request body"))
		return
	}
	resp, err := svc.Register(c.Request.Context(), req)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func login(c *gin.Context, svc *Service) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apperr.Body(apperr.CodeInvalidArgument, "invalid request body"))
		return
	}
	resp, err := svc.Login(c.Request.Context(), req)
	if err != nil {
		// 認証失敗は 401 で返す
		if apperr.CodeOf(err) == apperr.CodeUnauthorized {
			c.JSON(http.StatusUnauthorized, apperr.FromErr(err))
			return
		}
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// logout is a no-op for stateless bearer tokens; clients just drop the token.
func logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "successfully logged out"})
}

func me(c *gin.Context, svc *Service) {
	memberID, ok := MemberIDFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apperr.Body(apperr.CodeUnauthorized, "missing credentials"))
		return
	}
	info, err := svc.Me(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(apperr.ToHTTPStatus(err), apperr.FromErr(err))
		return
	}
	c.JSON(http.StatusOK, info)
}
