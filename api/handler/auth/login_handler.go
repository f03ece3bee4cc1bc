package auth

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anoixa/pixelwise/api/common"
	"github.com/anoixa/pixelwise/config"
	authsvc "github.com/anoixa/pixelwise/internal/auth"
)

// LoginHandler 登录处理器
type LoginHandler struct {
	loginService *authsvc.LoginService
}

// NewLoginHandler 创建登录处理器
func NewLoginHandler(loginService *authsvc.LoginService) *LoginHandler {
	return &LoginHandler{loginService: loginService}
}

type userAuthRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken       string `json:"access_token"`
	AccessTokenExpiry int64  `json:"access_token_expiry"`
}

// Login user login
func (h *LoginHandler) Login(c *gin.Context) {
	var req userAuthRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.loginService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, authsvc.ErrInvalidCredentials) {
			common.RespondError(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Printf("[Login] error for user %s: %v", req.Username, err)
		common.RespondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	refreshTokenMaxAge := int(time.Until(result.RefreshTokenExpiry).Seconds())
	setAuthCookies(c, result.RefreshToken, result.DeviceID, refreshTokenMaxAge)

	common.RespondSuccess(c, loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
	})
}

// Refresh refresh token authentication
func (h *LoginHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	deviceID, err := c.Cookie("device_id")
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Device ID not found")
		return
	}

	result, err := h.loginService.RefreshToken(refreshToken, deviceID)
	if err != nil {
		common.RespondError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	newRefreshTokenMaxAge := int(time.Until(result.RefreshTokenExpiry).Seconds())
	setAuthCookies(c, result.RefreshToken, deviceID, newRefreshTokenMaxAge)

	common.RespondSuccess(c, loginResponse{
		AccessToken:       "Bearer " + result.AccessToken,
		AccessTokenExpiry: result.AccessTokenExpiry.Unix(),
	})
}

// Logout user logout
func (h *LoginHandler) Logout(c *gin.Context) {
	deviceID, err := c.Cookie("device_id")
	if err != nil {
		clearAuthCookies(c)
		common.RespondSuccess(c, gin.H{"message": "Already logged out or session invalid"})
		return
	}

	_ = h.loginService.Logout(deviceID)
	clearAuthCookies(c)

	common.RespondSuccess(c, gin.H{"message": "Logout successful"})
}

// setAuthCookies 设置 refresh_token 和 device_id 的 HttpOnly cookie
func setAuthCookies(c *gin.Context, refreshToken, deviceID string, maxAge int) {
	path := "/api/auth/"
	secure := config.IsProduction()

	refreshTokenCookie := http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		MaxAge:   maxAge,
		Path:     path,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	deviceIDCookie := http.Cookie{
		Name:     "device_id",
		Value:    deviceID,
		MaxAge:   maxAge,
		Path:     path,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(c.Writer, &refreshTokenCookie)
	http.SetCookie(c.Writer, &deviceIDCookie)
}

// clearAuthCookies 清除认证相关的 cookie
func clearAuthCookies(c *gin.Context) {
	path := "/api/auth/"
	c.SetCookie("refresh_token", "", -1, path, "", false, true)
	c.SetCookie("device_id", "", -1, path, "", false, true)
}
