// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mahiprime2001/Billing-system/internal/config"
	"github.com/mahiprime2001/Billing-system/internal/handler"
	"github.com/mahiprime2001/Billing-system/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterBills registers the bill lifecycle endpoints.  Everything
// here is reachable without a session: bills are created and settled
// by the merchant-side POS integration, and /bills/view is the
// SMS-link landing path.  The tokenized view route is rate limited
// so token enumeration stays uniformly slow; bill reads sit behind
// the response cache.
func RegisterBills(e *echo.Echo, b *handler.BillHandler, rdb *redis.Client) {
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/bills")
	g.POST("", b.CreateBill)
	g.GET("", b.ListBills, cacheMW)
	g.GET("/:id", b.GetBill, cacheMW)
	g.POST("/:id/payment", b.RecordPayment)
	g.GET("/view/:token", b.ViewBillByToken, limitMW)
}

// RegisterSMS registers notification dispatch and link management
// endpoints, plus the fallback pages the validation redirects point
// at.  Link validation shares the rate limiter with /bills/view so
// both token-bearing surfaces throttle together.
func RegisterSMS(e *echo.Echo, s *handler.SMSHandler, rdb *redis.Client) {
	limitMW := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	g := e.Group("/sms")
	g.POST("/send-bill-notification", s.SendBillNotification)
	g.GET("/validate-link/:token", s.ValidateLink, limitMW)
	g.POST("/revoke-link/:token", s.RevokeLink)
	g.GET("/expired-link", s.ExpiredLink)

	// Fallback pages referenced by redirect_to values.
	e.GET("/expired-link", s.ExpiredLink)
	e.GET("/invalid-link", s.InvalidLink)
}

// RegisterAuth registers all account-related routes and applies the
// necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(handler.RoleUser))
	auth.GET("/me", a.Me)
	auth.GET("/me/bills", a.MyBills)
	auth.POST("/logout-all", a.LogoutAll)
}
