package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mahiprime2001/Billing-system/internal/repository"
	"github.com/mahiprime2001/Billing-system/internal/service"
)

// SMSHandler bundles dependencies for the notification endpoints:
// dispatching bill SMS messages and managing the temporary links they
// embed.
type SMSHandler struct {
	Bills     *repository.BillRepo
	Users     *repository.UserRepo
	Merchants *repository.MerchantRepo
	Links     *service.LinkService
	Dispatch  *service.SMSService
}

func NewSMSHandler(b *repository.BillRepo, u *repository.UserRepo, m *repository.MerchantRepo, l *service.LinkService, d *service.SMSService) *SMSHandler {
	return &SMSHandler{Bills: b, Users: u, Merchants: m, Links: l, Dispatch: d}
}

type sendBillNotificationReq struct {
	BillID uint64 `json:"bill_id"`
	UserID uint64 `json:"user_id"`
}

// SendBillNotification mints a temporary link for a bill and records
// the SMS plus the in-app notification.  Link, SMS and notification
// rows commit in one transaction so a link is never issued without
// its audit trail.
func (h *SMSHandler) SendBillNotification(c echo.Context) error {
	var req sendBillNotificationReq
	if err := c.Bind(&req); err != nil || req.BillID == 0 || req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "bill_id and user_id are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bill, err := h.Bills.GetByID(ctx, req.BillID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "bill not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
	}
	user, err := h.Users.GetByID(ctx, req.UserID)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
	}
	merchant, err := h.Merchants.GetByID(ctx, bill.MerchantID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "query failed"})
	}

	tx, err := h.Bills.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "begin tx failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	result, err := h.Dispatch.NotifyBillTx(ctx, tx, bill, user, merchant.BusinessName)
	if err != nil {
		if err == service.ErrNotBillOwner {
			return c.JSON(http.StatusForbidden, echo.Map{"success": false, "message": "bill does not belong to this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "notification failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "commit failed"})
	}
	committed = true

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"sms_id":          result.SMSID,
		"notification_id": result.NotificationID,
		"message":         result.Message,
	})
}

// ValidateLink checks a presented token and answers with the bill
// path it grants or the reason it does not.
func (h *SMSHandler) ValidateLink(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	result, err := h.Links.Validate(ctx, c.Param("token"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "validation failed"})
	}
	if !result.Valid {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success":     false,
			"reason":      result.Reason,
			"redirect_to": result.RedirectTo,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":     true,
		"redirect_to": "/bills/" + strconv.FormatUint(result.BillID, 10),
	})
}

// RevokeLink permanently disables a temporary link.
func (h *SMSHandler) RevokeLink(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Links.Revoke(ctx, c.Param("token")); err != nil {
		if err == service.ErrLinkNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "message": "link not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "revoke failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "link revoked successfully"})
}

// ExpiredLink serves the fallback document shown when a link is no
// longer usable.
func (h *SMSHandler) ExpiredLink(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "This link has expired. Bills are available for 48 hours via SMS links.",
		"options": []echo.Map{
			{"text": "Download our app", "link": "/download-app"},
			{"text": "Log in to view all bills", "link": "/login"},
		},
	})
}

// InvalidLink serves the fallback document for tokens that never
// matched a ledger record.
func (h *SMSHandler) InvalidLink(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "This link is not valid. Please check the link from your SMS or log in to view your bills.",
		"options": []echo.Map{
			{"text": "Log in to view all bills", "link": "/login"},
		},
	})
}
