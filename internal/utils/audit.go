package utils

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
)

// LogAction enregistre une action dans les logs d'audit
func LogAction(c *gin.Context, action, resource string, resourceID string, oldValue, newValue interface{}) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, oldValue, newValue, true, ""); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

// LogFailedAction enregistre une action échouée dans les logs d'audit
func LogFailedAction(c *gin.Context, action, resource, resourceID, errorMsg string) {
	go func() {
		if err := logActionAsync(c, action, resource, resourceID, nil, nil, false, errorMsg); err != nil {
			log.Printf("❌ Erreur enregistrement log audit: %v", err)
		}
	}()
}

// logActionAsync enregistre de façon asynchrone
func logActionAsync(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}, success bool, errorMsg string) error {
	usersSession, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	userID, _ := c.Get("user_id")
	userEmail, _ := c.Get("email")

	// Sérialiser les valeurs
	var oldValueStr, newValueStr string
	if oldValue != nil {
		if oldBytes, err := json.Marshal(oldValue); err == nil {
			oldValueStr = string(oldBytes)
		}
	}
	if newValue != nil {
		if newBytes, err := json.Marshal(newValue); err == nil {
			newValueStr = string(newBytes)
		}
	}

	auditLog := models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     getStringValue(userID),
		UserEmail:  getStringValue(userEmail),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   oldValueStr,
		NewValue:   newValueStr,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Success:    success,
		ErrorMsg:   errorMsg,
		Timestamp:  time.Now(),
		SessionID:  c.GetHeader("X-Session-ID"),
	}

	query := `
		INSERT INTO audit_logs (
			id, user_id, user_email, action, resource, resource_id,
			old_value, new_value, ip_address, user_agent, success,
			error_msg, timestamp, session_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return usersSession.Query(query,
		auditLog.ID, auditLog.UserID, auditLog.UserEmail, auditLog.Action,
		auditLog.Resource, auditLog.ResourceID, auditLog.OldValue, auditLog.NewValue,
		auditLog.IPAddress, auditLog.UserAgent, auditLog.Success, auditLog.ErrorMsg,
		auditLog.Timestamp, auditLog.SessionID,
	).Exec()
}

// getStringValue convertit une interface{} en string
func getStringValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}

// Actions d'audit prédéfinies
const (
	// Actions réservations
	ACTION_BOOKING_CREATE     = "booking.create"
	ACTION_BOOKING_TRANSITION = "booking.transition"
	ACTION_BOOKING_CANCEL     = "booking.cancel"

	// Actions factures
	ACTION_INVOICE_CREATE = "invoice.create"
	ACTION_INVOICE_SEND   = "invoice.send"
	ACTION_INVOICE_CANCEL = "invoice.cancel"
	ACTION_INVOICE_REFUND = "invoice.refund"

	// Actions coupons
	ACTION_COUPON_CREATE = "coupon.create"
	ACTION_COUPON_UPDATE = "coupon.update"
	ACTION_COUPON_DELETE = "coupon.delete"
	ACTION_COUPON_APPLY  = "coupon.apply"

	// Actions commissions
	ACTION_FEE_CREATE = "platform_fee.create"
	ACTION_FEE_UPDATE = "platform_fee.update"

	// Actions utilisateurs
	ACTION_USER_CREATE      = "user.create"
	ACTION_USER_UPDATE      = "user.update"
	ACTION_USER_DELETE      = "user.delete"
	ACTION_ROLE_ASSIGN      = "role.assign"
	ACTION_LOGIN_SUCCESS    = "auth.login_success"
	ACTION_LOGIN_FAILED     = "auth.login_failed"
	ACTION_REFUND_REQUEST   = "refund.request"
	ACTION_REFUND_PROCESSED = "refund.processed"
)

// Resources d'audit
const (
	RESOURCE_BOOKING      = "booking"
	RESOURCE_INVOICE      = "invoice"
	RESOURCE_COUPON       = "coupon"
	RESOURCE_PLATFORM_FEE = "platform_fee"
	RESOURCE_USER         = "user"
	RESOURCE_REFUND       = "refund"
	RESOURCE_AUTH         = "auth"
)
