package billing

import (
	"log"
	"net/http"
	"time"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
	"pawcare_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"
)

// RequestRefund permet à un client de demander le remboursement d'une
// facture payée
func RequestRefund(c *gin.Context) {
	userID := c.GetString("user_id")

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID facture invalide"})
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required,min=10,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	inv, err := loadInvoice(session, gocql.UUID(invoiceUUID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facture introuvable"})
		return
	}
	if inv.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette facture ne vous appartient pas"})
		return
	}

	// seule une facture payée est remboursable
	if inv.Status != models.InvoicePaid {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cette facture n'est pas éligible au remboursement"})
		return
	}

	// une seule demande par facture
	var existingRefundID gocql.UUID
	if err := session.Query("SELECT refund_id FROM refunds WHERE invoice_id = ? ALLOW FILTERING",
		gocql.UUID(invoiceUUID)).Scan(&existingRefundID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Une demande de remboursement existe déjà pour cette facture"})
		return
	}

	refundID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO refunds (refund_id, invoice_id, booking_id, account_id, reason, status, refund_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		refundID, inv.ID, inv.BookingID, userID, req.Reason, "pending", inv.AmountPaid, now).Exec(); err != nil {
		log.Printf("❌ Erreur création demande remboursement: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création demande"})
		return
	}

	utils.LogAction(c, utils.ACTION_REFUND_REQUEST, utils.RESOURCE_REFUND, refundID.String(), nil,
		gin.H{"invoice_id": inv.ID.String(), "amount": inv.AmountPaid})
	log.Printf("💰 Demande de remboursement créée: %s pour facture %s", refundID, inv.InvoiceNumber)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Demande de remboursement créée",
		"refund": models.Refund{
			ID:           refundID,
			InvoiceID:    inv.ID,
			BookingID:    inv.BookingID,
			AccountID:    userID,
			Reason:       req.Reason,
			Status:       "pending",
			RefundAmount: inv.AmountPaid,
			CreatedAt:    now,
		},
	})
}

// ProcessRefund traite une demande de remboursement (admin).
// approve déclenche le remboursement Stripe et passe la facture à refunded.
func ProcessRefund(c *gin.Context) {
	refundUUID, err := uuid.Parse(c.Param("refundId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID remboursement invalide"})
		return
	}

	var req struct {
		Action string `json:"action" binding:"required"` // approve, reject
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if req.Action != "approve" && req.Action != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Action invalide (approve ou reject)"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var invoiceID gocql.UUID
	var refundAmount float64
	var refundStatus string
	if err := session.Query("SELECT invoice_id, refund_amount, status FROM refunds WHERE refund_id = ?",
		gocql.UUID(refundUUID)).Scan(&invoiceID, &refundAmount, &refundStatus); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Demande de remboursement introuvable"})
		return
	}

	if refundStatus != "pending" {
		c.JSON(http.StatusConflict, gin.H{"error": "Cette demande a déjà été traitée"})
		return
	}

	now := time.Now()

	if req.Action == "reject" {
		if err := session.Query("UPDATE refunds SET status = ?, updated_at = ? WHERE refund_id = ?",
			"rejected", now, gocql.UUID(refundUUID)).Exec(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour"})
			return
		}

		utils.LogAction(c, utils.ACTION_REFUND_PROCESSED, utils.RESOURCE_REFUND, refundUUID.String(),
			gin.H{"status": "pending"}, gin.H{"status": "rejected"})
		log.Printf("❌ Remboursement rejeté: %s", refundUUID)

		c.JSON(http.StatusOK, gin.H{
			"message": "Demande de remboursement rejetée",
			"status":  "rejected",
		})
		return
	}

	inv, err := loadInvoice(session, invoiceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération facture"})
		return
	}

	// la facture doit pouvoir passer à refunded avant d'appeler Stripe
	if err := inv.Status.Transition(models.InvoiceRefunded); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": inv.Status})
		return
	}

	if inv.PaymentIntentID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Aucun paiement Stripe associé à cette facture"})
		return
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(inv.PaymentIntentID),
		Amount:        stripe.Int64(eurosToCents(refundAmount)),
		Reason:        stripe.String("requested_by_customer"),
	}

	stripeRefund, err := refund.New(params)
	if err != nil {
		log.Printf("❌ Erreur Stripe refund: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur traitement remboursement Stripe", "details": err.Error()})
		return
	}

	if err := session.Query("UPDATE refunds SET status = ?, stripe_refund_id = ?, updated_at = ? WHERE refund_id = ?",
		"completed", stripeRefund.ID, now, gocql.UUID(refundUUID)).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour refund: %v", err)
	}

	if err := session.Query("UPDATE invoices SET status = ?, updated_at = ? WHERE invoice_id = ?",
		models.InvoiceRefunded.String(), now, invoiceID).Exec(); err != nil {
		log.Printf("⚠️ Erreur mise à jour facture remboursée: %v", err)
	}

	utils.LogAction(c, utils.ACTION_INVOICE_REFUND, utils.RESOURCE_INVOICE, invoiceID.String(),
		gin.H{"status": inv.Status}, gin.H{"status": models.InvoiceRefunded, "stripe_refund_id": stripeRefund.ID})
	log.Printf("✅ Remboursement traité: %s (Stripe: %s)", refundUUID, stripeRefund.ID)

	c.JSON(http.StatusOK, gin.H{
		"message":          "Remboursement traité avec succès",
		"status":           "completed",
		"stripe_refund_id": stripeRefund.ID,
		"amount":           refundAmount,
	})
}

// GetMyRefunds liste les demandes de remboursement du compte connecté
func GetMyRefunds(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT refund_id, invoice_id, booking_id, reason, status, refund_amount, stripe_refund_id, created_at, updated_at
		FROM refunds WHERE account_id = ? ALLOW FILTERING`, userID).Iter()

	var refunds []models.Refund
	var r models.Refund
	for iter.Scan(&r.ID, &r.InvoiceID, &r.BookingID, &r.Reason, &r.Status, &r.RefundAmount, &r.StripeRefundID, &r.CreatedAt, &r.UpdatedAt) {
		r.AccountID = userID
		refunds = append(refunds, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture remboursements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"refunds": refunds, "count": len(refunds)})
}

// GetAllRefunds liste toutes les demandes de remboursement (admin)
func GetAllRefunds(c *gin.Context) {
	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT refund_id, invoice_id, booking_id, account_id, reason, status, refund_amount, stripe_refund_id, created_at, updated_at
		FROM refunds`).Iter()

	var refunds []models.Refund
	var r models.Refund
	for iter.Scan(&r.ID, &r.InvoiceID, &r.BookingID, &r.AccountID, &r.Reason, &r.Status, &r.RefundAmount, &r.StripeRefundID, &r.CreatedAt, &r.UpdatedAt) {
		refunds = append(refunds, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture remboursements"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"refunds": refunds, "count": len(refunds)})
}
