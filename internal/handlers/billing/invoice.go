package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"pawcare_back_end/internal/billing"
	"pawcare_back_end/internal/cache"
	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
	services "pawcare_back_end/internal/service"
	"pawcare_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const invoiceRetryQueue = "invoice:retry"

// GenerateInvoiceForBooking crée la facture d'une réservation terminée.
//
// Garanties :
//   - billing.ErrBookingNotCompleted si la réservation n'est pas terminée ;
//   - au plus une facture par réservation, via INSERT IF NOT EXISTS dans
//     invoices_by_booking (billing.ErrDuplicateInvoice sinon) ;
//   - montants dérivés par billing.ComputeInvoiceAmounts, remise comprise.
func GenerateInvoiceForBooking(bookingID gocql.UUID) (models.Invoice, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return models.Invoice{}, err
	}

	var clientID, status string
	var totalPrice float64
	if err := session.Query("SELECT client_id, status, total_price FROM bookings WHERE booking_id = ?",
		bookingID).Scan(&clientID, &status, &totalPrice); err != nil {
		return models.Invoice{}, fmt.Errorf("réservation introuvable: %w", err)
	}
	if models.BookingStatus(status) != models.BookingCompleted {
		return models.Invoice{}, billing.ErrBookingNotCompleted
	}

	fee, err := ActivePlatformFee()
	if err != nil {
		return models.Invoice{}, err
	}

	discount := AppliedCouponForBooking(session, bookingID)

	amounts, err := billing.ComputeInvoiceAmounts(totalPrice, fee.FeePercentage, discount)
	if err != nil {
		return models.Invoice{}, err
	}

	invoiceID := gocql.TimeUUID()
	now := time.Now()
	invoiceNumber := fmt.Sprintf("PAW-%d-%s", now.Year(), invoiceID.String()[:8])

	// verrou d'unicité : une seule facture par réservation
	applied, err := session.Query(`INSERT INTO invoices_by_booking (booking_id, invoice_id) VALUES (?, ?) IF NOT EXISTS`,
		bookingID, invoiceID).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return models.Invoice{}, err
	}
	if !applied {
		return models.Invoice{}, billing.ErrDuplicateInvoice
	}

	invoice := models.Invoice{
		ID:             invoiceID,
		BookingID:      bookingID,
		InvoiceNumber:  invoiceNumber,
		ClientID:       clientID,
		Subtotal:       amounts.Subtotal,
		PlatformFee:    amounts.PlatformFee,
		DiscountAmount: discount,
		Total:          amounts.Total,
		Status:         models.InvoiceDraft,
		IssueDate:      now,
		DueDate:        now.AddDate(0, 0, 14),
		CreatedAt:      now,
	}

	if err := session.Query(`INSERT INTO invoices (invoice_id, booking_id, invoice_number, client_id, subtotal, platform_fee, discount_amount, total, amount_paid, status, issue_date, due_date, payment_intent_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID, invoice.BookingID, invoice.InvoiceNumber, invoice.ClientID,
		invoice.Subtotal, invoice.PlatformFee, invoice.DiscountAmount, invoice.Total,
		0.0, invoice.Status.String(), invoice.IssueDate, invoice.DueDate, "", invoice.CreatedAt).Exec(); err != nil {
		// on relâche le verrou, la prochaine tentative repartira de zéro
		_ = session.Query("DELETE FROM invoices_by_booking WHERE booking_id = ?", bookingID).Exec()
		return models.Invoice{}, err
	}

	log.Printf("🧾 Facture %s générée pour réservation %s (%.2f€)", invoiceNumber, bookingID, invoice.Total)
	return invoice, nil
}

// QueueInvoiceRetry met une réservation en file Redis pour regénération
func QueueInvoiceRetry(bookingID string) {
	ctx := context.Background()
	if err := database.Redis.RPush(ctx, invoiceRetryQueue, bookingID).Err(); err != nil {
		log.Printf("❌ Impossible de mettre %s en file de retry facture: %v", bookingID, err)
		return
	}
	log.Printf("📤 Réservation %s mise en file de retry facture", bookingID)
}

// StartInvoiceRetryWorker consomme la file de retry en tâche de fond.
// Une facture déjà existante sort silencieusement de la file.
func StartInvoiceRetryWorker() {
	go func() {
		ctx := context.Background()
		for {
			res, err := database.Redis.BLPop(ctx, 30*time.Second, invoiceRetryQueue).Result()
			if err != nil || len(res) < 2 {
				continue
			}

			bookingID, err := uuid.Parse(res[1])
			if err != nil {
				log.Printf("⚠️ ID invalide dans la file de retry: %s", res[1])
				continue
			}

			if _, err := GenerateInvoiceForBooking(gocql.UUID(bookingID)); err != nil {
				if errors.Is(err, billing.ErrDuplicateInvoice) {
					continue
				}
				log.Printf("⚠️ Retry facture %s échoué: %v", bookingID, err)
				// repasse en fin de file après une pause
				time.Sleep(10 * time.Second)
				QueueInvoiceRetry(bookingID.String())
			}
		}
	}()
}

// loadInvoice récupère une facture par ID
func loadInvoice(session *gocql.Session, invoiceID gocql.UUID) (models.Invoice, error) {
	inv := models.Invoice{ID: invoiceID}
	var status string
	err := session.Query(`SELECT booking_id, invoice_number, client_id, subtotal, platform_fee, discount_amount, total, amount_paid, status, issue_date, due_date, payment_intent_id, created_at, updated_at
		FROM invoices WHERE invoice_id = ?`, invoiceID).Scan(
		&inv.BookingID, &inv.InvoiceNumber, &inv.ClientID, &inv.Subtotal, &inv.PlatformFee,
		&inv.DiscountAmount, &inv.Total, &inv.AmountPaid, &status, &inv.IssueDate,
		&inv.DueDate, &inv.PaymentIntentID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return models.Invoice{}, err
	}
	inv.Status = models.InvoiceStatus(status)
	return inv, nil
}

// GenerateInvoice déclenche manuellement la facturation d'une réservation
// (admin). Utile si la génération automatique a échoué.
func GenerateInvoice(c *gin.Context) {
	bookingUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	invoice, err := GenerateInvoiceForBooking(gocql.UUID(bookingUUID))
	if err != nil {
		switch {
		case errors.Is(err, billing.ErrBookingNotCompleted):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, billing.ErrDuplicateInvoice):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, billing.ErrNoActiveFee):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		case errors.Is(err, billing.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		}
		return
	}

	utils.LogAction(c, utils.ACTION_INVOICE_CREATE, utils.RESOURCE_INVOICE, invoice.ID.String(), nil, invoice)
	c.JSON(http.StatusCreated, gin.H{"invoice": invoice})
}

// GetInvoice retourne une facture (client concerné ou admin)
func GetInvoice(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID facture invalide"})
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

	if role != models.RoleAdmin && inv.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette facture ne vous appartient pas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// GetMyInvoices liste les factures du client connecté
func GetMyInvoices(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT invoice_id, booking_id, invoice_number, subtotal, platform_fee, discount_amount, total, amount_paid, status, issue_date, due_date, created_at, updated_at
		FROM invoices WHERE client_id = ? ALLOW FILTERING`, userID).Iter()

	var invoices []models.Invoice
	var inv models.Invoice
	var status string
	for iter.Scan(&inv.ID, &inv.BookingID, &inv.InvoiceNumber, &inv.Subtotal, &inv.PlatformFee,
		&inv.DiscountAmount, &inv.Total, &inv.AmountPaid, &status, &inv.IssueDate, &inv.DueDate,
		&inv.CreatedAt, &inv.UpdatedAt) {
		inv.ClientID = userID
		inv.Status = models.InvoiceStatus(status)
		invoices = append(invoices, inv)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture factures"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoices": invoices, "count": len(invoices)})
}

// GetBookingInvoice retourne la facture liée à une réservation
func GetBookingInvoice(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	bookingUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var invoiceID gocql.UUID
	if err := session.Query("SELECT invoice_id FROM invoices_by_booking WHERE booking_id = ?",
		gocql.UUID(bookingUUID)).Scan(&invoiceID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucune facture pour cette réservation"})
		return
	}

	inv, err := loadInvoice(session, invoiceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Facture introuvable"})
		return
	}

	if role != models.RoleAdmin && inv.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette facture ne vous appartient pas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

// SendInvoice passe la facture de draft à sent et l'envoie par email au
// client, PDF et QR SEPA inclus. Le PDF est archivé dans MinIO.
func SendInvoice(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID facture invalide"})
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

	if err := inv.Status.Transition(models.InvoiceSent); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": inv.Status})
		return
	}

	client, err := cache.GetUserFromCache(inv.ClientID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Client introuvable"})
		return
	}

	now := time.Now()
	if err := session.Query("UPDATE invoices SET status = ?, updated_at = ? WHERE invoice_id = ?",
		models.InvoiceSent.String(), now, inv.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour facture"})
		return
	}

	utils.LogAction(c, utils.ACTION_INVOICE_SEND, utils.RESOURCE_INVOICE, inv.ID.String(),
		gin.H{"status": inv.Status}, gin.H{"status": models.InvoiceSent})

	// rendu PDF + QR + email en tâche de fond, la réponse n'attend pas
	go func(inv models.Invoice, clientEmail, clientName string) {
		qr, err := utils.GenerateSepaQR(
			os.Getenv("PLATFORM_IBAN"),
			os.Getenv("PLATFORM_BIC"),
			"PawCare",
			inv.InvoiceNumber,
			inv.Total,
		)
		if err != nil {
			log.Printf("⚠️ Erreur génération QR SEPA: %v", err)
		}

		pdf, err := utils.RenderInvoicePDF(utils.GetFrontendInvoiceBaseURL(), inv.ID.String(), qr)
		if err != nil {
			log.Printf("❌ Erreur rendu PDF facture %s: %v", inv.InvoiceNumber, err)
			pdf = nil
		}

		if pdf != nil {
			if _, err := services.ArchiveInvoicePDF(inv.InvoiceNumber, pdf); err != nil {
				log.Printf("⚠️ Erreur archivage PDF MinIO: %v", err)
			}
		}

		html := utils.GenerateInvoiceHTML(inv, clientName)
		subject := fmt.Sprintf("Votre facture PawCare %s", inv.InvoiceNumber)
		if err := utils.SendInvoiceEmail(clientEmail, subject, html, pdf); err != nil {
			log.Printf("❌ Erreur envoi email facture: %v", err)
		} else {
			log.Printf("📧 Facture %s envoyée à %s", inv.InvoiceNumber, clientEmail)
		}
	}(inv, client.Email, client.Name)

	c.JSON(http.StatusOK, gin.H{"message": "Facture envoyée", "status": models.InvoiceSent})
}

// DownloadInvoicePDF rend le PDF de la facture à la volée
func DownloadInvoicePDF(c *gin.Context) {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID facture invalide"})
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
	if role != models.RoleAdmin && inv.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette facture ne vous appartient pas"})
		return
	}

	qr, _ := utils.GenerateSepaQR(
		os.Getenv("PLATFORM_IBAN"),
		os.Getenv("PLATFORM_BIC"),
		"PawCare",
		inv.InvoiceNumber,
		inv.Total,
	)

	pdf, err := utils.RenderInvoicePDF(utils.GetFrontendInvoiceBaseURL(), inv.ID.String(), qr)
	if err != nil {
		log.Printf("❌ Erreur rendu PDF: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, inv.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// RecordPayment enregistre un paiement (total ou partiel) sur une facture
// envoyée. sent → paid ou partially_paid selon le cumul encaissé.
func RecordPayment(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID facture invalide"})
		return
	}

	var req struct {
		Amount          float64 `json:"amount" binding:"required,gt=0"`
		PaymentIntentID string  `json:"payment_intent_id"`
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

	newPaid := decimal.NewFromFloat(inv.AmountPaid).Add(decimal.NewFromFloat(req.Amount)).Round(2)
	total := decimal.NewFromFloat(inv.Total)

	if newPaid.GreaterThan(total) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le paiement dépasse le montant dû"})
		return
	}

	target, err := settleStatus(inv.Status, newPaid, total)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": inv.Status})
		return
	}

	now := time.Now()
	if err := session.Query("UPDATE invoices SET amount_paid = ?, status = ?, payment_intent_id = ?, updated_at = ? WHERE invoice_id = ?",
		newPaid.InexactFloat64(), target.String(), req.PaymentIntentID, now, inv.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement paiement"})
		return
	}

	log.Printf("💰 Paiement %.2f€ sur facture %s (%s)", req.Amount, inv.InvoiceNumber, target)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Paiement enregistré",
		"status":      target,
		"amount_paid": newPaid.InexactFloat64(),
	})
}

// cancellationRefund construit la demande de remboursement à consigner
// quand on annule une facture partiellement encaissée. Rien à consigner si
// rien n'a été payé.
func cancellationRefund(inv models.Invoice, now time.Time) (models.Refund, bool) {
	if inv.AmountPaid <= 0 {
		return models.Refund{}, false
	}
	return models.Refund{
		ID:           gocql.TimeUUID(),
		InvoiceID:    inv.ID,
		BookingID:    inv.BookingID,
		AccountID:    inv.ClientID,
		Reason:       "Annulation de la facture " + inv.InvoiceNumber,
		Status:       "pending",
		RefundAmount: inv.AmountPaid,
		CreatedAt:    now,
	}, true
}

// CancelInvoice annule une facture tant qu'elle n'est pas intégralement
// payée. Les montants déjà encaissés partent en demande de remboursement,
// traitée ensuite par le circuit habituel.
func CancelInvoice(c *gin.Context) {
	invoiceUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID facture invalide"})
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

	if err := inv.Status.Transition(models.InvoiceCancelled); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": inv.Status})
		return
	}

	now := time.Now()

	// ce qui a déjà été encaissé est consigné pour remboursement avant de
	// clore la facture : l'argent ne disparaît jamais des livres
	if rec, ok := cancellationRefund(inv, now); ok {
		if err := session.Query(`INSERT INTO refunds (refund_id, invoice_id, booking_id, account_id, reason, status, refund_amount, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.InvoiceID, rec.BookingID, rec.AccountID, rec.Reason, rec.Status, rec.RefundAmount, rec.CreatedAt).Exec(); err != nil {
			log.Printf("❌ Erreur consignation du remboursement d'annulation: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation facture"})
			return
		}
		log.Printf("💰 Remboursement de %.2f€ consigné pour la facture %s annulée", rec.RefundAmount, inv.InvoiceNumber)
	}

	if err := session.Query("UPDATE invoices SET status = ?, updated_at = ? WHERE invoice_id = ?",
		models.InvoiceCancelled.String(), now, inv.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur annulation facture"})
		return
	}

	utils.LogAction(c, utils.ACTION_INVOICE_CANCEL, utils.RESOURCE_INVOICE, inv.ID.String(),
		gin.H{"status": inv.Status}, gin.H{"status": models.InvoiceCancelled})
	log.Printf("🚫 Facture %s annulée", inv.InvoiceNumber)

	c.JSON(http.StatusOK, gin.H{"message": "Facture annulée", "status": models.InvoiceCancelled})
}
