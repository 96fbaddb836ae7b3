package billing

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"
)

// settleStatus renvoie le statut d'une facture après encaissement d'un
// cumul newPaid sur le total dû. Rester en partially_paid après un nouveau
// paiement partiel n'est pas une transition : seul un changement de statut
// passe par la machine à états.
func settleStatus(from models.InvoiceStatus, newPaid, total decimal.Decimal) (models.InvoiceStatus, error) {
	target := models.InvoicePartiallyPaid
	if newPaid.GreaterThanOrEqual(total) {
		target = models.InvoicePaid
	}
	if target == from {
		return target, nil
	}
	if err := from.Transition(target); err != nil {
		return from, err
	}
	return target, nil
}

// eurosToCents convertit un montant en euros vers les centimes Stripe sans
// passer par l'arithmétique flottante.
func eurosToCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}

// CreateInvoicePaymentIntent prépare le paiement Stripe du solde d'une
// facture envoyée. Le front confirme ensuite avec le clientSecret.
func CreateInvoicePaymentIntent(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")

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
	if inv.ClientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette facture ne vous appartient pas"})
		return
	}
	if inv.Status != models.InvoiceSent && inv.Status != models.InvoicePartiallyPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Cette facture n'est pas payable", "status": inv.Status})
		return
	}

	// solde restant, en centimes pour Stripe
	remaining := decimal.NewFromFloat(inv.Total).Sub(decimal.NewFromFloat(inv.AmountPaid)).Round(2)
	amountCents := remaining.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"invoice_id": inv.ID.String(),
			"user_id":    userID,
			"email":      email,
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe:", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur Stripe", "details": err.Error()})
		return
	}

	log.Printf("💳 PaymentIntent créé : %s (%s€) pour facture %s", intent.ID, remaining, inv.InvoiceNumber)

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"paymentId":    intent.ID,
		"amount":       remaining.InexactFloat64(),
	})
}

// StripeWebhook reçoit les événements Stripe et solde les factures payées
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Échec lecture body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			log.Println("❌ JSON invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "JSON invalide"})
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	handleStripeEvent(event)

	c.Status(http.StatusOK)
}

// handleStripeEvent solde la facture référencée dans les métadonnées du
// PaymentIntent. Un événement rejoué est absorbé (même payment_intent_id).
func handleStripeEvent(event stripe.Event) {
	if event.Type != "payment_intent.succeeded" {
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		log.Println("❌ Erreur décodage PaymentIntent:", err)
		return
	}
	log.Printf("🧠 PaymentIntent reçu : %s", pi.ID)

	invoiceID := pi.Metadata["invoice_id"]
	if invoiceID == "" {
		log.Println("⚠️ PaymentIntent sans invoice_id, ignoré")
		return
	}

	invoiceUUID, err := uuid.Parse(invoiceID)
	if err != nil {
		log.Printf("⚠️ invoice_id invalide dans les métadonnées: %s", invoiceID)
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		log.Printf("❌ Erreur session ScyllaDB: %v", err)
		return
	}

	inv, err := loadInvoice(session, gocql.UUID(invoiceUUID))
	if err != nil {
		log.Printf("❌ Facture %s introuvable: %v", invoiceID, err)
		return
	}

	// webhook rejoué : le paiement est déjà comptabilisé
	if inv.PaymentIntentID == pi.ID {
		log.Printf("🔁 Paiement %s déjà enregistré, on ignore.", pi.ID)
		return
	}

	amount := decimal.NewFromInt(pi.Amount).Div(decimal.NewFromInt(100))
	newPaid := decimal.NewFromFloat(inv.AmountPaid).Add(amount).Round(2)
	total := decimal.NewFromFloat(inv.Total)

	target, err := settleStatus(inv.Status, newPaid, total)
	if err != nil {
		log.Printf("⚠️ Paiement Stripe sur facture %s au statut %s: %v", inv.InvoiceNumber, inv.Status, err)
		return
	}

	if err := session.Query("UPDATE invoices SET amount_paid = ?, status = ?, payment_intent_id = ?, updated_at = ? WHERE invoice_id = ?",
		newPaid.InexactFloat64(), target.String(), pi.ID, time.Now(), inv.ID).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour facture après paiement: %v", err)
		return
	}

	log.Printf("✅ Facture %s → %s (%.2f€ encaissés)", inv.InvoiceNumber, target, newPaid.InexactFloat64())
}
