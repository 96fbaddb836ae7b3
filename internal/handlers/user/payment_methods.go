package user

import (
	"log"
	"net/http"
	"time"

	"pawcare_back_end/internal/cache"
	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/customer"
	"github.com/stripe/stripe-go/v83/paymentmethod"
	"github.com/stripe/stripe-go/v83/setupintent"
)

// ensureStripeCustomer retourne le customer Stripe du compte,
// en le créant à la volée si besoin (création paresseuse).
func ensureStripeCustomer(userID string) (string, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return "", err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", err
	}

	var stripeCustomerID, email, name string
	if err := session.Query("SELECT stripe_customer_id, email, name FROM users WHERE user_id = ?",
		gocql.UUID(uid)).Scan(&stripeCustomerID, &email, &name); err != nil {
		return "", err
	}

	if stripeCustomerID != "" {
		return stripeCustomerID, nil
	}

	cust, err := customer.New(&stripe.CustomerParams{
		Email: stripe.String(email),
		Name:  stripe.String(name),
		Metadata: map[string]string{
			"user_id": userID,
		},
	})
	if err != nil {
		return "", err
	}

	if err := session.Query("UPDATE users SET stripe_customer_id = ?, updated_at = ? WHERE user_id = ?",
		cust.ID, time.Now(), gocql.UUID(uid)).Exec(); err != nil {
		log.Printf("⚠️ Erreur enregistrement stripe_customer_id: %v", err)
	}
	cache.InvalidateUserCache(userID)

	log.Printf("💳 Customer Stripe créé: %s pour %s", cust.ID, email)
	return cust.ID, nil
}

// CreateSetupIntent prépare l'enregistrement d'une carte côté Stripe.
// Le front confirme le SetupIntent avec Stripe.js, le numéro de carte
// ne transite jamais par notre serveur.
func CreateSetupIntent(c *gin.Context) {
	userID := c.GetString("user_id")

	customerID, err := ensureStripeCustomer(userID)
	if err != nil {
		log.Printf("❌ Erreur customer Stripe: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur initialisation paiement"})
		return
	}

	intent, err := setupintent.New(&stripe.SetupIntentParams{
		Customer:           stripe.String(customerID),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	})
	if err != nil {
		log.Printf("❌ Erreur Stripe SetupIntent: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur Stripe"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"setupId":      intent.ID,
	})
}

// AttachPaymentMethod enregistre le moyen de paiement confirmé côté front
func AttachPaymentMethod(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		PaymentMethodID string `json:"payment_method_id" binding:"required"`
		IsDefault       bool   `json:"is_default"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	pm, err := paymentmethod.Get(req.PaymentMethodID, nil)
	if err != nil || pm.Card == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Moyen de paiement Stripe introuvable"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	pmID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO payment_methods (payment_method_id, account_id, stripe_payment_method_id, brand, last4, exp_month, exp_year, is_default, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pmID, userID, pm.ID, string(pm.Card.Brand), pm.Card.Last4,
		int(pm.Card.ExpMonth), int(pm.Card.ExpYear), req.IsDefault, now).Exec(); err != nil {
		log.Printf("❌ Erreur enregistrement moyen de paiement: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement"})
		return
	}

	log.Printf("💳 Moyen de paiement enregistré: %s •••• %s pour %s", pm.Card.Brand, pm.Card.Last4, userID)

	c.JSON(http.StatusCreated, gin.H{"payment_method": models.PaymentMethod{
		ID:        pmID,
		AccountID: userID,
		Brand:     string(pm.Card.Brand),
		Last4:     pm.Card.Last4,
		ExpMonth:  int(pm.Card.ExpMonth),
		ExpYear:   int(pm.Card.ExpYear),
		IsDefault: req.IsDefault,
		CreatedAt: now,
	}})
}

// GetMyPaymentMethods liste les moyens de paiement du compte
func GetMyPaymentMethods(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT payment_method_id, brand, last4, exp_month, exp_year, is_default, created_at
		FROM payment_methods WHERE account_id = ? ALLOW FILTERING`, userID).Iter()

	var methods []models.PaymentMethod
	var m models.PaymentMethod
	for iter.Scan(&m.ID, &m.Brand, &m.Last4, &m.ExpMonth, &m.ExpYear, &m.IsDefault, &m.CreatedAt) {
		m.AccountID = userID
		methods = append(methods, m)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture moyens de paiement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_methods": methods, "count": len(methods)})
}

// DetachPaymentMethod supprime un moyen de paiement (Stripe + base)
func DetachPaymentMethod(c *gin.Context) {
	userID := c.GetString("user_id")
	pmID := c.Param("id")

	pmUUID, err := uuid.Parse(pmID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID moyen de paiement invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var accountID, stripePMID string
	if err := session.Query("SELECT account_id, stripe_payment_method_id FROM payment_methods WHERE payment_method_id = ?",
		gocql.UUID(pmUUID)).Scan(&accountID, &stripePMID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Moyen de paiement introuvable"})
		return
	}
	if accountID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Ce moyen de paiement ne vous appartient pas"})
		return
	}

	if _, err := paymentmethod.Detach(stripePMID, nil); err != nil {
		log.Printf("⚠️ Erreur détachement Stripe: %v", err)
	}

	if err := session.Query("DELETE FROM payment_methods WHERE payment_method_id = ?",
		gocql.UUID(pmUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Moyen de paiement supprimé"})
}
