package sitter

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
)

// CreateReview dépose un avis sur un sitter. Réservé au client d'une
// réservation terminée, un seul avis par réservation.
func CreateReview(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		BookingID string `json:"booking_id" binding:"required"`
		Rating    int    `json:"rating" binding:"required,min=1,max=5"`
		Comment   string `json:"comment" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	bookingUUID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	bookingsSession, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var clientID string
	var sitterID gocql.UUID
	var status string
	if err := bookingsSession.Query("SELECT client_id, sitter_id, status FROM bookings WHERE booking_id = ?",
		gocql.UUID(bookingUUID)).Scan(&clientID, &sitterID, &status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}
	if clientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette réservation ne vous appartient pas"})
		return
	}
	if models.BookingStatus(status) != models.BookingCompleted {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Seule une réservation terminée peut être évaluée"})
		return
	}

	sittersSession, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// un seul avis par réservation
	var existingID gocql.UUID
	if err := sittersSession.Query("SELECT review_id FROM reviews WHERE booking_id = ? ALLOW FILTERING",
		gocql.UUID(bookingUUID)).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un avis existe déjà pour cette réservation"})
		return
	}

	clientName := ""
	if u, err := cache.GetUserFromCache(userID); err == nil {
		clientName = u.Name
	}

	reviewID := gocql.TimeUUID()
	now := time.Now()

	if err := sittersSession.Query(`INSERT INTO reviews (review_id, sitter_id, booking_id, client_id, client_name, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reviewID, sitterID, gocql.UUID(bookingUUID), userID, clientName, req.Rating, req.Comment, now).Exec(); err != nil {
		log.Printf("❌ Erreur création avis: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création avis"})
		return
	}

	log.Printf("⭐ Avis %d/5 déposé pour sitter %s (réservation %s)", req.Rating, sitterID, req.BookingID)

	c.JSON(http.StatusCreated, gin.H{"review": models.Review{
		ID:         reviewID,
		SitterID:   sitterID,
		BookingID:  gocql.UUID(bookingUUID),
		ClientID:   userID,
		ClientName: clientName,
		Rating:     req.Rating,
		Comment:    req.Comment,
		CreatedAt:  now,
	}})
}

// GetSitterReviews liste les avis d'un sitter avec la moyenne
func GetSitterReviews(c *gin.Context) {
	sitterID := c.Param("id")

	sitterUUID, err := uuid.Parse(sitterID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID sitter invalide"})
		return
	}

	session, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT review_id, booking_id, client_id, client_name, rating, comment, created_at
		FROM reviews WHERE sitter_id = ? ALLOW FILTERING`, gocql.UUID(sitterUUID)).Iter()

	var reviews []models.Review
	var r models.Review
	for iter.Scan(&r.ID, &r.BookingID, &r.ClientID, &r.ClientName, &r.Rating, &r.Comment, &r.CreatedAt) {
		r.SitterID = gocql.UUID(sitterUUID)
		reviews = append(reviews, r)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture avis"})
		return
	}

	rating := computeSitterRating(session, gocql.UUID(sitterUUID))

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"count":   len(reviews),
		"rating":  rating,
	})
}
