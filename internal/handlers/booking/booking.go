package booking

import (
	"log"
	"net/http"
	"time"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/handlers/billing"
	"pawcare_back_end/internal/models"
	"pawcare_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// CreateBooking réserve une prestation pour un animal du client connecté.
// Le prix et la durée de l'offre sont copiés dans la réservation : une
// modification ultérieure de l'offre n'affecte jamais cette réservation.
func CreateBooking(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		PetID      string    `json:"pet_id" binding:"required"`
		OfferingID string    `json:"offering_id" binding:"required"`
		StartTime  time.Time `json:"start_time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if req.StartTime.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La date de début est déjà passée"})
		return
	}

	petUUID, err := uuid.Parse(req.PetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID animal invalide"})
		return
	}
	offeringUUID, err := uuid.Parse(req.OfferingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID prestation invalide"})
		return
	}

	// l'animal doit appartenir au client
	usersSession, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	var ownerID string
	if err := usersSession.Query("SELECT owner_id FROM pets WHERE pet_id = ?",
		gocql.UUID(petUUID)).Scan(&ownerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Animal introuvable"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cet animal ne vous appartient pas"})
		return
	}

	// la prestation doit exister et être active
	sittersSession, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	var sitterID gocql.UUID
	var price float64
	var durationMinutes int
	var isActive bool
	if err := sittersSession.Query(`SELECT sitter_id, price, duration_minutes, is_active
		FROM service_offerings WHERE offering_id = ?`, gocql.UUID(offeringUUID)).Scan(
		&sitterID, &price, &durationMinutes, &isActive); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prestation introuvable"})
		return
	}
	if !isActive {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cette prestation n'est plus proposée"})
		return
	}

	bookingsSession, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	bookingID := gocql.TimeUUID()
	now := time.Now()
	endTime := req.StartTime.Add(time.Duration(durationMinutes) * time.Minute)

	if err := bookingsSession.Query(`INSERT INTO bookings (booking_id, client_id, pet_id, sitter_id, offering_id, start_time, end_time, total_price, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bookingID, userID, gocql.UUID(petUUID), sitterID, gocql.UUID(offeringUUID),
		req.StartTime, endTime, price, models.BookingPending.String(), now).Exec(); err != nil {
		log.Printf("❌ Erreur création réservation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création réservation"})
		return
	}

	booking := models.Booking{
		ID:         bookingID,
		ClientID:   userID,
		PetID:      gocql.UUID(petUUID),
		SitterID:   sitterID,
		OfferingID: gocql.UUID(offeringUUID),
		StartTime:  req.StartTime,
		EndTime:    endTime,
		TotalPrice: price,
		Status:     models.BookingPending,
		CreatedAt:  now,
	}

	utils.LogAction(c, utils.ACTION_BOOKING_CREATE, utils.RESOURCE_BOOKING, bookingID.String(), nil, booking)
	log.Printf("✅ Réservation créée: %s (%.2f€) pour %s", bookingID, price, userID)

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// loadBooking récupère une réservation complète par ID
func loadBooking(bookingID gocql.UUID) (models.Booking, error) {
	session, err := database.GetBookingsSession()
	if err != nil {
		return models.Booking{}, err
	}

	b := models.Booking{ID: bookingID}
	var status string
	err = session.Query(`SELECT client_id, pet_id, sitter_id, offering_id, start_time, end_time, total_price, status, created_at, updated_at
		FROM bookings WHERE booking_id = ?`, bookingID).Scan(
		&b.ClientID, &b.PetID, &b.SitterID, &b.OfferingID, &b.StartTime, &b.EndTime,
		&b.TotalPrice, &status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return models.Booking{}, err
	}
	b.Status = models.BookingStatus(status)
	return b, nil
}

// canViewBooking : client de la réservation, sitter concerné, ou admin
func canViewBooking(c *gin.Context, b models.Booking) bool {
	userID := c.GetString("user_id")
	role := c.GetString("role")

	if role == models.RoleAdmin || b.ClientID == userID {
		return true
	}

	// le sitter est identifié par son profil, pas par son user_id
	sittersSession, err := database.GetSittersSession()
	if err != nil {
		return false
	}
	var sitterUserID string
	if err := sittersSession.Query("SELECT user_id FROM sitter_profiles WHERE sitter_id = ?",
		b.SitterID).Scan(&sitterUserID); err != nil {
		return false
	}
	return sitterUserID == userID
}

// GetBooking retourne une réservation (parties prenantes uniquement)
func GetBooking(c *gin.Context) {
	bookingUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	b, err := loadBooking(gocql.UUID(bookingUUID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if !canViewBooking(c, b) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette réservation ne vous concerne pas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// GetMyBookings liste les réservations du client connecté
func GetMyBookings(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT booking_id, pet_id, sitter_id, offering_id, start_time, end_time, total_price, status, created_at, updated_at
		FROM bookings WHERE client_id = ? ALLOW FILTERING`, userID).Iter()

	var bookings []models.Booking
	var b models.Booking
	var status string
	for iter.Scan(&b.ID, &b.PetID, &b.SitterID, &b.OfferingID, &b.StartTime, &b.EndTime, &b.TotalPrice, &status, &b.CreatedAt, &b.UpdatedAt) {
		b.ClientID = userID
		b.Status = models.BookingStatus(status)
		bookings = append(bookings, b)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture réservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetSitterBookings liste les réservations reçues par le sitter connecté
func GetSitterBookings(c *gin.Context) {
	userID := c.GetString("user_id")

	sittersSession, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	var sitterID gocql.UUID
	if err := sittersSession.Query("SELECT sitter_id FROM sitter_profiles WHERE user_id = ? ALLOW FILTERING",
		userID).Scan(&sitterID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun profil sitter pour ce compte"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT booking_id, client_id, pet_id, offering_id, start_time, end_time, total_price, status, created_at, updated_at
		FROM bookings WHERE sitter_id = ? ALLOW FILTERING`, sitterID).Iter()

	var bookings []models.Booking
	var b models.Booking
	var status string
	for iter.Scan(&b.ID, &b.ClientID, &b.PetID, &b.OfferingID, &b.StartTime, &b.EndTime, &b.TotalPrice, &status, &b.CreatedAt, &b.UpdatedAt) {
		b.SitterID = sitterID
		b.Status = models.BookingStatus(status)
		bookings = append(bookings, b)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture réservations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// TransitionBooking fait avancer une réservation dans son cycle de vie.
// La légalité de la transition et le rôle de l'acteur sont vérifiés par la
// machine à états, l'appartenance à la réservation est vérifiée ici.
func TransitionBooking(c *gin.Context) {
	role := c.GetString("role")

	bookingUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	target, err := models.ParseBookingStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := loadBooking(gocql.UUID(bookingUUID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}

	if !canViewBooking(c, b) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette réservation ne vous concerne pas"})
		return
	}

	if err := b.Status.Transition(target, role); err != nil {
		utils.LogFailedAction(c, utils.ACTION_BOOKING_TRANSITION, utils.RESOURCE_BOOKING, b.ID.String(), err.Error())
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "status": b.Status})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	now := time.Now()
	if err := session.Query("UPDATE bookings SET status = ?, updated_at = ? WHERE booking_id = ?",
		target.String(), now, b.ID).Exec(); err != nil {
		log.Printf("❌ Erreur transition réservation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour réservation"})
		return
	}

	utils.LogAction(c, utils.ACTION_BOOKING_TRANSITION, utils.RESOURCE_BOOKING, b.ID.String(),
		gin.H{"status": b.Status}, gin.H{"status": target})
	log.Printf("✅ Réservation %s: %s → %s (%s)", b.ID, b.Status, target, role)

	// notifie les websockets abonnés
	go hub.broadcast(b.ID.String(), target.String())

	// la fin de prestation déclenche la facturation, sans jamais bloquer
	// ni annuler la transition si la génération échoue
	if target == models.BookingCompleted {
		go func(bookingID gocql.UUID) {
			if _, err := billing.GenerateInvoiceForBooking(bookingID); err != nil {
				log.Printf("❌ Génération facture échouée pour %s: %v", bookingID, err)
				billing.QueueInvoiceRetry(bookingID.String())
			}
		}(b.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Statut mis à jour",
		"status":  target,
	})
}
