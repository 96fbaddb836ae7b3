package sitter

import (
	"log"
	"net/http"
	"time"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// mySitterID retrouve le sitter_id du compte connecté, "" si aucun profil
func mySitterID(c *gin.Context) (gocql.UUID, bool) {
	session, err := database.GetSittersSession()
	if err != nil {
		return gocql.UUID{}, false
	}
	var sitterID gocql.UUID
	if err := session.Query("SELECT sitter_id FROM sitter_profiles WHERE user_id = ? ALLOW FILTERING",
		c.GetString("user_id")).Scan(&sitterID); err != nil {
		return gocql.UUID{}, false
	}
	return sitterID, true
}

// CreateOffering ajoute une prestation au catalogue du sitter connecté
func CreateOffering(c *gin.Context) {
	sitterID, ok := mySitterID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun profil sitter pour ce compte"})
		return
	}

	var req struct {
		Title           string  `json:"title" binding:"required"`
		Description     string  `json:"description"`
		Price           float64 `json:"price" binding:"required,gt=0"`
		DurationMinutes int     `json:"duration_minutes" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	session, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	offeringID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO service_offerings (offering_id, sitter_id, title, description, price, duration_minutes, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		offeringID, sitterID, req.Title, req.Description, req.Price, req.DurationMinutes, true, now, now).Exec(); err != nil {
		log.Printf("❌ Erreur création prestation: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création prestation"})
		return
	}

	log.Printf("✅ Prestation créée: %s (%.2f€ / %dmin)", req.Title, req.Price, req.DurationMinutes)

	c.JSON(http.StatusCreated, gin.H{"offering": models.ServiceOffering{
		ID:              offeringID,
		SitterID:        sitterID,
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}})
}

// GetSitterOfferings liste les prestations actives d'un sitter (public)
func GetSitterOfferings(c *gin.Context) {
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

	iter := session.Query(`SELECT offering_id, title, description, price, duration_minutes, is_active, created_at, updated_at
		FROM service_offerings WHERE sitter_id = ? ALLOW FILTERING`, gocql.UUID(sitterUUID)).Iter()

	var offerings []models.ServiceOffering
	var o models.ServiceOffering
	for iter.Scan(&o.ID, &o.Title, &o.Description, &o.Price, &o.DurationMinutes, &o.IsActive, &o.CreatedAt, &o.UpdatedAt) {
		if !o.IsActive {
			continue
		}
		o.SitterID = gocql.UUID(sitterUUID)
		offerings = append(offerings, o)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture prestations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"offerings": offerings, "count": len(offerings)})
}

// UpdateOffering modifie une prestation du sitter connecté
func UpdateOffering(c *gin.Context) {
	offeringID := c.Param("id")

	offeringUUID, err := uuid.Parse(offeringID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID prestation invalide"})
		return
	}

	sitterID, ok := mySitterID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun profil sitter pour ce compte"})
		return
	}

	var req struct {
		Title           *string  `json:"title"`
		Description     *string  `json:"description"`
		Price           *float64 `json:"price"`
		DurationMinutes *int     `json:"duration_minutes"`
		IsActive        *bool    `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le prix doit être strictement positif"})
		return
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La durée doit être strictement positive"})
		return
	}

	session, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var o models.ServiceOffering
	if err := session.Query(`SELECT sitter_id, title, description, price, duration_minutes, is_active
		FROM service_offerings WHERE offering_id = ?`, gocql.UUID(offeringUUID)).Scan(
		&o.SitterID, &o.Title, &o.Description, &o.Price, &o.DurationMinutes, &o.IsActive); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prestation introuvable"})
		return
	}
	if o.SitterID != sitterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette prestation ne vous appartient pas"})
		return
	}

	if req.Title != nil {
		o.Title = *req.Title
	}
	if req.Description != nil {
		o.Description = *req.Description
	}
	if req.Price != nil {
		o.Price = *req.Price
	}
	if req.DurationMinutes != nil {
		o.DurationMinutes = *req.DurationMinutes
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}

	// les réservations existantes gardent leur snapshot prix/durée
	if err := session.Query(`UPDATE service_offerings SET title = ?, description = ?, price = ?, duration_minutes = ?, is_active = ?, updated_at = ?
		WHERE offering_id = ?`,
		o.Title, o.Description, o.Price, o.DurationMinutes, o.IsActive, time.Now(), gocql.UUID(offeringUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour prestation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prestation mise à jour"})
}

// DeleteOffering désactive une prestation (soft delete, les réservations
// passées y font toujours référence)
func DeleteOffering(c *gin.Context) {
	offeringID := c.Param("id")

	offeringUUID, err := uuid.Parse(offeringID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID prestation invalide"})
		return
	}

	sitterID, ok := mySitterID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun profil sitter pour ce compte"})
		return
	}

	session, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var ownerSitterID gocql.UUID
	if err := session.Query("SELECT sitter_id FROM service_offerings WHERE offering_id = ?",
		gocql.UUID(offeringUUID)).Scan(&ownerSitterID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prestation introuvable"})
		return
	}
	if ownerSitterID != sitterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette prestation ne vous appartient pas"})
		return
	}

	if err := session.Query("UPDATE service_offerings SET is_active = ?, updated_at = ? WHERE offering_id = ?",
		false, time.Now(), gocql.UUID(offeringUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression prestation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prestation désactivée"})
}
