package sitter

import (
	"log"
	"net/http"
	"time"

	"pawcare_back_end/internal/cache"
	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
	services "pawcare_back_end/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// CreateProfile crée le profil public d'un sitter (un seul par compte)
func CreateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		DisplayName  string   `json:"display_name" binding:"required"`
		Bio          string   `json:"bio"`
		City         string   `json:"city" binding:"required"`
		ServiceTypes []string `json:"service_types"`
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

	// un seul profil par compte
	var existingID gocql.UUID
	if err := session.Query("SELECT sitter_id FROM sitter_profiles WHERE user_id = ? ALLOW FILTERING",
		userID).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Vous avez déjà un profil sitter"})
		return
	}

	sitterID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO sitter_profiles (sitter_id, user_id, display_name, bio, city, service_types, photo_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sitterID, userID, req.DisplayName, req.Bio, req.City, req.ServiceTypes, "", true, now, now).Exec(); err != nil {
		log.Printf("❌ Erreur création profil sitter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création profil"})
		return
	}

	profile := models.SitterProfile{
		ID:           sitterID,
		UserID:       userID,
		DisplayName:  req.DisplayName,
		Bio:          req.Bio,
		City:         req.City,
		ServiceTypes: req.ServiceTypes,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// indexation asynchrone, la recherche peut tolérer un léger retard
	go services.IndexSitter(profile)
	cache.InvalidateSitterCache(sitterID.String())

	log.Printf("✅ Profil sitter créé: %s (%s)", req.DisplayName, req.City)
	c.JSON(http.StatusCreated, gin.H{"profile": profile})
}

// GetProfile retourne un profil sitter public avec sa note moyenne
func GetProfile(c *gin.Context) {
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

	var p models.SitterProfile
	p.ID = gocql.UUID(sitterUUID)
	if err := session.Query(`SELECT user_id, display_name, bio, city, service_types, photo_url, is_active, created_at, updated_at
		FROM sitter_profiles WHERE sitter_id = ?`, gocql.UUID(sitterUUID)).Scan(
		&p.UserID, &p.DisplayName, &p.Bio, &p.City, &p.ServiceTypes, &p.PhotoURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profil sitter introuvable"})
		return
	}

	rating := computeSitterRating(session, p.ID)

	c.JSON(http.StatusOK, gin.H{"profile": p, "rating": rating})
}

// GetMyProfile retourne le profil sitter du compte connecté
func GetMyProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var p models.SitterProfile
	if err := session.Query(`SELECT sitter_id, display_name, bio, city, service_types, photo_url, is_active, created_at, updated_at
		FROM sitter_profiles WHERE user_id = ? ALLOW FILTERING`, userID).Scan(
		&p.ID, &p.DisplayName, &p.Bio, &p.City, &p.ServiceTypes, &p.PhotoURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun profil sitter pour ce compte"})
		return
	}
	p.UserID = userID

	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// UpdateProfile modifie le profil sitter du compte connecté
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		DisplayName  *string   `json:"display_name"`
		Bio          *string   `json:"bio"`
		City         *string   `json:"city"`
		ServiceTypes *[]string `json:"service_types"`
		IsActive     *bool     `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var p models.SitterProfile
	if err := session.Query(`SELECT sitter_id, display_name, bio, city, service_types, photo_url, is_active, created_at
		FROM sitter_profiles WHERE user_id = ? ALLOW FILTERING`, userID).Scan(
		&p.ID, &p.DisplayName, &p.Bio, &p.City, &p.ServiceTypes, &p.PhotoURL, &p.IsActive, &p.CreatedAt); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun profil sitter pour ce compte"})
		return
	}
	p.UserID = userID

	wasActive := p.IsActive
	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.City != nil {
		p.City = *req.City
	}
	if req.ServiceTypes != nil {
		p.ServiceTypes = *req.ServiceTypes
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = time.Now()

	if err := session.Query(`UPDATE sitter_profiles SET display_name = ?, bio = ?, city = ?, service_types = ?, is_active = ?, updated_at = ?
		WHERE sitter_id = ?`,
		p.DisplayName, p.Bio, p.City, p.ServiceTypes, p.IsActive, p.UpdatedAt, p.ID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour profil"})
		return
	}

	// resynchronise l'index de recherche
	if p.IsActive {
		go services.IndexSitter(p)
	} else if wasActive {
		go services.RemoveSitterFromIndex(p.ID.String())
	}
	cache.InvalidateSitterCache(p.ID.String())

	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour", "profile": p})
}

// UploadProfilePhoto stocke la photo de profil du sitter dans MinIO
func UploadProfilePhoto(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetSittersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var sitterID gocql.UUID
	if err := session.Query("SELECT sitter_id FROM sitter_profiles WHERE user_id = ? ALLOW FILTERING",
		userID).Scan(&sitterID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucun profil sitter pour ce compte"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier photo manquant"})
		return
	}

	url, err := services.UploadSitterPhoto(sitterID.String(), file)
	if err != nil {
		log.Printf("❌ Erreur upload photo MinIO: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload photo"})
		return
	}

	if err := session.Query("UPDATE sitter_profiles SET photo_url = ?, updated_at = ? WHERE sitter_id = ?",
		url, time.Now(), sitterID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement photo"})
		return
	}

	log.Printf("🪣 Photo de profil uploadée pour sitter %s", sitterID)
	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

// SearchSitters recherche plein texte via Elasticsearch
func SearchSitters(c *gin.Context) {
	query := c.Query("q")
	city := c.Query("city")

	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre de recherche manquant"})
		return
	}

	results, err := services.SearchSitters(query, city)
	if err != nil {
		log.Printf("❌ Erreur recherche Elastic: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Recherche momentanément indisponible"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}

// computeSitterRating agrège les avis d'un sitter
func computeSitterRating(session *gocql.Session, sitterID gocql.UUID) models.SitterRating {
	iter := session.Query("SELECT rating FROM reviews WHERE sitter_id = ? ALLOW FILTERING", sitterID).Iter()

	var rating, total, sum int
	for iter.Scan(&rating) {
		total++
		sum += rating
	}
	_ = iter.Close()

	result := models.SitterRating{SitterID: sitterID, TotalReviews: total}
	if total > 0 {
		result.AverageRating = float64(sum) / float64(total)
	}
	return result
}
