package user

import (
	"log"
	"net/http"
	"time"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
	services "pawcare_back_end/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// CreatePet enregistre un animal pour le compte connecté
func CreatePet(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Name      string     `json:"name" binding:"required"`
		Species   string     `json:"species" binding:"required"`
		Breed     string     `json:"breed"`
		BirthDate *time.Time `json:"birth_date"`
		Notes     string     `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	petID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO pets (pet_id, owner_id, name, species, breed, birth_date, notes, photo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		petID, userID, req.Name, req.Species, req.Breed, req.BirthDate, req.Notes, "", now, now).Exec(); err != nil {
		log.Printf("❌ Erreur création animal: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création animal"})
		return
	}

	log.Printf("🐾 Animal créé: %s (%s) pour %s", req.Name, req.Species, userID)

	c.JSON(http.StatusCreated, gin.H{"pet": models.Pet{
		ID:        petID,
		OwnerID:   userID,
		Name:      req.Name,
		Species:   req.Species,
		Breed:     req.Breed,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}})
}

// GetMyPets liste les animaux du compte connecté
func GetMyPets(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT pet_id, name, species, breed, birth_date, notes, photo_url, created_at, updated_at
		FROM pets WHERE owner_id = ? ALLOW FILTERING`, userID).Iter()

	var pets []models.Pet
	var pet models.Pet
	for iter.Scan(&pet.ID, &pet.Name, &pet.Species, &pet.Breed, &pet.BirthDate, &pet.Notes, &pet.PhotoURL, &pet.CreatedAt, &pet.UpdatedAt) {
		pet.OwnerID = userID
		pets = append(pets, pet)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture animaux"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pets": pets, "count": len(pets)})
}

// UpdatePet modifie un animal (propriétaire uniquement)
func UpdatePet(c *gin.Context) {
	userID := c.GetString("user_id")
	petID := c.Param("id")

	petUUID, err := uuid.Parse(petID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID animal invalide"})
		return
	}

	var req struct {
		Name      *string    `json:"name"`
		Breed     *string    `json:"breed"`
		BirthDate *time.Time `json:"birth_date"`
		Notes     *string    `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var pet models.Pet
	if err := session.Query(`SELECT owner_id, name, breed, birth_date, notes FROM pets WHERE pet_id = ?`,
		gocql.UUID(petUUID)).Scan(&pet.OwnerID, &pet.Name, &pet.Breed, &pet.BirthDate, &pet.Notes); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Animal introuvable"})
		return
	}
	if pet.OwnerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cet animal ne vous appartient pas"})
		return
	}

	if req.Name != nil {
		pet.Name = *req.Name
	}
	if req.Breed != nil {
		pet.Breed = *req.Breed
	}
	if req.BirthDate != nil {
		pet.BirthDate = req.BirthDate
	}
	if req.Notes != nil {
		pet.Notes = *req.Notes
	}

	if err := session.Query(`UPDATE pets SET name = ?, breed = ?, birth_date = ?, notes = ?, updated_at = ? WHERE pet_id = ?`,
		pet.Name, pet.Breed, pet.BirthDate, pet.Notes, time.Now(), gocql.UUID(petUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour animal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Animal mis à jour"})
}

// UploadPetPhoto reçoit la photo (multipart) et la stocke dans MinIO
func UploadPetPhoto(c *gin.Context) {
	userID := c.GetString("user_id")
	petID := c.Param("id")

	petUUID, err := uuid.Parse(petID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID animal invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var ownerID string
	if err := session.Query("SELECT owner_id FROM pets WHERE pet_id = ?", gocql.UUID(petUUID)).Scan(&ownerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Animal introuvable"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cet animal ne vous appartient pas"})
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier photo manquant"})
		return
	}

	url, err := services.UploadPetPhoto(petID, file)
	if err != nil {
		log.Printf("❌ Erreur upload photo MinIO: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload photo"})
		return
	}

	if err := session.Query("UPDATE pets SET photo_url = ?, updated_at = ? WHERE pet_id = ?",
		url, time.Now(), gocql.UUID(petUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur enregistrement photo"})
		return
	}

	log.Printf("🪣 Photo uploadée pour animal %s", petID)
	c.JSON(http.StatusOK, gin.H{"photo_url": url})
}

// DeletePet supprime un animal (propriétaire uniquement)
func DeletePet(c *gin.Context) {
	userID := c.GetString("user_id")
	petID := c.Param("id")

	petUUID, err := uuid.Parse(petID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID animal invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var ownerID string
	if err := session.Query("SELECT owner_id FROM pets WHERE pet_id = ?", gocql.UUID(petUUID)).Scan(&ownerID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Animal introuvable"})
		return
	}
	if ownerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cet animal ne vous appartient pas"})
		return
	}

	if err := session.Query("DELETE FROM pets WHERE pet_id = ?", gocql.UUID(petUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression animal"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Animal supprimé"})
}
