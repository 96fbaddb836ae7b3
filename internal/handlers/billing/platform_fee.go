package billing

import (
	"log"
	"net/http"
	"time"

	"pawcare_back_end/internal/billing"
	"pawcare_back_end/internal/cache"
	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
	"pawcare_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// ActivePlatformFee retourne le barème de commission actif le plus récent
// (cache Redis d'abord, ScyllaDB sinon). billing.ErrNoActiveFee si aucun.
func ActivePlatformFee() (models.PlatformFee, error) {
	if fee := cache.GetActiveFeeFromCache(); fee != nil {
		return *fee, nil
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		return models.PlatformFee{}, err
	}

	iter := session.Query(`SELECT fee_id, fee_percentage, effective_date, is_active, created_by, created_at
		FROM platform_fees`).Iter()

	now := time.Now()
	var best models.PlatformFee
	found := false

	var f models.PlatformFee
	for iter.Scan(&f.ID, &f.FeePercentage, &f.EffectiveDate, &f.IsActive, &f.CreatedBy, &f.CreatedAt) {
		if !f.IsActive || f.EffectiveDate.After(now) {
			continue
		}
		if !found || f.EffectiveDate.After(best.EffectiveDate) {
			best = f
			found = true
		}
	}
	if err := iter.Close(); err != nil {
		return models.PlatformFee{}, err
	}
	if !found {
		return models.PlatformFee{}, billing.ErrNoActiveFee
	}

	cache.SetActiveFeeCache(best)
	return best, nil
}

// CreatePlatformFee crée un nouveau barème de commission (admin).
// Le barème actif précédent est désactivé : un seul barème actif à la fois.
func CreatePlatformFee(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		FeePercentage float64    `json:"fee_percentage" binding:"required"`
		EffectiveDate *time.Time `json:"effective_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if req.FeePercentage < 0 || req.FeePercentage > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La commission doit être une fraction dans [0,1]"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	effectiveDate := time.Now()
	if req.EffectiveDate != nil {
		effectiveDate = *req.EffectiveDate
	}

	// désactive les barèmes actifs existants
	iter := session.Query("SELECT fee_id, is_active FROM platform_fees").Iter()
	var feeID gocql.UUID
	var isActive bool
	for iter.Scan(&feeID, &isActive) {
		if isActive {
			_ = session.Query("UPDATE platform_fees SET is_active = ? WHERE fee_id = ?", false, feeID).Exec()
		}
	}
	_ = iter.Close()

	newID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO platform_fees (fee_id, fee_percentage, effective_date, is_active, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		newID, req.FeePercentage, effectiveDate, true, userID, now).Exec(); err != nil {
		log.Printf("❌ Erreur création commission: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création commission"})
		return
	}

	cache.InvalidateActiveFeeCache()
	utils.LogAction(c, utils.ACTION_FEE_CREATE, utils.RESOURCE_PLATFORM_FEE, newID.String(), nil,
		gin.H{"fee_percentage": req.FeePercentage, "effective_date": effectiveDate})
	log.Printf("💰 Commission plateforme créée: %.2f%% effective %s", req.FeePercentage*100, effectiveDate.Format("2006-01-02"))

	c.JSON(http.StatusCreated, gin.H{"fee": models.PlatformFee{
		ID:            newID,
		FeePercentage: req.FeePercentage,
		EffectiveDate: effectiveDate,
		IsActive:      true,
		CreatedBy:     userID,
		CreatedAt:     now,
	}})
}

// GetActivePlatformFee retourne le barème actif (admin)
func GetActivePlatformFee(c *gin.Context) {
	fee, err := ActivePlatformFee()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aucune commission plateforme active"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": fee})
}

// ListPlatformFees liste l'historique des barèmes (admin)
func ListPlatformFees(c *gin.Context) {
	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT fee_id, fee_percentage, effective_date, is_active, created_by, created_at
		FROM platform_fees`).Iter()

	var fees []models.PlatformFee
	var f models.PlatformFee
	for iter.Scan(&f.ID, &f.FeePercentage, &f.EffectiveDate, &f.IsActive, &f.CreatedBy, &f.CreatedAt) {
		fees = append(fees, f)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"fees": fees, "count": len(fees)})
}

// DeactivatePlatformFee désactive un barème (admin)
func DeactivatePlatformFee(c *gin.Context) {
	feeUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commission invalide"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var isActive bool
	if err := session.Query("SELECT is_active FROM platform_fees WHERE fee_id = ?",
		gocql.UUID(feeUUID)).Scan(&isActive); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commission introuvable"})
		return
	}

	if err := session.Query("UPDATE platform_fees SET is_active = ? WHERE fee_id = ?",
		false, gocql.UUID(feeUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour"})
		return
	}

	cache.InvalidateActiveFeeCache()
	utils.LogAction(c, utils.ACTION_FEE_UPDATE, utils.RESOURCE_PLATFORM_FEE, feeUUID.String(),
		gin.H{"is_active": isActive}, gin.H{"is_active": false})

	c.JSON(http.StatusOK, gin.H{"message": "Commission désactivée"})
}
