package billing

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
	"pawcare_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errCouponNotFound = errors.New("coupon introuvable")

// findCouponByCode retrouve un coupon par son code (insensible à la casse)
func findCouponByCode(session *gocql.Session, code string) (models.DiscountCoupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var cp models.DiscountCoupon
	err := session.Query(`SELECT coupon_id, code, type, value, max_uses, used_count, expires_at, is_active, created_by, created_at, updated_at
		FROM coupons WHERE code = ? ALLOW FILTERING`, code).Scan(
		&cp.ID, &cp.Code, &cp.Type, &cp.Value, &cp.MaxUses, &cp.UsedCount,
		&cp.ExpiresAt, &cp.IsActive, &cp.CreatedBy, &cp.CreatedAt, &cp.UpdatedAt)
	if err != nil {
		return models.DiscountCoupon{}, errCouponNotFound
	}
	return cp, nil
}

// CreateCoupon crée un coupon de réduction (admin)
func CreateCoupon(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Code      string    `json:"code" binding:"required,min=3,max=32"`
		Type      string    `json:"type" binding:"required"`
		Value     float64   `json:"value" binding:"required,gt=0"`
		MaxUses   int       `json:"max_uses"` // 0 = illimité
		ExpiresAt time.Time `json:"expires_at" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if req.Type != models.CouponPercentage && req.Type != models.CouponFixedAmount {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type de coupon invalide (percentage ou fixed_amount)"})
		return
	}
	if req.Type == models.CouponPercentage && req.Value > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Un pourcentage ne peut pas dépasser 100"})
		return
	}
	if req.MaxUses < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_uses ne peut pas être négatif"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if _, err := findCouponByCode(session, code); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un coupon avec ce code existe déjà"})
		return
	}

	couponID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO coupons (coupon_id, code, type, value, max_uses, used_count, expires_at, is_active, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		couponID, code, req.Type, req.Value, req.MaxUses, 0, req.ExpiresAt, true, userID, now, now).Exec(); err != nil {
		log.Printf("❌ Erreur création coupon: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création coupon"})
		return
	}

	utils.LogAction(c, utils.ACTION_COUPON_CREATE, utils.RESOURCE_COUPON, couponID.String(), nil,
		gin.H{"code": code, "type": req.Type, "value": req.Value})
	log.Printf("🎟️ Coupon créé: %s (%s %.2f)", code, req.Type, req.Value)

	c.JSON(http.StatusCreated, gin.H{"coupon": models.DiscountCoupon{
		ID:        couponID,
		Code:      code,
		Type:      req.Type,
		Value:     req.Value,
		MaxUses:   req.MaxUses,
		ExpiresAt: req.ExpiresAt,
		IsActive:  true,
		CreatedBy: userID,
		CreatedAt: now,
		UpdatedAt: now,
	}})
}

// ListCoupons liste tous les coupons (admin)
func ListCoupons(c *gin.Context) {
	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := session.Query(`SELECT coupon_id, code, type, value, max_uses, used_count, expires_at, is_active, created_by, created_at, updated_at
		FROM coupons`).Iter()

	var coupons []models.DiscountCoupon
	var cp models.DiscountCoupon
	for iter.Scan(&cp.ID, &cp.Code, &cp.Type, &cp.Value, &cp.MaxUses, &cp.UsedCount,
		&cp.ExpiresAt, &cp.IsActive, &cp.CreatedBy, &cp.CreatedAt, &cp.UpdatedAt) {
		coupons = append(coupons, cp)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture coupons"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coupons": coupons, "count": len(coupons)})
}

// UpdateCoupon modifie un coupon (admin). Le code et le type sont immuables.
func UpdateCoupon(c *gin.Context) {
	couponUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID coupon invalide"})
		return
	}

	var req struct {
		Value     *float64   `json:"value"`
		MaxUses   *int       `json:"max_uses"`
		ExpiresAt *time.Time `json:"expires_at"`
		IsActive  *bool      `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var cp models.DiscountCoupon
	if err := session.Query(`SELECT code, value, max_uses, used_count, expires_at, is_active FROM coupons WHERE coupon_id = ?`,
		gocql.UUID(couponUUID)).Scan(&cp.Code, &cp.Value, &cp.MaxUses, &cp.UsedCount, &cp.ExpiresAt, &cp.IsActive); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon introuvable"})
		return
	}

	old := cp
	if req.Value != nil {
		if *req.Value <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "La valeur doit être strictement positive"})
			return
		}
		cp.Value = *req.Value
	}
	if req.MaxUses != nil {
		// le plafond ne descend jamais sous ce qui a déjà été consommé
		if err := cp.ValidateMaxUses(*req.MaxUses); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cp.MaxUses = *req.MaxUses
	}
	if req.ExpiresAt != nil {
		cp.ExpiresAt = *req.ExpiresAt
	}
	if req.IsActive != nil {
		cp.IsActive = *req.IsActive
	}

	if err := session.Query(`UPDATE coupons SET value = ?, max_uses = ?, expires_at = ?, is_active = ?, updated_at = ? WHERE coupon_id = ?`,
		cp.Value, cp.MaxUses, cp.ExpiresAt, cp.IsActive, time.Now(), gocql.UUID(couponUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour coupon"})
		return
	}

	utils.LogAction(c, utils.ACTION_COUPON_UPDATE, utils.RESOURCE_COUPON, couponUUID.String(), old, cp)
	c.JSON(http.StatusOK, gin.H{"message": "Coupon mis à jour"})
}

// DeleteCoupon désactive un coupon (admin). Les applications passées restent.
func DeleteCoupon(c *gin.Context) {
	couponUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID coupon invalide"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var code string
	if err := session.Query("SELECT code FROM coupons WHERE coupon_id = ?",
		gocql.UUID(couponUUID)).Scan(&code); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon introuvable"})
		return
	}

	if err := session.Query("UPDATE coupons SET is_active = ?, updated_at = ? WHERE coupon_id = ?",
		false, time.Now(), gocql.UUID(couponUUID)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur désactivation coupon"})
		return
	}

	utils.LogAction(c, utils.ACTION_COUPON_DELETE, utils.RESOURCE_COUPON, couponUUID.String(),
		gin.H{"code": code}, gin.H{"is_active": false})
	c.JSON(http.StatusOK, gin.H{"message": "Coupon désactivé"})
}

// ValidateCoupon vérifie un code pour un montant donné, sans rien consommer
func ValidateCoupon(c *gin.Context) {
	var req struct {
		Code         string  `json:"code" binding:"required"`
		BookingTotal float64 `json:"booking_total" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	cp, err := findCouponByCode(session, req.Code)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"validation": models.CouponValidation{
			IsValid:      false,
			ErrorMessage: "Coupon introuvable",
			Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		}})
		return
	}

	if err := cp.Eligibility(time.Now()); err != nil {
		c.JSON(http.StatusOK, gin.H{"validation": models.CouponValidation{
			IsValid:      false,
			ErrorMessage: err.Error(),
			Code:         cp.Code,
			Type:         cp.Type,
		}})
		return
	}

	c.JSON(http.StatusOK, gin.H{"validation": models.CouponValidation{
		IsValid:  true,
		Discount: cp.ComputeDiscount(req.BookingTotal),
		Type:     cp.Type,
		Code:     cp.Code,
	}})
}

// ApplyCoupon applique un coupon à une réservation du client connecté.
//
// Garanties :
//   - réappliquer un coupon sur une réservation qui en porte déjà un est
//     un conflit, même code ou pas : la remise n'est jamais re-consommée
//     et used_count ne bouge pas
//     (clé primaire (booking_id, coupon_id) + INSERT IF NOT EXISTS) ;
//   - au plus un coupon par réservation ;
//   - l'incrément de used_count est un compare-and-set LWT, jamais de
//     dépassement de max_uses même sous requêtes concurrentes.
func ApplyCoupon(c *gin.Context) {
	userID := c.GetString("user_id")

	bookingUUID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID réservation invalide"})
		return
	}

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetBookingsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// la réservation doit appartenir au client et ne pas être close
	var clientID, status string
	var totalPrice float64
	if err := session.Query("SELECT client_id, status, total_price FROM bookings WHERE booking_id = ?",
		gocql.UUID(bookingUUID)).Scan(&clientID, &status, &totalPrice); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Réservation introuvable"})
		return
	}
	if clientID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette réservation ne vous appartient pas"})
		return
	}
	if models.BookingStatus(status).IsTerminal() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Réservation close, coupon inapplicable"})
		return
	}

	cp, err := findCouponByCode(session, req.Code)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Coupon introuvable"})
		return
	}

	if err := cp.Eligibility(time.Now()); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	// un seul coupon par réservation, et rejouer une application est un
	// conflit : la remise déjà enregistrée ne doit jamais être re-consommée
	var existingCouponID gocql.UUID
	iter := session.Query("SELECT coupon_id FROM applied_coupons WHERE booking_id = ?",
		gocql.UUID(bookingUUID)).Iter()
	hasExisting := iter.Scan(&existingCouponID)
	_ = iter.Close()

	if hasExisting {
		c.JSON(http.StatusConflict, gin.H{"error": models.ReapplyError(existingCouponID, cp.ID).Error()})
		return
	}

	discount := cp.ComputeDiscount(totalPrice)
	now := time.Now()
	appliedID := gocql.TimeUUID()

	// trace d'application : IF NOT EXISTS ferme la course entre deux
	// requêtes simultanées, le perdant reçoit le même conflit
	applied, err := session.Query(`INSERT INTO applied_coupons (booking_id, coupon_id, applied_id, account_id, discount_amount, applied_at)
		VALUES (?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		gocql.UUID(bookingUUID), cp.ID, appliedID, userID, discount, now).MapScanCAS(map[string]interface{}{})
	if err != nil {
		log.Printf("❌ Erreur application coupon: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur application coupon"})
		return
	}
	if !applied {
		c.JSON(http.StatusConflict, gin.H{"error": models.ErrCouponAlreadyApplied.Error()})
		return
	}

	// consommation : compare-and-set sur used_count, avec retry en cas de
	// course, et retrait de la trace si le coupon s'épuise entre-temps
	for attempt := 0; attempt < 5; attempt++ {
		var current int
		if err := session.Query("SELECT used_count FROM coupons WHERE coupon_id = ?", cp.ID).Scan(&current); err != nil {
			break
		}
		if cp.MaxUses > 0 && current >= cp.MaxUses {
			_ = session.Query("DELETE FROM applied_coupons WHERE booking_id = ? AND coupon_id = ?",
				gocql.UUID(bookingUUID), cp.ID).Exec()
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": models.ErrCouponExhausted.Error()})
			return
		}

		ok, err := session.Query("UPDATE coupons SET used_count = ? WHERE coupon_id = ? IF used_count = ?",
			current+1, cp.ID, current).MapScanCAS(map[string]interface{}{})
		if err != nil {
			log.Printf("⚠️ Erreur LWT used_count: %v", err)
			break
		}
		if ok {
			utils.LogAction(c, utils.ACTION_COUPON_APPLY, utils.RESOURCE_COUPON, cp.ID.String(), nil,
				gin.H{"booking_id": bookingUUID.String(), "discount": discount})
			log.Printf("🎟️ Coupon %s appliqué à %s (-%.2f€)", cp.Code, bookingUUID, discount)

			newTotal := decimal.NewFromFloat(totalPrice).Sub(decimal.NewFromFloat(discount)).Round(2)
			if newTotal.IsNegative() {
				newTotal = decimal.Zero
			}
			c.JSON(http.StatusOK, gin.H{
				"message":   "Coupon appliqué",
				"discount":  discount,
				"new_total": newTotal.InexactFloat64(),
				"code":      cp.Code,
			})
			return
		}
		// un autre client a incrémenté entre la lecture et le CAS
	}

	// impossible de consommer proprement : on retire la trace
	_ = session.Query("DELETE FROM applied_coupons WHERE booking_id = ? AND coupon_id = ?",
		gocql.UUID(bookingUUID), cp.ID).Exec()
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur application coupon, réessayez"})
}

// AppliedCouponForBooking retourne la remise appliquée à une réservation,
// 0 si aucune. Utilisé par la génération de facture.
func AppliedCouponForBooking(session *gocql.Session, bookingID gocql.UUID) float64 {
	var discount float64
	iter := session.Query("SELECT discount_amount FROM applied_coupons WHERE booking_id = ?", bookingID).Iter()
	iter.Scan(&discount)
	_ = iter.Close()
	return discount
}
