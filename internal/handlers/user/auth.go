package user

import (
	"log"
	"net/http"
	"time"

	"pawcare_back_end/internal/cache"
	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
	"pawcare_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// ================== AUTH LOCALE ==================

// Register crée un compte local (client ou sitter)
func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Role     string `json:"role"` // "client" (défaut) ou "sitter"
		Phone    string `json:"phone"`
		City     string `json:"city"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	// le rôle admin ne s'obtient jamais à l'inscription
	role := models.RoleClient
	if input.Role == models.RoleSitter {
		role = models.RoleSitter
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// email déjà pris ?
	var existingID gocql.UUID
	if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", input.Email).Scan(&existingID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	userID := gocql.TimeUUID()
	now := time.Now()

	if err := session.Query(`INSERT INTO users (user_id, email, password, name, role, provider, provider_id, phone, city, stripe_customer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, input.Email, hashedPassword, input.Name, role, "local", "",
		input.Phone, input.City, "", now, now).Exec(); err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	if err := session.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)",
		input.Email, userID).Exec(); err != nil {
		log.Printf("⚠️ Erreur index users_by_email: %v", err)
	}

	user := models.User{
		ID:       userID.String(),
		Name:     input.Name,
		Email:    input.Email,
		Role:     role,
		Provider: "local",
		Phone:    input.Phone,
		City:     input.City,
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	utils.LogAction(c, utils.ACTION_USER_CREATE, utils.RESOURCE_USER, user.ID, nil, gin.H{"email": user.Email, "role": role})
	log.Printf("✅ Compte créé: %s (%s)", user.Email, role)

	c.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
	})
}

// Login authentifie un compte local
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var userID gocql.UUID
	if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", input.Email).Scan(&userID); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	var (
		email, password, name, role, provider string
		phone, city                           string
	)
	if err := session.Query(`SELECT email, password, name, role, provider, phone, city
		FROM users WHERE user_id = ?`, userID).Scan(
		&email, &password, &name, &role, &provider, &phone, &city); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, password)
	if err != nil || !ok {
		utils.LogFailedAction(c, utils.ACTION_LOGIN_FAILED, utils.RESOURCE_AUTH, input.Email, "mot de passe incorrect")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	user := models.User{
		ID:       userID.String(),
		Email:    email,
		Name:     name,
		Role:     role,
		Provider: provider,
		Phone:    phone,
		City:     city,
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"user_id": user.ID,
		"email":   user.Email,
		"name":    user.Name,
		"role":    user.Role,
	})
}

// ================== PROFIL ==================

// GetMe retourne le profil du compte connecté (via cache Redis)
func GetMe(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe met à jour le profil du compte connecté
func UpdateMe(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Name  *string `json:"name"`
		Phone *string `json:"phone"`
		City  *string `json:"city"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	current, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	name, phone, city := current.Name, current.Phone, current.City
	if req.Name != nil {
		name = *req.Name
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.City != nil {
		city = *req.City
	}

	if err := session.Query("UPDATE users SET name = ?, phone = ?, city = ?, updated_at = ? WHERE user_id = ?",
		name, phone, city, time.Now(), gocql.UUID(uid)).Exec(); err != nil {
		log.Printf("❌ Erreur mise à jour utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour"})
		return
	}

	cache.InvalidateUserCache(userID)
	utils.LogAction(c, utils.ACTION_USER_UPDATE, utils.RESOURCE_USER, userID, current, gin.H{"name": name, "phone": phone, "city": city})

	c.JSON(http.StatusOK, gin.H{"message": "Profil mis à jour"})
}

// AssignRole change le rôle d'un compte (admin seulement)
func AssignRole(c *gin.Context) {
	targetID := c.Param("id")

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	if req.Role != models.RoleClient && req.Role != models.RoleSitter && req.Role != models.RoleAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rôle invalide"})
		return
	}

	uid, err := uuid.Parse(targetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID utilisateur invalide"})
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query("UPDATE users SET role = ?, updated_at = ? WHERE user_id = ?",
		req.Role, time.Now(), gocql.UUID(uid)).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour rôle"})
		return
	}

	cache.InvalidateUserCache(targetID)
	utils.LogAction(c, utils.ACTION_ROLE_ASSIGN, utils.RESOURCE_USER, targetID, nil, gin.H{"role": req.Role})

	c.JSON(http.StatusOK, gin.H{"message": "Rôle mis à jour", "role": req.Role})
}
