package user

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"
	"pawcare_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/facebook"
	"github.com/markbates/goth/providers/google"
)

// ================== AUTH SOCIALE (WEB) ==================

func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aucun provider spécifié"})
		return
	}

	redirectURL := c.Query("redirect_url")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	callbackURL := baseURL + "/api/auth/" + provider + "/callback"

	switch provider {
	case "google":
		goth.UseProviders(google.New(
			os.Getenv("GOOGLE_CLIENT_ID"),
			os.Getenv("GOOGLE_CLIENT_SECRET"),
			callbackURL,
		))
	case "facebook":
		goth.UseProviders(facebook.New(
			os.Getenv("FACEBOOK_CLIENT_ID"),
			os.Getenv("FACEBOOK_CLIENT_SECRET"),
			callbackURL,
		))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	ctx := context.Background()
	state := generateRandomState()
	if redirectURL != "" {
		_ = database.Redis.Set(ctx, "oauth_redirect:"+state, redirectURL, 10*time.Minute).Err()
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	q.Set("state", state)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	state := c.Query("state")
	code := c.Query("code")
	if provider == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres OAuth invalides"})
		return
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	var userEmail, userName, providerID string

	switch provider {
	case "google":
		clientID := os.Getenv("GOOGLE_CLIENT_ID")
		clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
		redirect := baseURL + "/api/auth/google/callback"

		data := url.Values{}
		data.Set("code", code)
		data.Set("client_id", clientID)
		data.Set("client_secret", clientSecret)
		data.Set("redirect_uri", redirect)
		data.Set("grant_type", "authorization_code")

		resp, err := http.PostForm("https://oauth2.googleapis.com/token", data)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur échange token Google"})
			return
		}
		defer resp.Body.Close()
		var tokenResp struct {
			AccessToken string `json:"access_token"`
		}
		json.NewDecoder(resp.Body).Decode(&tokenResp)

		userResp, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + tokenResp.AccessToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur userinfo Google"})
			return
		}
		defer userResp.Body.Close()
		var gu struct{ ID, Email, Name string }
		json.NewDecoder(userResp.Body).Decode(&gu)
		providerID, userEmail, userName = gu.ID, gu.Email, gu.Name

	case "facebook":
		clientID := os.Getenv("FACEBOOK_CLIENT_ID")
		clientSecret := os.Getenv("FACEBOOK_CLIENT_SECRET")
		redirect := baseURL + "/api/auth/facebook/callback"

		tokenURL := fmt.Sprintf("https://graph.facebook.com/v12.0/oauth/access_token?client_id=%s&redirect_uri=%s&client_secret=%s&code=%s",
			clientID, url.QueryEscape(redirect), clientSecret, code)
		resp, err := http.Get(tokenURL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur échange token Facebook"})
			return
		}
		defer resp.Body.Close()
		var tokenResp struct {
			AccessToken string `json:"access_token"`
		}
		json.NewDecoder(resp.Body).Decode(&tokenResp)

		userResp, err := http.Get("https://graph.facebook.com/me?fields=id,name,email&access_token=" + tokenResp.AccessToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur API Facebook"})
			return
		}
		defer userResp.Body.Close()
		var fb struct{ ID, Email, Name string }
		json.NewDecoder(userResp.Body).Decode(&fb)
		providerID, userEmail, userName = fb.ID, fb.Email, fb.Name

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	handleOAuthUser(c, provider, providerID, userEmail, userName, state)
}

// ================== AUTH SOCIALE (MOBILE) ==================

func GoogleMobileLogin(c *gin.Context) {
	var body struct {
		IDToken string `json:"id_token"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.IDToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id_token manquant"})
		return
	}

	clientIDs := []string{
		os.Getenv("GOOGLE_WEB_CLIENT_ID"),
		os.Getenv("GOOGLE_IOS_CLIENT_ID"),
		os.Getenv("GOOGLE_ANDROID_CLIENT_ID"),
	}

	resp, err := http.Get("https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(body.IDToken))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vérification Google"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Google invalide"})
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Audience string `json:"aud"`
		Subject  string `json:"sub"`
	}
	json.NewDecoder(resp.Body).Decode(&payload)

	valid := false
	for _, id := range clientIDs {
		if payload.Audience == id && id != "" {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Client ID non autorisé"})
		return
	}

	user, err := findOrCreateOAuthUser("google", payload.Subject, payload.Email, payload.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}
	token, _ := utils.GenerateJWT(user)
	c.JSON(http.StatusOK, gin.H{"token": token, "email": user.Email, "name": user.Name, "role": user.Role})
}

func FacebookMobileLogin(c *gin.Context) {
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.AccessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "access_token manquant"})
		return
	}

	resp, err := http.Get("https://graph.facebook.com/me?fields=id,name,email&access_token=" + body.AccessToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur API Facebook"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token Facebook invalide"})
		return
	}

	var fb struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	json.NewDecoder(resp.Body).Decode(&fb)

	user, err := findOrCreateOAuthUser("facebook", fb.ID, fb.Email, fb.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}
	token, _ := utils.GenerateJWT(user)
	c.JSON(http.StatusOK, gin.H{"token": token, "email": user.Email, "name": user.Name, "role": user.Role})
}

// ================== UTILITAIRES ==================

func findOrCreateOAuthUser(provider, providerID, email, name string) (models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return models.User{}, err
	}

	// 1️⃣ Recherche par email (index users_by_email)
	var userID gocql.UUID
	if err := session.Query("SELECT user_id FROM users_by_email WHERE email = ?", email).Scan(&userID); err == nil {
		var (
			uEmail, uName, uRole, uProvider, uProviderID string
			uPhone, uCity                                string
		)
		if err := session.Query(`SELECT email, name, role, provider, provider_id, phone, city
			FROM users WHERE user_id = ?`, userID).Scan(
			&uEmail, &uName, &uRole, &uProvider, &uProviderID, &uPhone, &uCity); err != nil {
			return models.User{}, err
		}

		// 2️⃣ Compte existant → fusion avec le provider social
		if uProvider != provider || uProviderID != providerID {
			_ = session.Query("UPDATE users SET provider = ?, provider_id = ?, updated_at = ? WHERE user_id = ?",
				provider, providerID, time.Now(), userID).Exec()
			log.Printf("🔄 Compte existant fusionné avec provider %s : %s", provider, email)
		} else {
			log.Printf("✅ Utilisateur OAuth existant trouvé : %s", email)
		}

		return models.User{
			ID:       userID.String(),
			Email:    uEmail,
			Name:     uName,
			Role:     uRole,
			Provider: provider,
			Phone:    uPhone,
			City:     uCity,
		}, nil
	}

	// 3️⃣ Création d'un nouvel utilisateur OAuth (rôle client par défaut)
	newID := gocql.TimeUUID()
	now := time.Now()
	if err := session.Query(`INSERT INTO users (user_id, email, password, name, role, provider, provider_id, phone, city, stripe_customer_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		newID, email, "", name, models.RoleClient, provider, providerID, "", "", "", now, now).Exec(); err != nil {
		return models.User{}, err
	}
	_ = session.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)", email, newID).Exec()
	log.Printf("🆕 Utilisateur OAuth créé (%s) : %s", provider, email)

	return models.User{
		ID:       newID.String(),
		Email:    email,
		Name:     name,
		Role:     models.RoleClient,
		Provider: provider,
	}, nil
}

func handleOAuthUser(c *gin.Context, provider, providerID, email, name, state string) {
	ctx := context.Background()
	user, err := findOrCreateOAuthUser(provider, providerID, email, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}
	token, _ := utils.GenerateJWT(user)

	redirectURI, _ := database.Redis.Get(ctx, "oauth_redirect:"+state).Result()
	_, _ = database.Redis.Del(ctx, "oauth_redirect:"+state).Result()

	if redirectURI == "" {
		redirectURI = os.Getenv("FRONTEND_URL")
		if redirectURI == "" {
			redirectURI = "http://localhost:5173"
		}
	}

	// deep link mobile auto si user-agent iOS
	if !strings.HasPrefix(redirectURI, "pawcare://") {
		ua := strings.ToLower(c.Request.UserAgent())
		if strings.Contains(ua, "iphone") || strings.Contains(ua, "ios") || strings.Contains(ua, "mobile") {
			if v := os.Getenv("IOS_REDIRECT_URL"); v != "" {
				redirectURI = v
			} else {
				redirectURI = "pawcare://auth/callback"
			}
		}
	}

	allowed := []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"https://pawcare.app",
		"https://www.pawcare.app",
		"pawcare://auth/callback",
	}
	valid := false
	for _, o := range allowed {
		if strings.HasPrefix(redirectURI, o) {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Redirect url non autorisé"})
		return
	}

	sep := "?"
	if strings.Contains(redirectURI, "?") {
		sep = "&"
	}
	final := redirectURI + sep + "token=" + url.QueryEscape(token)
	log.Printf("✅ Redirection finale: %s", final)
	c.Redirect(http.StatusTemporaryRedirect, final)
}
