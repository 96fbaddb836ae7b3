package cache

import (
	"context"
	"encoding/json"
	"time"

	"pawcare_back_end/internal/database"
	"pawcare_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const (
	UserCacheTTL      = 5 * time.Minute
	SitterCacheTTL    = 10 * time.Minute
	ActiveFeeCacheTTL = 10 * time.Minute
)

const activeFeeKey = "platform_fee:active"

// GetUserFromCache récupère un utilisateur depuis Redis ou ScyllaDB
func GetUserFromCache(userID string) (*models.User, error) {
	ctx := context.Background()
	key := "user:" + userID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var user models.User
		if json.Unmarshal([]byte(data), &user) == nil {
			return &user, nil
		}
	}

	// 2. Récupérer de ScyllaDB
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	var (
		email, name, role, provider string
		phone, city, stripeCustomer string
	)

	err = session.Query(`SELECT email, name, role, provider, phone, city, stripe_customer_id
		FROM users WHERE user_id = ?`, gocql.UUID(uid)).Scan(
		&email, &name, &role, &provider, &phone, &city, &stripeCustomer)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:               userID,
		Email:            email,
		Name:             name,
		Role:             role,
		Provider:         provider,
		Phone:            phone,
		City:             city,
		StripeCustomerID: stripeCustomer,
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(user)
	database.Redis.Set(ctx, key, jsonData, UserCacheTTL)

	return user, nil
}

// InvalidateUserCache invalide le cache d'un utilisateur
func InvalidateUserCache(userID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "user:"+userID)
}

// GetActiveFeeFromCache récupère la commission plateforme active depuis
// Redis, ou nil si absente du cache (le handler retombe sur ScyllaDB).
func GetActiveFeeFromCache() *models.PlatformFee {
	ctx := context.Background()

	data, err := database.Redis.Get(ctx, activeFeeKey).Result()
	if err != nil {
		return nil
	}

	var fee models.PlatformFee
	if json.Unmarshal([]byte(data), &fee) != nil {
		return nil
	}
	return &fee
}

// SetActiveFeeCache met en cache la commission active
func SetActiveFeeCache(fee models.PlatformFee) {
	ctx := context.Background()
	jsonData, _ := json.Marshal(fee)
	database.Redis.Set(ctx, activeFeeKey, jsonData, ActiveFeeCacheTTL)
}

// InvalidateActiveFeeCache invalide le cache de commission (à appeler sur
// toute écriture dans platform_fees)
func InvalidateActiveFeeCache() {
	ctx := context.Background()
	database.Redis.Del(ctx, activeFeeKey)
}

// GetSitterNamesFromCache récupère plusieurs noms de sitters
func GetSitterNamesFromCache(sitterIDs []string) map[string]string {
	ctx := context.Background()
	result := make(map[string]string)
	missingIDs := []string{}

	// 1. Essayer de récupérer depuis Redis
	for _, sitterID := range sitterIDs {
		key := "sitter_name:" + sitterID
		name, err := database.Redis.Get(ctx, key).Result()
		if err == nil {
			result[sitterID] = name
		} else {
			missingIDs = append(missingIDs, sitterID)
		}
	}

	// 2. Récupérer les sitters manquants depuis ScyllaDB
	if len(missingIDs) > 0 {
		session, err := database.GetSittersSession()
		if err == nil {
			for _, sitterID := range missingIDs {
				sid, err := uuid.Parse(sitterID)
				if err == nil {
					var name string
					err = session.Query("SELECT display_name FROM sitter_profiles WHERE sitter_id = ?", gocql.UUID(sid)).Scan(&name)
					if err == nil {
						result[sitterID] = name
						database.Redis.Set(ctx, "sitter_name:"+sitterID, name, SitterCacheTTL)
					}
				}
			}
		}
	}

	return result
}

// InvalidateSitterCache invalide le cache d'un sitter
func InvalidateSitterCache(sitterID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "sitter:"+sitterID, "sitter_name:"+sitterID)
}
