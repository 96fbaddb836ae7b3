package models

// Rôles des comptes de la marketplace.
const (
	RoleClient = "client"
	RoleSitter = "sitter"
	RoleAdmin  = "admin"
)

type User struct {
	ID         string `json:"user_id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	Password   string `json:"-"`
	Role       string `json:"role,omitempty"` // "client", "sitter", "admin"
	Provider   string `json:"provider,omitempty"`
	ProviderID string `json:"-"`
	Phone      string `json:"phone,omitempty"`
	City       string `json:"city,omitempty"`
	// ID client Stripe pour les moyens de paiement enregistrés
	StripeCustomerID string `json:"-"`
}
