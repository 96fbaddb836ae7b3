package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements pour les requêtes chaudes (auth + réservations)
	stmtGetUserByEmail    *gocql.Query
	stmtGetUserByID       *gocql.Query
	stmtInsertUser        *gocql.Query
	stmtInsertUserByEmail *gocql.Query
	stmtGetBookingByID    *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements initialise les prepared statements
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		usersSession, err := GetUsersSession()
		if err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements: %v", err)
			return
		}

		// Requête pour récupérer user_id par email
		stmtGetUserByEmail = usersSession.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		// Requête pour récupérer un utilisateur par ID
		stmtGetUserByID = usersSession.Query(`SELECT email, password, name, role, provider, provider_id, phone, city, stripe_customer_id
			FROM users WHERE user_id = ?`)

		// Requête pour insérer un utilisateur
		stmtInsertUser = usersSession.Query(`INSERT INTO users (user_id, email, password, name, role, provider, provider_id, phone, city, stripe_customer_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		// Requête pour insérer dans users_by_email
		stmtInsertUserByEmail = usersSession.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)")

		bookingsSession, err := GetBookingsSession()
		if err != nil {
			log.Printf("⚠️ Prepared statements réservations non initialisés: %v", err)
			return
		}

		// Requête chaude du cycle de vie des réservations
		stmtGetBookingByID = bookingsSession.Query(`SELECT client_id, pet_id, sitter_id, offering_id, start_time, end_time, total_price, status, created_at, updated_at
			FROM bookings WHERE booking_id = ?`)

		log.Println("✅ Prepared statements initialisés")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedInsertUserByEmail() *gocql.Query {
	return stmtInsertUserByEmail
}

func GetPreparedGetBookingByID() *gocql.Query {
	return stmtGetBookingByID
}
