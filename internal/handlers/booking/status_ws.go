package booking

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// le contrôle d'accès se fait via le token JWT en query, pas l'origine
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statusHub diffuse les changements de statut aux clients connectés sur une
// réservation donnée.
type statusHub struct {
	mu    sync.RWMutex
	conns map[string]map[*websocket.Conn]bool // booking_id → connexions
}

var hub = &statusHub{conns: make(map[string]map[*websocket.Conn]bool)}

func (h *statusHub) subscribe(bookingID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[bookingID] == nil {
		h.conns[bookingID] = make(map[*websocket.Conn]bool)
	}
	h.conns[bookingID][conn] = true
}

func (h *statusHub) unsubscribe(bookingID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[bookingID], conn)
	if len(h.conns[bookingID]) == 0 {
		delete(h.conns, bookingID)
	}
}

// broadcast pousse le nouveau statut à tous les abonnés de la réservation
func (h *statusHub) broadcast(bookingID, status string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := gin.H{
		"booking_id": bookingID,
		"status":     status,
		"at":         time.Now().Format(time.RFC3339),
	}

	for conn := range h.conns[bookingID] {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("⚠️ Erreur envoi websocket: %v", err)
		}
	}
}

// BookingStatusWS ouvre un flux websocket sur le statut d'une réservation.
// Le front reçoit un message JSON à chaque transition.
func BookingStatusWS(c *gin.Context) {
	bookingID := c.Param("id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade websocket: %v", err)
		return
	}

	hub.subscribe(bookingID, conn)
	log.Printf("🔌 Websocket ouvert sur réservation %s", bookingID)

	defer func() {
		hub.unsubscribe(bookingID, conn)
		conn.Close()
	}()

	// boucle de lecture : détecte la déconnexion du client
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
