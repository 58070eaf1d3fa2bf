package models

// Tipos de notificación que maneja el cliente.
const (
	NotificationBookingReminder = "BOOKING_REMINDER"
	NotificationClassChanged    = "CLASS_CHANGED"
)

// Ciclo de vida de una notificación en el backend. "ENVIADA" viene así del
// backend original y se preserva tal cual en el wire format.
const (
	NotificationStatusPending  = "PENDING"
	NotificationStatusReceived = "RECEIVED"
	NotificationStatusSent     = "ENVIADA" // mostrada y leída
)

// PendingNotification es una notificación programada por el backend a la
// espera de ser mostrada en el dispositivo.
type PendingNotification struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Message          string `json:"message"`
	Type             string `json:"type"`
	ScheduledClassID string `json:"scheduledClassId,omitempty"`
	BookingID        string `json:"bookingId,omitempty"`
	Status           string `json:"status,omitempty"`
}

// UnreadCountResponse es la respuesta de GET /notifications/unread-count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
