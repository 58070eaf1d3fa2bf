package api

import "fmt"

// Error es un error de la API con status HTTP y el mensaje provisto por el
// servidor (campo error/message del body) o un fallback genérico. Se propaga
// sin tocar hasta la capa de UI, que decide qué mostrarle al usuario.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (HTTP %d)", e.Message, e.Status)
}
