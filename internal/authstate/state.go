package authstate

import "sync"

// ============================================================================
// AUTH STATE - ESTADO GLOBAL DE AUTENTICACIÓN OBSERVABLE
// ============================================================================
// Punto único de mutación del flag "autenticado" que leen la navegación y el
// transporte. Los consumidores se suscriben en vez de hacer polling: cuando
// el transporte detecta un 401/403 fuerza logout acá y cualquier observador
// (redirección al login, CLI, dashboard) reacciona al cambio.

// State es el estado de autenticación compartido de la app.
type State struct {
	mu            sync.Mutex
	authenticated bool
	biometricOK   bool
	subs          map[int]func(bool)
	nextID        int
}

// New crea un State. authenticated indica el estado inicial (típicamente
// store.IsAuthenticated() al arrancar).
func New(authenticated bool) *State {
	return &State{
		authenticated: authenticated,
		subs:          make(map[int]func(bool)),
	}
}

// Authenticated retorna el estado actual.
func (s *State) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// SetAuthenticated cambia el estado y notifica a los suscriptores solo si el
// valor cambió, de modo que varios 401 concurrentes colapsan en un único
// evento observable. Las notificaciones corren fuera del lock.
func (s *State) SetAuthenticated(v bool) {
	s.mu.Lock()
	if s.authenticated == v {
		s.mu.Unlock()
		return
	}
	s.authenticated = v
	if !v {
		// La sesión terminó: la próxima entrada exige biometría de nuevo
		s.biometricOK = false
	}
	subs := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Logout fuerza el estado no autenticado. Idempotente.
func (s *State) Logout() {
	s.SetAuthenticated(false)
}

// Subscribe registra fn para recibir cada transición de estado. Retorna una
// función para cancelar la suscripción.
func (s *State) Subscribe(fn func(authenticated bool)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// MarkBiometricSatisfied marca que el gate biométrico ya se superó en esta
// ejecución. El flag se resetea al reiniciar el proceso o al cerrar sesión.
func (s *State) MarkBiometricSatisfied() {
	s.mu.Lock()
	s.biometricOK = true
	s.mu.Unlock()
}

// BiometricSatisfied indica si el gate biométrico ya se superó.
func (s *State) BiometricSatisfied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.biometricOK
}
