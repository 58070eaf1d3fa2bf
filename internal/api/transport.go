package api

import "net/http"

// ============================================================================
// AUTHENTICATED TRANSPORT - INTERCEPTORES DE REQUEST/RESPONSE
// ============================================================================
// RoundTripper que adjunta el bearer token a cada request saliente y dispara
// el logout global al recibir 401/403. No reintenta ni redirige: solo muta
// el estado compartido; la navegación de vuelta al login ocurre porque un
// componente superior observa el cambio de estado (redirección reactiva).

// tokenSource entrega el token vigente antes de cada request.
// session.Store lo satisface directamente.
type tokenSource interface {
	Token() string
}

type authTransport struct {
	base          http.RoundTripper
	tokens        tokenSource
	onAuthFailure func()
}

// RoundTrip adjunta Authorization: Bearer <token> si hay token presente y,
// ante un 401/403, invoca el hook de logout antes de propagar la respuesta
// original al caller. Seguro para requests concurrentes: el hook es
// idempotente, así que varios 401 en vuelo colapsan en un solo logout lógico.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if tok := t.tokens.Token(); tok != "" {
		// Clonar para no mutar el request del caller
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		if t.onAuthFailure != nil {
			t.onAuthFailure()
		}
	}
	return resp, nil
}
