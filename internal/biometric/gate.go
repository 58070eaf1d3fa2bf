package biometric

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/yourorg/fitclubcl/internal/authstate"
)

// ============================================================================
// BIOMETRIC GATE - MÁQUINA DE ESTADOS DE RE-AUTENTICACIÓN
// ============================================================================
// En cada entrada en frío al área autenticada se instancia un Gate nuevo que
// bloquea la pantalla y conduce el desafío biométrico contra la capacidad de
// plataforma, con reintentos acotados. Todo resultado termina clasificado en
// una razón fija: nada queda sin clasificar.
//
// La lógica de transición es una función pura (machine.transition); hablar
// con la plataforma y preguntarle al usuario son efectos que el runner
// ejecuta entre transiciones. Estados:
//
//   idle → authenticating → {succeeded, enrollPrompt, retryPrompt, terminal}

// Reason clasifica el desenlace de un desafío biométrico.
type Reason string

const (
	// Terminales del callback de fallo
	ReasonNoHardware   Reason = "no_hardware"
	ReasonNoEnrollment Reason = "no_enrollment"
	ReasonMaxAttempts  Reason = "max_attempts_exceeded"
	// Del callback de cancelación
	ReasonWentToSettings Reason = "went_to_settings"
	ReasonUserCancel     Reason = "user_cancel"
	// Error inesperado de plataforma; cuenta como intento fallido
	ReasonError Reason = "error"
)

// Callbacks recibe el desenlace del gate. Exactamente uno de los tres se
// invoca por ejecución. El éxito no lleva razón.
type Callbacks struct {
	OnSuccess func()
	OnFailure func(Reason)
	OnCancel  func(Reason)
}

// Config controla el comportamiento del gate.
type Config struct {
	MaxAttempts  int           // intentos máximos antes del fallo terminal
	PromptText   string        // texto del prompt nativo
	SuccessDelay time.Duration // feedback visual antes del callback de éxito
	FailureDelay time.Duration // delay antes de los callbacks de fallo/cancelación
}

// DefaultConfig replica los tiempos de la app: feedback breve en éxito,
// pausa más larga para que el usuario alcance a leer el mensaje de fallo.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  2,
		PromptText:   "Confirma tu identidad para entrar a FitClub",
		SuccessDelay: 600 * time.Millisecond,
		FailureDelay: 1500 * time.Millisecond,
	}
}

// ----------------------------------------------------------------------------
// Máquina de estados pura
// ----------------------------------------------------------------------------

type stateKind int

const (
	stateIdle stateKind = iota
	stateAuthenticating
	stateEnrollPrompt
	stateRetryPrompt
	stateSucceeded
	stateTerminal
)

type eventKind int

const (
	evStart eventKind = iota
	evHardwareMissing
	evEnrollmentMissing
	evAuthOK
	evAuthFail  // fallo o cancelación del prompt nativo
	evAuthError // excepción inesperada de plataforma
	evEnrollSettings
	evEnrollDecline
	evRetryAccept
	evRetryDecline
)

type actionKind int

const (
	actNone actionKind = iota
	actRunChecks
	actAskEnrollment
	actAskRetry
	actSucceed
	actFail
	actCancel
)

type machine struct {
	state    stateKind
	attempts int
	max      int
	reason   Reason // razón terminal, o ReasonError como razón del intento
}

// transition es la función pura (estado, evento) → (estado, efecto).
// Los eventos imposibles en el estado actual no tienen efecto.
func (m machine) transition(ev eventKind) (machine, actionKind) {
	switch m.state {
	case stateIdle:
		if ev == evStart {
			m.state = stateAuthenticating
			m.attempts++
			return m, actRunChecks
		}

	case stateAuthenticating:
		switch ev {
		case evHardwareMissing:
			m.state = stateTerminal
			m.reason = ReasonNoHardware
			return m, actFail
		case evEnrollmentMissing:
			m.state = stateEnrollPrompt
			return m, actAskEnrollment
		case evAuthOK:
			m.state = stateSucceeded
			return m, actSucceed
		case evAuthFail, evAuthError:
			if ev == evAuthError {
				m.reason = ReasonError
			}
			if m.attempts < m.max {
				m.state = stateRetryPrompt
				return m, actAskRetry
			}
			m.state = stateTerminal
			m.reason = ReasonMaxAttempts
			return m, actFail
		}

	case stateEnrollPrompt:
		switch ev {
		case evEnrollSettings:
			m.state = stateTerminal
			m.reason = ReasonWentToSettings
			return m, actCancel
		case evEnrollDecline:
			m.state = stateTerminal
			m.reason = ReasonNoEnrollment
			return m, actFail
		}

	case stateRetryPrompt:
		switch ev {
		case evRetryAccept:
			m.state = stateAuthenticating
			m.attempts++
			return m, actRunChecks
		case evRetryDecline:
			m.state = stateTerminal
			m.reason = ReasonUserCancel
			return m, actCancel
		}
	}
	return m, actNone
}

// ----------------------------------------------------------------------------
// Runner
// ----------------------------------------------------------------------------

// Gate conduce un desafío biométrico completo. Un Gate es de un solo uso:
// se instancia fresco por pantalla y se descarta al resolver.
type Gate struct {
	cfg      Config
	caps     Capability
	prompter Prompter
	cb       Callbacks
	state    *authstate.State // opcional; marca biometría satisfecha en éxito
	started  atomic.Bool
}

// NewGate crea un gate de un solo uso. state puede ser nil.
func NewGate(cfg Config, caps Capability, prompter Prompter, cb Callbacks, state *authstate.State) *Gate {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 2
	}
	return &Gate{cfg: cfg, caps: caps, prompter: prompter, cb: cb, state: state}
}

// Run ejecuta el desafío hasta su resolución y dispara exactamente un
// callback terminal. Bloquea al caller (el gate es modal por diseño);
// las segundas invocaciones no hacen nada.
func (g *Gate) Run(ctx context.Context) {
	if !g.started.CompareAndSwap(false, true) {
		return
	}

	m := machine{state: stateIdle, max: g.cfg.MaxAttempts}
	ev := evStart
	for {
		var act actionKind
		m, act = m.transition(ev)

		switch act {
		case actRunChecks:
			ev = g.runChecks(ctx)
		case actAskEnrollment:
			ev = g.askEnrollment(ctx)
		case actAskRetry:
			log.Printf("🔐 Intento biométrico %d/%d fallido (%s), ofreciendo reintento", m.attempts, m.max, attemptLabel(m.reason))
			ev = g.askRetry(ctx, m.attempts, m.max)
		case actSucceed:
			if g.state != nil {
				g.state.MarkBiometricSatisfied()
			}
			g.wait(ctx, g.cfg.SuccessDelay)
			if g.cb.OnSuccess != nil {
				g.cb.OnSuccess()
			}
			return
		case actFail:
			log.Printf("🔐 Gate biométrico: fallo terminal (%s)", m.reason)
			g.wait(ctx, g.cfg.FailureDelay)
			if g.cb.OnFailure != nil {
				g.cb.OnFailure(m.reason)
			}
			return
		case actCancel:
			log.Printf("🔐 Gate biométrico: cancelado (%s)", m.reason)
			g.wait(ctx, g.cfg.FailureDelay)
			if g.cb.OnCancel != nil {
				g.cb.OnCancel(m.reason)
			}
			return
		case actNone:
			// Evento sin transición válida; no debería ocurrir
			return
		}
	}
}

// runChecks ejecuta la secuencia de capacidad: hardware → enrolamiento →
// prompt nativo. Cualquier error de plataforma se pliega en evAuthError.
func (g *Gate) runChecks(ctx context.Context) eventKind {
	hw, err := g.caps.HasHardware(ctx)
	if err != nil {
		log.Printf("⚠️ Error consultando hardware biométrico: %v", err)
		return evAuthError
	}
	if !hw {
		return evHardwareMissing
	}

	enrolled, err := g.caps.HasEnrollment(ctx)
	if err != nil {
		log.Printf("⚠️ Error consultando enrolamiento: %v", err)
		return evAuthError
	}
	if !enrolled {
		return evEnrollmentMissing
	}

	ok, err := g.caps.Authenticate(ctx, g.cfg.PromptText)
	if err != nil {
		log.Printf("⚠️ Error en el prompt biométrico: %v", err)
		return evAuthError
	}
	if ok {
		return evAuthOK
	}
	return evAuthFail
}

// askEnrollment le ofrece al usuario ir a configuración del dispositivo a
// enrolar una huella, o declinar. Un error del prompter cuenta como declinar.
func (g *Gate) askEnrollment(ctx context.Context) eventKind {
	choice, err := g.prompter.EnrollmentChoice(ctx)
	if err != nil || choice == EnrollDecline {
		return evEnrollDecline
	}
	if err := g.caps.OpenSettings(ctx); err != nil {
		log.Printf("⚠️ No se pudo abrir la configuración del dispositivo: %v", err)
	}
	return evEnrollSettings
}

func (g *Gate) askRetry(ctx context.Context, attempt, max int) eventKind {
	retry, err := g.prompter.RetryChoice(ctx, attempt, max)
	if err != nil || !retry {
		return evRetryDecline
	}
	return evRetryAccept
}

// wait duerme el delay de feedback respetando la cancelación del contexto.
func (g *Gate) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

func attemptLabel(r Reason) string {
	if r == ReasonError {
		return string(ReasonError)
	}
	return "prompt"
}
