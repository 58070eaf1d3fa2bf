package biometric

import "context"

// Capability abstrae la superficie biométrica de la plataforma. El gate solo
// conoce esta interfaz; los adaptadores concretos viven aparte (fprintd en
// Linux, fakes programables en tests).
type Capability interface {
	// HasHardware indica si el dispositivo tiene lector biométrico.
	HasHardware(ctx context.Context) (bool, error)
	// HasEnrollment indica si hay al menos una huella/credencial enrolada.
	HasEnrollment(ctx context.Context) (bool, error)
	// Authenticate invoca el prompt nativo. Retorna (false, nil) cuando el
	// usuario falla o cancela, y error solo ante fallas de plataforma.
	Authenticate(ctx context.Context, prompt string) (bool, error)
	// OpenSettings abre la configuración de enrolamiento del dispositivo.
	OpenSettings(ctx context.Context) error
}

// EnrollmentChoice es la decisión del usuario cuando no hay enrolamiento.
type EnrollmentChoice int

const (
	// EnrollDecline: el usuario no quiere enrolar; el gate falla con
	// razón no_enrollment.
	EnrollDecline EnrollmentChoice = iota
	// EnrollGoToSettings: abrir la configuración del dispositivo; el gate
	// cancela con razón went_to_settings esperando que el usuario vuelva.
	EnrollGoToSettings
)

// Prompter hace las preguntas de la UI (diálogos de la app, no el prompt
// nativo). El gate espera la respuesta como parte de su ciclo de estados.
type Prompter interface {
	EnrollmentChoice(ctx context.Context) (EnrollmentChoice, error)
	RetryChoice(ctx context.Context, attempt, max int) (bool, error)
}
