package biometric

import (
	"context"
	"os/exec"
	"os/user"
	"strings"
	"time"
)

// FprintdCapability implementa Capability sobre las herramientas fprintd de
// Linux, para kioscos de check-in con lector de huellas. Cada consulta corre
// el binario correspondiente con timeout propio.
type FprintdCapability struct {
	// SettingsCommand se ejecuta en OpenSettings. Default:
	// gnome-control-center user-accounts
	SettingsCommand []string
	// Timeout por comando; el prompt de verificación usa 30s fijos porque
	// espera interacción del usuario.
	Timeout time.Duration
}

func NewFprintdCapability() *FprintdCapability {
	return &FprintdCapability{
		SettingsCommand: []string{"gnome-control-center", "user-accounts"},
		Timeout:         5 * time.Second,
	}
}

func (f *FprintdCapability) HasHardware(ctx context.Context) (bool, error) {
	if _, err := exec.LookPath("fprintd-verify"); err != nil {
		// Sin binarios fprintd no hay lector utilizable
		return false, nil
	}
	out, _ := f.run(ctx, f.Timeout, "fprintd-list", currentUser())
	if strings.Contains(out, "No devices available") {
		return false, nil
	}
	return true, nil
}

func (f *FprintdCapability) HasEnrollment(ctx context.Context) (bool, error) {
	out, err := f.run(ctx, f.Timeout, "fprintd-list", currentUser())
	if err != nil && out == "" {
		return false, err
	}
	if strings.Contains(out, "no fingers enrolled") {
		return false, nil
	}
	return strings.Contains(out, "Fingerprints for user"), nil
}

func (f *FprintdCapability) Authenticate(ctx context.Context, prompt string) (bool, error) {
	// fprintd-verify bloquea hasta que el usuario pone el dedo o expira
	out, err := f.run(ctx, 30*time.Second, "fprintd-verify", currentUser())
	if err != nil {
		if strings.Contains(out, "verify-no-match") || strings.Contains(out, "verify-retry") {
			return false, nil
		}
		return false, err
	}
	return strings.Contains(out, "verify-match"), nil
}

func (f *FprintdCapability) OpenSettings(ctx context.Context) error {
	if len(f.SettingsCommand) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, f.SettingsCommand[0], f.SettingsCommand[1:]...)
	return cmd.Start()
}

func (f *FprintdCapability) run(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := exec.CommandContext(runCtx, name, args...).CombinedOutput()
	return string(out), err
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}
