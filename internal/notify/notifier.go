package notify

import (
	"context"
	"log"
	"os/exec"

	"github.com/yourorg/fitclubcl/internal/models"
)

// Notifier muestra una notificación local en el dispositivo.
type Notifier interface {
	Notify(ctx context.Context, n models.PendingNotification) error
}

// DesktopNotifier usa notify-send (libnotify) para mostrar notificaciones
// de escritorio en los kioscos Linux. El tipo y los ids relacionados viajan
// como hints para que el handler de click pueda abrir la pantalla correcta.
type DesktopNotifier struct {
	// Command permite sustituir el binario en tests; default notify-send.
	Command string
}

func (d *DesktopNotifier) Notify(ctx context.Context, n models.PendingNotification) error {
	command := d.Command
	if command == "" {
		command = "notify-send"
	}
	args := []string{
		"--app-name=FitClub",
		"--hint=string:x-fitclub-type:" + n.Type,
	}
	if n.ScheduledClassID != "" {
		args = append(args, "--hint=string:x-fitclub-class:"+n.ScheduledClassID)
	}
	if n.BookingID != "" {
		args = append(args, "--hint=string:x-fitclub-booking:"+n.BookingID)
	}
	args = append(args, n.Title, n.Message)

	return exec.CommandContext(ctx, command, args...).Run()
}

// LogNotifier solo deja registro; se usa cuando no hay entorno gráfico.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, n models.PendingNotification) error {
	log.Printf("🔔 [%s] %s — %s", n.Type, n.Title, n.Message)
	return nil
}
