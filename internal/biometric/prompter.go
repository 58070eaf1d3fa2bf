package biometric

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TerminalPrompter implementa Prompter sobre stdin/stdout para el CLI y los
// kioscos sin pantalla táctil.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPrompter) EnrollmentChoice(ctx context.Context) (EnrollmentChoice, error) {
	fmt.Fprintln(p.out, "No tienes huellas enroladas en este dispositivo.")
	fmt.Fprint(p.out, "¿Ir a configuración para enrolar una? [s/N]: ")
	answer, err := p.readLine()
	if err != nil {
		return EnrollDecline, err
	}
	if strings.EqualFold(answer, "s") || strings.EqualFold(answer, "si") {
		return EnrollGoToSettings, nil
	}
	return EnrollDecline, nil
}

func (p *TerminalPrompter) RetryChoice(ctx context.Context, attempt, max int) (bool, error) {
	fmt.Fprintf(p.out, "Autenticación fallida (intento %d de %d). ¿Reintentar? [s/N]: ", attempt, max)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "s") || strings.EqualFold(answer, "si"), nil
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
