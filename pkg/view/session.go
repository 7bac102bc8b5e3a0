package view

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Controller receives the events typed by the user.
type Controller interface {
	SetAmount(ctx context.Context, text string) error
	SelectSource(ctx context.Context, code string) error
	SelectTarget(ctx context.Context, code string) error
	Swap(ctx context.Context) error
	Submit(ctx context.Context) error
}

// LineReader yields typed lines. *term.Terminal satisfies it.
type LineReader interface {
	ReadLine() (string, error)
	SetPrompt(prompt string)
}

// ScannerReader reads lines from a non-interactive input. Prompts are ignored.
type ScannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader wraps r.
func NewScannerReader(r io.Reader) *ScannerReader {
	return &ScannerReader{scanner: bufio.NewScanner(r)}
}

// ReadLine returns the next line or io.EOF.
func (s *ScannerReader) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// SetPrompt is a no-op.
func (s *ScannerReader) SetPrompt(string) {}

// Session turns typed lines into controller calls.
type Session struct {
	ctrl   Controller
	term   *Terminal
	logger *slog.Logger
	amount string
}

// NewSession creates a session driving ctrl and reading state back from term.
func NewSession(ctrl Controller, term *Terminal, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ctrl:   ctrl,
		term:   term,
		logger: logger.With("component", "session"),
	}
}

// Run reads lines until EOF, quit, or ctx is done.
func (s *Session) Run(ctx context.Context, lr LineReader) error {
	s.term.Println(hintText("Type an amount, then press Enter to convert. ") + hintCommand("help") + hintText(" lists commands."))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		lr.SetPrompt(s.Prompt())
		line, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		quit, err := s.Handle(ctx, line)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Prompt describes the current form, e.g. "USD → EUR | 100 > ".
func (s *Session) Prompt() string {
	from, to := s.term.Selection()
	amount := s.amount
	if amount == "" {
		amount = "amount?"
	}
	return fmt.Sprintf("%s → %s | %s > ", orDash(from), orDash(to), amount)
}

// Handle executes one typed line. It reports whether the session should end.
func (s *Session) Handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, s.ctrl.Submit(ctx)
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		s.printHelp()
		return false, nil
	case "list", "ls":
		s.printCurrencies()
		return false, nil
	case "convert", "c":
		return false, s.ctrl.Submit(ctx)
	case "swap", "s":
		return false, s.ctrl.Swap(ctx)
	case "amount", "a":
		return false, s.setAmount(ctx, strings.Join(fields[1:], " "))
	case "from", "to":
		if len(fields) != 2 {
			s.term.Println(warnText("Usage: " + cmd + " CODE"))
			return false, nil
		}
		return false, s.selectCurrency(ctx, cmd == "from", fields[1])
	}

	if !looksNumeric(fields[0]) {
		s.term.Println(warnText(fmt.Sprintf("Unknown command %q.", fields[0])) + " " + hintText("Type ") + hintCommand("help") + hintText("."))
		return false, nil
	}
	switch len(fields) {
	case 1:
		return false, s.setAmount(ctx, fields[0])
	case 3:
		// "100 usd eur" fills the whole form and converts.
		if err := s.setAmount(ctx, fields[0]); err != nil {
			return false, err
		}
		if err := s.selectCurrency(ctx, true, fields[1]); err != nil {
			return false, err
		}
		if err := s.selectCurrency(ctx, false, fields[2]); err != nil {
			return false, err
		}
		return false, s.ctrl.Submit(ctx)
	default:
		s.term.Println(warnText("Usage: AMOUNT or AMOUNT FROM TO"))
		return false, nil
	}
}

func (s *Session) setAmount(ctx context.Context, text string) error {
	s.amount = strings.TrimSpace(text)
	return s.ctrl.SetAmount(ctx, text)
}

// selectCurrency refuses codes that are not offered, like a closed option list.
func (s *Session) selectCurrency(ctx context.Context, source bool, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if _, ok := s.term.Lookup(code); !ok {
		s.logger.Debug("Refusing unknown currency", "code", code)
		s.term.Println(warnText(fmt.Sprintf("Unknown currency %q.", code)) + " " + hintText("Type ") + hintCommand("list") + hintText("."))
		return nil
	}
	if source {
		return s.ctrl.SelectSource(ctx, code)
	}
	return s.ctrl.SelectTarget(ctx, code)
}

func (s *Session) printHelp() {
	rows := [][2]string{
		{"AMOUNT", "set the amount, e.g. 12,5"},
		{"AMOUNT FROM TO", "set everything and convert, e.g. 100 usd eur"},
		{"from CODE", "select the source currency"},
		{"to CODE", "select the target currency"},
		{"swap", "exchange source and target"},
		{"Enter | convert", "convert now"},
		{"list", "show available currencies"},
		{"quit", "leave"},
	}
	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "  %s  %s\n", hintCommand(fmt.Sprintf("%-16s", r[0])), hintText(r[1]))
	}
	s.term.Println(strings.TrimRight(b.String(), "\n"))
}

func (s *Session) printCurrencies() {
	options := s.term.Options()
	if len(options) == 0 {
		s.term.Println(warnText("No currencies available."))
		return
	}
	var b strings.Builder
	for _, c := range options {
		fmt.Fprintf(&b, "  %s  %-20s %s\n", hintCommand(fmt.Sprintf("%-4s", c.Code)), c.Name, hintText(c.Symbol))
	}
	s.term.Println(strings.TrimRight(b.String(), "\n"))
}

func looksNumeric(s string) bool {
	switch s[0] {
	case '-', '+', '.', ',':
		return true
	}
	return s[0] >= '0' && s[0] <= '9'
}

func orDash(code string) string {
	if code == "" {
		return "---"
	}
	return code
}
