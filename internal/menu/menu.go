// Package menu implements the interactive terminal menu: a Fibonacci
// printer, a temperature converter and a number-guessing game.
package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskman/internal/logging"
)

// RandomSource supplies the guessing game's secret number.
// IntN returns a value in [0, n).
type RandomSource interface {
	IntN(n int) int
}

// NewRandomSource returns a PCG generator seeded from the clock.
func NewRandomSource() RandomSource {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>32|seed<<32))
}

// Option configures an App.
type Option func(*App)

// WithRandomSource replaces the generator used by the guessing game.
func WithRandomSource(r RandomSource) Option {
	return func(a *App) {
		if r != nil {
			a.rng = r
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// App is one interactive session reading choices from in and writing to out.
type App struct {
	in     io.Reader
	out    io.Writer
	rng    RandomSource
	logger *log.Logger

	lines <-chan line
}

type line struct {
	text string
	err  error
}

// New creates an App.
func New(in io.Reader, out io.Writer, opts ...Option) *App {
	a := &App{
		in:     in,
		out:    out,
		rng:    NewRandomSource(),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run shows the menu until the user picks exit or input ends.
// It returns ctx.Err() if ctx is canceled while waiting for input.
func (a *App) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	a.lines = readLines(a.in, stop)

	for {
		a.printMenu()
		choice, err := a.readLine(ctx)
		if err != nil {
			return a.finish(err)
		}
		a.logger.Debug("menu choice", "choice", choice)

		switch choice {
		case "1":
			err = a.fibonacci(ctx)
		case "2":
			err = a.temperature(ctx)
		case "3":
			err = a.guessingGame(ctx)
		case "4":
			fmt.Fprintln(a.out, "Thanks for using the application!")
			return nil
		default:
			fmt.Fprintln(a.out, "Invalid option. Please select 1, 2, 3 or 4.")
		}
		if err != nil {
			return a.finish(err)
		}
		fmt.Fprintln(a.out)
	}
}

// finish treats end of input as a normal exit.
func (a *App) finish(err error) error {
	if errors.Is(err, io.EOF) {
		a.logger.Debug("input closed")
		fmt.Fprintln(a.out)
		return nil
	}
	return err
}

func (a *App) printMenu() {
	fmt.Fprintln(a.out, "=== TERMINAL APPLICATION ===")
	fmt.Fprintln(a.out, "1. Generate Fibonacci sequence")
	fmt.Fprintln(a.out, "2. Temperature converter")
	fmt.Fprintln(a.out, "3. Guessing game")
	fmt.Fprintln(a.out, "4. Exit")
	fmt.Fprintln(a.out, "Select an option (1-4): ")
}

// readLines scans in on its own goroutine so a blocked read does not keep
// Run from noticing cancellation.
func readLines(in io.Reader, stop <-chan struct{}) <-chan line {
	ch := make(chan line)
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case ch <- line{text: scanner.Text()}:
			case <-stop:
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		select {
		case ch <- line{err: err}:
		case <-stop:
		}
	}()
	return ch
}

// readLine returns the next input line with surrounding space removed.
func (a *App) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l, ok := <-a.lines:
		if !ok {
			return "", io.EOF
		}
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}
