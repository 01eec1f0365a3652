package menu

import (
	"context"
	"fmt"
	"iter"
	"math/big"
	"strconv"
)

const (
	guessMin      = 1
	guessMax      = 10
	guessAttempts = 3
)

// Fibonacci yields the first n Fibonacci numbers starting from 0, paired
// with their 1-based position. Each yielded value is a fresh copy.
func Fibonacci(n uint64) iter.Seq2[uint64, *big.Int] {
	return func(yield func(uint64, *big.Int) bool) {
		a, b := big.NewInt(0), big.NewInt(1)
		for i := uint64(1); i <= n; i++ {
			if !yield(i, new(big.Int).Set(a)) {
				return
			}
			a.Add(a, b)
			a, b = b, a
		}
	}
}

// CelsiusToFahrenheit converts degrees Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// FahrenheitToCelsius converts degrees Fahrenheit to Celsius.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

func formatInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (a *App) fibonacci(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n--- Fibonacci Sequence Generator ---")
	fmt.Fprintln(a.out, "How many numbers of the sequence do you want to generate? ")

	input, err := a.readLine(ctx)
	if err != nil {
		return err
	}
	n, err := strconv.ParseUint(input, 10, 32)
	if err != nil {
		fmt.Fprintln(a.out, "Please enter a valid number.")
		return nil
	}
	if n == 0 {
		fmt.Fprintln(a.out, "The number must be greater than 0.")
		return nil
	}

	fmt.Fprintf(a.out, "\nFibonacci sequence with %d numbers:\n", n)
	for i, v := range Fibonacci(n) {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		fmt.Fprintf(a.out, "%d: %s\n", i, v)
	}
	return nil
}

func (a *App) temperature(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n--- Temperature Converter ---")
	fmt.Fprintln(a.out, "1. Celsius to Fahrenheit")
	fmt.Fprintln(a.out, "2. Fahrenheit to Celsius")
	fmt.Fprintln(a.out, "Select the conversion type (1-2): ")

	choice, err := a.readLine(ctx)
	if err != nil {
		return err
	}
	switch choice {
	case "1":
		return a.convert(ctx, "Celsius", "°C", "°F", CelsiusToFahrenheit)
	case "2":
		return a.convert(ctx, "Fahrenheit", "°F", "°C", FahrenheitToCelsius)
	default:
		fmt.Fprintln(a.out, "Invalid option. Please select 1 or 2.")
		return nil
	}
}

func (a *App) convert(ctx context.Context, scale, from, to string, fn func(float64) float64) error {
	fmt.Fprintf(a.out, "Enter the temperature in %s: \n", scale)

	input, err := a.readLine(ctx)
	if err != nil {
		return err
	}
	value, err := strconv.ParseFloat(input, 64)
	if err != nil {
		fmt.Fprintln(a.out, "Please enter a valid number.")
		return nil
	}
	fmt.Fprintf(a.out, "%s%s = %.2f%s\n", formatInput(value), from, fn(value), to)
	return nil
}

func (a *App) guessingGame(ctx context.Context) error {
	fmt.Fprintln(a.out, "\n--- Guessing Game ---")
	fmt.Fprintln(a.out, "Welcome to the guessing game!")
	fmt.Fprintf(a.out, "I'm thinking of a number between %d and %d.\n", guessMin, guessMax)
	fmt.Fprintf(a.out, "You have %d attempts to guess it.\n\n", guessAttempts)

	secret := guessMin + a.rng.IntN(guessMax-guessMin+1)
	remaining := guessAttempts

	for remaining > 0 {
		fmt.Fprintf(a.out, "Attempts left: %d\n", remaining)
		fmt.Fprintf(a.out, "Enter your number (%d-%d): \n", guessMin, guessMax)

		input, err := a.readLine(ctx)
		if err != nil {
			return err
		}
		guess, err := strconv.ParseUint(input, 10, 32)
		if err != nil {
			fmt.Fprintln(a.out, "Please enter a valid number.")
			continue
		}
		if guess < guessMin || guess > guessMax {
			fmt.Fprintf(a.out, "Please enter a number between %d and %d.\n", guessMin, guessMax)
			continue
		}

		remaining--
		if int(guess) == secret {
			fmt.Fprintf(a.out, "Congratulations! You guessed the number %d!\n", secret)
			fmt.Fprintln(a.out, attemptMessage(guessAttempts-remaining))
			return nil
		}
		if remaining > 0 {
			if int(guess) < secret {
				fmt.Fprintf(a.out, "The number I'm thinking of is HIGHER than %d.\n", guess)
			} else {
				fmt.Fprintf(a.out, "The number I'm thinking of is LOWER than %d.\n", guess)
			}
			fmt.Fprintln(a.out)
		}
	}

	fmt.Fprintf(a.out, "Out of attempts! The number was: %d\n", secret)
	fmt.Fprintln(a.out, "Better luck next time!")
	return nil
}

func attemptMessage(attempt int) string {
	switch attempt {
	case 1:
		return "You got it on the first try!"
	case 2:
		return "You got it on the second try!"
	default:
		return "You got it on the last try!"
	}
}
