// Command probe runs a single poll against the homework API and prints what
// the bot would send, without touching Telegram.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/eliseohh/homeworkbot/internal/config"
	"github.com/eliseohh/homeworkbot/internal/practicum"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.Int64("from", 0, "from_date cursor in Unix seconds (0 = everything)")
	envFile := fs.String("env", config.DefaultDotEnvFile, "dotenv file to load")
	timeout := fs.Duration("timeout", 0, "request timeout (default from PRACTICUM_TIMEOUT)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	if cfg.PracticumToken == "" {
		fmt.Fprintf(stderr, "%s is not set\n", config.EnvPracticumToken)
		return 1
	}
	if *timeout > 0 {
		cfg.RequestTimeout = *timeout
	}

	client := practicum.NewClient(practicum.Config{
		Endpoint: cfg.Endpoint,
		Token:    cfg.PracticumToken,
		Timeout:  cfg.RequestTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+5*time.Second)
	defer cancel()

	body, err := client.Fetch(ctx, *from)
	if err != nil {
		fmt.Fprintf(stderr, "fetch (%s): %v\n", practicum.Kind(err), err)
		return 1
	}

	resp, err := practicum.CheckResponse(body)
	if resp.CurrentDate != nil {
		fmt.Fprintf(stdout, "current_date: %d\n", *resp.CurrentDate)
	}
	if err != nil {
		if vErr, ok := practicum.AsValidationError(err); ok {
			for _, p := range vErr.Problems {
				fmt.Fprintf(stderr, "problem: %s\n", p)
			}
		} else {
			fmt.Fprintf(stderr, "check: %v\n", err)
		}
		return 1
	}

	fmt.Fprintf(stdout, "homeworks: %d\n", len(resp.Homeworks))
	failed := false
	for _, hw := range resp.Homeworks {
		msg, err := practicum.ParseStatus(hw)
		switch {
		case errors.Is(err, practicum.ErrUnknownStatus), errors.Is(err, practicum.ErrMissingKey):
			fmt.Fprintf(stdout, "- %s: %v\n", hw.Name, err)
			failed = true
		case err != nil:
			fmt.Fprintf(stderr, "%s: %v\n", hw.Name, err)
			failed = true
		default:
			fmt.Fprintf(stdout, "- %s\n", msg)
		}
	}
	if failed {
		return 1
	}
	return 0
}
