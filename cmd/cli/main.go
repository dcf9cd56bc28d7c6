// Command cli is the terminal front end for the ledger core. It wires the
// services against postgres when DATABASE_URL is set, or an in-memory store
// for local experimentation.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/bankbr/baas/infra"
	infrarepo "github.com/bankbr/baas/infra/repository"
	"github.com/bankbr/baas/infra/repository/memory"
	"github.com/bankbr/baas/pkg/config"
	"github.com/bankbr/baas/pkg/domain/money"
	"github.com/bankbr/baas/pkg/metrics"
	"github.com/bankbr/baas/pkg/repository"
	accountsvc "github.com/bankbr/baas/pkg/service/account"
	authsvc "github.com/bankbr/baas/pkg/service/auth"
	authorizersvc "github.com/bankbr/baas/pkg/service/authorizer"
	depositcodesvc "github.com/bankbr/baas/pkg/service/depositcode"
	transfersvc "github.com/bankbr/baas/pkg/service/transfer"
	"github.com/fatih/color"
	"golang.org/x/term"
)

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  register <email> <cpf>                      register a user")
	fmt.Println("  open <email> <cpf>                          open a bank account")
	fmt.Println("  card <number>                               create a card account")
	fmt.Println("  authorize <number> <amount>                 authorize a debit")
	fmt.Println("  transfer <sender> <receiver> <amount>       transfer between users (email or --cpf)")
	fmt.Println("  gencode <email> <amount>                    generate a deposit code")
	fmt.Println("  redeem <code> <email>                       redeem a deposit code")
	fmt.Println("  balance <number>                            show an account balance")
	fmt.Println("  passwd <email>                              change an account password")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, err := config.Load()
	if err != nil {
		fail("could not load configuration: %v", err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		fail("%v", err)
	}

	var uow repository.UnitOfWork
	if cfg.DatabaseURL != "" {
		db, err := infra.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			fail("could not connect to database: %v", err)
		}
		uow = infrarepo.NewUoW(db)
	} else {
		color.Yellow("DATABASE_URL not set, using in-memory store (state is not persisted)")
		uow = memory.NewUnitOfWork(memory.NewStore())
	}

	collector := metrics.New()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, collector.Handler()); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	ctx := context.Background()
	args := os.Args[2:]

	switch os.Args[1] {
	case "register":
		if len(args) < 2 {
			fail("Usage: register <email> <cpf>")
		}
		password := promptPassword("Password: ")
		svc := authsvc.New(uow, logger)
		u, err := svc.Register(ctx, authsvc.RegisterInput{Email: args[0], CPF: args[1], Password: password})
		if err != nil {
			fail("registration failed: %v", err)
		}
		color.Green("Registered user %s (%s)", u.Email, u.ID)

	case "open":
		if len(args) < 2 {
			fail("Usage: open <email> <cpf>")
		}
		password := promptPassword("Account password: ")
		svc := accountsvc.New(uow, policy, logger)
		a, u, err := svc.Open(ctx, args[0], args[1], password)
		if err != nil {
			fail("account opening failed: %v", err)
		}
		color.Green("Opened account %s (agency %s) for %s, balance %s", a.Number, a.Agency, u.Email, a.Balance)

	case "card":
		if len(args) < 1 {
			fail("Usage: card <number>")
		}
		password := promptPassword("Card password: ")
		svc := accountsvc.New(uow, policy, logger)
		a, err := svc.CreateCard(ctx, args[0], password)
		if err != nil {
			fail("card creation failed: %v", err)
		}
		color.Green("Created card %s, balance %s", a.Number, a.Balance)

	case "authorize":
		if len(args) < 2 {
			fail("Usage: authorize <number> <amount>")
		}
		amount := parseAmount(args[1])
		password := promptPassword("Card password: ")
		svc := authorizersvc.New(uow, collector, logger)
		rec, err := svc.Authorize(ctx, args[0], password, amount)
		if err != nil {
			fail("authorization denied: %v", err)
		}
		color.Green("Authorized %s on card %s (transaction %s)", rec.Amount, args[0], rec.ID)

	case "transfer":
		mode := transfersvc.ByEmail
		var rest []string
		for _, a := range args {
			if a == "--cpf" {
				mode = transfersvc.ByCPF
				continue
			}
			rest = append(rest, a)
		}
		if len(rest) < 3 {
			fail("Usage: transfer <sender> <receiver> <amount> [--cpf]")
		}
		amount := parseAmount(rest[2])
		password := promptPassword("Sender account password: ")
		svc := transfersvc.New(uow, collector, logger)
		rec, err := svc.Transfer(ctx, rest[0], rest[1], amount, password, mode)
		if err != nil {
			fail("transfer failed: %v", err)
		}
		color.Green("Transferred %s from %s to %s (transaction %s)", rec.Amount, rest[0], rest[1], rec.ID)

	case "gencode":
		if len(args) < 2 {
			fail("Usage: gencode <email> <amount>")
		}
		amount := parseAmount(args[1])
		password := promptPassword("Account password: ")
		svc := depositcodesvc.New(uow, collector, logger)
		dc, err := svc.Generate(ctx, args[0], password, amount)
		if err != nil {
			fail("code generation failed: %v", err)
		}
		color.Green("Generated code %s worth %s", dc.Code, dc.Amount)

	case "redeem":
		if len(args) < 2 {
			fail("Usage: redeem <code> <email>")
		}
		svc := depositcodesvc.New(uow, collector, logger)
		dc, err := svc.Redeem(ctx, args[0], args[1])
		if err != nil {
			fail("redemption failed: %v", err)
		}
		color.Green("Redeemed code %s, credited %s", dc.Code, dc.Amount)

	case "balance":
		if len(args) < 1 {
			fail("Usage: balance <number>")
		}
		svc := accountsvc.New(uow, policy, logger)
		bal, err := svc.Balance(ctx, args[0])
		if err != nil {
			fail("could not fetch balance: %v", err)
		}
		color.Green("Account %s balance: %s", args[0], bal)

	case "passwd":
		if len(args) < 1 {
			fail("Usage: passwd <email>")
		}
		current := promptPassword("Current password: ")
		updated := promptPassword("New password: ")
		svc := accountsvc.New(uow, policy, logger)
		if err := svc.ChangePassword(ctx, args[0], current, updated); err != nil {
			fail("password change failed: %v", err)
		}
		color.Green("Password changed for %s", args[0])

	default:
		color.Red("Unknown command: %s", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func parseAmount(s string) money.Money {
	amount, err := money.Parse(s)
	if err != nil {
		fail("invalid amount %q: %v", s, err)
	}
	return amount
}

// promptPassword reads a credential without echoing it. When stdin is not a
// terminal (piped input) it falls back to a plain line read.
func promptPassword(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			fail("could not read password: %v", err)
		}
		return string(b)
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		fail("could not read password: %v", err)
	}
	return strings.TrimRight(line, "\r\n")
}

func fail(format string, args ...any) {
	color.Red(format, args...)
	os.Exit(1)
}
