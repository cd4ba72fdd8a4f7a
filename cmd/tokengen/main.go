// cmd/tokengen mints access tokens for load tests against /me.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/sports-portal/services/auth-service/internal/domain"
	"github.com/baechuer/sports-portal/services/auth-service/internal/infrastructure/security"
)

type options struct {
	n          int
	role       string
	out        string
	issuer     string
	accessTTL  time.Duration
	accessKey  string
	refreshKey string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("tokengen", flag.ContinueOnError)
	fs.IntVar(&o.n, "n", 1000, "number of tokens")
	fs.StringVar(&o.role, "role", string(domain.RoleStudent), "student or trainer")
	fs.StringVar(&o.out, "out", "-", "output file, - for stdout")
	fs.StringVar(&o.issuer, "issuer", envOr("JWT_ISSUER", "auth-service"), "iss claim")
	fs.DurationVar(&o.accessTTL, "ttl", time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.accessKey = os.Getenv("ACCESS_TOKEN_SECRET")
	o.refreshKey = os.Getenv("REFRESH_TOKEN_SECRET")

	if o.n <= 0 {
		return o, fmt.Errorf("-n must be positive")
	}
	if !domain.IsValidRole(o.role) {
		return o, domain.ErrInvalidRole(o.role)
	}
	return o, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// mint writes one token per line for synthetic users load-0 .. load-(n-1).
func mint(o options, w io.Writer) error {
	iss, err := security.NewJWTIssuer(security.JWTConfig{
		AccessSecret:  o.accessKey,
		RefreshSecret: o.refreshKey,
		Issuer:        o.issuer,
		AccessTTL:     o.accessTTL,
		RefreshTTL:    o.accessTTL,
	})
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < o.n; i++ {
		tok, err := iss.IssueAccessToken(domain.Claims{
			UserID:    uuid.NewString(),
			Email:     fmt.Sprintf("load-%d@example.com", i),
			FirstName: fmt.Sprintf("load-%d", i),
			Role:      domain.Role(o.role),
		})
		if err != nil {
			return err
		}
		if _, err := bw.WriteString(tok + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	var w io.Writer = os.Stdout
	if o.out != "-" {
		f, err := os.Create(o.out)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := mint(o, w); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "minted %d %s tokens\n", o.n, o.role)
}
