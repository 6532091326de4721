// Command apitoken prints a bearer token for the call API.
//
//	API_JWT_SECRET=... apitoken -subject ops -ttl 720h
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"outbound-caller/internal/auth"
	"outbound-caller/internal/observability"

	"github.com/joho/godotenv"
)

func main() {
	subject := flag.String("subject", "ops", "who the token is issued to")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	logger := observability.NewLogger()
	defer logger.Sync()
	ctx := context.Background()

	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load(".env.local"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Fatal(ctx, "failed to load .env.local", err)
		}
	}

	authenticator, err := auth.New(os.Getenv("API_JWT_SECRET"), logger)
	if err != nil {
		logger.Fatal(ctx, "API_JWT_SECRET is not set", err)
	}

	token, err := authenticator.IssueToken(ctx, *subject, *ttl)
	if err != nil {
		logger.Fatal(ctx, "failed to issue token", err)
	}
	fmt.Println(token)
}
