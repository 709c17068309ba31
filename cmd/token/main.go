// Package main mints an access token for a user ID, signed with the
// configured secret. It is meant for local development and scripted clients.
//
// Usage:
//
//	token [-user uuid]
//
// Without -user a random user ID is generated. The token is printed to stdout
// and the user ID to stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/service/auth"
)

func main() {
	user := flag.String("user", "", "user ID to issue the token for")
	flag.Parse()

	if err := run(*user, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
}

func run(user string, out, info io.Writer) error {
	userID, err := parseUser(user)
	if err != nil {
		return err
	}

	cfg, err := config.LoadAuth()
	if err != nil {
		return err
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}

	token, err := jwtService.GenerateToken(context.Background(), userID)
	if err != nil {
		return err
	}

	fmt.Fprintf(info, "user_id: %s\n", userID)
	_, err = fmt.Fprintln(out, token)
	return err
}

func parseUser(user string) (uuid.UUID, error) {
	if user == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(user)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID %q: %w", user, err)
	}
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("user ID cannot be the nil UUID")
	}
	return id, nil
}
