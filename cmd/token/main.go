// Command token prints a signed bearer token for an existing user. It is an
// operator tool for local runs; sessions are issued elsewhere in production.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/dew-13/solestyle/internal/auth"
	"github.com/dew-13/solestyle/internal/config"
	"github.com/dew-13/solestyle/internal/database"
	"github.com/dew-13/solestyle/internal/store"
)

func main() {
	userID := flag.String("user", "", "user id to issue the token for")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *userID == "" {
		logger.Error("usage: token -user <id>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load_config", "err", err)
		os.Exit(1)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		logger.Error("token needs STORE_DRIVER=postgres to look the user up")
		os.Exit(1)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Error("connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	user, err := store.GetUser(context.Background(), db, *userID)
	if err != nil {
		logger.Error("get_user", "user_id", *userID, "err", err)
		os.Exit(1)
	}

	token, err := auth.NewVerifier(cfg.Auth.JWTSecret).Issue(user.ID, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Error("issue_token", "err", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
