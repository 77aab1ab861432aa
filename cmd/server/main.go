package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"slices"

	"github.com/dmitrijs2005/vehiclereg/internal/server"
	"github.com/dmitrijs2005/vehiclereg/internal/server/auth"
	"github.com/dmitrijs2005/vehiclereg/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	// registry-server [flags] issue-token <operator>
	if i := slices.Index(os.Args, "issue-token"); i > 0 {
		if i+1 >= len(os.Args) {
			log.Fatal("usage: issue-token <operator>")
		}
		if err := issueToken(cfg, os.Args[i+1]); err != nil {
			log.Fatal(err)
		}
		return
	}

	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}

func issueToken(cfg *config.Config, operator string) error {
	if cfg.SecretKey == "" {
		return fmt.Errorf("a secret key (-s) is required to issue tokens")
	}
	tok, err := auth.GenerateToken(operator, []byte(cfg.SecretKey), cfg.TokenValidityDuration)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}
