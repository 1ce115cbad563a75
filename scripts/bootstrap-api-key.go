package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/penshort/linkstats/internal/auth"
	"github.com/penshort/linkstats/internal/model"
	"github.com/penshort/linkstats/internal/repository"
)

type output struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	KeyID     string   `json:"key_id"`
	Key       string   `json:"key"`
	KeyPrefix string   `json:"key_prefix"`
	Scopes    []string `json:"scopes"`
	Tier      string   `json:"rate_limit_tier"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "dashboard@linkstats.local", "Owner email; the user is created if missing")
		name        = flag.String("name", "bootstrap", "API key name")
		scopesInput = flag.String("scopes", "read", "Comma-separated scopes (read,write,admin)")
		tier        = flag.String("tier", model.TierFree, "Rate limit tier (free,pro,unlimited)")
		env         = flag.String("env", auth.EnvLive, "Key environment (live,test)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fail("DATABASE_URL is required")
	}

	scopes, err := parseScopes(*scopesInput)
	if err != nil {
		fail(err.Error())
	}
	if _, ok := model.TierConfigs[*tier]; !ok {
		fail("invalid tier: " + *tier)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fail("connect database: " + err.Error())
	}
	defer repo.Close()

	user, err := repo.GetOrCreateUser(ctx, &model.User{ID: ulid.Make().String(), Email: *email})
	if err != nil {
		fail("ensure user: " + err.Error())
	}

	generated, err := auth.GenerateAPIKey(*env)
	if err != nil {
		fail("generate api key: " + err.Error())
	}

	apiKey := &model.APIKey{
		ID:            ulid.Make().String(),
		UserID:        user.ID,
		KeyHash:       generated.Hash,
		KeyPrefix:     generated.Prefix,
		Scopes:        scopes,
		RateLimitTier: *tier,
		Name:          *name,
		CreatedAt:     time.Now().UTC(),
	}
	if err := repo.CreateAPIKey(ctx, apiKey); err != nil {
		fail("create api key: " + err.Error())
	}

	out := output{
		UserID:    user.ID,
		Email:     user.Email,
		KeyID:     apiKey.ID,
		Key:       generated.Plaintext,
		KeyPrefix: apiKey.KeyPrefix,
		Scopes:    scopes,
		Tier:      apiKey.RateLimitTier,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fail("invalid format; use plain or json")
	}
}

func parseScopes(input string) ([]string, error) {
	var scopes []string
	for _, part := range strings.Split(input, ",") {
		scope := strings.TrimSpace(part)
		if scope == "" {
			continue
		}
		if !slices.Contains(model.ValidScopes, scope) {
			return nil, fmt.Errorf("invalid scope: %s", scope)
		}
		if !slices.Contains(scopes, scope) {
			scopes = append(scopes, scope)
		}
	}
	if len(scopes) == 0 {
		return []string{model.ScopeRead}, nil
	}
	return scopes, nil
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
