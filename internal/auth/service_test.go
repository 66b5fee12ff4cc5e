package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/internal/users"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/token"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "stockroom-test",
		ExpirationMinutes: 15,
		LeewaySeconds:     10,
	}
}

func newTestAuth(t *testing.T) (Service, users.Service, *db.Client) {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:auth_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.Account{}, &models.Product{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	usersSvc, err := users.NewService(users.NewRepository(client.DB()), client, config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	})
	if err != nil {
		t.Fatalf("build users service: %v", err)
	}

	authSvc, err := NewService(usersSvc, testJWTConfig(), nil)
	if err != nil {
		t.Fatalf("build auth service: %v", err)
	}
	return authSvc, usersSvc, client
}

func TestLoginMintsVerifiableToken(t *testing.T) {
	authSvc, usersSvc, _ := newTestAuth(t)
	ctx := context.Background()

	registered, err := usersSvc.Register(ctx, users.RegisterInput{Username: "warehouse", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := authSvc.Login(ctx, LoginRequest{Username: "warehouse", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("empty access token")
	}
	if resp.Account == nil || resp.Account.ID != registered.ID {
		t.Fatalf("unexpected account in response: %+v", resp.Account)
	}

	claims, err := token.ParseAccessToken(testJWTConfig(), resp.AccessToken, time.Now)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.AccountID != registered.ID {
		t.Fatalf("token bound to wrong account: %d", claims.AccountID)
	}
}

func TestLoginCollapsesFailures(t *testing.T) {
	authSvc, usersSvc, client := newTestAuth(t)
	ctx := context.Background()

	registered, err := usersSvc.Register(ctx, users.RegisterInput{Username: "warehouse", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	err = client.DB().
		Model(&models.Account{}).
		Where("id = ?", registered.ID).
		Update("is_active", false).
		Error
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	cases := []struct {
		name  string
		input LoginRequest
	}{
		{"unknown username", LoginRequest{Username: "nobody", Password: "secret1"}},
		{"wrong password", LoginRequest{Username: "warehouse", Password: "not-the-pass"}},
		{"deactivated account", LoginRequest{Username: "warehouse", Password: "secret1"}},
	}

	var messages []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := authSvc.Login(ctx, tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			messages = append(messages, typed.Message())
		})
	}

	for i := 1; i < len(messages); i++ {
		if messages[i] != messages[0] {
			t.Fatalf("login failures leak distinct messages: %q vs %q", messages[0], messages[i])
		}
	}
}
