package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()

	client, err := db.New(context.Background(), config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:users_" + uuid.NewString() + "?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.Account{}, &models.Product{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	svc, err := NewService(NewRepository(client.DB()), client, testPasswordConfig())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, client
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func strPtr(s string) *string { return &s }

// deactivateAccount flips the lifecycle flag directly; there is no
// deactivation endpoint, so tests set up retired accounts at the row level.
func deactivateAccount(t *testing.T, client *db.Client, id int64) {
	t.Helper()
	err := client.DB().
		Model(&models.Account{}).
		Where("id = ?", id).
		Update("is_active", false).
		Error
	if err != nil {
		t.Fatalf("deactivate account: %v", err)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterInput{
		Username: "warehouse",
		Password: "secret1",
		Email:    strPtr("ops@example.com"),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.ID <= 0 {
		t.Fatalf("expected positive account id, got %d", dto.ID)
	}
	if !dto.IsActive {
		t.Fatal("new account should be active")
	}

	account, err := svc.Authenticate(ctx, "warehouse", "secret1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if account.ID != dto.ID {
		t.Fatalf("authenticated wrong account: %d != %d", account.ID, dto.ID)
	}
	if account.PasswordHash == "secret1" {
		t.Fatal("password stored in plaintext")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Password: "secret1"}},
		{"short password", RegisterInput{Username: "warehouse", Password: "12345"}},
		{"email without at sign", RegisterInput{Username: "warehouse", Password: "secret1", Email: strPtr("not-an-email")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "warehouse", Password: "secret1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, RegisterInput{Username: "warehouse", Password: "other-secret"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "first", Password: "secret1", Email: strPtr("ops@example.com")}); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, RegisterInput{Username: "second", Password: "secret1", Email: strPtr("ops@example.com")})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestRegisterAllowsMissingEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "first", Password: "secret1"}); err != nil {
		t.Fatalf("register without email: %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{Username: "second", Password: "secret1"}); err != nil {
		t.Fatalf("second register without email should not collide: %v", err)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterInput{Username: "warehouse", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "nobody", "secret1"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "warehouse", "wrong-pass"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}

	deactivateAccount(t, client, dto.ID)
	if _, err := svc.Authenticate(ctx, "warehouse", "secret1"); !errors.Is(err, ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}

func TestGetProfileCountsActiveProducts(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterInput{Username: "warehouse", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	owner := dto.ID
	rows := []models.Product{
		{Name: "Widget", SKU: "SKU-1", Price: 1, Quantity: 5, IsActive: true, CreatedByID: &owner},
		{Name: "Gadget", SKU: "SKU-2", Price: 2, Quantity: 0, IsActive: true, CreatedByID: &owner},
		{Name: "Retired", SKU: "SKU-3", Price: 3, Quantity: 1, IsActive: false, CreatedByID: &owner},
	}
	for i := range rows {
		if err := client.DB().Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	profile, err := svc.GetProfile(ctx, dto.ID)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if profile.TotalProducts != 2 {
		t.Fatalf("expected 2 active products, got %d", profile.TotalProducts)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProfile(context.Background(), 9999)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterInput{Username: "warehouse", Password: "secret1", Email: strPtr("old@example.com")})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, dto.ID, UpdateProfileInput{
		Email:    strPtr("new@example.com"),
		Password: strPtr("rotated-secret"),
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if updated.Email == nil || *updated.Email != "new@example.com" {
		t.Fatalf("email not updated: %v", updated.Email)
	}

	if _, err := svc.Authenticate(ctx, "warehouse", "secret1"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "warehouse", "rotated-secret"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestUpdateProfileResubmitOwnEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterInput{Username: "warehouse", Password: "secret1", Email: strPtr("ops@example.com")})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.UpdateProfile(ctx, dto.ID, UpdateProfileInput{Email: strPtr("ops@example.com")}); err != nil {
		t.Fatalf("re-submitting own email should be a no-op: %v", err)
	}
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Username: "first", Password: "secret1", Email: strPtr("taken@example.com")}); err != nil {
		t.Fatalf("register first: %v", err)
	}
	dto, err := svc.Register(ctx, RegisterInput{Username: "second", Password: "secret1"})
	if err != nil {
		t.Fatalf("register second: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, dto.ID, UpdateProfileInput{Email: strPtr("taken@example.com")})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateProfileNoFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterInput{Username: "warehouse", Password: "secret1"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.UpdateProfile(ctx, dto.ID, UpdateProfileInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
