package inventory

import (
	"context"
	"fmt"
	"sync"
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
		DSN:    "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared",
		// sqlite allows one writer; a single pooled conn serializes the
		// concurrent tests instead of surfacing SQLITE_BUSY.
		MaxOpenConns: 1,
	}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(&models.Account{}, &models.Product{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	svc, err := NewService(NewRepository(client.DB()), client)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, client
}

func seedProduct(t *testing.T, svc Service, sku string, quantity int) *ProductDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), CreateProductInput{
		Name:     "Widget " + sku,
		SKU:      sku,
		Quantity: quantity,
		Price:    9.99,
	}, 0)
	if err != nil {
		t.Fatalf("seed product %s: %v", sku, err)
	}
	return dto
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateProductInput
	}{
		{"short name", CreateProductInput{Name: "W", SKU: "SKU-1", Price: 1}},
		{"short sku", CreateProductInput{Name: "Widget", SKU: "AB", Price: 1}},
		{"negative quantity", CreateProductInput{Name: "Widget", SKU: "SKU-1", Quantity: -1, Price: 1}},
		{"negative price", CreateProductInput{Name: "Widget", SKU: "SKU-1", Price: -0.01}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input, 0)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateDuplicateSKU(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seedProduct(t, svc, "SKU-1", 5)

	_, err := svc.Create(ctx, CreateProductInput{Name: "Another", SKU: "SKU-1", Price: 2}, 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateDuplicateSKUAgainstRetiredProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := seedProduct(t, svc, "SKU-1", 5)
	if err := svc.SoftDelete(ctx, dto.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// the retired row still reserves its SKU
	_, err := svc.Create(ctx, CreateProductInput{Name: "Another", SKU: "SKU-1", Price: 2}, 0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict against retired sku, got %v", err)
	}
}

func TestCreateConcurrentSameSKU(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	outcomes := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Create(ctx, CreateProductInput{
				Name:     fmt.Sprintf("Widget %d", n),
				SKU:      "SKU-RACE",
				Quantity: n,
				Price:    1,
			}, 0)
			outcomes <- err
		}(i)
	}
	wg.Wait()
	close(outcomes)

	var wins, conflicts int
	for err := range outcomes {
		if err == nil {
			wins++
			continue
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeConflict {
			t.Fatalf("loser saw %v instead of a conflict", err)
		}
		conflicts++
	}

	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
	if conflicts != workers-1 {
		t.Fatalf("expected %d conflicts, got %d", workers-1, conflicts)
	}

	// exactly one row made it in
	results, err := svc.Search(ctx, "Widget")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected a single stored product, found %d", len(results))
	}
}

func TestGetByIDAndSKU(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := seedProduct(t, svc, "SKU-1", 5)

	byID, err := svc.GetByID(ctx, dto.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if !byID.InStock {
		t.Fatal("product with quantity 5 should be in stock")
	}

	bySKU, err := svc.GetBySKU(ctx, "SKU-1")
	if err != nil {
		t.Fatalf("get by sku: %v", err)
	}
	if bySKU.ID != dto.ID {
		t.Fatalf("sku lookup returned wrong product: %d", bySKU.ID)
	}

	if _, err := svc.GetByID(ctx, 9999); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateQuantity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := seedProduct(t, svc, "SKU-1", 5)

	updated, err := svc.UpdateQuantity(ctx, dto.ID, 0)
	if err != nil {
		t.Fatalf("update quantity: %v", err)
	}
	if updated.Quantity != 0 {
		t.Fatalf("expected quantity 0, got %d", updated.Quantity)
	}
	if updated.InStock {
		t.Fatal("quantity 0 must read as out of stock")
	}

	_, err = svc.UpdateQuantity(ctx, dto.ID, -1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative quantity, got %v", err)
	}

	_, err = svc.UpdateQuantity(ctx, 9999, 3)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateQuantityOnRetiredProduct(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := seedProduct(t, svc, "SKU-1", 5)
	if err := svc.SoftDelete(ctx, dto.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	_, err := svc.UpdateQuantity(ctx, dto.ID, 3)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateQuantityConcurrent(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	dto := seedProduct(t, svc, "SKU-1", 0)

	submitted := []int{3, 10, 7, 1, 25, 0, 14, 8}
	var wg sync.WaitGroup
	errs := make(chan error, len(submitted))

	for _, qty := range submitted {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			if _, err := svc.UpdateQuantity(ctx, dto.ID, q); err != nil {
				errs <- err
			}
		}(qty)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent update failed: %v", err)
	}

	var final models.Product
	if err := client.DB().First(&final, "id = ?", dto.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if final.Quantity < 0 {
		t.Fatalf("quantity went negative: %d", final.Quantity)
	}
	found := false
	for _, q := range submitted {
		if final.Quantity == q {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("final quantity %d is not one of the submitted values %v", final.Quantity, submitted)
	}
}

func TestUpdateFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := seedProduct(t, svc, "SKU-1", 5)

	name := "Renamed Widget"
	price := 19.99
	desc := "restocked weekly"
	updated, err := svc.UpdateFields(ctx, dto.ID, UpdateProductInput{
		Name:        &name,
		Price:       &price,
		Description: &desc,
	})
	if err != nil {
		t.Fatalf("update fields: %v", err)
	}
	if updated.Name != name || updated.Price != price {
		t.Fatalf("fields not applied: %+v", updated)
	}
	if updated.Quantity != 5 {
		t.Fatalf("quantity must be untouched by field updates, got %d", updated.Quantity)
	}
	if updated.SKU != "SKU-1" {
		t.Fatalf("sku must be immutable, got %s", updated.SKU)
	}

	if _, err := svc.UpdateFields(ctx, dto.ID, UpdateProductInput{}); pkgerrors.As(err) == nil {
		t.Fatal("empty update should be rejected")
	}

	bad := "X"
	_, err = svc.UpdateFields(ctx, dto.ID, UpdateProductInput{Name: &bad})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for short name, got %v", err)
	}
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dto := seedProduct(t, svc, "SKU-1", 5)

	if err := svc.SoftDelete(ctx, dto.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.SoftDelete(ctx, dto.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}

	_, err := svc.GetByID(ctx, dto.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("retired product should read as not found, got %v", err)
	}

	if err := svc.SoftDelete(ctx, 9999); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("deleting a missing product should be not found, got %v", err)
	}
}

func TestSearchActiveOnlyOrdered(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := seedProduct(t, svc, "SKU-1", 1)
	second := seedProduct(t, svc, "SKU-2", 2)
	retired := seedProduct(t, svc, "SKU-3", 3)
	if err := svc.SoftDelete(ctx, retired.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	results, err := svc.Search(ctx, "Widget")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 active matches, got %d", len(results))
	}
	if results[0].ID != first.ID || results[1].ID != second.ID {
		t.Fatalf("results not ordered by id: %+v", results)
	}

	if _, err := svc.Search(ctx, "  "); pkgerrors.As(err) == nil {
		t.Fatal("blank search term should be rejected")
	}
}

func TestListPagination(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	skus := []string{"SKU-1", "SKU-2", "SKU-3", "SKU-4", "SKU-5"}
	for _, sku := range skus {
		seedProduct(t, svc, sku, 1)
	}

	page, err := svc.List(ctx, ListInput{Page: 2, PerPage: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 5 {
		t.Fatalf("expected total 5, got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items on page 2, got %d", len(page.Items))
	}
	if page.Items[0].SKU != "SKU-3" {
		t.Fatalf("unexpected first item on page 2: %s", page.Items[0].SKU)
	}

	defaults, err := svc.List(ctx, ListInput{})
	if err != nil {
		t.Fatalf("list with defaults: %v", err)
	}
	if defaults.Page != 1 || defaults.PerPage != defaultPerPage {
		t.Fatalf("defaults not applied: page=%d per_page=%d", defaults.Page, defaults.PerPage)
	}
}
