package cart

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/harborlane/storefront-backend/pkg/errors"
)

type fakeStorage struct {
	lines     map[string][]Line
	saves     int
	deletes   int
	loadErr   error
	saveErr   error
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{lines: map[string][]Line{}}
}

func (f *fakeStorage) Load(ctx context.Context, sessionID string) ([]Line, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.lines[sessionID], nil
}

func (f *fakeStorage) Save(ctx context.Context, sessionID string, lines []Line) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	copied := make([]Line, len(lines))
	copy(copied, lines)
	f.lines[sessionID] = copied
	return nil
}

func (f *fakeStorage) Delete(ctx context.Context, sessionID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes++
	delete(f.lines, sessionID)
	return nil
}

func newTestService(t *testing.T, storage Storage) *Service {
	t.Helper()
	svc, err := NewService(storage, DefaultPricingPolicy(), nil, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestServiceFetchUnknownSessionIsEmptyCart(t *testing.T) {
	svc := newTestService(t, newFakeStorage())
	cart, err := svc.Fetch(context.Background(), "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
	}
	if !cart.Totals.Total.IsZero() {
		t.Fatalf("expected zero total, got %s", cart.Totals.Total)
	}
}

func TestServiceFetchRequiresSession(t *testing.T) {
	svc := newTestService(t, newFakeStorage())
	if _, err := svc.Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected error for missing session id")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceAddItemPersistsAndTotals(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(t, storage)

	cart, outcome, err := svc.AddItem(context.Background(), "s1", testProduct("p1", "50.00"), 2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeAdded {
		t.Fatalf("expected added, got %s", outcome)
	}
	if storage.saves != 1 {
		t.Fatalf("expected 1 save, got %d", storage.saves)
	}
	assertTotals(t, cart.Totals, "100.00", "8.50", "0.00", "108.50")
}

func TestServiceRehydrationRecomputesTotals(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(t, storage)
	ctx := context.Background()

	if _, _, err := svc.AddItem(ctx, "s1", testProduct("p1", "20.00"), 2, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh fetch sees identical totals: nothing but lines is stored.
	cart, err := svc.Fetch(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTotals(t, cart.Totals, "40.00", "3.40", "10.00", "53.40")
	if cart.IsOpen {
		t.Fatal("drawer flag must not survive persistence")
	}
}

func TestServiceAddItemMergesAcrossRequests(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(t, storage)
	ctx := context.Background()

	first, _, err := svc.AddItem(ctx, "s1", testProduct("p1", "10.00", "v1"), 1, "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, outcome, err := svc.AddItem(ctx, "s1", testProduct("p1", "10.00", "v1"), 2, "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeMerged {
		t.Fatalf("expected merged, got %s", outcome)
	}
	if len(second.Lines) != 1 {
		t.Fatalf("expected a single merged line, got %d", len(second.Lines))
	}
	if second.Lines[0].ID != first.Lines[0].ID {
		t.Fatal("merge must keep the original line id across requests")
	}
	if second.Lines[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", second.Lines[0].Quantity)
	}
}

func TestServiceAddItemRequiresProductID(t *testing.T) {
	svc := newTestService(t, newFakeStorage())
	_, _, err := svc.AddItem(context.Background(), "s1", Product{}, 1, "")
	if err == nil {
		t.Fatal("expected error for missing product id")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdateQuantityNotFoundDoesNotPersist(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(t, storage)
	ctx := context.Background()

	if _, _, err := svc.AddItem(ctx, "s1", testProduct("p1", "10.00"), 1, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	savesBefore := storage.saves

	cart, outcome, err := svc.UpdateQuantity(ctx, "s1", "missing", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeNotFound {
		t.Fatalf("expected not_found, got %s", outcome)
	}
	if storage.saves != savesBefore {
		t.Fatal("a not-found update must not re-persist the cart")
	}
	if len(cart.Lines) != 1 || cart.Lines[0].Quantity != 1 {
		t.Fatal("cart must be unchanged")
	}
}

func TestServiceUpdateQuantityZeroRemovesAndPersists(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(t, storage)
	ctx := context.Background()

	added, _, err := svc.AddItem(ctx, "s1", testProduct("p1", "10.00"), 2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, outcome, err := svc.UpdateQuantity(ctx, "s1", added.Lines[0].ID, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeRemoved {
		t.Fatalf("expected removed, got %s", outcome)
	}
	if len(cart.Lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Lines))
	}
	if len(storage.lines["s1"]) != 0 {
		t.Fatal("removal must be persisted")
	}
	assertTotals(t, cart.Totals, "0.00", "0.00", "0.00", "0.00")
}

func TestServiceRemoveItem(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(t, storage)
	ctx := context.Background()

	added, _, err := svc.AddItem(ctx, "s1", testProduct("p1", "10.00"), 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, outcome, err := svc.RemoveItem(ctx, "s1", added.Lines[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeRemoved {
		t.Fatalf("expected removed, got %s", outcome)
	}

	_, outcome, err = svc.RemoveItem(ctx, "s1", added.Lines[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeNotFound {
		t.Fatalf("expected not_found on second removal, got %s", outcome)
	}
}

func TestServiceClearDeletesStorage(t *testing.T) {
	storage := newFakeStorage()
	svc := newTestService(t, storage)
	ctx := context.Background()

	if _, _, err := svc.AddItem(ctx, "s1", testProduct("p1", "10.00"), 1, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart, err := svc.Clear(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storage.deletes != 1 {
		t.Fatalf("expected 1 delete, got %d", storage.deletes)
	}
	if len(cart.Lines) != 0 {
		t.Fatal("expected empty cart after clear")
	}

	fetched, err := svc.Fetch(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fetched.Lines) != 0 {
		t.Fatal("cleared session must rehydrate empty")
	}
}

func TestServiceStorageFailuresSurfaceAsDependency(t *testing.T) {
	storage := newFakeStorage()
	storage.loadErr = errors.New("redis down")
	svc := newTestService(t, storage)
	if _, err := svc.Fetch(context.Background(), "s1"); err == nil {
		t.Fatal("expected error")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}

	storage = newFakeStorage()
	storage.saveErr = errors.New("redis down")
	svc = newTestService(t, storage)
	if _, _, err := svc.AddItem(context.Background(), "s1", testProduct("p1", "10.00"), 1, ""); err == nil {
		t.Fatal("expected error")
	} else if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
