package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finwheel/calc-engine/internal/model"
)

func seedCalculation(t *testing.T, s Store, kind model.Kind) *model.Calculation {
	t.Helper()
	c := &model.Calculation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Inputs:    json.RawMessage(`{"home_price":400000}`),
		Summary:   model.Summary{"monthly_payment": decimal.NewFromFloat(2022.62)},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.SaveCalculation(context.Background(), c); err != nil {
		t.Fatalf("save calculation: %v", err)
	}
	return c
}

func TestMemoryStore_SaveAndGet(t *testing.T) {
	s := NewMemoryStore()
	saved := seedCalculation(t, s, model.KindMortgage)

	got, err := s.GetCalculation(context.Background(), saved.ID)
	if err != nil {
		t.Fatalf("get calculation: %v", err)
	}
	if got.Kind != model.KindMortgage {
		t.Errorf("kind = %s, want mortgage", got.Kind)
	}
	if !got.Summary["monthly_payment"].Equal(decimal.NewFromFloat(2022.62)) {
		t.Errorf("summary payment = %s, want 2022.62", got.Summary["monthly_payment"])
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.GetCalculation(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListRecentNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	var ids []string
	for i := 0; i < 5; i++ {
		c := seedCalculation(t, s, model.KindFire)
		ids = append(ids, c.ID)
	}

	recent, err := s.ListRecent(context.Background(), 3)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("recent length = %d, want 3", len(recent))
	}
	for i, c := range recent {
		if want := ids[len(ids)-1-i]; c.ID != want {
			t.Errorf("recent[%d] = %s, want %s", i, c.ID, want)
		}
	}

	all, err := s.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("unlimited list length = %d, want 5", len(all))
	}
}

func TestMemoryStore_CountByKind(t *testing.T) {
	s := NewMemoryStore()
	seedCalculation(t, s, model.KindMortgage)
	seedCalculation(t, s, model.KindMortgage)
	seedCalculation(t, s, model.KindOptions)

	counts, err := s.CountByKind(context.Background())
	if err != nil {
		t.Fatalf("count by kind: %v", err)
	}
	if counts[model.KindMortgage] != 2 || counts[model.KindOptions] != 1 {
		t.Errorf("counts = %v, want mortgage:2 options:1", counts)
	}
}

func TestMemoryStore_CopyOnSave(t *testing.T) {
	s := NewMemoryStore()
	c := seedCalculation(t, s, model.KindDebts)
	c.Kind = model.KindRentBuy // mutate caller's copy after save

	got, err := s.GetCalculation(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get calculation: %v", err)
	}
	if got.Kind != model.KindDebts {
		t.Errorf("stored record mutated through caller's pointer: kind = %s", got.Kind)
	}
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	s := NewMemoryStore()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			c := &model.Calculation{
				ID:        fmt.Sprintf("calc-%d", i),
				Kind:      model.KindCompound,
				Inputs:    json.RawMessage(`{}`),
				Summary:   model.Summary{},
				CreatedAt: time.Now().UTC(),
			}
			if err := s.SaveCalculation(context.Background(), c); err != nil {
				t.Errorf("save: %v", err)
			}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	all, err := s.ListRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 10 {
		t.Errorf("stored %d records, want 10", len(all))
	}
}
