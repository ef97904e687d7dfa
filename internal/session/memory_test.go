package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pulsedelivery/orderbot/internal/order"
)

func TestMemoryManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	s, err := m.Get(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	if s.State != order.StateIdle {
		t.Fatalf("fresh session state = %q", s.State)
	}
	if s.Draft == nil || s.Draft.CustomerID != 42 {
		t.Fatalf("fresh session draft = %+v", s.Draft)
	}

	if n, _ := m.Count(ctx); n != 0 {
		t.Fatalf("count before update = %d", n)
	}

	err = m.Update(ctx, 42, func(s *Session) {
		s.State = order.StateItems
		s.Draft.Items = append(s.Draft.Items, "Хліб")
	})
	if err != nil {
		t.Fatal(err)
	}

	s, _ = m.Get(ctx, 42)
	if s.State != order.StateItems || len(s.Draft.Items) != 1 {
		t.Fatalf("session after update = %+v", s)
	}
	if n, _ := m.Count(ctx); n != 1 {
		t.Fatalf("count = %d", n)
	}

	if err := m.Clear(ctx, 42); err != nil {
		t.Fatal(err)
	}
	s, _ = m.Get(ctx, 42)
	if s.State != order.StateIdle {
		t.Fatalf("state after clear = %q", s.State)
	}
	if n, _ := m.Count(ctx); n != 0 {
		t.Fatalf("count after clear = %d", n)
	}
}

func TestMemoryManagerConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Update(ctx, 7, func(s *Session) {
				s.Draft.Items = append(s.Draft.Items, "x")
			})
		}()
	}
	wg.Wait()

	s, _ := m.Get(ctx, 7)
	if len(s.Draft.Items) != 100 {
		t.Fatalf("items = %d, want 100", len(s.Draft.Items))
	}
}

// A slow closure for one customer (e.g. a geocoder lookup mid-transition)
// must not stall updates for anyone else.
func TestMemoryManagerUpdatesAreIndependentPerCustomer(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	entered := make(chan struct{})
	release := make(chan struct{})
	firstDone := make(chan struct{})
	go func() {
		_ = m.Update(ctx, 1, func(s *Session) {
			close(entered)
			<-release
		})
		close(firstDone)
	}()
	<-entered

	secondDone := make(chan struct{})
	go func() {
		_ = m.Update(ctx, 2, func(s *Session) {
			s.State = order.StateName
		})
		close(secondDone)
	}()

	select {
	case <-secondDone:
	case <-time.After(2 * time.Second):
		t.Fatal("update for customer 2 blocked behind customer 1's closure")
	}

	close(release)
	<-firstDone

	s, _ := m.Get(ctx, 2)
	if s.State != order.StateName {
		t.Fatalf("customer 2 state = %q", s.State)
	}
}

// Same-customer updates stay strictly serialized even though different
// customers proceed independently.
func TestMemoryManagerSameCustomerSerialized(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = m.Update(ctx, 9, func(s *Session) {
			close(entered)
			<-release
		})
	}()
	<-entered

	secondDone := make(chan struct{})
	go func() {
		_ = m.Update(ctx, 9, func(s *Session) {})
		close(secondDone)
	}()

	select {
	case <-secondDone:
		t.Fatal("second update for the same customer ran concurrently")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-secondDone:
	case <-time.After(2 * time.Second):
		t.Fatal("second update never ran after the first released")
	}
}

func TestMemoryManagerGetReturnsDeepCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	err := m.Update(ctx, 5, func(s *Session) {
		s.State = order.StateItems
		s.Draft.Items = []string{"молоко"}
		s.Draft.Location = &order.Coordinates{Lat: 50.45, Lon: 30.52}
	})
	if err != nil {
		t.Fatal(err)
	}

	got, _ := m.Get(ctx, 5)
	got.State = order.StateCancelled
	got.Draft.Items[0] = "підмінено"
	got.Draft.Items = append(got.Draft.Items, "зайве")
	got.Draft.Location.Lat = 0

	fresh, _ := m.Get(ctx, 5)
	if fresh.State != order.StateItems {
		t.Fatalf("stored state mutated via Get copy: %q", fresh.State)
	}
	if len(fresh.Draft.Items) != 1 || fresh.Draft.Items[0] != "молоко" {
		t.Fatalf("stored items mutated via Get copy: %v", fresh.Draft.Items)
	}
	if fresh.Draft.Location.Lat != 50.45 {
		t.Fatalf("stored location mutated via Get copy: %+v", fresh.Draft.Location)
	}
}
