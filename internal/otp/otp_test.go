package otp

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreVerifyConsumesCode(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	if err := st.Put(ctx, "user@test", "123456", time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := st.Verify(ctx, "user@test", "123456"); err != nil {
		t.Fatalf("valid code rejected: %v", err)
	}
	// Second use must fail: the code is consumed.
	if err := st.Verify(ctx, "user@test", "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("consumed code accepted: %v", err)
	}
}

func TestMemoryStoreWrongCode(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	_ = st.Put(ctx, "user@test", "123456", time.Minute)
	if err := st.Verify(ctx, "user@test", "654321"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("wrong code accepted: %v", err)
	}
	// A wrong attempt does not consume the stored code.
	if err := st.Verify(ctx, "user@test", "123456"); err != nil {
		t.Fatalf("correct code rejected after wrong attempt: %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	st := NewMemoryStore().(*memoryStore)
	base := time.Now()
	st.now = func() time.Time { return base }
	ctx := context.Background()
	_ = st.Put(ctx, "user@test", "123456", time.Minute)
	st.now = func() time.Time { return base.Add(2 * time.Minute) }
	if err := st.Verify(ctx, "user@test", "123456"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired code accepted: %v", err)
	}
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in code %q", code)
		}
	}
}
