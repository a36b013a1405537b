package blockchain

import (
	"context"
	"strings"
	"testing"
)

func TestAnchorDeterminism(t *testing.T) {
	a := NewKeccakAnchor()
	ctx := context.Background()
	payload := []byte(`{"title":"pothole","latitude":27.7172}`)

	first, err := a.AnchorReport(ctx, 1, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := a.AnchorReport(ctx, 1, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("same content anchored to different hashes: %s vs %s", first, second)
	}
	if !strings.HasPrefix(first, "0x") || len(first) != 66 {
		t.Errorf("unexpected hash format: %s", first)
	}
}

func TestAnchorSensitivity(t *testing.T) {
	a := NewKeccakAnchor()
	ctx := context.Background()
	payload := []byte(`{"title":"pothole"}`)

	base, _ := a.AnchorReport(ctx, 1, payload)
	otherReport, _ := a.AnchorReport(ctx, 2, payload)
	otherPayload, _ := a.AnchorReport(ctx, 1, []byte(`{"title":"garbage"}`))

	if base == otherReport {
		t.Error("different report ids must anchor differently")
	}
	if base == otherPayload {
		t.Error("different content must anchor differently")
	}
}

func TestVerify(t *testing.T) {
	a := NewKeccakAnchor()
	ctx := context.Background()
	payload := []byte(`{"title":"pothole"}`)

	hash, err := a.AnchorReport(ctx, 9, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := a.Verify(ctx, 9, payload, hash)
	if err != nil || !ok {
		t.Errorf("expected verification to pass, got ok=%v err=%v", ok, err)
	}

	ok, err = a.Verify(ctx, 9, []byte(`{"title":"tampered"}`), hash)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("tampered content must not verify")
	}
}
