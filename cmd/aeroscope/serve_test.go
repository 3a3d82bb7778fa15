package main

import (
	"testing"

	"aeroScope/internal/listing"
)

func TestPoolsOrCurated(t *testing.T) {
	got, err := poolsOrCurated(nil)
	if err != nil {
		t.Fatalf("curated fallback: %v", err)
	}
	if len(got) != len(listing.CuratedAddresses()) {
		t.Fatalf("expected curated set, got %d pools", len(got))
	}

	got, err = poolsOrCurated([]string{"0x1111111111111111111111111111111111111111"})
	if err != nil || len(got) != 1 {
		t.Fatalf("explicit list: %v %v", got, err)
	}

	if _, err := poolsOrCurated([]string{"0x12"}); err == nil {
		t.Fatalf("expected invalid address error")
	}
}
