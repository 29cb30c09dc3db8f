package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPoolSnapshotJSONRoundTrip(t *testing.T) {
	original := PoolSnapshot{
		ChainID:     1,
		PoolID:      "0x7c5b2a6c0f1f7f5a1e3fd3a4d7a2c1f0b9d8e7f6a5b4c3d2e1f0a9b8c7d6e5f4",
		Token0:      TokenMeta{ChainID: 1, Address: "0x1111111111111111111111111111111111111111", Decimals: 18, Symbol: "AAA"},
		Token1:      TokenMeta{ChainID: 1, Address: "0x2222222222222222222222222222222222222222", Decimals: 6, Symbol: "BBB"},
		TickSpacing: 25,
		BlockNumber: 18000000,
		Tiers: []TierSnapshot{{
			Liquidity:     "5000000000000000000",
			SqrtPrice:     "4722366482869645213696",
			SqrtGamma:     99850,
			NextTickBelow: -776363,
			NextTickAbove: 776363,
		}},
	}

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded PoolSnapshot
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round-trip mismatch: %+v != %+v", original, decoded)
	}
}

func TestTierSnapshotJSONStringFields(t *testing.T) {
	data, err := json.Marshal(TierSnapshot{
		Liquidity: "340282366920938463463374607431768211455",
		SqrtPrice: "4722366482869645213696",
		SqrtGamma: 99975,
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if _, ok := decoded["liquidity"].(string); !ok {
		t.Fatalf("liquidity should be string")
	}
	if _, ok := decoded["sqrt_price"].(string); !ok {
		t.Fatalf("sqrt_price should be string")
	}
	if _, ok := decoded["sqrt_gamma"].(float64); !ok {
		t.Fatalf("sqrt_gamma should be a number")
	}
}

func TestSwapRequestTierMasksAreNumbers(t *testing.T) {
	data, err := json.Marshal(SwapRequest{TierMasks: []uint{1, 3}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	masks, ok := decoded["tier_masks"].([]interface{})
	if !ok {
		t.Fatalf("tier_masks should be an array, got %T", decoded["tier_masks"])
	}
	if len(masks) != 2 || masks[0] != float64(1) || masks[1] != float64(3) {
		t.Fatalf("tier_masks = %v", masks)
	}

	var req SwapRequest
	if err := json.Unmarshal([]byte(`{"tier_masks":[1,63]}`), &req); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(req.TierMasks, []uint{1, 63}) {
		t.Fatalf("tier_masks = %v", req.TierMasks)
	}
}
