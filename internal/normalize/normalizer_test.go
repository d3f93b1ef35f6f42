package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"reflect"
	"testing"

	"github.com/tervyx/claimpipe/internal/hints"
	"github.com/tervyx/claimpipe/internal/model"
)

const testRules = `
version: v-test
phi:
  phi_quantum:
    patterns: ["quantum"]
k:
  k_banned_substance:
    patterns: ["ephedra"]
l:
  weights:
    miracle: 3
    "100%": 2
    instant: 2
    "clinically proven": 1
`

func testNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	rules, err := hints.ParseRules([]byte(testRules))
	if err != nil {
		t.Fatalf("ParseRules: %v", err)
	}
	return NewNormalizer(hints.NewMatcher(rules), model.NormalizeConfig{
		LHardThreshold:    3,
		LSoftThreshold:    1,
		MinOCRConfidence:  0.7,
		MinClaimTextChars: 10,
	})
}

func testRecord(claims ...model.RawClaim) model.RawExtractionRecord {
	return model.RawExtractionRecord{
		ProductID:  "B0TEST0001",
		PageSHA256: "deadbeef",
		Claims:     claims,
		Extraction: model.ExtractionMeta{Model: "gpt-4o-mini", Version: "v1", Temperature: 0},
	}
}

func TestNormalizer_RejectsNonZeroTemperature(t *testing.T) {
	n := testNormalizer(t)

	rec := testRecord(model.RawClaim{Text: "Clinically proven results", ClaimType: "efficacy", Source: "text"})
	rec.Extraction.Temperature = 0.7

	claims, _, err := n.NormalizeRecord(rec)
	if err == nil {
		t.Fatal("expected rejection for temperature 0.7")
	}
	var rejected *RecordRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("expected RecordRejectedError, got %T", err)
	}
	if rejected.ProductID != "B0TEST0001" {
		t.Errorf("expected product id in error, got %q", rejected.ProductID)
	}
	if len(claims) != 0 {
		t.Errorf("rejected record must emit zero claims, got %d", len(claims))
	}
}

func TestNormalizer_OneClaimPerNonEmptyRawClaim(t *testing.T) {
	n := testNormalizer(t)

	rec := testRecord(
		model.RawClaim{Text: "Clinically proven to improve sleep quality by 87%", ClaimType: "efficacy", Source: "text"},
		model.RawClaim{Text: "   ", ClaimType: "efficacy", Source: "text"},
		model.RawClaim{Text: "Supports healthy immune function", ClaimType: "mechanism", Source: "text"},
	)

	claims, stats, err := n.NormalizeRecord(rec)
	if err != nil {
		t.Fatalf("NormalizeRecord: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims, got %d", len(claims))
	}
	if stats.DroppedClaims != 1 {
		t.Errorf("expected 1 dropped claim, got %d", stats.DroppedClaims)
	}

	// Ordinals follow raw positions, so the dropped middle claim
	// leaves a gap rather than renumbering its successor
	if claims[0].ClaimID != "B0TEST0001_c0000" {
		t.Errorf("first claim id: %s", claims[0].ClaimID)
	}
	if claims[1].ClaimID != "B0TEST0001_c0002" {
		t.Errorf("second claim id: %s", claims[1].ClaimID)
	}
}

func TestNormalizer_GateExamples(t *testing.T) {
	n := testNormalizer(t)

	cases := []struct {
		text  string
		gate  model.GateHint
		score int
	}{
		{"Clinically proven to improve sleep quality by 87%", model.GateLSoft, 1},
		{"Quantum energy field healing device", model.GatePhiCandidate, 0},
		{"Miracle cure with 100% instant results", model.GateLHard, 7},
		{"Contains ephedra for maximum effect", model.GateKCandidate, 0},
		{"A plain descriptive sentence", model.GateNone, 0},
	}

	for _, tc := range cases {
		rec := testRecord(model.RawClaim{Text: tc.text, ClaimType: "efficacy", Source: "text"})
		claims, _, err := n.NormalizeRecord(rec)
		if err != nil {
			t.Fatalf("%q: %v", tc.text, err)
		}
		c := claims[0]
		if c.GateHint != tc.gate {
			t.Errorf("%q: expected gate %s, got %s", tc.text, tc.gate, c.GateHint)
		}
		if c.LTokenScore != tc.score {
			t.Errorf("%q: expected score %d, got %d", tc.text, tc.score, c.LTokenScore)
		}
	}
}

func TestNormalizer_ReviewNeeded(t *testing.T) {
	n := testNormalizer(t)
	low := 0.5
	high := 0.9

	cases := []struct {
		name   string
		claim  model.RawClaim
		review bool
	}{
		{"clean text claim", model.RawClaim{Text: "Supports restful sleep overnight", ClaimType: "efficacy", Source: "text"}, false},
		{"low ocr confidence", model.RawClaim{Text: "Supports restful sleep overnight", ClaimType: "efficacy", Source: "image", OCRConfidence: &low}, true},
		{"high ocr confidence", model.RawClaim{Text: "Supports restful sleep overnight", ClaimType: "efficacy", Source: "image", OCRConfidence: &high}, false},
		{"unknown claim type", model.RawClaim{Text: "Supports restful sleep overnight", ClaimType: "mystery", Source: "text"}, true},
		{"implausibly short", model.RawClaim{Text: "Sleep", ClaimType: "efficacy", Source: "text"}, true},
	}

	for _, tc := range cases {
		claims, _, err := n.NormalizeRecord(testRecord(tc.claim))
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if claims[0].ReviewNeeded != tc.review {
			t.Errorf("%s: expected review_needed=%v", tc.name, tc.review)
		}
	}
}

func TestNormalizer_UnknownTypeFallsBackToEfficacy(t *testing.T) {
	n := testNormalizer(t)

	claims, _, err := n.NormalizeRecord(testRecord(
		model.RawClaim{Text: "Supports restful sleep overnight", ClaimType: "prophecy", Source: "text"},
	))
	if err != nil {
		t.Fatalf("NormalizeRecord: %v", err)
	}
	if claims[0].ClaimType != model.ClaimTypeEfficacy {
		t.Errorf("expected efficacy fallback, got %s", claims[0].ClaimType)
	}
}

func TestNormalizer_ContentHash(t *testing.T) {
	n := testNormalizer(t)

	text := "  Clinically proven to improve sleep  "
	claims, _, err := n.NormalizeRecord(testRecord(
		model.RawClaim{Text: text, ClaimType: "efficacy", Source: "text"},
	))
	if err != nil {
		t.Fatalf("NormalizeRecord: %v", err)
	}

	sum := sha256.Sum256([]byte("Clinically proven to improve sleep"))
	want := hex.EncodeToString(sum[:])
	if claims[0].ClaimSHA256 != want {
		t.Errorf("expected hash of trimmed text %s, got %s", want, claims[0].ClaimSHA256)
	}
	// Verbatim text is preserved untrimmed
	if claims[0].TextVerbatim != text {
		t.Errorf("verbatim text altered: %q", claims[0].TextVerbatim)
	}
}

func TestNormalizer_Deterministic(t *testing.T) {
	n := testNormalizer(t)

	rec := testRecord(
		model.RawClaim{Text: "Miracle cure with 100% instant results", ClaimType: "efficacy", Source: "text"},
		model.RawClaim{Text: "Quantum energy field healing", ClaimType: "mechanism", Source: "text"},
	)

	first, _, err := n.NormalizeRecord(rec)
	if err != nil {
		t.Fatalf("NormalizeRecord: %v", err)
	}
	second, _, err := n.NormalizeRecord(rec)
	if err != nil {
		t.Fatalf("NormalizeRecord: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("two runs over identical input differ")
	}
}
