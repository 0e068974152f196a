package auth

import (
	"context"
	"strings"

	contractx "github.com/kermits/telassist/agent/contract"
)

// Extractor pulls an 11-digit national identifier out of free text. The
// oracle-backed strategy tolerates phrasing like "kimliğim 123 456 789 01";
// the digit-scan strategy is the deterministic fallback and final authority.
type Extractor interface {
	Extract(ctx context.Context, text string) (string, bool)
}

// DigitScanExtractor scans digit runs of length >= 11 and accepts the first
// 11-wide window whose leading digit is non-zero.
type DigitScanExtractor struct{}

func (DigitScanExtractor) Extract(_ context.Context, text string) (string, bool) {
	return ScanNationalID(text)
}

// ScanNationalID is the deterministic identifier scan shared by the gate and
// the registration wizard.
func ScanNationalID(text string) (string, bool) {
	for _, run := range digitRuns(text) {
		if len(run) < 11 {
			continue
		}
		for i := 0; i+11 <= len(run); i++ {
			candidate := run[i : i+11]
			if candidate[0] != '0' {
				return candidate, true
			}
		}
	}
	return "", false
}

func digitRuns(text string) []string {
	var runs []string
	var current strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			runs = append(runs, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		runs = append(runs, current.String())
	}
	return runs
}

// OracleExtractor asks the oracle to isolate the identifier, then validates
// the reply with the deterministic scan; any oracle failure falls through to
// scanning the raw input.
type OracleExtractor struct {
	Oracle contractx.Oracle
}

func (e *OracleExtractor) Extract(ctx context.Context, text string) (string, bool) {
	if e.Oracle != nil {
		reply, err := e.Oracle.Complete(ctx, contractx.CompletionRequest{
			Prompt:             "Metin: " + text,
			SystemInstructions: "Metindeki 11 haneli TC kimlik numarasını bul ve SADECE rakamları yaz. Numara yoksa YOK yaz.",
			Temperature:        0,
			MaxOutputTokens:    30,
		})
		if err == nil && !strings.Contains(strings.ToUpper(reply), "YOK") {
			if id, ok := ScanNationalID(reply); ok {
				return id, true
			}
		}
	}
	return ScanNationalID(text)
}
