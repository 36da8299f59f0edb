package fuzztests

import (
	"context"
	"testing"
	"time"

	"lumen/internal/sema"
	"lumen/internal/testkit"
	"lumen/internal/treefile"
)

// analyzeTimeout bounds one resolver run; exceeding it means a hang.
const analyzeTimeout = 5 * time.Second

func FuzzAnalyzeConsistent(f *testing.F) {
	addTreeSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampSeed(input)
		tree, _, err := treefile.ParseString(string(input))
		if err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		defer cancel()

		type outcome struct {
			res *sema.Result
			err error
		}
		done := make(chan outcome, 1)
		go func() {
			res, err := sema.Analyze(context.Background(), tree, sema.Options{})
			done <- outcome{res, err}
		}()

		select {
		case o := <-done:
			if o.err != nil {
				t.Fatalf("Analyze: %v", o.err)
			}
			if err := testkit.CheckResolution(o.res.Table, o.res.Types, o.res.Store); err != nil {
				t.Fatalf("inconsistent resolution for %q: %v", truncateForLog(input, 200), err)
			}
		case <-ctx.Done():
			t.Fatalf("analysis hang detected after %v\ninput (%d bytes): %q",
				analyzeTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(append([]byte(nil), input[:maxLen]...), "..."...)
}
