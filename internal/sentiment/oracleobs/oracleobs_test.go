package oracleobs

import (
	"context"
	"errors"
	"testing"

	"idx-swing-scanner/internal/types"
)

type fakeOracle struct {
	assessment types.SentimentAssessment
	err        error
}

func (f fakeOracle) Sentiment(ctx context.Context, symbol string) (types.SentimentAssessment, error) {
	return f.assessment, f.err
}

func TestWrapDelegates(t *testing.T) {
	inner := fakeOracle{assessment: types.SentimentAssessment{Score: 42, Explanation: "Based on 5 headlines."}}
	oracle := Wrap(inner)

	got, err := oracle.Sentiment(context.Background(), "BBCA.JK")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.Score != 42 {
		t.Errorf("Expected score 42, got %d", got.Score)
	}
}

func TestWrapPropagatesError(t *testing.T) {
	inner := fakeOracle{err: errors.New("quota exhausted")}
	oracle := Wrap(inner)

	if _, err := oracle.Sentiment(context.Background(), "BBCA.JK"); err == nil {
		t.Error("Expected wrapped error propagated")
	}
}
