package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/verletnet/internal/config"
)

func TestGridSearch_Residual(t *testing.T) {
	base := config.GetPreset("scenario")
	base.Frames = 60

	trials, err := NewGridSearch(
		IterationsAxis(1, 40),
		StiffnessAxis(0.25, 0.5),
	).WithWorkers(2).Search(context.Background(), base, FinalResidual)
	if err != nil {
		t.Fatal(err)
	}

	if len(trials) != 4 {
		t.Fatalf("expected 4 trials, got %d", len(trials))
	}
	best := trials[0]
	if best.Params["iterations"] != 40 || best.Params["stiffness"] != 0.5 {
		t.Errorf("best = %v", best.Params)
	}
	worst := trials[len(trials)-1]
	if worst.Params["iterations"] != 1 || worst.Params["stiffness"] != 0.25 {
		t.Errorf("worst = %v", worst.Params)
	}
	for i := 1; i < len(trials); i++ {
		if trials[i].Score < trials[i-1].Score {
			t.Error("trials not sorted by score")
		}
	}
	if base.Physics.Iterations != config.DefaultConfig().Physics.Iterations {
		t.Error("search modified the base config")
	}
}

func TestGridSearch_FailedTrial(t *testing.T) {
	base := config.GetPreset("scenario")
	base.Frames = 5

	trials, err := NewGridSearch(StiffnessAxis(0.5, 2)).Search(context.Background(), base, FinalResidual)
	if err != nil {
		t.Fatal(err)
	}
	last := trials[len(trials)-1]
	if last.Err == nil || !math.IsInf(last.Score, 1) || last.Params["stiffness"] != 2 {
		t.Errorf("invalid stiffness should fail with +Inf score, got %+v", last)
	}
	if trials[0].Err != nil {
		t.Errorf("valid trial failed: %v", trials[0].Err)
	}
}

func TestGridSearch_NoAxes(t *testing.T) {
	if _, err := NewGridSearch().Search(context.Background(), config.DefaultConfig(), FinalResidual); err == nil {
		t.Error("expected error without axes")
	}
}

func TestGridSearch_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGridSearch(IterationsAxis(1, 2)).Search(ctx, config.GetPreset("scenario"), FinalResidual)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
