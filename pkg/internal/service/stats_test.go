package service

import (
	"context"
	"testing"

	"github.com/yeisme/ingestvault/pkg/internal/model"
	"github.com/yeisme/ingestvault/pkg/internal/types"
)

// TestCountByState 所有已知状态都有计数，空状态为 0.
func TestCountByState(t *testing.T) {
	svc, _ := newTestService(t)
	seedSource(t, svc, 7)

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		createProcess(t, svc, 7)
	}

	state := model.IngestStateFailed
	if _, err := svc.Patch(ctx, 1, &types.PatchIngestProcessRequest{State: &state}); err != nil {
		t.Fatalf("patch state: %v", err)
	}

	counts, err := svc.CountByState(ctx)
	if err != nil {
		t.Fatalf("count by state: %v", err)
	}

	if counts[model.IngestStatePending] != 2 || counts[model.IngestStateFailed] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}

	if _, ok := counts[model.IngestStateComplete]; !ok {
		t.Error("expected zero-valued entry for complete state")
	}
}
