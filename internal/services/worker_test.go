package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qahiring/cv-analyzer/internal/models"
)

type fakeAnalyzer struct {
	delay   time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
	calls   atomic.Int32
}

func (f *fakeAnalyzer) AnalyzeCV(ctx context.Context, cvText, criteria string) models.AnalysisReport {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}

	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
	}

	return models.AnalysisReport{
		Decision:      models.DecisionFail,
		Justification: models.JustificationPoints(cvText, criteria),
	}
}

func TestWorkerSubmit(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	w := NewWorker(analyzer, 2)
	w.Start(context.Background())
	defer w.Stop()

	report, err := w.Submit(context.Background(), AnalysisJob{Filename: "cv.txt", CVText: "Jane", Criteria: "Go"})

	require.NoError(t, err)
	assert.Equal(t, models.DecisionFail, report.Decision)
	assert.Equal(t, []string{"Jane", "Go"}, report.Justification.Points)
}

func TestWorkerBoundsConcurrency(t *testing.T) {
	analyzer := &fakeAnalyzer{delay: 20 * time.Millisecond}
	w := NewWorker(analyzer, 2)
	w.Start(context.Background())
	defer w.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Submit(context.Background(), AnalysisJob{Filename: "cv.txt"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(6), analyzer.calls.Load())
	assert.LessOrEqual(t, analyzer.maxSeen.Load(), int32(2))
}

func TestWorkerSubmitHonoursContext(t *testing.T) {
	analyzer := &fakeAnalyzer{delay: time.Second}
	w := NewWorker(analyzer, 1)
	w.Start(context.Background())
	defer w.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := w.Submit(ctx, AnalysisJob{Filename: "cv.txt"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWorkerSubmitAfterStop(t *testing.T) {
	w := NewWorker(&fakeAnalyzer{}, 1)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	_, err := w.Submit(context.Background(), AnalysisJob{Filename: "cv.txt"})

	assert.ErrorIs(t, err, ErrWorkerStopped)
}
