package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"qahiring/cv-analyzer/internal/models"
)

// ErrWorkerStopped is returned by Submit once the pool is shutting down.
var ErrWorkerStopped = errors.New("analysis worker is stopped")

// AnalysisJob is one CV waiting for evaluation.
type AnalysisJob struct {
	Filename string
	CVText   string
	Criteria string
}

type Worker interface {
	Start(ctx context.Context)
	Stop()
	// Submit queues a job and blocks until it is analysed, ctx is done or
	// the pool stops.
	Submit(ctx context.Context, job AnalysisJob) (models.AnalysisReport, error)
}

type jobRequest struct {
	ctx    context.Context
	job    AnalysisJob
	result chan models.AnalysisReport
}

type worker struct {
	analyzer    AnalyzerService
	jobQueue    chan *jobRequest
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	stopOnce    sync.Once
}

func NewWorker(analyzer AnalyzerService, concurrency int) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &worker{
		analyzer:    analyzer,
		jobQueue:    make(chan *jobRequest, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker. Jobs already being analysed are finished first.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		log.Println("🛑 Stopping worker...")
		close(w.stopChan)
		w.wg.Wait()
		log.Println("✅ Worker stopped")
	})
}

// Submit implements Worker.
func (w *worker) Submit(ctx context.Context, job AnalysisJob) (models.AnalysisReport, error) {
	req := &jobRequest{
		ctx:    ctx,
		job:    job,
		result: make(chan models.AnalysisReport, 1),
	}

	select {
	case <-w.stopChan:
		return models.AnalysisReport{}, ErrWorkerStopped
	default:
	}

	select {
	case w.jobQueue <- req:
		log.Printf("📥 Job for %s enqueued\n", job.Filename)
	case <-ctx.Done():
		return models.AnalysisReport{}, ctx.Err()
	case <-w.stopChan:
		return models.AnalysisReport{}, ErrWorkerStopped
	}

	select {
	case report := <-req.result:
		return report, nil
	case <-ctx.Done():
		return models.AnalysisReport{}, ctx.Err()
	case <-w.stopChan:
		// the job may have finished while the pool was stopping
		select {
		case report := <-req.result:
			return report, nil
		default:
			return models.AnalysisReport{}, ErrWorkerStopped
		}
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing jobs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			log.Printf("👷 Worker #%d stopped: %v\n", workerID, ctx.Err())
			return
		case req := <-w.jobQueue:
			if req.ctx.Err() != nil {
				log.Printf("⚠️  Worker #%d skipping abandoned job for %s\n", workerID, req.job.Filename)
				continue
			}

			log.Printf("👷 Worker #%d analysing %s\n", workerID, req.job.Filename)
			report := w.analyzer.AnalyzeCV(req.ctx, req.job.CVText, req.job.Criteria)
			req.result <- report
			log.Printf("✅ Worker #%d completed %s with decision %s\n", workerID, req.job.Filename, report.Decision)
		}
	}
}
