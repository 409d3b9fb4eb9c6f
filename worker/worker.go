package worker

import (
	"context"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// Worker long running loop, returns when ctx is done
type Worker interface {
	Run(ctx context.Context) error
}

// IJob cron scheduled job
type IJob interface {
	Start() error
	Run()
	Stop() error
}

type OnWork func() error

// BaseJob skips a tick while the previous one is still running
type BaseJob struct {
	Cron      *cron.Cron
	OnWork    OnWork
	isRunning int32
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	<-job.Cron.Stop().Done()
	return nil
}

func (job *BaseJob) Run() {
	if !atomic.CompareAndSwapInt32(&job.isRunning, 0, 1) {
		return
	}
	defer atomic.StoreInt32(&job.isRunning, 0)

	_ = job.OnWork()
}

// RunJob starts job and stops it once ctx is done
func RunJob(ctx context.Context, job IJob) error {
	if err := job.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	_ = job.Stop()
	return ctx.Err()
}
