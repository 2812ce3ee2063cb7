// Package scheduler 封装 gocron/v2, 提供按名称管理的 cron 任务与运行状态追踪.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yeisme/ingestvault/pkg/log"
)

// JobStatus 任务状态.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusRunning   JobStatus = "running"
	StatusError     JobStatus = "error"
)

// JobInfo 单个 cron 任务的快照, 供运维接口展示.
type JobInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	NextRun     time.Time `json:"next_run"`
	LastRun     time.Time `json:"last_run"`
	LastSuccess time.Time `json:"last_success,omitempty"`
	Status      JobStatus `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Scheduler 以任务名为主键管理 cron 任务.
type Scheduler struct {
	inner  gocron.Scheduler
	logger *zerolog.Logger

	mu    sync.RWMutex
	byID  map[uuid.UUID]string
	infos map[string]*jobEntry
}

type jobEntry struct {
	job  gocron.Job
	info JobInfo
}

// NewScheduler 创建调度器, 需要随后调用 Start.
func NewScheduler() (*Scheduler, error) {
	inner, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		inner:  inner,
		logger: log.Logger(),
		byID:   make(map[uuid.UUID]string),
		infos:  make(map[string]*jobEntry),
	}, nil
}

// AddCron 注册一个 cron 任务, 任务名必须唯一.
// job 内的 panic 会被捕获并记入任务状态, 不影响调度器.
func (s *Scheduler) AddCron(ctx context.Context, name, cronExpr string, job func(ctx context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.infos[name]; exists {
		return fmt.Errorf("cron job %q already registered", name)
	}

	run := func(ctx context.Context) {
		s.setStatus(name, StatusRunning, "")

		defer func() {
			if r := recover(); r != nil {
				s.setStatus(name, StatusError, fmt.Sprintf("panic: %v", r))
				s.logger.Error().Str("job", name).Any("panic", r).Msg("Cron job panicked")
			}
		}()

		job(ctx)
		s.markSuccess(name)
	}

	j, err := s.inner.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(run, ctx),
		gocron.WithName(name),
		gocron.WithEventListeners(
			gocron.AfterJobRuns(func(_ uuid.UUID, jobName string) {
				s.markRun(jobName)
			}),
		),
	)
	if err != nil {
		return err
	}

	nextRun, _ := j.NextRun()
	s.byID[j.ID()] = name
	s.infos[name] = &jobEntry{
		job: j,
		info: JobInfo{
			ID:        j.ID().String(),
			Name:      name,
			CronExpr:  cronExpr,
			NextRun:   nextRun,
			Status:    StatusScheduled,
			CreatedAt: time.Now(),
		},
	}

	s.logger.Info().Str("job", name).Str("cron", cronExpr).Msg("Registered cron job")

	return nil
}

// Start 启动调度循环.
func (s *Scheduler) Start() {
	s.logger.Info().Msg("Starting scheduler")
	s.inner.Start()
}

// Shutdown 停止调度并等待在途任务结束.
func (s *Scheduler) Shutdown() error {
	s.logger.Info().Msg("Shutting down scheduler")
	return s.inner.Shutdown()
}

// StopJobs 暂停所有任务的执行, 调度器本身保持运行.
func (s *Scheduler) StopJobs() error {
	return s.inner.StopJobs()
}

// RemoveJob 按 id 移除任务.
func (s *Scheduler) RemoveJob(id uuid.UUID) error {
	s.mu.Lock()
	if name, ok := s.byID[id]; ok {
		delete(s.infos, name)
		delete(s.byID, id)
	}
	s.mu.Unlock()

	return s.inner.RemoveJob(id)
}

// JobsWaitingInQueue 等待执行的任务数.
func (s *Scheduler) JobsWaitingInQueue() int {
	return s.inner.JobsWaitingInQueue()
}

// GetJobInfos 返回所有任务的当前快照.
func (s *Scheduler) GetJobInfos() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.infos))

	for _, e := range s.infos {
		info := e.info
		if nextRun, err := e.job.NextRun(); err == nil {
			info.NextRun = nextRun
		}

		jobs = append(jobs, info)
	}

	return jobs
}

func (s *Scheduler) setStatus(name string, status JobStatus, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.infos[name]; ok {
		e.info.Status = status
		e.info.Error = errMsg
	}
}

func (s *Scheduler) markSuccess(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.infos[name]; ok {
		e.info.Status = StatusScheduled
		e.info.Error = ""
		e.info.LastSuccess = time.Now()
	}
}

func (s *Scheduler) markRun(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.infos[name]; ok {
		e.info.LastRun = time.Now()
	}
}
