package worker

import (
	"context"
	"log"
	"time"
)

// JobScheduler pushes its job list into the pool on a fixed interval.
type JobScheduler struct {
	Name   string
	Ticker *time.Ticker
	Jobs   []Job
	Pool   *WorkingPool
}

func NewJobScheduler(name string, interval time.Duration, pool *WorkingPool) *JobScheduler {
	return &JobScheduler{
		Name:   name,
		Ticker: time.NewTicker(interval),
		Jobs:   make([]Job, 0),
		Pool:   pool,
	}
}

func (s *JobScheduler) AddJob(job Job) {
	s.Jobs = append(s.Jobs, job)
}

func (s *JobScheduler) Run(ctx context.Context) {
	log.Printf("[Scheduler %s] Running.\n", s.Name)
	defer s.Ticker.Stop()

	for {
		select {
		case <-s.Ticker.C:
			log.Printf("[Scheduler %s] Ticker fired. Submitting %d jobs.\n", s.Name, len(s.Jobs))

			for _, job := range s.Jobs {
				if err := s.Pool.SubmitJob(job); err != nil {
					log.Printf("[Scheduler %s] Dropping job: %s.\n", s.Name, err)
				}
			}

		case <-ctx.Done():
			log.Printf("[Scheduler %s] Shutting down.\n", s.Name)
			return
		}
	}
}
