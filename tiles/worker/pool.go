package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type Priority int

const (
	Background Priority = iota
	High
)

// Pool runs tasks on a fixed set of goroutines. High priority tasks are
// always taken before background ones.
type Pool struct {
	high    chan Task
	low     chan Task
	quit    chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

type Task struct {
	Ctx      context.Context
	Work     func(ctx context.Context) error
	Priority Priority
}

// NewPool starts maxWorkers goroutines. timeout bounds every task; zero
// disables the limit.
func NewPool(maxWorkers, queueSize int, timeout time.Duration) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	p := &Pool{
		high:    make(chan Task, queueSize),
		low:     make(chan Task, queueSize),
		quit:    make(chan struct{}),
		timeout: timeout,
	}

	p.wg.Add(maxWorkers)
	for i := 0; i < maxWorkers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		// drain priority work first
		select {
		case <-p.quit:
			return
		case task := <-p.high:
			p.run(task)
			continue
		default:
		}

		select {
		case <-p.quit:
			return
		case task := <-p.high:
			p.run(task)
		case task := <-p.low:
			p.run(task)
		}
	}
}

func (p *Pool) run(task Task) {
	ctx := task.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprint(r)).Error("worker task panicked")
		}
	}()
	if err := task.Work(ctx); err != nil {
		log.WithError(err).Debug("worker task failed")
	}
}

// Submit queues the task without blocking the caller. When the queue is
// full the task is retried shortly after.
func (p *Pool) Submit(task Task) {
	queue := p.low
	if task.Priority == High {
		queue = p.high
	}
	select {
	case <-p.quit:
		return
	case queue <- task:
	default:
		go func() {
			select {
			case <-p.quit:
			case <-time.After(100 * time.Millisecond):
				p.Submit(task)
			}
		}()
	}
}

// Shutdown stops the workers and waits for running tasks to return.
// Queued tasks are dropped.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
