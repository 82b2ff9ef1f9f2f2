// Package async runs a fixed set of named tasks on a bounded number of goroutines.
package async

import (
	"context"
	"sync"
)

type Task struct {
	Name    string
	Execute func(ctx context.Context) (any, error)
}

type Result struct {
	Name string
	Data any
	Err  error
}

type Pool struct {
	workerCount int
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{workerCount: workerCount}
}

// Execute runs every task and returns the results keyed by task name. Tasks that
// never started because ctx was cancelled report ctx.Err().
func (p *Pool) Execute(ctx context.Context, tasks []Task) map[string]Result {
	queue := make(chan Task)
	results := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	workers := min(p.workerCount, len(tasks))
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				data, err := task.Execute(ctx)
				results <- Result{Name: task.Name, Data: data, Err: err}
			}
		}()
	}

	collected := make(map[string]Result, len(tasks))

	for i, task := range tasks {
		select {
		case queue <- task:
		case <-ctx.Done():
			for _, skipped := range tasks[i:] {
				collected[skipped.Name] = Result{Name: skipped.Name, Err: ctx.Err()}
			}
			close(queue)
			wg.Wait()
			close(results)
			for result := range results {
				collected[result.Name] = result
			}
			return collected
		}
	}
	close(queue)

	wg.Wait()
	close(results)
	for result := range results {
		collected[result.Name] = result
	}

	return collected
}
