package worker

import "context"

// FuncJob adapts a plain function to Job.
type FuncJob struct {
	JobName string
	Fn      func(context.Context) error
}

func (j FuncJob) Name() string { return j.JobName }

func (j FuncJob) Run(ctx context.Context) error {
	return j.Fn(ctx)
}
