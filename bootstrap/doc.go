// Package bootstrap orchestrates the lifecycle of rxkit programs.
//
// An App owns a typed config, the logger, and a component registry holding
// the scheduler pools. RunTask starts every component, runs the hooks, runs
// the task, and stops everything in reverse order when the task returns or
// the process receives SIGINT/SIGTERM.
//
//	app, err := bootstrap.NewApp(&cfg)
//	io, err := app.AddScheduler(scheduler.Config{Kind: scheduler.KindIO})
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    _, err := rx.Collect(ctx, rx.Just(1, 2, 3).RunOn(io))
//	    return err
//	})
package bootstrap
