package main

import (
	"context"
	"fmt"
	"time"

	"task_tracker/internal/service"

	"github.com/spf13/cobra"
)

const seedDateLayout = "2006-01-02T15:04"

func seedCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create demo tasks through the task service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			ctx := cmd.Context()

			_, store, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}

			ids, err := seed(ctx, service.NewTaskService(store), count, time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d tasks (ids %d..%d)\n", len(ids), ids[0], ids[len(ids)-1])
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 10, "number of tasks to create")
	return cmd
}

// seed creates count tasks due on consecutive days from now. Every third task
// is a side task; every other task gets a one hour scheduled slot.
func seed(ctx context.Context, tasks *service.TaskService, count int, now time.Time) ([]int64, error) {
	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		id, err := tasks.Create(ctx, demoTask(i, now))
		if err != nil {
			return ids, fmt.Errorf("seed task %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func demoTask(i int, now time.Time) service.TaskInput {
	day := now.AddDate(0, 0, i+1).Truncate(time.Hour)
	name := fmt.Sprintf("Demo task %d", i+1)
	limit := day.Format(seedDateLayout)
	sideTask := i%3 == 2

	in := service.TaskInput{
		Name:      &name,
		LimitDate: &limit,
		IsNotMain: &sideTask,
	}
	if i%2 == 0 {
		start := day.Add(-2 * time.Hour).Format(seedDateLayout)
		end := day.Add(-time.Hour).Format(seedDateLayout)
		in.ScheduledStartDate = &start
		in.ScheduledEndDate = &end
	}
	return in
}
