package plan

import (
	"fmt"
	"testing"
)

// createChain creates n tasks where each depends on the previous two
func createChain(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{ID: fmt.Sprintf("task-%03d", i), Resource: "dev", Prediction: 2}
		if i > 0 {
			tasks[i].DependsOn = append(tasks[i].DependsOn, tasks[i-1].ID)
		}
		if i > 1 {
			tasks[i].DependsOn = append(tasks[i].DependsOn, tasks[i-2].ID)
		}
	}
	return tasks
}

// createFanOut creates one root task and n-1 independent dependents
func createFanOut(n int) []Task {
	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{ID: fmt.Sprintf("task-%03d", i), Resource: "dev", Prediction: 2}
		if i > 0 {
			tasks[i].DependsOn = []string{tasks[0].ID}
		}
	}
	return tasks
}

func BenchmarkInternalize_FanOut(b *testing.B) {
	for _, n := range []int{10, 100, 500} {
		tasks := createFanOut(n)
		b.Run(fmt.Sprintf("tasks-%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Internalize(tasks, nil); err != nil {
					b.Fatalf("Internalize failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkCloseDependencies_Chain(b *testing.B) {
	for _, n := range []int{10, 50, 200} {
		tasks := createChain(n)
		b.Run(fmt.Sprintf("tasks-%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_ = OrderByDependency(CloseDependencies(tasks))
			}
		})
	}
}

func BenchmarkInternalize_Phases(b *testing.B) {
	for _, n := range []int{10, 20, 50} {
		tasks, groups := phases(n)
		b.Run(fmt.Sprintf("phases-%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Internalize(tasks, groups); err != nil {
					b.Fatalf("Internalize failed: %v", err)
				}
			}
		})
	}
}
