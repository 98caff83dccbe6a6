package models

import "testing"

func TestWorkerStatusValid(t *testing.T) {
	valid := []WorkerStatus{WorkerStatusIdle, WorkerStatusRunning, WorkerStatusDone, WorkerStatusError}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	if WorkerStatus("terminated").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestResultStatus(t *testing.T) {
	r := TaskResult{TaskID: "main", Status: ResultFailed, Error: "boom"}
	if !r.Failed() {
		t.Error("expected failed result")
	}

	r = TaskResult{TaskID: "main", Status: ResultCompleted, Output: "ok"}
	if r.Failed() {
		t.Error("expected completed result")
	}
}

func TestPlanTaskIDs(t *testing.T) {
	plan := &Plan{
		Tasks: []PlannedTask{
			{TaskID: "a"},
			{TaskID: "b"},
			{TaskID: "c"},
		},
	}

	ids := plan.TaskIDs()
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	for i, want := range []string{"a", "b", "c"} {
		if ids[i] != want {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want)
		}
	}
}
