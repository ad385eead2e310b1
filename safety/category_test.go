package safety

import "testing"

func TestTrackerApproveIsIdempotent(t *testing.T) {
	tr := NewTracker()

	if tr.IsApproved(CategoryShellExec) {
		t.Fatalf("fresh tracker should have nothing approved")
	}

	tr.Approve(CategoryShellExec)
	tr.Approve(CategoryShellExec)

	if !tr.IsApproved(CategoryShellExec) {
		t.Fatalf("approval did not stick")
	}
	if got := tr.Approved(); len(got) != 1 || got[0] != CategoryShellExec {
		t.Fatalf("Approved() = %v, want [shell_exec]", got)
	}
}

func TestTrackerApprovedIsSorted(t *testing.T) {
	tr := NewTracker()
	tr.Approve(CategoryShellExec)
	tr.Approve(CategoryFileWrite)
	tr.Approve(CategoryGitOp)

	got := tr.Approved()
	want := []Category{CategoryFileWrite, CategoryGitOp, CategoryShellExec}
	if len(got) != len(want) {
		t.Fatalf("Approved() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Approved()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker()
	tr.Approve(CategoryFileWrite)
	tr.Approve(CategoryGitOp)

	tr.Reset()

	if tr.IsApproved(CategoryFileWrite) || tr.IsApproved(CategoryGitOp) {
		t.Fatalf("reset left approvals behind: %v", tr.Approved())
	}
}
