package controller

import "testing"

type stubDialog struct {
	presented int
	destroyed int
	closed    func()
}

func (d *stubDialog) Present() { d.presented++ }
func (d *stubDialog) Destroy() {
	d.destroyed++
	if d.closed != nil {
		d.closed()
	}
}

func newDialogBuilder(built *[]*stubDialog) func(ids []int, closed func()) Dialog {
	return func(ids []int, closed func()) Dialog {
		dlg := &stubDialog{closed: closed}
		*built = append(*built, dlg)
		return dlg
	}
}

func TestCanonicalKey(t *testing.T) {
	tests := []struct {
		name string
		ids  []int
		want string
	}{
		{"empty", nil, ""},
		{"single", []int{7}, "7"},
		{"sorted", []int{1, 2, 3}, "1 2 3"},
		{"unsorted", []int{3, 1, 2}, "1 2 3"},
		{"duplicate order", []int{2, 1, 3}, "1 2 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalKey(tt.ids); got != tt.want {
				t.Errorf("CanonicalKey(%v) = %q, want %q", tt.ids, got, tt.want)
			}
		})
	}
}

func TestShowDetailsReusesSameSelection(t *testing.T) {
	var built []*stubDialog
	d := NewDetailDialogs(newDialogBuilder(&built))

	first := d.ShowDetails([]int{3, 1, 2})
	second := d.ShowDetails([]int{2, 1, 3})

	if first != second {
		t.Fatal("same selection in different order created a second dialog")
	}
	if len(built) != 1 {
		t.Fatalf("built %d dialogs, want 1", len(built))
	}
	if built[0].presented != 2 {
		t.Errorf("dialog presented %d times, want 2", built[0].presented)
	}
}

func TestShowDetailsDistinctSelectionsCoexist(t *testing.T) {
	var built []*stubDialog
	d := NewDetailDialogs(newDialogBuilder(&built))

	d.ShowDetails([]int{1})
	d.ShowDetails([]int{2})
	d.ShowDetails([]int{1, 2})

	if len(built) != 3 {
		t.Fatalf("built %d dialogs, want 3", len(built))
	}
	if d.OpenCount() != 3 {
		t.Fatalf("open count = %d, want 3", d.OpenCount())
	}
}

func TestShowDetailsAfterCloseBuildsFresh(t *testing.T) {
	var built []*stubDialog
	d := NewDetailDialogs(newDialogBuilder(&built))

	d.ShowDetails([]int{5})
	built[0].closed()
	if d.OpenCount() != 0 {
		t.Fatal("close callback did not deregister the dialog")
	}

	d.ShowDetails([]int{5})
	if len(built) != 2 {
		t.Fatalf("built %d dialogs, want 2", len(built))
	}
}

func TestCloseAllDestroys(t *testing.T) {
	var built []*stubDialog
	d := NewDetailDialogs(newDialogBuilder(&built))

	d.ShowDetails([]int{1})
	d.ShowDetails([]int{2})
	d.CloseAll()

	if d.OpenCount() != 0 {
		t.Fatalf("open count = %d after CloseAll", d.OpenCount())
	}
	for i, dlg := range built {
		if dlg.destroyed != 1 {
			t.Errorf("dialog %d destroyed %d times, want 1", i, dlg.destroyed)
		}
	}
}

// A dialog's own Close button destroys the window directly, which must
// deregister it just like a window-manager close.
func TestSingletonRebuildsAfterSelfDestroy(t *testing.T) {
	var built []*stubDialog
	s := NewSingleton(func(closed func()) Dialog {
		dlg := &stubDialog{closed: closed}
		built = append(built, dlg)
		return dlg
	})

	s.Show()
	built[0].Destroy()
	if s.IsOpen() {
		t.Fatal("singleton still open after dialog destroyed itself")
	}

	s.Show()
	if len(built) != 2 {
		t.Fatalf("built %d instances, want 2", len(built))
	}
	if built[0].presented != 1 {
		t.Errorf("destroyed dialog presented %d times, want 1", built[0].presented)
	}
	if built[1].presented != 1 {
		t.Errorf("fresh dialog presented %d times, want 1", built[1].presented)
	}
}

func TestSingletonLifecycle(t *testing.T) {
	var built []*stubDialog
	s := NewSingleton(func(closed func()) Dialog {
		dlg := &stubDialog{closed: closed}
		built = append(built, dlg)
		return dlg
	})

	first := s.Show()
	second := s.Show()
	if first != second {
		t.Fatal("singleton built a second instance while one was open")
	}
	if !s.IsOpen() {
		t.Fatal("singleton not marked open")
	}

	s.Close()
	if s.IsOpen() {
		t.Fatal("singleton still open after Close")
	}

	s.Show()
	if len(built) != 2 {
		t.Fatalf("built %d instances, want 2", len(built))
	}
}
