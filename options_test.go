package easel

import "testing"

func TestDefaultPictureOptions(t *testing.T) {
	o := defaultPictureOptions()
	if o.checkpointBudget != DefaultCheckpointBudget {
		t.Errorf("checkpointBudget = %d, want %d", o.checkpointBudget, DefaultCheckpointBudget)
	}
	if o.authorID != 1 {
		t.Errorf("authorID = %d, want 1", o.authorID)
	}
	if _, ok := o.backend.(SoftwareBackend); !ok {
		t.Errorf("backend = %T, want SoftwareBackend", o.backend)
	}
}

func TestWithCheckpointBudgetClamps(t *testing.T) {
	o := defaultPictureOptions()
	WithCheckpointBudget(-5)(&o)
	if o.checkpointBudget != 0 {
		t.Errorf("checkpointBudget = %d, want 0", o.checkpointBudget)
	}
	WithCheckpointBudget(7)(&o)
	if o.checkpointBudget != 7 {
		t.Errorf("checkpointBudget = %d, want 7", o.checkpointBudget)
	}
}

func TestWithAuthor(t *testing.T) {
	p, err := NewPicture(8, 8, WithAuthor(42))
	if err != nil {
		t.Fatal(err)
	}
	if p.AuthorID() != 42 {
		t.Errorf("AuthorID() = %d, want 42", p.AuthorID())
	}
}
