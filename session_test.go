package flaggallery

import (
	"testing"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// openTestManager opens a gdata manager rooted in a temporary home
// directory and removes the resume record when the test ends.
func openTestManager(t *testing.T) *gdata.Manager {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", home)
	t.Setenv("APPDATA", home)

	m, err := gdata.Open(gdata.Config{AppName: "test_flaggallery"})
	if err != nil {
		t.Fatalf("gdata.Open: %v", err)
	}
	t.Cleanup(func() {
		if m.ObjectPropExists(resumeObject, resumeProperty) {
			if err := m.DeleteObjectProp(resumeObject, resumeProperty); err != nil {
				t.Errorf("DeleteObjectProp: %v", err)
			}
		}
	})
	return m
}

func TestResumeStoreRoundTrip(t *testing.T) {
	s := NewResumeStore(openTestManager(t), nil)
	items := DefaultItems()

	if got := s.Load(items); got != 0 {
		t.Errorf("Load before any Save = %d, want 0", got)
	}
	if err := s.Save(items, 4); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := s.Load(items); got != 4 {
		t.Errorf("Load = %d, want 4", got)
	}
	if err := s.Save(items, 7); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if got := s.Load(items); got != 7 {
		t.Errorf("Load after overwrite = %d, want 7", got)
	}
}

func TestResumeStoreRejectsOtherList(t *testing.T) {
	s := NewResumeStore(openTestManager(t), nil)
	items := DefaultItems()
	if err := s.Save(items, 4); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if got := s.Load(items[:5]); got != 0 {
		t.Errorf("Load with a shorter list = %d, want 0", got)
	}

	renamed := DefaultItems()
	renamed[4].Title = "Something else"
	if got := s.Load(renamed); got != 0 {
		t.Errorf("Load with a different title = %d, want 0", got)
	}
}

func TestResumeStoreUnreadableRecord(t *testing.T) {
	m := openTestManager(t)
	if err := m.SaveObjectProp(resumeObject, resumeProperty, []byte("index: [")); err != nil {
		t.Fatalf("SaveObjectProp: %v", err)
	}
	core, logs := observer.New(zapcore.WarnLevel)
	s := NewResumeStore(m, zap.New(core))

	if got := s.Load(DefaultItems()); got != 0 {
		t.Errorf("Load = %d, want 0", got)
	}
	if got := logs.FilterMessage("resume record unreadable").Len(); got != 1 {
		t.Errorf("unreadable record warnings = %d, want 1", got)
	}
}

func TestResumeStoreWithoutManager(t *testing.T) {
	s := NewResumeStore(nil, nil)
	items := DefaultItems()
	if err := s.Save(items, 3); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := s.Load(items); got != 0 {
		t.Errorf("Load = %d, want 0", got)
	}
}

func TestResumeStoreSaveOutOfRange(t *testing.T) {
	s := NewResumeStore(openTestManager(t), nil)
	items := DefaultItems()
	if err := s.Save(items, -1); err != nil {
		t.Errorf("Save(-1): %v", err)
	}
	if err := s.Save(items, len(items)); err != nil {
		t.Errorf("Save(len): %v", err)
	}
	if got := s.Load(items); got != 0 {
		t.Errorf("Load after out-of-range saves = %d, want 0", got)
	}
}
