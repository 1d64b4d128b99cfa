package flaggallery

import (
	"fmt"
	"time"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	resumeObject   = "session"
	resumeProperty = "resume.yaml"
)

// ResumeRecord is the persisted position of the last session.
type ResumeRecord struct {
	Index   int       `yaml:"index"`
	Title   string    `yaml:"title"`
	Items   int       `yaml:"items"`
	SavedAt time.Time `yaml:"savedAt"`
}

// ResumeStore remembers the last viewed item between runs. A store without
// a gdata manager works in degraded mode: Load returns 0 and Save does
// nothing.
type ResumeStore struct {
	m   *gdata.Manager
	log *zap.Logger
}

// OpenResumeStore opens the per-user storage of appName. Failing to open it
// is not fatal; the store degrades and the failure is logged.
func OpenResumeStore(appName string, log *zap.Logger) *ResumeStore {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Warn("resume store unavailable", zap.String("app", appName), zap.Error(err))
		m = nil
	}
	return NewResumeStore(m, log)
}

// NewResumeStore wraps an existing manager, which may be nil.
func NewResumeStore(m *gdata.Manager, log *zap.Logger) *ResumeStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ResumeStore{m: m, log: log}
}

// Load returns the index to resume at for items. A record written for a
// different item list (other length or title) is ignored.
func (s *ResumeStore) Load(items []Item) int {
	rec, ok, err := s.record()
	if err != nil {
		s.log.Warn("resume record unreadable", zap.Error(err))
		return 0
	}
	if !ok || rec.Items != len(items) || rec.Index < 0 || rec.Index >= len(items) {
		return 0
	}
	if items[rec.Index].Title != rec.Title {
		return 0
	}
	return rec.Index
}

func (s *ResumeStore) record() (ResumeRecord, bool, error) {
	var rec ResumeRecord
	if s.m == nil || !s.m.ObjectPropExists(resumeObject, resumeProperty) {
		return rec, false, nil
	}
	data, err := s.m.LoadObjectProp(resumeObject, resumeProperty)
	if err != nil {
		return rec, false, fmt.Errorf("load resume record: %w", err)
	}
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return rec, false, fmt.Errorf("parse resume record: %w", err)
	}
	return rec, true, nil
}

// Save records index as the last viewed item of items.
func (s *ResumeStore) Save(items []Item, index int) error {
	if s.m == nil || index < 0 || index >= len(items) {
		return nil
	}
	data, err := yaml.Marshal(ResumeRecord{
		Index:   index,
		Title:   items[index].Title,
		Items:   len(items),
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal resume record: %w", err)
	}
	if err := s.m.SaveObjectProp(resumeObject, resumeProperty, data); err != nil {
		return fmt.Errorf("save resume record: %w", err)
	}
	return nil
}
