package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"strings"
	"sync"
	"time"

	"ocrweb/internal/ocr"
	"ocrweb/internal/task"

	"github.com/sirupsen/logrus"
)

// Pipeline defines the OCR dependency.
type Pipeline interface {
	Run(ctx context.Context, pdfPath, outDir string, opts ocr.Options) error
}

// Config carries the processing knobs for the task service.
type Config struct {
	ResultsDir    string
	Languages     string
	DPI           int
	TextThreshold int
	Workers       int
	Timeout       time.Duration
}

// Report is the externally visible state of a task.
type Report struct {
	Status task.Status
	Error  string
}

// TaskService accepts uploads and drives background OCR with bounded
// concurrency.
type TaskService struct {
	store    task.Store
	pipeline Pipeline
	cfg      Config
	log      *logrus.Logger

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewTaskService wires the service together.
func NewTaskService(store task.Store, pipeline Pipeline, cfg Config, log *logrus.Logger) *TaskService {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "results"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TaskService{
		store:    store,
		pipeline: pipeline,
		cfg:      cfg,
		log:      log,
		sem:      make(chan struct{}, cfg.Workers),
	}
}

// Create persists the upload to a temp file, registers the task, and kicks
// off background processing. It returns as soon as the task is accepted.
func (s *TaskService) Create(ctx context.Context, file multipart.File, header *multipart.FileHeader, lang string) (task.Task, error) {
	tempPath, cleanup, err := saveUploadTemp(file)
	if err != nil {
		return task.Task{}, fmt.Errorf("persist upload (%s): %w", header.Filename, err)
	}

	t := task.Task{
		ID:        task.NewID(),
		Filename:  header.Filename,
		Language:  lang,
		CreatedAt: time.Now(),
		Status:    task.StatusPending,
	}
	if err := s.store.Put(ctx, t); err != nil {
		cleanup()
		return task.Task{}, fmt.Errorf("register task: %w", err)
	}

	s.wg.Add(1)
	go s.process(t, tempPath, cleanup)
	return t, nil
}

func (s *TaskService) process(t task.Task, pdfPath string, cleanup func()) {
	defer s.wg.Done()
	defer cleanup()

	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	// A hung renderer or OCR call must not pin a worker slot forever.
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
	defer cancel()
	log := s.log.WithField("task_id", t.ID)

	if err := s.store.SetStatus(context.Background(), t.ID, task.StatusProcessing, ""); err != nil {
		log.WithError(err).Warn("status update failed")
	}

	opts := ocr.Options{
		Languages:     splitLanguages(s.cfg.Languages),
		DPI:           s.cfg.DPI,
		TextThreshold: s.cfg.TextThreshold,
	}
	if t.Language != "" {
		opts.Languages = splitLanguages(t.Language)
	}

	paths := task.ResultPaths(s.cfg.ResultsDir, t.ID)
	if err := s.pipeline.Run(ctx, pdfPath, paths.Folder, opts); err != nil {
		log.WithError(err).Error("processing failed")
		// Status writes use a fresh context: the task's deadline may be the
		// very reason we are here.
		if serr := s.store.SetStatus(context.Background(), t.ID, task.StatusFailed, err.Error()); serr != nil {
			log.WithError(serr).Warn("status update failed")
		}
		return
	}

	if err := s.store.SetStatus(context.Background(), t.ID, task.StatusDone, ""); err != nil {
		log.WithError(err).Warn("status update failed")
	}
	log.WithField("filename", t.Filename).Info("task done")
}

// Lookup reports a task's state. Artifact files on disk win over the store
// so completed work survives a restart; a missing store entry with a started
// folder reports processing, anything else is unknown.
func (s *TaskService) Lookup(ctx context.Context, id string) (Report, bool) {
	if !task.ValidID(id) {
		return Report{}, false
	}

	paths := task.ResultPaths(s.cfg.ResultsDir, id)
	if paths.Complete() {
		return Report{Status: task.StatusDone}, true
	}

	t, ok, err := s.store.Get(ctx, id)
	if err != nil {
		s.log.WithError(err).WithField("task_id", id).Warn("store lookup failed")
	}
	if ok {
		if t.Status == task.StatusFailed {
			return Report{Status: task.StatusFailed, Error: t.Error}, true
		}
		return Report{Status: task.StatusProcessing}, true
	}

	if paths.Started() {
		return Report{Status: task.StatusProcessing}, true
	}
	return Report{}, false
}

// Artifact resolves a download request to a file path. Only the two known
// artifact names are served.
func (s *TaskService) Artifact(id, filename string) (string, bool) {
	if !task.ValidID(id) {
		return "", false
	}
	paths := task.ResultPaths(s.cfg.ResultsDir, id)
	var target string
	switch filename {
	case "result.txt":
		target = paths.Text
	case "result.json":
		target = paths.JSON
	default:
		return "", false
	}
	if _, err := os.Stat(target); err != nil {
		return "", false
	}
	return target, true
}

// Wait blocks until all background tasks finish. Used by tests and shutdown.
func (s *TaskService) Wait() {
	s.wg.Wait()
}

func splitLanguages(list string) []string {
	if list == "" {
		return nil
	}
	parts := strings.Split(list, "+")
	langs := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			langs = append(langs, p)
		}
	}
	return langs
}

func saveUploadTemp(r io.Reader) (string, func(), error) {
	tmp, err := os.CreateTemp("", "ocr-upload-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp pdf: %w", err)
	}

	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	if _, err := io.Copy(tmp, r); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp pdf: %w", err)
	}
	return tmp.Name(), cleanup, nil
}
