package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mkrivosheev/esg-auditor/internal/core/domain"
	"github.com/mkrivosheev/esg-auditor/internal/core/ports"
)

type enqueued struct {
	queue string
	task  domain.Task
}

type queueFake struct {
	enqueueErr error
	enqueues   []enqueued
}

func (f *queueFake) Enqueue(_ context.Context, queue string, task domain.Task) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.enqueues = append(f.enqueues, enqueued{queue: queue, task: task})
	return nil
}

func (f *queueFake) Dequeue(context.Context, string, time.Duration) (*domain.Task, error) {
	return nil, nil
}

// artifactsFake keeps saved records in memory, keyed by the path SaveJSON
// hands back.
type artifactsFake struct {
	saveErr error
	loadErr error
	saved   map[string][]byte
	loaded  map[string][]byte
}

func newArtifactsFake() *artifactsFake {
	return &artifactsFake{saved: map[string][]byte{}, loaded: map[string][]byte{}}
}

func (f *artifactsFake) SaveJSON(_ context.Context, key string, v any) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	path := "/artifacts/" + key
	f.saved[path] = raw
	return path, nil
}

func (f *artifactsFake) LoadJSON(_ context.Context, path string, v any) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	raw, ok := f.loaded[path]
	if !ok {
		raw, ok = f.saved[path]
	}
	if !ok {
		return fmt.Errorf("artifact not found: %s", path)
	}
	return json.Unmarshal(raw, v)
}

func (f *artifactsFake) put(path string, v any) {
	raw, _ := json.Marshal(v)
	f.loaded[path] = raw
}

type statusCall struct {
	status domain.ReportStatus
	errMsg string
}

type reportsFake struct {
	createErr   error
	statusCalls []statusCall
	savedAudit  *domain.AuditRecord
	saveErr     error
}

func (f *reportsFake) Create(context.Context, *domain.Report) error { return f.createErr }

func (f *reportsFake) UpdateStatus(_ context.Context, _ string, status domain.ReportStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return nil
}

func (f *reportsFake) SaveAudit(_ context.Context, record *domain.AuditRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedAudit = record
	return nil
}

func (f *reportsFake) lastStatus() domain.ReportStatus {
	if len(f.statusCalls) == 0 {
		return ""
	}
	return f.statusCalls[len(f.statusCalls)-1].status
}

type auditorFake struct {
	calls  int
	result domain.AuditResult
	gotReq domain.AuditRequest
}

func (f *auditorFake) Audit(_ context.Context, req domain.AuditRequest) domain.AuditResult {
	f.calls++
	f.gotReq = req
	return f.result
}

// pageDocFake serves canned page text and tables; error maps inject
// page-local failures.
type pageDocFake struct {
	texts     []string
	tables    map[int][][][]string
	textErrs  map[int]error
	tableErrs map[int]error
	closed    bool
}

func (f *pageDocFake) PageCount() int { return len(f.texts) }

func (f *pageDocFake) PageText(page int) (string, error) {
	if err := f.textErrs[page]; err != nil {
		return "", err
	}
	return f.texts[page-1], nil
}

func (f *pageDocFake) PageTables(page int) ([][][]string, error) {
	if err := f.tableErrs[page]; err != nil {
		return nil, err
	}
	return f.tables[page], nil
}

func (f *pageDocFake) Close() error {
	f.closed = true
	return nil
}

type openerFake struct {
	doc     *pageDocFake
	openErr error
}

func (f *openerFake) Open(context.Context, string) (ports.PageDocument, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.doc, nil
}
