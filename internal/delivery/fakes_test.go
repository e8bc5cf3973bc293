package delivery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"download-service/internal/audit"
	"download-service/internal/domain/post"
	"download-service/internal/domain/profile"
	"download-service/internal/rbac"
	"download-service/internal/rbac/presets"
	apperrors "download-service/pkg/errors"
)

var testChecker = rbac.MustNew(presets.Community())

type fakeProfiles struct {
	roles map[string]rbac.Role
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (f *fakeProfiles) GetRole(ctx context.Context, id string) (rbac.Role, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	role, ok := f.roles[id]
	if !ok {
		return "", apperrors.NotFound("profile not found")
	}
	return role, nil
}

func (f *fakeProfiles) Ensure(context.Context, profile.EnsureProfileInput) (bool, error) {
	return false, nil
}

type fakePosts struct {
	mu           sync.Mutex
	records      map[string]*post.PermissionRecord
	getErr       error
	incrementErr error
	delay        time.Duration
}

func newFakePosts(records ...post.PermissionRecord) *fakePosts {
	f := &fakePosts{records: make(map[string]*post.PermissionRecord)}
	for i := range records {
		r := records[i]
		f.records[r.PostID] = &r
	}
	return f
}

func (f *fakePosts) GetPermission(ctx context.Context, id string) (*post.PermissionRecord, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.getErr != nil {
		return nil, f.getErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return nil, apperrors.NotFound("post not found")
	}
	copied := *r
	return &copied, nil
}

func (f *fakePosts) IncrementDownloadCount(_ context.Context, id string) (int64, error) {
	if f.incrementErr != nil {
		return 0, f.incrementErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return 0, apperrors.NotFound("post not found")
	}
	r.DownloadCount++
	return r.DownloadCount, nil
}

func (f *fakePosts) count(id string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[id].DownloadCount
}

type signCall struct {
	bucket string
	key    string
	ttl    time.Duration
}

// scriptedSigner returns errs[i] for the i-th call and a URL once errs runs out.
type scriptedSigner struct {
	mu    sync.Mutex
	errs  []error
	calls []signCall
}

func (s *scriptedSigner) PresignGetURL(_ context.Context, bucket, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.calls)
	s.calls = append(s.calls, signCall{bucket: bucket, key: key, ttl: ttl})
	if n < len(s.errs) {
		return "", s.errs[n]
	}
	return "https://storage.example/" + bucket + "/" + key + "?attempt=" + string(rune('1'+n)), nil
}

func (s *scriptedSigner) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingAudit) Record(event audit.Event) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingAudit) all() []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]audit.Event(nil), r.events...)
}
