package delivery

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"download-service/internal/audit"
	"download-service/internal/auth"
	"download-service/internal/domain/post"
	"download-service/internal/logger"
	"download-service/internal/metrics"
	"download-service/internal/rbac"
	apperrors "download-service/pkg/errors"
)

// State is a step of the delivery pipeline.
type State string

const (
	StateStart               State = "START"
	StateResolvingCredential State = "RESOLVING_CREDENTIAL"
	StateResolvingRole       State = "RESOLVING_ROLE"
	StateResolvingResource   State = "RESOLVING_RESOURCE"
	StateDeciding            State = "DECIDING"
	StateDenied              State = "DENIED"
	StateResolvingPath       State = "RESOLVING_PATH"
	StateIssuingURL          State = "ISSUING_URL"
	StateCounting            State = "COUNTING"
	StateDelivered           State = "DELIVERED"
	StateFailed              State = "FAILED"
)

const (
	paramPostID   = "postId"
	paramFilePath = "filePath"

	msgFilePathHasNoKey = "filePath does not name a file"
)

type (
	CredentialResolver interface {
		Resolve(ctx context.Context, header string) (*auth.Identity, error)
	}
	RoleResolver interface {
		Lookup(ctx context.Context, identity *auth.Identity) (rbac.Role, error)
	}
	PermissionResolver interface {
		Lookup(ctx context.Context, postID string) (*post.PermissionRecord, error)
	}
	URLIssuer interface {
		Issue(ctx context.Context, bucket, key string, ttl time.Duration) (SignedURL, error)
	}
	DownloadCounter interface {
		Increment(ctx context.Context, postID string) (int64, error)
	}
	EventRecorder interface {
		Record(event audit.Event)
	}
)

// Request is one download attempt as received from the transport.
type Request struct {
	PostID        string
	FilePath      string
	Authorization string
	ClientIP      string
	UserAgent     string
}

// Result describes how far a request got. Transitions lists every state
// visited in order, ending with the terminal one.
type Result struct {
	State         State
	Transitions   []State
	Verdict       Verdict
	Identity      *auth.Identity
	CallerRole    rbac.Role
	Location      ObjectLocation
	URL           SignedURL
	DownloadCount int64
	CounterErr    error
}

func (r *Result) enter(s State) {
	r.State = s
	r.Transitions = append(r.Transitions, s)
}

type Dependencies struct {
	Credentials CredentialResolver
	Roles       RoleResolver
	Resources   PermissionResolver
	Issuer      URLIssuer
	Counter     DownloadCounter
	Audit       EventRecorder
	Checker     *rbac.Checker
	Logger      *zap.Logger
	Metrics     *metrics.DeliveryMetrics
}

// Orchestrator runs the delivery pipeline. It keeps no per-request state
// and is safe for concurrent use.
type Orchestrator struct {
	deps   Dependencies
	urlTTL time.Duration
}

func NewOrchestrator(deps Dependencies, urlTTL time.Duration) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Orchestrator{deps: deps, urlTTL: urlTTL}
}

// Deliver authorizes req and issues a signed URL. The returned Result is
// never nil. A non-nil error means the request ended in DENIED or FAILED and
// is one of the typed errors of pkg/errors.
func (o *Orchestrator) Deliver(ctx context.Context, req Request) (*Result, error) {
	res := &Result{}
	res.enter(StateStart)

	err := o.run(ctx, req, res)
	o.record(ctx, req, res, err)
	return res, err
}

func (o *Orchestrator) run(ctx context.Context, req Request, res *Result) error {
	if req.PostID == "" {
		return o.fail(res, apperrors.MissingParameter(paramPostID))
	}
	if req.FilePath == "" {
		return o.fail(res, apperrors.MissingParameter(paramFilePath))
	}

	lg := logger.FromContext(ctx, o.deps.Logger)

	// Credential and role failures are held until the resource is known, so
	// a missing post is reported as such whatever the credential.
	res.enter(StateResolvingCredential)
	callerStatus := ReasonOK
	var callerErr error

	identity, err := o.deps.Credentials.Resolve(ctx, req.Authorization)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return o.fail(res, ctxErr)
		}
		callerErr = err
		callerStatus = ReasonInvalidCredential
		if errors.Is(err, apperrors.ErrNoCredential) {
			callerStatus = ReasonNoCredential
		}
	}
	res.Identity = identity

	res.enter(StateResolvingRole)
	if callerErr == nil {
		role, err := o.deps.Roles.Lookup(ctx, identity)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return o.fail(res, ctxErr)
			}
			callerErr = err
			callerStatus = ReasonRoleLookupFailed
		}
		res.CallerRole = role
	}

	res.enter(StateResolvingResource)
	record, err := o.deps.Resources.Lookup(ctx, req.PostID)
	found := err == nil
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return o.fail(res, err)
	}

	res.enter(StateDeciding)
	input := DecisionInput{
		ResourceFound: found,
		CallerRole:    res.CallerRole,
		CallerStatus:  callerStatus,
	}
	if found {
		input.RequiredRole = record.RequiredRole
	}
	res.Verdict = Decide(o.deps.Checker, input)
	o.deps.Metrics.ObserveVerdict(res.Verdict.Reason.String())

	if !res.Verdict.Allowed {
		res.enter(StateDenied)
		fields := []zap.Field{
			zap.String("post_id", req.PostID),
			zap.String("reason", res.Verdict.Reason.String()),
		}
		if identity != nil {
			fields = append(fields, zap.String("actor_id", logger.MaskString(identity.ID)))
		}
		lg.Info("download denied", fields...)
		return denialError(res.Verdict, input.RequiredRole, callerErr)
	}

	res.enter(StateResolvingPath)
	res.Location = ResolvePath(req.FilePath)
	if res.Location.Key == "" {
		return o.fail(res, apperrors.BadRequest(msgFilePathHasNoKey))
	}

	res.enter(StateIssuingURL)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		res.DownloadCount, res.CounterErr = o.deps.Counter.Increment(ctx, req.PostID)
	}()

	url, issueErr := o.deps.Issuer.Issue(ctx, res.Location.Bucket, res.Location.Key, o.urlTTL)

	res.enter(StateCounting)
	wg.Wait()

	if issueErr != nil {
		lg.Error("signed url issuance failed",
			zap.String("post_id", req.PostID),
			zap.String("bucket", res.Location.Bucket),
			zap.Error(issueErr),
		)
		return o.fail(res, issueErr)
	}

	res.URL = url
	res.enter(StateDelivered)
	return nil
}

func (o *Orchestrator) fail(res *Result, err error) error {
	res.enter(StateFailed)
	return err
}

func (o *Orchestrator) record(ctx context.Context, req Request, res *Result, err error) {
	if o.deps.Audit == nil || req.PostID == "" {
		return
	}

	event := audit.Event{
		RequestID: logger.RequestIDFromContext(ctx),
		PostID:    req.PostID,
		Bucket:    res.Location.Bucket,
		ObjectKey: res.Location.Key,
		Reason:    res.Verdict.Reason.String(),
		IPAddress: req.ClientIP,
		UserAgent: req.UserAgent,
	}
	if res.Identity != nil {
		id := res.Identity.ID
		event.ActorID = &id
	}

	switch res.State {
	case StateDelivered:
		event.Status = audit.StatusDelivered
	case StateDenied:
		event.Status = audit.StatusDenied
	default:
		event.Status = audit.StatusFailed
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			event.Reason = appErr.Code
		}
	}

	o.deps.Audit.Record(event)
}

// denialError maps a negative verdict to the error returned to the caller.
// Credential and role errors are passed through so their detail survives.
func denialError(v Verdict, required rbac.Role, callerErr error) error {
	switch v.Reason {
	case ReasonResourceNotFound:
		return apperrors.ResourceNotFound()
	case ReasonNoCredential, ReasonInvalidCredential, ReasonRoleLookupFailed:
		if callerErr != nil {
			return callerErr
		}
		return apperrors.InvalidCredential(nil)
	default:
		return apperrors.InsufficientRole(string(required))
	}
}
