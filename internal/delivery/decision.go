package delivery

import (
	"download-service/internal/rbac"
)

// Reason explains a verdict.
type Reason string

const (
	ReasonOK                Reason = "OK"
	ReasonNoCredential      Reason = "NO_CREDENTIAL"
	ReasonInvalidCredential Reason = "INVALID_CREDENTIAL"
	ReasonRoleLookupFailed  Reason = "ROLE_LOOKUP_FAILED"
	ReasonResourceNotFound  Reason = "RESOURCE_NOT_FOUND"
	ReasonInsufficientRole  Reason = "INSUFFICIENT_ROLE"
)

func (r Reason) String() string {
	return string(r)
}

// Verdict is the outcome of Decide. It is never persisted.
type Verdict struct {
	Allowed bool
	Reason  Reason
}

// DecisionInput gathers what the lookups produced for one request.
// CallerStatus is ReasonOK when the caller resolved to CallerRole, otherwise
// the credential or role failure that stopped resolution.
type DecisionInput struct {
	ResourceFound bool
	RequiredRole  rbac.Role
	CallerRole    rbac.Role
	CallerStatus  Reason
}

// Decide applies the checks in order: the resource must exist, the caller
// must have resolved, and the caller's role must be sufficient.
func Decide(checker *rbac.Checker, in DecisionInput) Verdict {
	if !in.ResourceFound {
		return deny(ReasonResourceNotFound)
	}

	switch in.CallerStatus {
	case ReasonOK, "":
	case ReasonNoCredential, ReasonInvalidCredential, ReasonRoleLookupFailed:
		return deny(in.CallerStatus)
	default:
		return deny(ReasonInvalidCredential)
	}

	if !checker.IsSufficient(in.CallerRole, in.RequiredRole) {
		return deny(ReasonInsufficientRole)
	}

	return Verdict{Allowed: true, Reason: ReasonOK}
}

func deny(reason Reason) Verdict {
	return Verdict{Allowed: false, Reason: reason}
}
