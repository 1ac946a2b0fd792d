package cmplane

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConnected is returned when an operation runs outside an established
// site context.
var ErrNotConnected = errors.New("site context not established")

// RestoreFunc undoes EnterSite, returning the session to its prior context.
type RestoreFunc func() error

// Client is the management-plane surface the workflows consume. A Client
// addresses exactly one site; EnterSite must succeed before any other call.
type Client interface {
	// EnterSite establishes the working context against the site and returns
	// the restore handle for it. Callers must invoke the handle on every exit
	// path.
	EnterSite(ctx context.Context) (RestoreFunc, error)

	// ListObjects enumerates every object of the given kind.
	ListObjects(ctx context.Context, kind ObjectKind) ([]ObjectRecord, error)

	// SaveSourcePath persists a new content source path on a non-application
	// object.
	SaveSourcePath(ctx context.Context, kind ObjectKind, id, path string) error

	// SaveApplicationDigest persists a re-encoded installer-content document
	// on an application.
	SaveApplicationDigest(ctx context.Context, id string, digest []byte) error

	// CreateApplication registers an application and returns its ID.
	CreateApplication(ctx context.Context, spec ApplicationSpec) (string, error)

	// CreateCollection creates a device collection, attaching the membership
	// rule from the spec, and returns its ID.
	CreateCollection(ctx context.Context, spec CollectionSpec) (string, error)

	// CreateDeployment targets an application at a collection.
	CreateDeployment(ctx context.Context, spec DeploymentSpec) (string, error)

	// DistributeContent sends an application's content to a distribution
	// point group.
	DistributeContent(ctx context.Context, applicationID, dpGroup string) error
}

// ContextError reports a failure to establish the working context. It is
// fatal to a run; nothing proceeds past it.
type ContextError struct {
	Site string
	Err  error
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("entering site %s: %v", e.Site, e.Err)
}

func (e *ContextError) Unwrap() error { return e.Err }
