package remap

import (
	"context"
	"fmt"

	"github.com/open-mgmt-platform/cm-content-tool/internal/appdigest"
	"github.com/open-mgmt-platform/cm-content-tool/internal/cmplane"
)

// Object is one content-bearing object under remap. Paths exposes the
// recorded content locations; Commit persists the proposed replacements.
// A path is either left untouched or replaced in full, never partially.
type Object interface {
	Identity() string
	Paths() ([]string, error)
	// Commit persists results[i].Proposed for every entry with Changed set.
	// results aligns index-for-index with the slice Paths returned.
	Commit(ctx context.Context, results []Result) error
}

// Source enumerates the objects of one category.
type Source interface {
	Kind() cmplane.ObjectKind
	Objects(ctx context.Context) ([]Object, error)
}

// Sources returns one source per content-bearing kind, in the fixed
// processing order.
func Sources(client cmplane.Client) []Source {
	sources := make([]Source, 0, len(cmplane.ContentKinds))
	for _, kind := range cmplane.ContentKinds {
		if kind == cmplane.KindApplication {
			sources = append(sources, &applicationSource{client: client})
			continue
		}
		sources = append(sources, &scalarSource{client: client, kind: kind})
	}
	return sources
}

// scalarSource serves the five kinds whose source path is a single field.
type scalarSource struct {
	client cmplane.Client
	kind   cmplane.ObjectKind
}

func (s *scalarSource) Kind() cmplane.ObjectKind { return s.kind }

func (s *scalarSource) Objects(ctx context.Context) ([]Object, error) {
	records, err := s.client.ListObjects(ctx, s.kind)
	if err != nil {
		return nil, err
	}
	objects := make([]Object, 0, len(records))
	for _, rec := range records {
		objects = append(objects, &scalarObject{client: s.client, rec: rec})
	}
	return objects, nil
}

type scalarObject struct {
	client cmplane.Client
	rec    cmplane.ObjectRecord
}

func (o *scalarObject) Identity() string { return o.rec.Identity() }

func (o *scalarObject) Paths() ([]string, error) {
	return []string{o.rec.SourcePath}, nil
}

func (o *scalarObject) Commit(ctx context.Context, results []Result) error {
	if len(results) != 1 {
		return fmt.Errorf("expected one result for %s, got %d", o.rec.Kind, len(results))
	}
	return o.client.SaveSourcePath(ctx, o.rec.Kind, o.rec.ID, results[0].Proposed)
}

// applicationSource serves applications, whose content locations are nested
// inside the installer-content document.
type applicationSource struct {
	client cmplane.Client
}

func (s *applicationSource) Kind() cmplane.ObjectKind { return cmplane.KindApplication }

func (s *applicationSource) Objects(ctx context.Context) ([]Object, error) {
	records, err := s.client.ListObjects(ctx, cmplane.KindApplication)
	if err != nil {
		return nil, err
	}
	objects := make([]Object, 0, len(records))
	for _, rec := range records {
		objects = append(objects, &applicationObject{client: s.client, rec: rec})
	}
	return objects, nil
}

// applicationObject decodes the digest lazily so a malformed document
// surfaces as that object's own failure, not an enumeration failure.
type applicationObject struct {
	client cmplane.Client
	rec    cmplane.ObjectRecord
	doc    *appdigest.Document
	// slots maps each exposed path back to its deployment-type index;
	// deployment types without descriptors are not exposed.
	slots []int
}

func (o *applicationObject) Identity() string { return o.rec.Identity() }

func (o *applicationObject) Paths() ([]string, error) {
	doc, err := appdigest.Decode(o.rec.Digest)
	if err != nil {
		return nil, &DecodeError{Identity: o.Identity(), Err: err}
	}
	o.doc = doc
	o.slots = o.slots[:0]

	var paths []string
	for i := range doc.DeploymentTypes {
		location, ok := doc.DeploymentTypes[i].PrimaryLocation()
		if !ok {
			continue
		}
		o.slots = append(o.slots, i)
		paths = append(paths, location)
	}
	return paths, nil
}

func (o *applicationObject) Commit(ctx context.Context, results []Result) error {
	if o.doc == nil {
		return fmt.Errorf("commit before analyze for %s", o.Identity())
	}
	if len(results) != len(o.slots) {
		return fmt.Errorf("expected %d results for %s, got %d", len(o.slots), o.Identity(), len(results))
	}
	for i, res := range results {
		if !res.Changed {
			continue
		}
		dt := &o.doc.DeploymentTypes[o.slots[i]]
		if err := dt.ReplacePrimaryContent(res.Proposed); err != nil {
			return err
		}
	}
	raw, err := appdigest.Encode(o.doc)
	if err != nil {
		return err
	}
	return o.client.SaveApplicationDigest(ctx, o.rec.ID, raw)
}
