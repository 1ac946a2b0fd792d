package provision

import (
	"context"
	"errors"
	"testing"

	"github.com/open-mgmt-platform/cm-content-tool/internal/cmplane"
)

type fakeClient struct {
	calls []string

	collectionErr error
	deployErr     error

	apps        []cmplane.ApplicationSpec
	collections []cmplane.CollectionSpec
	deployments []cmplane.DeploymentSpec
	distributed []string
	restored    bool
}

func (c *fakeClient) EnterSite(ctx context.Context) (cmplane.RestoreFunc, error) {
	c.calls = append(c.calls, "enter")
	return func() error {
		c.restored = true
		return nil
	}, nil
}

func (c *fakeClient) ListObjects(ctx context.Context, kind cmplane.ObjectKind) ([]cmplane.ObjectRecord, error) {
	return nil, errors.New("not used by provisioning")
}

func (c *fakeClient) SaveSourcePath(ctx context.Context, kind cmplane.ObjectKind, id, path string) error {
	return errors.New("not used by provisioning")
}

func (c *fakeClient) SaveApplicationDigest(ctx context.Context, id string, digest []byte) error {
	return errors.New("not used by provisioning")
}

func (c *fakeClient) CreateApplication(ctx context.Context, spec cmplane.ApplicationSpec) (string, error) {
	c.calls = append(c.calls, "application")
	c.apps = append(c.apps, spec)
	return "16777300", nil
}

func (c *fakeClient) CreateCollection(ctx context.Context, spec cmplane.CollectionSpec) (string, error) {
	c.calls = append(c.calls, "collection")
	if c.collectionErr != nil {
		return "", c.collectionErr
	}
	c.collections = append(c.collections, spec)
	return "LAB00042", nil
}

func (c *fakeClient) CreateDeployment(ctx context.Context, spec cmplane.DeploymentSpec) (string, error) {
	c.calls = append(c.calls, "deployment")
	if c.deployErr != nil {
		return "", c.deployErr
	}
	c.deployments = append(c.deployments, spec)
	return "{D1}", nil
}

func (c *fakeClient) DistributeContent(ctx context.Context, applicationID, dpGroup string) error {
	c.calls = append(c.calls, "distribute")
	c.distributed = append(c.distributed, dpGroup)
	return nil
}

func TestRunCreatesObjectsInOrder(t *testing.T) {
	client := &fakeClient{}
	m, err := ParseManifest([]byte(validManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	result, err := Run(context.Background(), client, m)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []string{"enter", "application", "collection", "deployment", "distribute"}
	if len(client.calls) != len(want) {
		t.Fatalf("wrong call sequence: %v", client.calls)
	}
	for i := range want {
		if client.calls[i] != want[i] {
			t.Fatalf("wrong call sequence: %v", client.calls)
		}
	}

	if result.ApplicationID != "16777300" || result.CollectionID != "LAB00042" || result.DeploymentID != "{D1}" {
		t.Errorf("wrong result: %+v", result)
	}
	if !result.Distributed {
		t.Error("expected content distribution")
	}
	if client.deployments[0].ApplicationID != "16777300" || client.deployments[0].CollectionID != "LAB00042" {
		t.Errorf("deployment not wired to created objects: %+v", client.deployments[0])
	}
	if !client.restored {
		t.Error("working context not restored")
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	client := &fakeClient{collectionErr: errors.New("duplicate name")}
	m, err := ParseManifest([]byte(validManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	result, err := Run(context.Background(), client, m)
	if err == nil {
		t.Fatal("expected an error")
	}
	// the created application survives for inspection
	if result.ApplicationID == "" {
		t.Error("expected the application ID in the partial result")
	}
	for _, call := range client.calls {
		if call == "deployment" || call == "distribute" {
			t.Errorf("workflow continued past the failure: %v", client.calls)
		}
	}
	if !client.restored {
		t.Error("working context not restored after a failure")
	}
}

func TestRunSkipsDistributionWithoutGroup(t *testing.T) {
	client := &fakeClient{}
	m, err := ParseManifest([]byte(validManifest))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	m.DistributionPointGroup = ""

	result, err := Run(context.Background(), client, m)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Distributed {
		t.Error("did not expect distribution")
	}
	if len(client.distributed) != 0 {
		t.Errorf("unexpected distribution calls: %v", client.distributed)
	}
}
