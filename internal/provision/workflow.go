package provision

import (
	"context"
	"fmt"

	"github.com/open-mgmt-platform/cm-content-tool/internal/cmplane"
	"github.com/open-mgmt-platform/cm-content-tool/internal/utils/logger"
)

// Result carries the IDs of the created objects.
type Result struct {
	ApplicationID string `json:"applicationId"`
	CollectionID  string `json:"collectionId"`
	DeploymentID  string `json:"deploymentId"`
	Distributed   bool   `json:"distributed"`
}

// Run executes the provisioning workflow: application, collection,
// deployment, content distribution, strictly in that order. The first
// failure stops the workflow; already-created objects are left in place for
// the operator to inspect.
func Run(ctx context.Context, client cmplane.Client, m *Manifest) (*Result, error) {
	log := logger.Logger()

	restore, err := client.EnterSite(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := restore(); rerr != nil {
			log.Warnf("Restoring prior context: %v", rerr)
		}
	}()

	result := &Result{}

	appID, err := client.CreateApplication(ctx, cmplane.ApplicationSpec{
		Name:            m.Application.Name,
		Publisher:       m.Application.Publisher,
		Version:         m.Application.Version,
		InstallCommand:  m.Application.InstallCommand,
		ContentLocation: m.Application.ContentLocation,
		Technology:      m.Application.Technology,
	})
	if err != nil {
		return result, err
	}
	result.ApplicationID = appID
	log.Infof("Created application %q (%s)", m.Application.Name, appID)

	collID, err := client.CreateCollection(ctx, cmplane.CollectionSpec{
		Name:               m.Collection.Name,
		LimitingCollection: m.Collection.LimitingCollection,
		QueryExpression:    m.Collection.Query,
	})
	if err != nil {
		return result, fmt.Errorf("after application %s: %w", appID, err)
	}
	result.CollectionID = collID
	log.Infof("Created collection %q (%s)", m.Collection.Name, collID)

	depID, err := client.CreateDeployment(ctx, cmplane.DeploymentSpec{
		ApplicationID: appID,
		CollectionID:  collID,
		Action:        m.Deployment.Action,
		Purpose:       m.Deployment.Purpose,
	})
	if err != nil {
		return result, fmt.Errorf("after collection %s: %w", collID, err)
	}
	result.DeploymentID = depID
	log.Infof("Deployed %s to %s (%s %s)", appID, collID, m.Deployment.Action, m.Deployment.Purpose)

	if m.DistributionPointGroup != "" {
		if err := client.DistributeContent(ctx, appID, m.DistributionPointGroup); err != nil {
			return result, fmt.Errorf("after deployment %s: %w", depID, err)
		}
		result.Distributed = true
		log.Infof("Distributed content of %s to %q", appID, m.DistributionPointGroup)
	}
	return result, nil
}
