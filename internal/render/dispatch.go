package render

import (
	"context"
	"fmt"

	"github.com/dmarkhas/renderdeploy-go/internal/logger"
)

// Action is the deployment path the dispatcher took.
type Action string

const (
	// ActionUpdate redeploys an already-provisioned service.
	ActionUpdate Action = "update"

	// ActionCreate provisions services from the declarative blueprint.
	ActionCreate Action = "create"
)

// Deployer dispatches deployments through the Render CLI.
type Deployer struct {
	cli Runner
	log *logger.Logger
}

// NewDeployer creates a Deployer on top of the given CLI runner.
func NewDeployer(cli Runner, log *logger.Logger) *Deployer {
	return &Deployer{cli: cli, log: log.WithModule("render")}
}

// Dispatch triggers exactly one deployment. When serviceID is set the
// existing service is redeployed; otherwise the blueprint at
// blueprintPath is launched to create it. The two paths are mutually
// exclusive and neither retries: a CLI failure surfaces as the returned
// error with the CLI's exit code attached.
func (d *Deployer) Dispatch(ctx context.Context, serviceID, blueprintPath string) (Action, error) {
	if serviceID != "" {
		d.log.WithField("service_id", serviceID).InfoContext(ctx, "Triggering deploy of existing service")
		if _, err := d.cli.Run(ctx, "deploys", "create", serviceID, "--output", "json", "--confirm"); err != nil {
			return ActionUpdate, fmt.Errorf("trigger deploy: %w", err)
		}
		return ActionUpdate, nil
	}

	d.log.WithField("blueprint", blueprintPath).InfoContext(ctx, "No service ID set, launching blueprint")
	if _, err := d.cli.Run(ctx, "blueprint", "launch", "--file", blueprintPath, "--confirm"); err != nil {
		return ActionCreate, fmt.Errorf("launch blueprint: %w", err)
	}
	return ActionCreate, nil
}
