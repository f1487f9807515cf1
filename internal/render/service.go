package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Service is the subset of Render service metadata the deploy tool needs.
type Service struct {
	ID        string
	Name      string
	URL       string
	Suspended bool
}

// Deploy statuses reported by the Render CLI.
const (
	DeployStatusCreated        = "created"
	DeployStatusBuildRunning   = "build_in_progress"
	DeployStatusUpdateRunning  = "update_in_progress"
	DeployStatusLive           = "live"
	DeployStatusBuildFailed    = "build_failed"
	DeployStatusUpdateFailed   = "update_failed"
	DeployStatusCanceled       = "canceled"
	DeployStatusDeactivated    = "deactivated"
	DeployStatusPreDeployError = "pre_deploy_failed"
)

// Deploy is one deployment of a service, as reported by `render deploys`.
type Deploy struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Failed reports whether the deploy reached a terminal failure state.
func (d Deploy) Failed() bool {
	switch d.Status {
	case DeployStatusBuildFailed, DeployStatusUpdateFailed,
		DeployStatusCanceled, DeployStatusDeactivated, DeployStatusPreDeployError:
		return true
	}
	return false
}

// Live reports whether the deploy finished successfully.
func (d Deploy) Live() bool {
	return d.Status == DeployStatusLive
}

// serviceEnvelope mirrors the JSON emitted by `render services get`.
type serviceEnvelope struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Suspended      string `json:"suspended"`
	ServiceDetails struct {
		URL string `json:"url"`
	} `json:"serviceDetails"`
}

// parseService decodes CLI JSON into a Service.
func parseService(data []byte) (*Service, error) {
	var env serviceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse service JSON: %w", err)
	}
	if env.ID == "" {
		return nil, fmt.Errorf("service JSON has no id")
	}
	return &Service{
		ID:        env.ID,
		Name:      env.Name,
		URL:       env.ServiceDetails.URL,
		Suspended: strings.EqualFold(env.Suspended, "suspended"),
	}, nil
}

// parseDeploys decodes CLI JSON into a deploy list, newest first.
func parseDeploys(data []byte) ([]Deploy, error) {
	var deploys []Deploy
	if err := json.Unmarshal(data, &deploys); err != nil {
		return nil, fmt.Errorf("parse deploys JSON: %w", err)
	}
	return deploys, nil
}

// GetService fetches service metadata via the CLI.
func (d *Deployer) GetService(ctx context.Context, serviceID string) (*Service, error) {
	out, err := d.cli.Run(ctx, "services", "get", serviceID, "--output", "json")
	if err != nil {
		return nil, fmt.Errorf("get service %s: %w", serviceID, err)
	}
	return parseService(out)
}

// LatestDeploy returns the most recent deploy of the service.
func (d *Deployer) LatestDeploy(ctx context.Context, serviceID string) (*Deploy, error) {
	out, err := d.cli.Run(ctx, "deploys", "list", serviceID, "--output", "json", "--limit", "1")
	if err != nil {
		return nil, fmt.Errorf("list deploys for %s: %w", serviceID, err)
	}
	deploys, err := parseDeploys(out)
	if err != nil {
		return nil, err
	}
	if len(deploys) == 0 {
		return nil, fmt.Errorf("service %s has no deploys", serviceID)
	}
	return &deploys[0], nil
}
