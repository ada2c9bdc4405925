package ec2

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var (
	ErrInstanceLaunch    = fmt.Errorf("failed to launch instance")
	ErrInstanceWait      = fmt.Errorf("failed waiting for instance to run")
	ErrInstanceDescribe  = fmt.Errorf("failed to describe instances")
	ErrInstanceTerminate = fmt.Errorf("failed to terminate instance")
	ErrNoPublicIP        = fmt.Errorf("instance has no public IP address")
)

// Instance is the subset of instance state the CLI reports.
type Instance struct {
	ID         string
	PublicIP   string
	State      string
	LaunchedAt time.Time
}

// LaunchConfig describes the single web instance 'Launch' creates.
type LaunchConfig struct {
	Name            string
	AMI             string
	InstanceType    string
	KeyName         string
	SecurityGroupID string
	UserData        string // base64-encoded boot script

	// WaitTimeout bounds the running-state waiter rather than inheriting an
	// SDK default. default: 5m
	WaitTimeout time.Duration
}

func (c *LaunchConfig) applyDefaults() {
	if c.InstanceType == "" {
		c.InstanceType = "t2.nano"
	}
	if c.WaitTimeout == 0 {
		c.WaitTimeout = 5 * time.Minute
	}
}

// Launcher launches web instances and owns no state beyond its client and run
// identity.
type Launcher struct {
	api   API
	runID string
}

func NewLauncher(api API, runID string) *Launcher {
	return &Launcher{api: api, runID: runID}
}

// Launch runs a single instance per 'cfg', waits for it to reach the running
// state, and returns it with its public IP populated.
//
// Once RunInstances has been issued the launch cannot be aborted; canceling
// the context only stops the wait.
func (l *Launcher) Launch(ctx context.Context, cfg LaunchConfig) (Instance, error) {
	cfg.applyDefaults()
	log := clog.FromContext(ctx).With("name", cfg.Name, "instance_type", cfg.InstanceType)

	input := &ec2.RunInstancesInput{
		ImageId:          aws.String(cfg.AMI),
		InstanceType:     types.InstanceType(cfg.InstanceType),
		MinCount:         aws.Int32(1),
		MaxCount:         aws.Int32(1),
		SecurityGroupIds: []string{cfg.SecurityGroupID},
		TagSpecifications: tagSpecification(
			types.ResourceTypeInstance,
			NameTag(cfg.Name),
			RunIDTag(l.runID),
		),
	}
	if cfg.KeyName != "" {
		input.KeyName = aws.String(cfg.KeyName)
	}
	if cfg.UserData != "" {
		input.UserData = aws.String(cfg.UserData)
	}

	result, err := l.api.RunInstances(ctx, input)
	if err != nil {
		return Instance{}, fmt.Errorf("%w: %w", ErrInstanceLaunch, err)
	}
	if len(result.Instances) == 0 || result.Instances[0].InstanceId == nil {
		return Instance{}, fmt.Errorf("%w: no instance returned from launch", ErrInstanceLaunch)
	}
	id := *result.Instances[0].InstanceId
	log = log.With("id", id)
	log.Info("launched instance")

	log.Info("waiting for instance to enter running state")
	waiter := ec2.NewInstanceRunningWaiter(l.api)
	output, err := waiter.WaitForOutput(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{id},
	}, cfg.WaitTimeout)
	if err != nil {
		return Instance{}, fmt.Errorf("%w: %w", ErrInstanceWait, err)
	}
	if len(output.Reservations) == 0 || len(output.Reservations[0].Instances) == 0 {
		return Instance{}, fmt.Errorf("%w: instance missing from waiter output", ErrInstanceWait)
	}
	inst := output.Reservations[0].Instances[0]
	if inst.PublicIpAddress == nil {
		return Instance{}, fmt.Errorf("%w: %s", ErrNoPublicIP, id)
	}

	launched := Instance{
		ID:       id,
		PublicIP: *inst.PublicIpAddress,
		State:    string(types.InstanceStateNameRunning),
	}
	if inst.LaunchTime != nil {
		launched.LaunchedAt = *inst.LaunchTime
	}
	log.Info("instance running", "ip", launched.PublicIP)
	return launched, nil
}

// ListRunning returns all instances currently in the running state.
func ListRunning(ctx context.Context, api API) ([]Instance, error) {
	result, err := api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{{
			Name:   aws.String("instance-state-name"),
			Values: []string{string(types.InstanceStateNameRunning)},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInstanceDescribe, err)
	}

	var instances []Instance
	for _, reservation := range result.Reservations {
		for _, inst := range reservation.Instances {
			if inst.InstanceId == nil {
				continue
			}
			listed := Instance{
				ID:       *inst.InstanceId,
				PublicIP: aws.ToString(inst.PublicIpAddress),
			}
			if inst.State != nil {
				listed.State = string(inst.State.Name)
			}
			if inst.LaunchTime != nil {
				listed.LaunchedAt = *inst.LaunchTime
			}
			instances = append(instances, listed)
		}
	}
	return instances, nil
}

// Terminate terminates the given instances. It does not wait for termination
// to complete.
func Terminate(ctx context.Context, api API, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := api.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: ids,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInstanceTerminate, err)
	}
	clog.FromContext(ctx).Info("terminating instances", "ids", ids)
	return nil
}

// TerminateAllRunning terminates every running instance, returning the IDs it
// acted on.
func TerminateAllRunning(ctx context.Context, api API) ([]string, error) {
	running, err := ListRunning(ctx, api)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(running))
	for _, inst := range running {
		ids = append(ids, inst.ID)
	}
	if err := Terminate(ctx, api, ids...); err != nil {
		return nil, err
	}
	return ids, nil
}
