package ec2

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/chainguard-dev/clog"
)

var (
	ErrGroupList   = fmt.Errorf("failed to list security groups")
	ErrGroupCreate = fmt.Errorf("failed to create security group")
	ErrRuleAttach  = fmt.Errorf("failed to attach inbound rules to security group")
)

// ResolverConfig configures security group resolution.
type ResolverConfig struct {
	// BaseName seeds group naming when a new group must be created.
	// default: NewLaunchWizard
	BaseName string

	// Description is applied to newly created groups.
	Description string

	// Rules is the required inbound rule set. A candidate group matches only
	// if it carries an exact match for every rule.
	// default: DefaultWebRules
	Rules []Rule

	// NameAttempts bounds the unique-name loop. default: 100
	NameAttempts int

	// Tags are applied to newly created groups alongside the standard set.
	Tags []types.Tag
}

func (c *ResolverConfig) applyDefaults() {
	if c.BaseName == "" {
		c.BaseName = "NewLaunchWizard"
	}
	if c.Description == "" {
		c.Description = "Allows access to HTTP and SSH ports"
	}
	if len(c.Rules) == 0 {
		c.Rules = DefaultWebRules()
	}
	if c.NameAttempts <= 0 {
		c.NameAttempts = nameAttemptsDefault
	}
}

// Resolver finds or creates a security group satisfying a required inbound
// rule set within the account's default VPC.
type Resolver struct {
	api API
	cfg ResolverConfig
}

func NewResolver(api API, cfg ResolverConfig) *Resolver {
	cfg.applyDefaults()
	return &Resolver{api: api, cfg: cfg}
}

// Resolve runs the pipeline: locate the default VPC, scan it for a group
// already satisfying the required rules, and if none matches create one under
// a collision-free name and attach the rules. Returns the group ID.
//
// Each step failing is terminal for the attempt; there is no retry and a
// group created without its rules is left in place (see createGroup).
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	log := clog.FromContext(ctx)

	vpcID, err := defaultVPC(ctx, r.api)
	if err != nil {
		return "", err // No annotation required.
	}

	groupID, found, err := matchingGroup(ctx, r.api, vpcID, r.cfg.Rules)
	if err != nil {
		return "", err
	}
	if found {
		log.Info("found matching security group, using it", "id", groupID)
		return groupID, nil
	}

	name, err := uniqueGroupName(ctx, r.api, vpcID, r.cfg.BaseName, r.cfg.NameAttempts)
	if err != nil {
		return "", err
	}

	groupID, err = createGroup(ctx, r.api, vpcID, name, r.cfg.Description, r.cfg.Rules, r.cfg.Tags)
	if err != nil {
		return "", err
	}
	return groupID, nil
}

// matchingGroup scans the VPC's security groups for the first one whose
// permission list contains an exact match for every required rule. Order is
// whatever DescribeSecurityGroups returns; no sort is imposed, so repeated
// calls against an unchanged inventory yield the same group.
func matchingGroup(ctx context.Context, api API, vpcID string, required []Rule) (string, bool, error) {
	result, err := api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []types.Filter{{
			Name:   aws.String("vpc-id"),
			Values: []string{vpcID},
		}},
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrGroupList, err)
	}
	for _, group := range result.SecurityGroups {
		if group.GroupId == nil {
			continue
		}
		if rulesSatisfied(required, group.IpPermissions) {
			return *group.GroupId, true, nil
		}
	}
	return "", false, nil
}

// createGroup creates a security group and attaches the required inbound
// rules in a single follow-up call.
//
// If rule attachment fails after a successful create, the rule-less group is
// left as-is and the error surfaces as ErrRuleAttach; there is no rollback
// and no read-back verifying the rules landed.
func createGroup(ctx context.Context, api API, vpcID, name, description string, rules []Rule, tags []types.Tag) (string, error) {
	log := clog.FromContext(ctx).With("name", name, "vpc_id", vpcID)

	created, err := api.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:         aws.String(name),
		Description:       aws.String(description),
		VpcId:             aws.String(vpcID),
		TagSpecifications: tagSpecification(types.ResourceTypeSecurityGroup, tags...),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidGroup.Duplicate" {
			// The name was free when checked but taken before create landed.
			return "", fmt.Errorf("%w: name %q taken between check and create: %w", ErrGroupCreate, name, err)
		}
		return "", fmt.Errorf("%w: %w", ErrGroupCreate, err)
	}
	if created.GroupId == nil {
		return "", fmt.Errorf("%w: no group ID returned", ErrGroupCreate)
	}
	groupID := *created.GroupId
	log.Info("created security group", "id", groupID)

	_, err = api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: ipPermissions(rules),
	})
	if err != nil {
		log.Error("group created but rule attachment failed, leaving group in place", "id", groupID)
		return "", fmt.Errorf("%w: group %s: %w", ErrRuleAttach, groupID, err)
	}
	log.Info("attached inbound rules", "id", groupID, "rules", len(rules))
	return groupID, nil
}
