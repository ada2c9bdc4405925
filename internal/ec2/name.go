package ec2

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

// nameAttemptsDefault bounds the collision-avoidance loop. The suffix space is
// large relative to realistic group counts, so hitting this bound means the
// provider is answering every name check with a hit.
const nameAttemptsDefault = 100

var (
	ErrNameCheck     = fmt.Errorf("failed to check security group name availability")
	ErrNameExhausted = fmt.Errorf("exhausted attempts generating a free security group name")
)

// uniqueGroupName returns 'base' if no group of that name exists in the VPC,
// otherwise appends a random lowercase letter plus the attempt counter and
// re-checks, up to 'maxAttempts' times.
//
// The check is read-only and nothing reserves the returned name, so two
// concurrent callers can race between check and create. Accepted limitation
// for the single-operator use this tool targets.
func uniqueGroupName(ctx context.Context, api API, vpcID, base string, maxAttempts int) (string, error) {
	log := clog.FromContext(ctx).With("base", base, "vpc_id", vpcID)
	if maxAttempts <= 0 {
		maxAttempts = nameAttemptsDefault
	}

	name := base
	for attempt := range maxAttempts {
		result, err := api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
			Filters: []types.Filter{
				{Name: aws.String("vpc-id"), Values: []string{vpcID}},
				{Name: aws.String("group-name"), Values: []string{name}},
			},
		})
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrNameCheck, err)
		}
		if len(result.SecurityGroups) == 0 {
			if name != base {
				log.Debug("settled on generated group name", "name", name, "attempts", attempt)
			}
			return name, nil
		}
		name = fmt.Sprintf("%s-%c%d", base, 'a'+rand.IntN(26), attempt+1)
	}
	return "", fmt.Errorf("%w: %q after %d attempts", ErrNameExhausted, base, maxAttempts)
}
