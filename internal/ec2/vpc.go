package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var (
	ErrVPCDescribe  = fmt.Errorf("failed to describe VPCs")
	ErrNoDefaultVPC = fmt.Errorf("account has no default VPC in this region")
)

// defaultVPC returns the ID of the account's default VPC, the scope within
// which security groups are matched and names are checked. Resolved once per
// run; a missing default VPC is fatal to the caller's operation.
func defaultVPC(ctx context.Context, api API) (string, error) {
	result, err := api.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []types.Filter{{
			Name:   aws.String("isDefault"),
			Values: []string{"true"},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVPCDescribe, err)
	}
	if len(result.Vpcs) == 0 || result.Vpcs[0].VpcId == nil {
		return "", ErrNoDefaultVPC
	}
	vpcID := *result.Vpcs[0].VpcId
	clog.FromContext(ctx).Debug("located default VPC", "id", vpcID)
	return vpcID, nil
}
