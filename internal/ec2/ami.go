package ec2

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
)

var (
	ErrAMIDescribe   = fmt.Errorf("failed to describe AMIs")
	ErrNoMatchingAMI = fmt.Errorf("found no available Amazon Linux AMI")
)

// LatestAmazonLinuxAMI returns the most recently created available Amazon
// Linux 2 x86_64 gp2 AMI published by Amazon. Used when no AMI is configured.
func LatestAmazonLinuxAMI(ctx context.Context, api API) (string, error) {
	result, err := api.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{"amazon"},
		Filters: []types.Filter{
			{Name: aws.String("name"), Values: []string{"amzn2-ami-hvm-*-x86_64-gp2"}},
			{Name: aws.String("state"), Values: []string{"available"}},
			{Name: aws.String("architecture"), Values: []string{"x86_64"}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAMIDescribe, err)
	}
	if len(result.Images) == 0 {
		return "", ErrNoMatchingAMI
	}

	images := result.Images
	// CreationDate is RFC3339, so a lexicographic sort is a chronological one.
	sort.Slice(images, func(i, j int) bool {
		return aws.ToString(images[i].CreationDate) > aws.ToString(images[j].CreationDate)
	})
	if images[0].ImageId == nil {
		return "", ErrNoMatchingAMI
	}
	amiID := *images[0].ImageId
	clog.FromContext(ctx).Info("selected latest Amazon Linux AMI", "id", amiID)
	return amiID, nil
}
