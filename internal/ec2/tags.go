package ec2

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

const (
	// 'Name' is well-known within AWS itself; the rest identify resources this
	// tool created so teardown and billing queries can find them.
	tagKeyName      = "Name"
	tagKeyManagedBy = "ManagedBy"
	tagKeyRunID     = "sitelift.dev/run-id"

	tagDefaultManagedBy = "sitelift"
)

// tagSpecification produces a tag specification for 'rt' where the standard
// tags are appended after the caller's 'withTags'.
func tagSpecification(rt types.ResourceType, withTags ...types.Tag) []types.TagSpecification {
	return []types.TagSpecification{
		{
			ResourceType: rt,
			Tags:         append(withTags, tagsDefault()...),
		},
	}
}

func tagsDefault() []types.Tag {
	return []types.Tag{
		{
			Key:   aws.String(tagKeyManagedBy),
			Value: aws.String(tagDefaultManagedBy),
		},
	}
}

// NameTag is a convenience for the AWS 'Name' tag.
func NameTag(name string) types.Tag {
	return types.Tag{
		Key:   aws.String(tagKeyName),
		Value: aws.String(name),
	}
}

// RunIDTag marks a resource with the identifier of the run that created it.
func RunIDTag(runID string) types.Tag {
	return types.Tag{
		Key:   aws.String(tagKeyRunID),
		Value: aws.String(runID),
	}
}
