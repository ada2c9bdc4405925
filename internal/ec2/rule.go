package ec2

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

const cidrAnywhere = "0.0.0.0/0"

// Rule is one required inbound permission: a (protocol, port, source CIDR)
// tuple. Matching against existing security group permissions is exact on all
// three fields - a permission covering a wider port range or source range does
// not satisfy a Rule.
type Rule struct {
	Protocol string
	Port     int32
	CIDR     string
}

func (r Rule) String() string {
	return fmt.Sprintf("%s/%d from %s", r.Protocol, r.Port, r.CIDR)
}

// DefaultWebRules is the rule set a web instance needs: HTTP and SSH, open to
// the world.
func DefaultWebRules() []Rule {
	return []Rule{
		{Protocol: "tcp", Port: 80, CIDR: cidrAnywhere},
		{Protocol: "tcp", Port: 22, CIDR: cidrAnywhere},
	}
}

// satisfiedBy reports whether 'perm' contains an exact match for the rule.
// The permission must span exactly the rule's single port (FromPort ==
// ToPort == Port) and list the rule's CIDR verbatim among its IP ranges.
func (r Rule) satisfiedBy(perm types.IpPermission) bool {
	if aws.ToString(perm.IpProtocol) != r.Protocol {
		return false
	}
	if aws.ToInt32(perm.FromPort) != r.Port || aws.ToInt32(perm.ToPort) != r.Port {
		return false
	}
	for _, ipRange := range perm.IpRanges {
		if aws.ToString(ipRange.CidrIp) == r.CIDR {
			return true
		}
	}
	return false
}

// rulesSatisfied reports whether every rule in 'required' has an exact match
// somewhere in 'perms'. A linear scan is fine here; inventories are tens of
// groups with a handful of permissions each.
func rulesSatisfied(required []Rule, perms []types.IpPermission) bool {
	for _, rule := range required {
		matched := false
		for _, perm := range perms {
			if rule.satisfiedBy(perm) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// ipPermission renders the rule as the request shape used by
// AuthorizeSecurityGroupIngress.
func (r Rule) ipPermission() types.IpPermission {
	return types.IpPermission{
		IpProtocol: aws.String(r.Protocol),
		FromPort:   aws.Int32(r.Port),
		ToPort:     aws.Int32(r.Port),
		IpRanges: []types.IpRange{{
			CidrIp: aws.String(r.CIDR),
		}},
	}
}

func ipPermissions(rules []Rule) []types.IpPermission {
	perms := make([]types.IpPermission, 0, len(rules))
	for _, rule := range rules {
		perms = append(perms, rule.ipPermission())
	}
	return perms
}
