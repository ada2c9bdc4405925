package ec2

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/require"
)

func runningReservation(instances ...types.Instance) *ec2.DescribeInstancesOutput {
	return &ec2.DescribeInstancesOutput{
		Reservations: []types.Reservation{{Instances: instances}},
	}
}

func TestLaunch(t *testing.T) {
	api := &mockAPI{
		runInstancesFunc: func(_ context.Context, params *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
			require.Equal(t, "ami-1234", aws.ToString(params.ImageId))
			require.Equal(t, types.InstanceType("t2.nano"), params.InstanceType)
			require.Equal(t, []string{"sg-web"}, params.SecurityGroupIds)
			require.NotEmpty(t, aws.ToString(params.UserData))
			return &ec2.RunInstancesOutput{Instances: []types.Instance{
				{InstanceId: aws.String("i-abc123")},
			}}, nil
		},
		describeInstancesFunc: func(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return runningReservation(types.Instance{
				InstanceId:      aws.String("i-abc123"),
				PublicIpAddress: aws.String("203.0.113.10"),
				State:           &types.InstanceState{Name: types.InstanceStateNameRunning},
			}), nil
		},
	}

	userData, err := UserData{}.Render()
	require.NoError(t, err)

	inst, err := NewLauncher(api, "run-1").Launch(t.Context(), LaunchConfig{
		Name:            "sitelift-web",
		AMI:             "ami-1234",
		SecurityGroupID: "sg-web",
		UserData:        userData,
	})
	require.NoError(t, err)
	require.Equal(t, "i-abc123", inst.ID)
	require.Equal(t, "203.0.113.10", inst.PublicIP)
}

func TestLaunchNoPublicIP(t *testing.T) {
	api := &mockAPI{
		runInstancesFunc: func(context.Context, *ec2.RunInstancesInput, ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
			return &ec2.RunInstancesOutput{Instances: []types.Instance{
				{InstanceId: aws.String("i-abc123")},
			}}, nil
		},
		describeInstancesFunc: func(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return runningReservation(types.Instance{
				InstanceId: aws.String("i-abc123"),
				State:      &types.InstanceState{Name: types.InstanceStateNameRunning},
			}), nil
		},
	}
	_, err := NewLauncher(api, "run-1").Launch(t.Context(), LaunchConfig{AMI: "ami-1", SecurityGroupID: "sg-1"})
	require.ErrorIs(t, err, ErrNoPublicIP)
}

func TestListRunning(t *testing.T) {
	api := &mockAPI{
		describeInstancesFunc: func(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			require.Len(t, params.Filters, 1)
			require.Equal(t, "instance-state-name", aws.ToString(params.Filters[0].Name))
			return runningReservation(
				types.Instance{
					InstanceId:      aws.String("i-one"),
					PublicIpAddress: aws.String("203.0.113.1"),
					State:           &types.InstanceState{Name: types.InstanceStateNameRunning},
				},
				types.Instance{
					InstanceId: aws.String("i-two"),
					State:      &types.InstanceState{Name: types.InstanceStateNameRunning},
				},
			), nil
		},
	}
	instances, err := ListRunning(t.Context(), api)
	require.NoError(t, err)
	require.Len(t, instances, 2)
	require.Equal(t, "i-one", instances[0].ID)
	require.Equal(t, "203.0.113.1", instances[0].PublicIP)
	require.Empty(t, instances[1].PublicIP)
}

func TestTerminateAllRunning(t *testing.T) {
	var terminated []string
	api := &mockAPI{
		describeInstancesFunc: func(context.Context, *ec2.DescribeInstancesInput, ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
			return runningReservation(
				types.Instance{InstanceId: aws.String("i-one")},
				types.Instance{InstanceId: aws.String("i-two")},
			), nil
		},
		terminateInstancesFunc: func(_ context.Context, params *ec2.TerminateInstancesInput, _ ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
			terminated = params.InstanceIds
			return &ec2.TerminateInstancesOutput{}, nil
		},
	}
	ids, err := TerminateAllRunning(t.Context(), api)
	require.NoError(t, err)
	require.Equal(t, []string{"i-one", "i-two"}, ids)
	require.Equal(t, ids, terminated)
}

func TestTerminateNothing(t *testing.T) {
	api := &mockAPI{}
	require.NoError(t, Terminate(t.Context(), api))
	require.Empty(t, api.operations)
}
