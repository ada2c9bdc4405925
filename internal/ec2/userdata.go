package ec2

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"text/template"
)

// The boot script installs Apache and writes an index page carrying the
// instance's own metadata, fetched through IMDSv2.
var userDataTemplate = template.Must(template.New("userdata").Parse(`#!/bin/bash
yum update -y
yum install -y httpd
systemctl start httpd.service
systemctl enable httpd.service
# Fetch instance metadata
TOKEN=$(curl -X PUT "http://169.254.169.254/latest/api/token" -H "X-aws-ec2-metadata-token-ttl-seconds: 21600")
INSTANCE_ID=$(curl -H "X-aws-ec2-metadata-token: $TOKEN" http://169.254.169.254/latest/meta-data/instance-id)
INSTANCE_TYPE=$(curl -H "X-aws-ec2-metadata-token: $TOKEN" http://169.254.169.254/latest/meta-data/instance-type)
AVAILABILITY_ZONE=$(curl -H "X-aws-ec2-metadata-token: $TOKEN" http://169.254.169.254/latest/meta-data/placement/availability-zone)
# Create a custom index.html
cat <<EOF > /var/www/html/index.html
<html>
<body>
<h1>{{.Heading}}</h1>
<p>Instance ID: $INSTANCE_ID</p>
<p>Instance Type: $INSTANCE_TYPE</p>
<p>Availability Zone: $AVAILABILITY_ZONE</p>
</body>
</html>
EOF
`))

// UserData holds the template inputs for the instance boot script.
type UserData struct {
	// Heading is the page title served by the bootstrapped web server.
	Heading string
}

var ErrUserDataRender = fmt.Errorf("failed to render user data script")

// Render produces the boot script, base64-encoded as RunInstances expects.
func (u UserData) Render() (string, error) {
	if u.Heading == "" {
		u.Heading = "Hello from sitelift"
	}
	buf := new(bytes.Buffer)
	if err := userDataTemplate.Execute(buf, u); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUserDataRender, err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
