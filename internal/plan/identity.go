package plan

import (
	"encoding/base64"
	"strings"
)

// Identity is the stable identifier derived from a project descriptor,
// together with the original descriptor it was derived from.
type Identity struct {
	ProjectID string `json:"project_id"`
	RawValue  string `json:"raw_value"`
}

// Identify maps a project descriptor (a git remote URL or an absolute
// project path) to a stable project identifier. The mapping is pure and
// deterministic: identical descriptors always yield the same identifier,
// and the descriptor is recoverable via DecodeProjectID.
func Identify(descriptor string) (Identity, error) {
	if strings.TrimSpace(descriptor) == "" {
		return Identity{}, invalidArgf("project descriptor must be a non-empty string")
	}
	return Identity{
		ProjectID: base64.StdEncoding.EncodeToString([]byte(descriptor)),
		RawValue:  descriptor,
	}, nil
}

// DecodeProjectID recovers the original descriptor from a project
// identifier produced by Identify.
func DecodeProjectID(projectID string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(projectID)
	if err != nil {
		return "", invalidArgf("malformed project id %q", projectID)
	}
	return string(raw), nil
}
