// Package coordinate defines the version-less workspace identifier used to
// key every descriptor, project node, and graph edge in the reactor core.
package coordinate

import "fmt"

// Coordinate uniquely identifies a project within a workspace, independent
// of version. Both fields are required to be non-empty; use New to
// construct a valid Coordinate.
type Coordinate struct {
	GroupID    string
	ArtifactID string
}

// New constructs a Coordinate, returning an error if either field is empty.
func New(groupID, artifactID string) (Coordinate, error) {
	if groupID == "" {
		return Coordinate{}, fmt.Errorf("coordinate: groupId must not be empty")
	}
	if artifactID == "" {
		return Coordinate{}, fmt.Errorf("coordinate: artifactId must not be empty")
	}
	return Coordinate{GroupID: groupID, ArtifactID: artifactID}, nil
}

// String renders the coordinate in its canonical "groupId:artifactId" form.
func (c Coordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID
}
