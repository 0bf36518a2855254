package clustering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClusterID_Deterministic(t *testing.T) {
	id1 := ClusterID("7d", []string{"v2", "v1", "v3"})
	id2 := ClusterID("7d", []string{"v1", "v3", "v2"})
	assert.Equal(t, id1, id2, "member order must not affect cluster identity")
}

func TestClusterID_DiffersByWindow(t *testing.T) {
	id1 := ClusterID("7d", []string{"v1", "v2"})
	id2 := ClusterID("30d", []string{"v1", "v2"})
	assert.NotEqual(t, id1, id2)
}

func TestClusterID_DiffersByMembership(t *testing.T) {
	id1 := ClusterID("7d", []string{"v1", "v2"})
	id2 := ClusterID("7d", []string{"v1", "v3"})
	assert.NotEqual(t, id1, id2)
}
