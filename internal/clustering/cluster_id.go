package clustering

import (
	"crypto/sha256"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ClusterID computes a deterministic cluster identity from its window and
// member video IDs, so re-running the pipeline over unchanged input
// reproduces the same cluster_id instead of minting a new row.
func ClusterID(window string, videoIDs []string) uuid.UUID {
	sorted := append([]string(nil), videoIDs...)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(window + ":" + strings.Join(sorted, ",")))
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		// sum[:16] is always exactly 16 bytes, so FromBytes cannot fail.
		panic(err)
	}
	return id
}
