package keywords

import (
	"time"

	"github.com/WiDayn/AutoTopicSum/internal/similarity"
)

// ClusterDetail records one merged group from a clustering run.
type ClusterDetail struct {
	Representative string   `json:"representative"`
	Members        []string `json:"members"`
	Size           int      `json:"size"`
}

// FieldStats summarizes the effect of one batch run on a single namespace.
// Matrix keeps the pairwise similarity scores the run was based on so later
// single-value encodes can reuse the global clustering instead of running a
// local one.
type FieldStats struct {
	BeforeCount       int                `json:"before_count"`
	AfterCount        int                `json:"after_count"`
	Reduction         int                `json:"reduction"`
	ReductionRate     float64            `json:"reduction_rate"`
	TotalClusters     int                `json:"total_clusters"`
	ClusteredKeywords int                `json:"clustered_keywords"`
	Clusters          []ClusterDetail    `json:"clusters"`
	Matrix            *similarity.Matrix `json:"similarity_matrix,omitempty"`
}

// Stats is the full report of the most recent batch encoding run.
type Stats struct {
	Timestamp time.Time              `json:"timestamp"`
	Fields    map[string]*FieldStats `json:"fields"`
}

// Record exposes the encoder's full internal state for inspection and
// reporting.
type Record struct {
	Mapping   map[string]map[string]string `json:"encoding_mapping"`
	Stats     *Stats                       `json:"last_clustering_stats,omitempty"`
	Threshold float64                      `json:"similarity_threshold"`
}
