// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package merge

import (
	"sort"

	"piimerge/internal/aggregate"
	"piimerge/internal/detector"
)

// clusterResiduals turns predictions that no unit covered into entities. A
// prediction overlapping no other residual passes through unchanged;
// transitively overlapping predictions collapse into one entity over their
// union, labeled by the dominant-label rule and scored with their mean.
func (e *Engine) clusterResiduals(doc *detector.Document, residual []detector.RawPrediction) []detector.Entity {
	if len(residual) == 0 {
		return nil
	}

	sorted := append([]detector.RawPrediction(nil), residual...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var out []detector.Entity
	for i := 0; i < len(sorted); {
		end := sorted[i].End
		j := i + 1
		for j < len(sorted) && sorted[j].Start < end {
			end = max(end, sorted[j].End)
			j++
		}
		out = append(out, e.clusterEntity(doc, sorted[i:j], end))
		i = j
	}
	return out
}

func (e *Engine) clusterEntity(doc *detector.Document, cluster []detector.RawPrediction, end int) detector.Entity {
	if len(cluster) == 1 {
		p := cluster[0]
		return detector.Entity{
			Start:      p.Start,
			End:        p.End,
			Text:       doc.Slice(p.Start, p.End),
			Label:      p.EntityType,
			Confidence: p.Score,
			Source:     detector.SourceModel,
		}
	}

	start := cluster[0].Start
	return detector.Entity{
		Start:      start,
		End:        end,
		Text:       doc.Slice(start, end),
		Label:      aggregate.DominantLabel(cluster, e.opts.NormalizeLabels),
		Confidence: aggregate.MeanScore(cluster),
		Source:     detector.SourceCluster,
	}
}
