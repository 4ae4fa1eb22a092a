package services

import (
	"fmt"
	"math"

	"donation-route-service/internal/domain"

	"github.com/dhconnelly/rtreego"
)

// Minimum side of an R-tree rectangle; rtreego rejects zero-length sides.
const rectEpsilon = 1e-9

type pickupEntry struct {
	idx  int
	rect rtreego.Rect
}

func (e *pickupEntry) Bounds() rtreego.Rect { return e.rect }

// Recommend returns up to limit candidates whose pickup lies inside box grown
// by bufferDeg. Candidates keep their input order.
//
// The R-tree query only narrows the candidates down; WithinBounds makes the
// final call so edge handling matches the sequencer.
func Recommend(candidates []*domain.Donation, box domain.BoundingBox, bufferDeg float64, limit int) ([]*domain.Donation, error) {
	if err := box.Validate(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	if math.IsNaN(bufferDeg) || math.IsInf(bufferDeg, 0) || bufferDeg < 0 {
		return nil, fmt.Errorf("recommend: %w: buffer %v", domain.ErrInvalidArgument, bufferDeg)
	}

	out := []*domain.Donation{}
	if limit <= 0 || len(candidates) == 0 {
		return out, nil
	}

	tree := rtreego.NewTree(2, 25, 50)
	for i, d := range candidates {
		if d.PickupCoords == nil || d.PickupCoords.Validate() != nil {
			continue
		}
		p := rtreego.Point{d.PickupCoords.Lon, d.PickupCoords.Lat}
		tree.Insert(&pickupEntry{idx: i, rect: p.ToRect(rectEpsilon)})
	}

	grown := box.Expand(bufferDeg)
	query, err := rtreego.NewRect(
		rtreego.Point{grown.MinLon - rectEpsilon, grown.MinLat - rectEpsilon},
		[]float64{
			grown.MaxLon - grown.MinLon + 2*rectEpsilon,
			grown.MaxLat - grown.MinLat + 2*rectEpsilon,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("recommend: query rect: %w", err)
	}

	hits := make(map[int]bool)
	for _, s := range tree.SearchIntersect(query) {
		hits[s.(*pickupEntry).idx] = true
	}

	for i, d := range candidates {
		if !hits[i] {
			continue
		}
		inside, err := WithinBounds(*d.PickupCoords, box, bufferDeg)
		if err != nil {
			return nil, err
		}
		if !inside {
			continue
		}
		out = append(out, d)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
