package calculator

import (
	"math"
	"sort"
	"time"

	"rfm-dashboard/pkg/models"
)

// Weights of the composite score and the scale applied to it.
const (
	recencyWeight   = 0.15
	frequencyWeight = 0.28
	monetaryWeight  = 0.57
	scoreScale      = 0.05
)

// Segment thresholds on the scaled composite score, checked from the top.
var segmentThresholds = []struct {
	above   float64
	segment models.Segment
}{
	{4.5, models.SegmentTop},
	{4, models.SegmentHigh},
	{3, models.SegmentMedium},
	{1.6, models.SegmentLow},
}

// SegmentFor maps a composite score to its segment. Every score has exactly one.
func SegmentFor(score float64) models.Segment {
	for _, t := range segmentThresholds {
		if score > t.above {
			return t.segment
		}
	}
	return models.SegmentLost
}

type customerAgg struct {
	last     int64 // latest purchase day, unix days
	orders   map[string]struct{}
	monetary float64
}

// BuildRFM scores every customer in rows. Rows should already be restricted
// to the reporting range; recency is measured from the latest purchase day in rows.
func BuildRFM(rows []models.OrderRecord) []models.RFMRecord {
	if len(rows) == 0 {
		return []models.RFMRecord{}
	}

	byCustomer := map[string]*customerAgg{}
	var latest int64 = math.MinInt64
	for _, r := range rows {
		day := unixDay(r.PurchasedAt)
		if day > latest {
			latest = day
		}
		a, ok := byCustomer[r.CustomerID]
		if !ok {
			a = &customerAgg{last: day, orders: map[string]struct{}{}}
			byCustomer[r.CustomerID] = a
		}
		if day > a.last {
			a.last = day
		}
		a.orders[r.OrderID] = struct{}{}
		a.monetary += r.Price
	}

	ids := make([]string, 0, len(byCustomer))
	for id := range byCustomer {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.RFMRecord, len(ids))
	negRecency := make([]float64, len(ids))
	frequency := make([]float64, len(ids))
	monetary := make([]float64, len(ids))
	for i, id := range ids {
		a := byCustomer[id]
		out[i] = models.RFMRecord{
			CustomerID: id,
			Recency:    int(latest - a.last),
			Frequency:  len(a.orders),
			Monetary:   a.monetary,
		}
		// the most recent customer gets the highest rank
		negRecency[i] = -float64(out[i].Recency)
		frequency[i] = float64(out[i].Frequency)
		monetary[i] = a.monetary
	}

	rNorm := normalize(FractionalRank(negRecency))
	fNorm := normalize(FractionalRank(frequency))
	mNorm := normalize(FractionalRank(monetary))

	for i := range out {
		score := scoreScale * (recencyWeight*rNorm[i] + frequencyWeight*fNorm[i] + monetaryWeight*mNorm[i])
		out[i].RNorm = Round2(rNorm[i])
		out[i].FNorm = Round2(fNorm[i])
		out[i].MNorm = Round2(mNorm[i])
		out[i].Monetary = Round2(out[i].Monetary)
		out[i].Score = Round2(score)
		out[i].Segment = SegmentFor(out[i].Score)
	}
	return out
}

// FractionalRank ranks values ascending starting at 1; tied values share the
// average of the ranks they span.
func FractionalRank(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// normalize scales ranks to 0-100 against the largest rank.
func normalize(ranks []float64) []float64 {
	top := 0.0
	for _, r := range ranks {
		if r > top {
			top = r
		}
	}
	out := make([]float64, len(ranks))
	if top == 0 {
		return out
	}
	for i, r := range ranks {
		out[i] = r / top * 100
	}
	return out
}

// Round2 rounds half to even at two decimals.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func unixDay(t time.Time) int64 {
	return models.Day(t).Unix() / 86400
}
