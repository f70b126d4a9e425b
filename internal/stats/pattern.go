package stats

import (
	"sort"
	"time"
)

// BlockHistogram counts occurrences of half-hour blocks across a window.
type BlockHistogram map[TimeBlock]int

func PointHistogram(times []time.Time, loc *time.Location) BlockHistogram {
	h := BlockHistogram{}
	for _, ts := range times {
		h[HalfHourBlock(Quantize(ts.In(loc), Floor30))]++
	}
	return h
}

// SleepHistogram counts every half-hour block a session covers, once per session.
// A session of a day or longer covers all 48 blocks.
func SleepHistogram(sessions []SleepSession, loc *time.Location) BlockHistogram {
	h := BlockHistogram{}
	for _, session := range sessions {
		first := roundedInstant(session.Start, loc)
		steps := int(roundedInstant(session.End, loc).Sub(first) / (slotMinutes * time.Minute))
		steps = min(steps, slotsPerDay)
		slot := Quantize(session.Start.In(loc), Nearest30WithRollover)
		for range steps {
			h[HalfHourBlock(slot)]++
			slot = slot.Add(slotMinutes)
		}
	}
	return h
}

// FilterBlocks keeps blocks seen at least minFreq times, ordered by start.
func FilterBlocks(h BlockHistogram, minFreq int) []TimeBlock {
	blocks := make([]TimeBlock, 0, len(h))
	for block, count := range h {
		if count >= minFreq {
			blocks = append(blocks, block)
		}
	}
	sortBlocks(blocks)
	return blocks
}

func sortBlocks(blocks []TimeBlock) {
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Start != blocks[j].Start {
			return blocks[i].Start < blocks[j].Start
		}
		return blocks[i].End < blocks[j].End
	})
}

// MergeBlocks coalesces contiguous blocks, including across midnight.
// A set covering the whole day collapses to [00:00, 00:00).
func MergeBlocks(blocks []TimeBlock) []TimeBlock {
	if len(blocks) == 0 {
		return []TimeBlock{}
	}
	sorted := make([]TimeBlock, len(blocks))
	copy(sorted, blocks)
	sortBlocks(sorted)

	merged := make([]TimeBlock, 0, len(sorted))
	current := sorted[0]
	for _, next := range sorted[1:] {
		if current.End == next.Start && !current.Wraps() {
			current.End = next.End
			continue
		}
		merged = append(merged, current)
		current = next
	}
	merged = append(merged, current)

	if len(merged) > 1 {
		first, last := merged[0], merged[len(merged)-1]
		if last.End == first.Start && !first.Wraps() {
			last.End = first.End
			merged = append(merged[1:len(merged)-1], last)
		}
	}
	sortBlocks(merged)
	return merged
}

func ExtractPointPatterns(times []time.Time, loc *time.Location, minFreq int) []TimeBlock {
	return FilterBlocks(PointHistogram(times, loc), minFreq)
}

func ExtractSleepPatterns(sessions []SleepSession, loc *time.Location, minFreq int) []TimeBlock {
	return MergeBlocks(FilterBlocks(SleepHistogram(sessions, loc), minFreq))
}
