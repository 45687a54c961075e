package domain

import "time"

// DefaultChunkDays is the widest range the NBP API serves in one request.
const DefaultChunkDays = 93

// DateChunk is an inclusive range of civil dates.
type DateChunk struct {
	Start time.Time
	End   time.Time
}

// Days returns the number of dates covered, counting both ends.
func (c DateChunk) Days() int {
	return int(c.End.Sub(c.Start).Hours()/24) + 1
}

func (c DateChunk) String() string {
	return FormatDate(c.Start) + ".." + FormatDate(c.End)
}

// SplitDateRange covers [start, end] with contiguous chunks of at most chunkDays days.
// Every chunk but the last spans exactly chunkDays. start after end yields no chunks.
func SplitDateRange(start, end time.Time, chunkDays int) []DateChunk {
	if chunkDays <= 0 {
		chunkDays = DefaultChunkDays
	}
	start, end = Day(start), Day(end)
	var chunks []DateChunk
	for cur := start; !cur.After(end); {
		chunkEnd := AddDays(cur, chunkDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		chunks = append(chunks, DateChunk{Start: cur, End: chunkEnd})
		cur = AddDays(chunkEnd, 1)
	}
	return chunks
}
