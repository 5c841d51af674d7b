package quadtree

import (
	"sort"
	"time"

	"github.com/terravista/quadlod/tile"
)

// processTileLoadQueue drains the three load queues into the provider,
// most urgent first, under a single shared wall-clock budget. At least
// one tile is always loaded when any queue is non-empty, so a frame with
// pending work always makes progress.
func (p *Primitive) processTileLoadQueue(fs *tile.FrameState) {
	if len(p.loadQueueHigh) == 0 && len(p.loadQueueMedium) == 0 && len(p.loadQueueLow) == 0 {
		return
	}

	// Trim the cache first so freshly loaded tiles are not immediately
	// eviction candidates.
	p.replacementQueue.Trim(p.TileCacheSize)
	instrumentResidentTiles(p.replacementQueue.Count())

	endTime := p.now().Add(p.LoadQueueTimeSlice)

	didSomeLoading := p.processSinglePriorityQueue(fs, endTime, p.loadQueueHigh, false)
	didSomeLoading = p.processSinglePriorityQueue(fs, endTime, p.loadQueueMedium, didSomeLoading)
	p.processSinglePriorityQueue(fs, endTime, p.loadQueueLow, didSomeLoading)
}

func (p *Primitive) processSinglePriorityQueue(fs *tile.FrameState, endTime time.Time, queue []*tile.Tile, didSomeLoading bool) bool {
	if computer, ok := p.provider.(tile.LoadPriorityComputer); ok {
		sort.SliceStable(queue, func(i, j int) bool {
			return computer.ComputeTileLoadPriority(queue[i], fs) <
				computer.ComputeTileLoadPriority(queue[j], fs)
		})
	}

	for _, t := range queue {
		if didSomeLoading && !p.now().Before(endTime) {
			break
		}
		p.replacementQueue.MarkTileTouched(t)
		p.provider.LoadTile(fs, t)
		instrumentTileLoad()
		didSomeLoading = true
	}
	return didSomeLoading
}

// updateTileLoadProgress raises the progress notification when the
// combined queue length changed since the previous frame, and logs the
// frame statistics when debug output is enabled.
func (p *Primitive) updateTileLoadProgress(fs *tile.FrameState) {
	current := len(p.loadQueueHigh) + len(p.loadQueueMedium) + len(p.loadQueueLow)

	if current != p.lastLoadQueueLength || p.forceProgressEvent {
		p.lastLoadQueueLength = current
		p.forceProgressEvent = false
		instrumentLoadQueueLength(current)
		if p.OnTileLoadProgress != nil {
			p.OnTileLoadProgress(current)
		}
	}

	if p.EnableDebugOutput && p.stats != p.lastStats {
		p.lastStats = p.stats
		logFrameStatistics(fs.FrameNumber, p.stats)
	}
}
