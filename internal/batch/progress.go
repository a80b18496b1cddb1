package batch

import "sync/atomic"

// Progress exposes monotonically increasing counters an external observer
// can poll while a batch runs. Counts only ever go up.
type Progress struct {
	filesHashed atomic.Int64
	filesMoved  atomic.Int64
	bytesMoved  atomic.Int64
}

// Snapshot is a point-in-time reading of the counters.
type Snapshot struct {
	FilesHashed int64
	FilesMoved  int64
	BytesMoved  int64
}

func (p *Progress) Snapshot() Snapshot {
	return Snapshot{
		FilesHashed: p.filesHashed.Load(),
		FilesMoved:  p.filesMoved.Load(),
		BytesMoved:  p.bytesMoved.Load(),
	}
}

func (p *Progress) addHashed() { p.filesHashed.Add(1) }

func (p *Progress) addMoved(bytes int64) {
	p.filesMoved.Add(1)
	p.bytesMoved.Add(bytes)
}
