package postprocess

import "sync"

// idGenerator holds a counter for generating the next incremental ID number
type idGenerator struct {
	id int64
	sync.Mutex
}

// getNext next incremental number
func (g *idGenerator) getNext() int64 {
	g.Lock()
	defer g.Unlock()
	g.id++
	return g.id
}

// detectionIDs issues the unique IDs attached to detection results
var detectionIDs = &idGenerator{}
