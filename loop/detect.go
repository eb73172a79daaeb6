package loop

import (
	"io"
	"io/ioutil"
	"log"
	"sort"

	"github.com/vecpal/vecpal/dom"
	"github.com/vecpal/vecpal/ir"
)

// Detector finds the natural loops of a function.
type Detector struct {
	logger *log.Logger
}

// NewDetector returns a new Detector with logging disabled.
func NewDetector() *Detector {
	return &Detector{
		logger: log.New(ioutil.Discard, "loopdetect: ", 0),
	}
}

// SetLog directs detection logging to w.
func (d *Detector) SetLog(w io.Writer) {
	d.logger.SetOutput(w)
}

// Detect scans fn for backedges using the dominator tree and builds
// the loop hierarchy.
func (d *Detector) Detect(fn *ir.Func, dt *dom.Tree) *Info {
	info := &Info{
		Fn:       fn,
		ByHeader: make(map[*ir.Block]*Loop),
	}

	// A backedge is an edge B -> H where H dominates B. Group latches
	// by header so loops with several backedges stay one loop.
	latchesOf := make(map[*ir.Block][]*ir.Block)
	var headers []*ir.Block
	for _, b := range fn.Blocks {
		for _, succ := range b.Succs {
			if !dt.Dominates(succ, b) {
				continue
			}
			if _, seen := latchesOf[succ]; !seen {
				headers = append(headers, succ)
			}
			latchesOf[succ] = append(latchesOf[succ], b)
		}
	}
	sort.Slice(headers, func(i, j int) bool {
		return headers[i].Index() < headers[j].Index()
	})

	for _, h := range headers {
		latches := latchesOf[h]
		l := &Loop{
			Header: h,
			Blocks: make(map[*ir.Block]bool),
		}
		if len(latches) == 1 {
			l.Latch = latches[0]
		} else {
			d.logger.Printf("header #%d has %d backedges, no unique latch",
				h.Index(), len(latches))
		}
		d.buildBody(l, latches)

		for b := range l.Blocks {
			for _, succ := range b.Succs {
				if !l.Blocks[succ] {
					l.Exits = append(l.Exits, b)
					break
				}
			}
		}
		// Body membership is a map; order the exits for determinism.
		sort.Slice(l.Exits, func(i, j int) bool {
			return l.Exits[i].Index() < l.Exits[j].Index()
		})

		info.all = append(info.all, l)
		info.ByHeader[h] = l
		d.logger.Printf("found %s: %d blocks, %d exits", l, len(l.Blocks), len(l.Exits))
	}

	d.buildHierarchy(info)
	return info
}

// buildBody walks predecessors from the latches back to the header.
func (d *Detector) buildBody(l *Loop, latches []*ir.Block) {
	l.Blocks[l.Header] = true
	var work []*ir.Block
	for _, b := range latches {
		if !l.Blocks[b] {
			l.Blocks[b] = true
			work = append(work, b)
		}
	}
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		for _, p := range b.Preds {
			if !l.Blocks[p] {
				l.Blocks[p] = true
				work = append(work, p)
			}
		}
	}
}

// buildHierarchy assigns each loop its tightest enclosing parent.
func (d *Detector) buildHierarchy(info *Info) {
	for _, child := range info.all {
		var parent *Loop
		for _, cand := range info.all {
			if cand == child || !cand.Blocks[child.Header] {
				continue
			}
			if parent == nil || len(cand.Blocks) < len(parent.Blocks) {
				parent = cand
			}
		}
		if parent != nil {
			child.Parent = parent
			parent.Children = append(parent.Children, child)
		} else {
			info.Loops = append(info.Loops, child)
		}
	}
}

// Detect is a convenience wrapper using a silent Detector.
func Detect(fn *ir.Func, dt *dom.Tree) *Info {
	return NewDetector().Detect(fn, dt)
}
