package markup

// Watcher re-runs RefreshAll on a document whenever holders are inserted.
//
// The transition from unobserved to observing happens once; there is no
// teardown. Text rewrites made by RefreshAll do not go through the document's
// mutation methods, so a pass never triggers another pass.
type Watcher struct {
	doc       *Document
	refresher *Refresher
	observing bool
	passes    int
	last      Stats
	onPass    func(Stats)
}

// NewWatcher binds a refresher to a document.
func NewWatcher(d *Document, r *Refresher) *Watcher {
	return &Watcher{doc: d, refresher: r}
}

// OnPass registers a callback invoked after every refresh pass.
func (w *Watcher) OnPass(fn func(Stats)) {
	w.onPass = fn
}

// Start runs the initial pass and begins watching.
func (w *Watcher) Start() Stats {
	stats := w.refresh()
	w.Watch()
	return stats
}

// Watch subscribes to the document's mutations. Calling it again is a no-op.
func (w *Watcher) Watch() {
	if w.observing {
		return
	}
	w.observing = true
	w.doc.Observe(w.handle)
}

// Refresh runs a pass now, outside of any mutation.
func (w *Watcher) Refresh() Stats {
	return w.refresh()
}

// Observing reports whether Watch has been called.
func (w *Watcher) Observing() bool {
	return w.observing
}

// Passes returns the number of refresh passes run so far.
func (w *Watcher) Passes() int {
	return w.passes
}

// LastStats returns the stats of the most recent pass.
func (w *Watcher) LastStats() Stats {
	return w.last
}

// handle runs one full pass per batch when any added element, or any of its
// descendants, is a holder.
func (w *Watcher) handle(records []MutationRecord) {
	attrs := w.refresher.Attrs()
	for _, rec := range records {
		if rec.Type != ChildList {
			continue
		}
		for _, n := range rec.AddedNodes {
			if attrs.ContainsHolder(n) {
				w.refresh()
				return
			}
		}
	}
}

func (w *Watcher) refresh() Stats {
	stats := w.refresher.RefreshAll(w.doc)
	w.passes++
	w.last = stats
	if w.onPass != nil {
		w.onPass(stats)
	}
	return stats
}
