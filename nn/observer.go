package nn

// StageStats summarizes one stage after a recompute
type StageStats struct {
	Stage       int    `json:"stage"`
	Name        string `json:"name"`
	TotalUnits  int    `json:"total_units"`
	MarkedUnits int    `json:"marked_units"`
	PadLeft     int    `json:"pad_left"` // Left padding applied to this stage by the next layer
}

// FieldEvent is pushed to the observer after every recompute
type FieldEvent struct {
	Selection Selection    `json:"selection"`
	Stages    []StageStats `json:"stages"`
	Masked    bool         `json:"masked"` // false means "no masks"
	Revision  uint64       `json:"revision"`
}

// FieldObserver receives recompute notifications from a Session
type FieldObserver interface {
	OnRecompute(event FieldEvent)
}

// FieldObserverFunc adapts a function to FieldObserver
type FieldObserverFunc func(event FieldEvent)

func (f FieldObserverFunc) OnRecompute(event FieldEvent) { f(event) }

// computeStageStats builds per-stage summaries; masks may be nil
func computeStageStats(net *Network, masks FieldMasks) []StageStats {
	dims := net.Dims()
	stats := make([]StageStats, net.Len()+1)
	for k := range stats {
		stats[k] = StageStats{
			Stage:      k,
			Name:       net.StageName(k),
			TotalUnits: net.StageDim(k),
		}
		if k < len(dims) {
			stats[k].PadLeft = dims[k].PadLeft
		}
		if masks != nil {
			stats[k].MarkedUnits = masks.Count(k)
		}
	}
	return stats
}

// notifyObserver sends an event to the session observer if one exists
func (s *Session) notifyObserver() {
	if s.observer == nil {
		return
	}
	s.observer.OnRecompute(FieldEvent{
		Selection: s.selection,
		Stages:    computeStageStats(s.net, s.masks),
		Masked:    s.masks != nil,
		Revision:  s.revision,
	})
}
