package media

import (
	"fmt"

	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/log"
)

// Prober resolves media information from probe sidecar files, reconciling the frame rate
// and remembering results in an optional cache.
type Prober struct {
	Tolerance float64
	Cache     *Cache
}

// Probe returns the reconciled info for ref, reading ref's sidecar file when it is not cached.
func (p *Prober) Probe(ref Ref) (Info, error) {
	if p.Cache != nil {
		if cached, ok := p.Cache.Get(ref).Get(); ok {
			return cached, nil
		}
	}

	f, err := filesystem.API().Open(ref.SidecarPath())
	if err != nil {
		return Info{}, fmt.Errorf("open probe sidecar: %w", err)
	}
	defer f.Close()

	info, err := ParseProbe(f)
	if err != nil {
		return Info{}, fmt.Errorf("probe %s: %w", ref, err)
	}

	info = Reconcile(info, p.Tolerance)
	if info.Overridden {
		log.Infof("media %s: frame rate recomputed to %.3f from duration", ref, info.FrameRate)
	}

	if p.Cache != nil {
		if err := p.Cache.Set(ref, info); err != nil {
			log.Warnf("media %s: cache probe result: %v", ref, err)
		}
	}

	return info, nil
}
