package trace

import (
	"github.com/sarchlab/memsim/mem/pipeline"
	"github.com/sarchlab/memsim/mem/vm/paging"
)

func status(err error) string {
	if err == nil {
		return "ok"
	}

	return err.Error()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}

func kindName(isWrite bool) string {
	if isWrite {
		return "write"
	}

	return "read"
}

// hitLevel returns the cache level that served the access, 0 for memory and
// -1 when the access did not go through the caches.
func hitLevel(r pipeline.AccessReport) int {
	if r.Cache == nil {
		return -1
	}

	return r.Cache.HitLevel
}

func evicted(f paging.Fault) (int, bool) {
	if f.Evicted == nil {
		return -1, false
	}

	return f.Evicted.Page, f.Evicted.Dirty
}
