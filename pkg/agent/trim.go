// OSPilot - Desktop task agent runner
// License: MIT
//
// Copyright (c) 2026 OSPilot contributors

package agent

import (
	"github.com/ospilot/ospilot/pkg/logger"
	"github.com/ospilot/ospilot/pkg/providers/protocoltypes"
)

// TrimImages caps the number of screenshots carried in the history.
// Screenshots lose value as the conversation moves on, so all but the
// last keep images are marked removed, oldest first. The removal count
// is rounded down to a multiple of threshold so trimming happens in
// chunks, which keeps prompt prefixes stable across steps for caching.
//
// keep == 0 disables trimming entirely. Turns are modified in place;
// order and text content are never touched.
func TrimImages(history []protocoltypes.Message, keep, threshold int) int {
	if keep == 0 {
		return 0
	}
	if threshold < 1 {
		threshold = 1
	}

	total := protocoltypes.CountImages(history)
	toRemove := total - keep
	if toRemove <= 0 {
		return 0
	}
	toRemove -= toRemove % threshold
	if toRemove == 0 {
		return 0
	}

	removed := 0
outer:
	for i := range history {
		for j := range history[i].Images {
			if removed == toRemove {
				break outer
			}
			img := &history[i].Images[j]
			if img.Removed {
				continue
			}
			img.Removed = true
			img.Data = ""
			removed++
		}
	}

	logger.DebugCF("agent", "Trimmed history images", map[string]interface{}{
		"removed":   removed,
		"remaining": total - removed,
	})
	return removed
}
