package persistence

import (
	"context"
	"os"
	"time"

	"github.com/agentstation/inkwell/pkg/errors"
	"github.com/agentstation/inkwell/pkg/logging"
)

// corruptSuffix is inserted before the timestamp of a moved-aside ledger.
const corruptSuffix = ".corrupt-"

// quarantine renames an unreadable ledger to <path>.corrupt-<ts>, together
// with any sidecar files named path+suffix, so an empty ledger can take its
// place. It returns the new location of path.
func quarantine(ctx context.Context, path string, cause error, sidecars ...string) (string, error) {
	stamp := time.Now().UTC().Format("20060102T150405.000Z")
	aside := path + corruptSuffix + stamp
	if err := os.Rename(path, aside); err != nil {
		return "", errors.WrapIO("rename", path, err)
	}
	for _, suffix := range sidecars {
		err := os.Rename(path+suffix, aside+suffix)
		if err != nil && !os.IsNotExist(err) {
			return aside, errors.WrapIO("rename", path+suffix, err)
		}
	}

	logging.FromContext(ctx).Warn().
		Err(cause).
		Str("path", path).
		Str("moved_to", aside).
		Msg("Ledger unreadable, moved aside and starting empty")
	return aside, nil
}
