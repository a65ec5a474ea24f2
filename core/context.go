package core

import (
	"database/sql"
	"log/slog"

	"github.com/mosaicfw/mosaic/config"
	"github.com/mosaicfw/mosaic/events"
)

// Context is the shared handle bundle passed into every module hook. It is
// created once, before any hook runs, and treated as read-only: hooks may use
// the handles but never replace them. The bundle outlives all hook calls
// within a phase, and the handles it carries (pool, bus, queue) are safe for
// concurrent use during steady state.
type Context struct {
	// Config is the immutable settings snapshot.
	Config config.Root

	// DB is the shared sqlite connection pool.
	DB *sql.DB

	// Bus is the broadcast event channel between modules.
	Bus *events.Bus

	// Tasks is the bounded queue for ordered background work.
	Tasks *events.Queue[events.Task]

	// Log is the structured logging facade.
	Log *slog.Logger

	// Shared lets an earlier module publish a resource (a store, a policy
	// set) that later modules resolve during their own init. Init runs in
	// registration order precisely so this hand-off is well defined.
	Shared Container
}
