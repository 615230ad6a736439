package app

import (
	"github.com/vk/audiograph/internal/handlers"
	"github.com/vk/audiograph/modules/replay"
	"github.com/vk/audiograph/modules/socketio"
)

// coreModules is the definitive list of source modules compiled into the
// audiograph binary. The websocket ingest is added by the app itself, since
// it is served by the app's HTTP server.
var coreModules = []handlers.Module{
	&replay.Module{},
	&socketio.Module{},
}
