package httpserver

import "time"

// ShutdownTimeout bounds graceful shutdown. In-flight uploads larger than
// this window are abandoned rather than holding the process open.
var ShutdownTimeout = 15 * time.Second
