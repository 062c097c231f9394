package unix

// userHost is the server providing the authoritative user database; account
// and group mutations must run there so NIS propagation picks them up.
// Overridable at startup by internal/config, since it names a real host in
// the facility's infrastructure rather than a constant of the protocol.
var userHost = "pip"

// SetUserHost overrides the host account/group mutations are guarded to.
func SetUserHost(host string) { userHost = host }
