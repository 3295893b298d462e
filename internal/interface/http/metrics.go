package handlers

import "expvar"

// counters published under /api/debug/vars
var (
	loginSuccess    = expvar.NewInt("auth_login_success")
	loginFailure    = expvar.NewInt("auth_login_failure")
	registerSuccess = expvar.NewInt("auth_register_success")
	registerFailure = expvar.NewInt("auth_register_failure")
	profileUpdates  = expvar.NewInt("user_profile_updates")
	avatarUploads   = expvar.NewInt("user_avatar_uploads")
)
